// Package receipt renders printable order receipts sized for 80mm thermal paper.
package receipt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/merthanaya/pos-backend/pkg/money"
)

const (
	pageWidth    = 80.0
	margin       = 4.0
	baseHeight   = 95.0
	lineHeight   = 9.0
	maxNameRunes = 30
	fontFamily   = "Helvetica"
)

// Line is one purchased item as shown on paper.
type Line struct {
	Name      string
	Quantity  decimal.Decimal
	UnitType  string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Receipt carries everything printed on a receipt.
type Receipt struct {
	StoreName string
	Address   string
	Phone     string
	Footer    string
	InvoiceID string
	ShortID   string
	Status    string
	IssuedAt  time.Time
	Lines     []Line
	Total     decimal.Decimal
}

// Render writes the receipt as a PDF to w. IssuedAt must already be in the business zone.
func Render(w io.Writer, r Receipt) error {
	if w == nil {
		return errors.New("receipt: writer is required")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: baseHeight + float64(len(r.Lines))*lineHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(r.InvoiceID, false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	contentW := pageWidth - 2*margin

	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(contentW, 6, tr(r.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 7)
	for _, extra := range []string{r.Address, r.Phone} {
		if strings.TrimSpace(extra) != "" {
			pdf.MultiCell(contentW, 3.5, tr(extra), "", "C", false)
		}
	}
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "B", 8)
	pdf.CellFormat(contentW/2, 5, tr(r.InvoiceID), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, tr(r.ShortID), "", 1, "R", false, 0, "")
	pdf.SetFont(fontFamily, "", 7)
	pdf.CellFormat(contentW/2, 4, r.IssuedAt.Format("02/01/2006 15:04"), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 4, tr(r.Status), "", 1, "R", false, 0, "")
	pdf.Ln(1)
	separator(pdf)

	col1 := contentW * 0.60
	col2 := contentW * 0.40
	for _, line := range r.Lines {
		pdf.SetFont(fontFamily, "", 7)
		pdf.CellFormat(contentW, 4, tr(truncate(line.Name, maxNameRunes)), "", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 6.5)
		pdf.CellFormat(col1, 4, fmt.Sprintf("  %s x %s", quantityLabel(line), money.Format(line.UnitPrice)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 4, money.Format(line.Subtotal), "", 1, "R", false, 0, "")
	}
	separator(pdf)

	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(col1, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, money.Format(r.Total), "", 1, "R", false, 0, "")

	if strings.TrimSpace(r.Footer) != "" {
		pdf.Ln(3)
		pdf.SetFont(fontFamily, "I", 7)
		pdf.MultiCell(contentW, 3.5, tr(r.Footer), "", "C", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("receipt: write pdf: %w", err)
	}
	return nil
}

func separator(pdf *fpdf.Fpdf) {
	y := pdf.GetY()
	pdf.Line(margin, y, pageWidth-margin, y)
	pdf.Ln(2)
}

func quantityLabel(line Line) string {
	if line.UnitType == "weight" {
		return line.Quantity.Round(money.QuantityPlaces).String() + " kg"
	}
	return line.Quantity.Round(money.QuantityPlaces).String()
}

func truncate(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit-3]) + "..."
}
