package orders

import (
	"fmt"
	"time"
)

const (
	dayLayout     = "2006-01-02"
	invoiceLayout = "20060102"
)

// ShortID renders the cashier-facing number, e.g. #007. Wider numbers are kept whole.
func ShortID(dailyID int) string {
	return fmt.Sprintf("#%03d", dailyID)
}

// InvoiceID renders INV-YYYYMMDD-NNN for the business day of at.
func InvoiceID(at time.Time, loc *time.Location, dailyID int) string {
	return fmt.Sprintf("INV-%s-%03d", at.In(loc).Format(invoiceLayout), dailyID)
}

// BusinessDay is the counter key for at, evaluated in loc.
func BusinessDay(at time.Time, loc *time.Location) string {
	return at.In(loc).Format(dayLayout)
}

// dayBounds parses a YYYY-MM-DD calendar day in loc and returns [start, next day start) in UTC.
func dayBounds(day string, loc *time.Location) (time.Time, time.Time, error) {
	parsed, err := time.ParseInLocation(dayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return parsed.UTC(), parsed.AddDate(0, 0, 1).UTC(), nil
}
