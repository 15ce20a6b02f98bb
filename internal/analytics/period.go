package analytics

import (
	"fmt"
	"time"

	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
)

const dayLayout = "2006-01-02"

// period is an inclusive range of business days. Start and End bound created_at as [Start, End).
type period struct {
	first time.Time
	last  time.Time
	Start time.Time
	End   time.Time
}

func (p period) From() string { return p.first.Format(dayLayout) }
func (p period) To() string   { return p.last.Format(dayLayout) }

// days lists every calendar day in the period, in order.
func (p period) days() []string {
	var out []string
	for d := p.first; !d.After(p.last); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dayLayout))
	}
	return out
}

// resolvePeriod turns range params into a period in loc. Explicit dates win over days
// and must be supplied together.
func resolvePeriod(params RangeParams, maxDays int, now time.Time, loc *time.Location) (period, error) {
	hasFrom, hasTo := params.DateFrom != "", params.DateTo != ""
	if hasFrom != hasTo {
		return period{}, pkgerrors.New(pkgerrors.CodeValidation, "date_from and date_to must be provided together")
	}

	var first, last time.Time
	if hasFrom {
		var err error
		if first, err = time.ParseInLocation(dayLayout, params.DateFrom, loc); err != nil {
			return period{}, pkgerrors.New(pkgerrors.CodeValidation, "date_from must be YYYY-MM-DD")
		}
		if last, err = time.ParseInLocation(dayLayout, params.DateTo, loc); err != nil {
			return period{}, pkgerrors.New(pkgerrors.CodeValidation, "date_to must be YYYY-MM-DD")
		}
		if last.Before(first) {
			return period{}, pkgerrors.New(pkgerrors.CodeValidation, "date_from must not be after date_to")
		}
	} else {
		days := params.Days
		if days == 0 {
			days = DefaultDays
		}
		if days < 1 || days > maxDays {
			return period{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", maxDays))
		}
		local := now.In(loc)
		last = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		first = last.AddDate(0, 0, -(days - 1))
	}

	return period{
		first: first,
		last:  last,
		Start: first.UTC(),
		End:   last.AddDate(0, 0, 1).UTC(),
	}, nil
}
