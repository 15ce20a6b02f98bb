package analytics

import (
	"net/http"
	"strings"

	"github.com/merthanaya/pos-backend/api/validators"
	internalanalytics "github.com/merthanaya/pos-backend/internal/analytics"
)

// rangeParams reads days, date_from and date_to. Range semantics are resolved by the service.
func rangeParams(r *http.Request) (internalanalytics.RangeParams, error) {
	days, err := validators.ParseQueryInt(r, "days", 0, 1, internalanalytics.MaxDays)
	if err != nil {
		return internalanalytics.RangeParams{}, err
	}
	query := r.URL.Query()
	return internalanalytics.RangeParams{
		Days:     days,
		DateFrom: strings.TrimSpace(query.Get("date_from")),
		DateTo:   strings.TrimSpace(query.Get("date_to")),
	}, nil
}
