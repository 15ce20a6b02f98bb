package analytics

import (
	"context"
	"net/http"

	"github.com/merthanaya/pos-backend/api/middleware"
	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/api/validators"
	internalanalytics "github.com/merthanaya/pos-backend/internal/analytics"
	pkgerrors "github.com/merthanaya/pos-backend/pkg/errors"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/types"
)

type reportFunc func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error)

func serveReport(svc internalanalytics.Service, logg *logger.Logger, run reportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		params, err := rangeParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := run(r.Context(), middleware.UserFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// Summary reports paid revenue and order totals over the range.
func Summary(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return serveReport(svc, logg, func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error) {
		return svc.Summary(ctx, caller, params)
	})
}

func TopProducts(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", internalanalytics.DefaultTopLimit, 1, internalanalytics.MaxTopLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serveReport(svc, logg, func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error) {
			return svc.TopProducts(ctx, caller, params, limit)
		}).ServeHTTP(w, r)
	}
}

func SalesByCategory(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return serveReport(svc, logg, func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error) {
		return svc.SalesByCategory(ctx, caller, params)
	})
}

// SalesTrend returns one point per business day; the window is capped shorter than other reports.
func SalesTrend(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return serveReport(svc, logg, func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error) {
		return svc.SalesTrend(ctx, caller, params)
	})
}

func HourlyDistribution(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return serveReport(svc, logg, func(ctx context.Context, caller *types.UserContext, params internalanalytics.RangeParams) (any, error) {
		return svc.HourlyDistribution(ctx, caller, params)
	})
}
