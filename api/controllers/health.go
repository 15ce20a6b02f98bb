package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/pkg/logger"
)

const (
	serviceName    = "Merthanaya POS API"
	serviceVersion = "1.0.0"
	pingTimeout    = 2 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service,omitempty"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

// Root is the liveness banner.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, healthResponse{Status: "healthy", Service: serviceName, Version: serviceVersion})
	}
}

// Health pings the database and, when configured, redis. Only a database outage fails the check.
func Health(db pinger, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Database: "connected", Redis: "disabled"}
		status := http.StatusOK

		if err := ping(r.Context(), db); err != nil {
			resp.Status = "unhealthy"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
			if logg != nil {
				logg.Error(r.Context(), "health.database_unavailable", err)
			}
		}

		if cache != nil {
			resp.Redis = "connected"
			if err := ping(r.Context(), cache); err != nil {
				resp.Redis = "unavailable"
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "health.redis_unavailable")
				}
			}
		}

		responses.WriteSuccessStatus(w, status, resp)
	}
}

func ping(ctx context.Context, target pinger) error {
	if target == nil {
		return errNoPinger
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return target.Ping(ctx)
}
