package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Pinger is a dependency checked by the readiness check
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck always reports the API as up
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Write(w, http.StatusOK, struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}{
		Success:   true,
		Message:   "API is healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck returns readiness status including dependency connectivity
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
				response.Error(w, http.StatusServiceUnavailable, name+" not ready", nil)
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
