package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/sqlflash/internal/logger"
)

const readyTimeout = 2 * time.Second

// handleHealth is the liveness probe. It always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the database and, when configured, the cache.
// Returns 200 if both are healthy, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	log := logger.FromContext(ctx)

	checks := map[string]string{}
	healthy := true

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			log.Warn("readiness check failed - database: %v", err)
			checks["database"] = "unavailable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if s.Cache != nil {
		if err := s.Cache.HealthCheck(ctx); err != nil {
			log.Warn("readiness check failed - cache: %v", err)
			checks["cache"] = "unavailable"
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	checks["status"] = "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		checks["status"] = "unavailable"
	}
	writeJSON(w, r, status, checks)
}
