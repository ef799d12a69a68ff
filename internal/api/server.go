package api

import (
	"context"

	"github.com/vytor/sqlflash/internal/jobs"
	"github.com/vytor/sqlflash/internal/services"
)

// HealthChecker is a dependency probed by /ready.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Pinger is satisfied by *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server holds the handlers' dependencies.
type Server struct {
	FlashcardService  services.FlashcardService
	AssessmentService services.AssessmentService
	// GenerationQueue runs generation requests made with async=true. Nil
	// makes them synchronous.
	GenerationQueue jobs.JobQueue
	DB              Pinger
	// Cache is probed only when set.
	Cache HealthChecker
}
