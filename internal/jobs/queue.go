package jobs

import "github.com/vytor/sqlflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueGeneration(level models.Level, count int) error
}
