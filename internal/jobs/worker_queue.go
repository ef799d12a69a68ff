package jobs

import (
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	generationPool *worker.Pool
	generator      worker.CardGenerator
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(generationPool *worker.Pool, generator worker.CardGenerator) JobQueue {
	return &WorkerQueue{
		generationPool: generationPool,
		generator:      generator,
	}
}

func (q *WorkerQueue) EnqueueGeneration(level models.Level, count int) error {
	return q.generationPool.Submit(&worker.GenerateCardsJob{
		Generator: q.generator,
		Level:     level,
		Count:     count,
	})
}
