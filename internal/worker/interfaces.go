package worker

import (
	"context"

	"github.com/vytor/sqlflash/internal/models"
)

// DeferredGrader grades free-text responses. Declared here so the worker
// package does not import the assessment package.
type DeferredGrader interface {
	GradeDeferred(ctx context.Context, resp models.AssessmentResponse) (models.Grade, error)
}

// CardGenerator creates and stores new flashcards.
type CardGenerator interface {
	GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error)
}

// GradeStore persists a deferred grade.
type GradeStore interface {
	ApplyDeferredGrade(ctx context.Context, responseID string, g models.Grade) (bool, error)
}
