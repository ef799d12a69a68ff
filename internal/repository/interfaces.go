package repository

import (
	"context"
	"errors"

	"github.com/vytor/sqlflash/internal/models"
)

// ErrNotFound is returned by updates that matched no row. Lookups return
// (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// CardRepository handles flashcard data access
type CardRepository interface {
	// List returns a page of cards for level ordered seed cards first, then
	// by creation time and id.
	List(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error)
	Count(ctx context.Context, level models.Level) (int, error)
	IDsByLevel(ctx context.Context, level models.Level) ([]string, error)
	Get(ctx context.Context, id string) (*models.Card, error)
	// InsertBatch inserts cards, skipping ids that already exist.
	InsertBatch(ctx context.Context, cards []models.Card) (int, error)
	Upsert(ctx context.Context, card models.Card) error
}

// ProgressRepository handles per-user card progress
type ProgressRepository interface {
	RecordAttempt(ctx context.Context, userID string, card models.Card, correct bool) (*models.Progress, error)
	Get(ctx context.Context, userID, cardID string) (*models.Progress, error)
	GetForCards(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error)
}

// OptionsRepository caches generated answer options per user and card
type OptionsRepository interface {
	Get(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error)
	Put(ctx context.Context, userID, cardID string, options []models.AnswerOption) error
}

// StatsRepository handles the per-user review aggregate
type StatsRepository interface {
	RecordReview(ctx context.Context, userID string, correct bool) error
	Get(ctx context.Context, userID string) (*models.UserStats, error)
}

// AssessmentRepository handles assessments, their questions and responses
type AssessmentRepository interface {
	Create(ctx context.Context, a models.Assessment) error
	Get(ctx context.Context, id string) (*models.Assessment, error)
	Complete(ctx context.Context, a models.Assessment) error

	ListQuestions(ctx context.Context) ([]models.AssessmentQuestion, error)
	GetQuestion(ctx context.Context, id string) (*models.AssessmentQuestion, error)
	UpsertQuestion(ctx context.Context, q models.AssessmentQuestion) error

	InsertResponse(ctx context.Context, r models.AssessmentResponse) error
	ListResponses(ctx context.Context, assessmentID string) ([]models.AssessmentResponse, error)
	// ApplyDeferredGrade stores g on a response that is still ungraded and
	// reports whether a row changed.
	ApplyDeferredGrade(ctx context.Context, responseID string, g models.Grade) (bool, error)

	UpsertSkillProfile(ctx context.Context, p models.SkillProfile) error
	GetSkillProfile(ctx context.Context, userID string) (*models.SkillProfile, error)
}

// LLMEventRepository stores LLM call events
type LLMEventRepository interface {
	Record(ctx context.Context, e models.LLMEvent) error
}
