package worker

import (
	"context"
	"fmt"

	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

// GradeResponseJob grades one deferred response and stores the grade. On
// failure the stored score is left untouched.
type GradeResponseJob struct {
	Grader   DeferredGrader
	Store    GradeStore
	Response models.AssessmentResponse
}

func (j *GradeResponseJob) Name() string { return "grade_response" }

func (j *GradeResponseJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"response_id": j.Response.ID,
		"question_id": j.Response.QuestionID,
	})

	g, err := j.Grader.GradeDeferred(ctx, j.Response)
	if err != nil {
		return fmt.Errorf("grade response %s: %w", j.Response.ID, err)
	}

	applied, err := j.Store.ApplyDeferredGrade(ctx, j.Response.ID, g)
	if err != nil {
		return fmt.Errorf("store grade for %s: %w", j.Response.ID, err)
	}
	if applied {
		log.Debug("deferred grade stored: score=%d", g.Score)
	}
	return nil
}

// GenerateCardsJob generates cards in the background.
type GenerateCardsJob struct {
	Generator CardGenerator
	Level     models.Level
	Count     int
}

func (j *GenerateCardsJob) Name() string { return "generate_cards" }

func (j *GenerateCardsJob) Run(ctx context.Context) error {
	cards, err := j.Generator.GenerateCards(ctx, j.Level, j.Count)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("generated %d %s cards", len(cards), j.Level)
	return nil
}
