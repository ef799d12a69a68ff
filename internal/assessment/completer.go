package assessment

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/worker"
)

// ErrNoResponses is the message returned when completing an empty assessment.
const ErrNoResponses = "No responses found for this assessment"

// Completer finishes an assessment: it runs deferred grading, aggregates the
// scores and stores the result.
type Completer struct {
	repo   repository.AssessmentRepository
	grader worker.DeferredGrader
	pool   *worker.Pool
	now    func() time.Time
}

// NewCompleter wires a Completer. With a nil pool deferred responses are
// graded inline; with a nil grader they keep their placeholder score.
func NewCompleter(repo repository.AssessmentRepository, grader worker.DeferredGrader, pool *worker.Pool) *Completer {
	return &Completer{repo: repo, grader: grader, pool: pool, now: time.Now}
}

func (c *Completer) Complete(ctx context.Context, userID, assessmentID string, timeSpentSeconds int) (*models.AssessmentResult, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment").WithField("assessment_id", assessmentID)

	a, err := c.repo.Get(ctx, assessmentID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load assessment: %w", err))
	}
	if a == nil || a.UserID != userID {
		return nil, apperrors.NewNotFoundError("assessment", assessmentID)
	}
	if a.Status == models.AssessmentCompleted {
		return nil, apperrors.NewConflictError("assessment is already completed")
	}

	responses, err := c.repo.ListResponses(ctx, assessmentID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load responses: %w", err))
	}
	if len(responses) == 0 {
		return nil, apperrors.NewBadRequestError(ErrNoResponses)
	}

	if c.gradeDeferred(ctx, log, responses) {
		responses, err = c.repo.ListResponses(ctx, assessmentID)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("reload responses: %w", err))
		}
	}

	skills := ComputeSkillScores(responses)
	level := RecommendedLevel(skills)
	recs := GenerateRecommendations(skills)
	result := &models.AssessmentResult{
		OverallScore:     OverallScore(responses),
		SkillScores:      skills,
		Recommendations:  recs,
		RecommendedLevel: level,
		WeakSkills:       WeakSkills(skills),
		StrongSkills:     StrongSkills(skills),
	}

	completedAt := c.now().UTC()
	a.Status = models.AssessmentCompleted
	a.CompletedAt = &completedAt
	a.TimeSpentSeconds = timeSpentSeconds
	a.OverallScore = result.OverallScore
	a.SkillScores = skills
	a.RecommendedLevel = level
	a.Recommendations = &recs
	if err := c.repo.Complete(ctx, *a); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("complete assessment: %w", err))
	}

	profile := models.SkillProfile{
		UserID:           userID,
		SkillScores:      skills,
		WeakSkills:       result.WeakSkills,
		StrongSkills:     result.StrongSkills,
		RecommendedLevel: level,
		LastAssessmentID: assessmentID,
		LastAssessedAt:   completedAt,
	}
	if err := c.repo.UpsertSkillProfile(ctx, profile); err != nil {
		log.Warn("failed to update skill profile for user %s: %v", userID, err)
	}

	log.Info("assessment completed: overall=%d level=%s responses=%d", result.OverallScore, level, len(responses))
	return result, nil
}

// gradeDeferred grades the ungraded write_query responses and reports
// whether any were attempted. Failures keep the stored score.
func (c *Completer) gradeDeferred(ctx context.Context, log *logger.Logger, responses []models.AssessmentResponse) bool {
	var jobs []worker.Job
	for _, r := range responses {
		if r.Graded || !r.QuestionType.Deferred() {
			continue
		}
		jobs = append(jobs, &worker.GradeResponseJob{Grader: c.grader, Store: c.repo, Response: r})
	}
	if len(jobs) == 0 {
		return false
	}
	if c.grader == nil {
		log.Warn("no grader configured, %d responses keep their placeholder score", len(jobs))
		return false
	}

	log.Debug("grading %d deferred responses", len(jobs))
	var errs []error
	if c.pool != nil {
		errs = c.pool.RunBatch(ctx, jobs)
	} else {
		errs = make([]error, len(jobs))
		for i, j := range jobs {
			errs[i] = j.Run(ctx)
		}
	}

	for _, err := range errs {
		if err != nil {
			log.Warn("deferred grading failed: %v", err)
		}
	}
	return true
}
