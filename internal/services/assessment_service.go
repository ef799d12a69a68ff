package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/sqlflash/internal/assessment"
	"github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

// ResponseInput is one submitted answer.
type ResponseInput struct {
	QuestionID       string              `json:"questionId"`
	Response         models.ResponseData `json:"response"`
	TimeSpentSeconds int                 `json:"timeSpentSeconds"`
}

// AssessmentCompleter finishes an assessment.
type AssessmentCompleter interface {
	Complete(ctx context.Context, userID, assessmentID string, timeSpentSeconds int) (*models.AssessmentResult, error)
}

// AssessmentService handles the skill assessment flow
type AssessmentService interface {
	Start(ctx context.Context, userID string) (*models.Assessment, error)
	ListQuestions(ctx context.Context) ([]models.AssessmentQuestion, error)
	// SubmitResponse grades and stores one response. write_query responses
	// get a placeholder grade until the assessment completes.
	SubmitResponse(ctx context.Context, userID, assessmentID string, in ResponseInput) (*models.Grade, error)
	Complete(ctx context.Context, userID, assessmentID string, timeSpentSeconds int) (*models.AssessmentResult, error)
	GetSkillProfile(ctx context.Context, userID string) (*models.SkillProfile, error)
}

type assessmentService struct {
	repo      repository.AssessmentRepository
	completer AssessmentCompleter
	now       func() time.Time
	newID     func() string
}

// NewAssessmentService creates a new AssessmentService
func NewAssessmentService(repo repository.AssessmentRepository, completer AssessmentCompleter) AssessmentService {
	return &assessmentService{
		repo:      repo,
		completer: completer,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *assessmentService) Start(ctx context.Context, userID string) (*models.Assessment, error) {
	log := logger.FromContext(ctx)

	a := models.Assessment{
		ID:        s.newID(),
		UserID:    userID,
		Status:    models.AssessmentInProgress,
		StartedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		log.Error("failed to create assessment: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("assessment started: id=%s, user=%s", a.ID, userID)
	return &a, nil
}

func (s *assessmentService) ListQuestions(ctx context.Context) ([]models.AssessmentQuestion, error) {
	questions, err := s.repo.ListQuestions(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list questions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return questions, nil
}

func (s *assessmentService) SubmitResponse(ctx context.Context, userID, assessmentID string, in ResponseInput) (*models.Grade, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting response: assessment=%s, question=%s", assessmentID, in.QuestionID)

	if in.QuestionID == "" {
		return nil, errors.NewValidationError("questionId", "is required")
	}
	if in.TimeSpentSeconds < 0 {
		return nil, errors.NewValidationError("timeSpentSeconds", "must not be negative")
	}

	a, err := s.repo.Get(ctx, assessmentID)
	if err != nil {
		log.Error("failed to load assessment: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if a == nil || a.UserID != userID {
		return nil, errors.NewNotFoundError("assessment", assessmentID)
	}
	if a.Status != models.AssessmentInProgress {
		return nil, errors.NewConflictError("assessment is already completed")
	}

	q, err := s.repo.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		log.Error("failed to load question: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if q == nil {
		return nil, errors.NewNotFoundError("question", in.QuestionID)
	}

	var data models.QuestionData
	if err := json.Unmarshal(q.Data, &data); err != nil {
		log.Error("question %s has malformed data: %v", q.ID, err)
		return nil, errors.NewInternalError(err)
	}

	grade, deferred, err := assessment.Grade(q.Type, data, in.Response)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(in.Response)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	resp := models.AssessmentResponse{
		ID:               s.newID(),
		AssessmentID:     assessmentID,
		QuestionID:       q.ID,
		UserID:           userID,
		ResponseData:     raw,
		IsCorrect:        grade.IsCorrect,
		Score:            grade.Score,
		Feedback:         grade.Feedback,
		Graded:           !deferred,
		TimeSpentSeconds: in.TimeSpentSeconds,
		CreatedAt:        s.now().UTC(),
		QuestionType:     q.Type,
		QuestionData:     q.Data,
		SkillTags:        q.SpecificSkills,
		DifficultyWeight: q.DifficultyWeight,
	}
	if err := s.repo.InsertResponse(ctx, resp); err != nil {
		log.Error("failed to store response: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if deferred {
		log.Debug("response %s queued for grading at completion", resp.ID)
	}
	return &grade, nil
}

func (s *assessmentService) Complete(ctx context.Context, userID, assessmentID string, timeSpentSeconds int) (*models.AssessmentResult, error) {
	if timeSpentSeconds < 0 {
		return nil, errors.NewValidationError("timeSpentSeconds", "must not be negative")
	}
	return s.completer.Complete(ctx, userID, assessmentID, timeSpentSeconds)
}

func (s *assessmentService) GetSkillProfile(ctx context.Context, userID string) (*models.SkillProfile, error) {
	p, err := s.repo.GetSkillProfile(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get skill profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("skill profile", userID)
	}
	return p, nil
}
