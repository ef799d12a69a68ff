package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sqlflash/internal/models"
)

// MockAssessmentRepository is a mock implementation of repository.AssessmentRepository
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(ctx context.Context, a models.Assessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssessmentRepository) Get(ctx context.Context, id string) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) Complete(ctx context.Context, a models.Assessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssessmentRepository) ListQuestions(ctx context.Context) ([]models.AssessmentQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssessmentQuestion), args.Error(1)
}

func (m *MockAssessmentRepository) GetQuestion(ctx context.Context, id string) (*models.AssessmentQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssessmentQuestion), args.Error(1)
}

func (m *MockAssessmentRepository) UpsertQuestion(ctx context.Context, q models.AssessmentQuestion) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockAssessmentRepository) InsertResponse(ctx context.Context, r models.AssessmentResponse) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockAssessmentRepository) ListResponses(ctx context.Context, assessmentID string) ([]models.AssessmentResponse, error) {
	args := m.Called(ctx, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssessmentResponse), args.Error(1)
}

func (m *MockAssessmentRepository) ApplyDeferredGrade(ctx context.Context, responseID string, g models.Grade) (bool, error) {
	args := m.Called(ctx, responseID, g)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssessmentRepository) UpsertSkillProfile(ctx context.Context, p models.SkillProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetSkillProfile(ctx context.Context, userID string) (*models.SkillProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SkillProfile), args.Error(1)
}
