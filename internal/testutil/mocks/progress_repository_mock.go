package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sqlflash/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) RecordAttempt(ctx context.Context, userID string, card models.Card, correct bool) (*models.Progress, error) {
	args := m.Called(ctx, userID, card, correct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockProgressRepository) Get(ctx context.Context, userID, cardID string) (*models.Progress, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockProgressRepository) GetForCards(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error) {
	args := m.Called(ctx, userID, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.Progress), args.Error(1)
}

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) RecordReview(ctx context.Context, userID string, correct bool) error {
	args := m.Called(ctx, userID, correct)
	return args.Error(0)
}

func (m *MockStatsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}
