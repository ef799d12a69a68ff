package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sqlflash/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) List(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error) {
	args := m.Called(ctx, level, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Count(ctx context.Context, level models.Level) (int, error) {
	args := m.Called(ctx, level)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) IDsByLevel(ctx context.Context, level models.Level) ([]string, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, id string) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) InsertBatch(ctx context.Context, cards []models.Card) (int, error) {
	args := m.Called(ctx, cards)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) Upsert(ctx context.Context, card models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}
