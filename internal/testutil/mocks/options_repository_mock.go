package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sqlflash/internal/models"
)

// MockOptionsRepository is a mock implementation of repository.OptionsRepository
type MockOptionsRepository struct {
	mock.Mock
}

func (m *MockOptionsRepository) Get(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerOption), args.Error(1)
}

func (m *MockOptionsRepository) Put(ctx context.Context, userID, cardID string, options []models.AnswerOption) error {
	args := m.Called(ctx, userID, cardID, options)
	return args.Error(0)
}

// MockOptionsCache is a mock implementation of flashcard.OptionsCache
type MockOptionsCache struct {
	mock.Mock
}

func (m *MockOptionsCache) GetOptions(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerOption), args.Error(1)
}

func (m *MockOptionsCache) PutOptions(ctx context.Context, userID, cardID string, opts []models.AnswerOption) error {
	args := m.Called(ctx, userID, cardID, opts)
	return args.Error(0)
}
