package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/services"
	"github.com/vytor/sqlflash/internal/testutil"
	"github.com/vytor/sqlflash/internal/testutil/mocks"
)

type stubOptions struct {
	opts []models.AnswerOption
	err  error
}

func (s stubOptions) GetOrGenerateOptions(context.Context, string, models.Card) ([]models.AnswerOption, error) {
	return s.opts, s.err
}

type stubGenerator struct{ cards []models.Card }

func (g stubGenerator) GenerateCards(context.Context, models.Level, int) ([]models.Card, error) {
	return g.cards, nil
}

type flashcardFixture struct {
	cards    *mocks.MockCardRepository
	progress *mocks.MockProgressRepository
	stats    *mocks.MockStatsRepository
}

func newFlashcardFixture() flashcardFixture {
	return flashcardFixture{
		cards:    new(mocks.MockCardRepository),
		progress: new(mocks.MockProgressRepository),
		stats:    new(mocks.MockStatsRepository),
	}
}

func (f flashcardFixture) service(opts services.OptionsProvider, gen services.CardGenerator) services.FlashcardService {
	return services.NewFlashcardService(f.cards, f.progress, f.stats, opts, gen)
}

func TestFlashcardService_ListCardsRejectsBadLevel(t *testing.T) {
	f := newFlashcardFixture()
	svc := f.service(stubOptions{}, nil)

	_, err := svc.ListCards(context.Background(), models.Level("wizard"), 0, 5)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	f.cards.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlashcardService_GetCardNotFound(t *testing.T) {
	f := newFlashcardFixture()
	f.cards.On("Get", mock.Anything, "missing").Return(nil, nil)

	_, err := f.service(stubOptions{}, nil).GetCard(context.Background(), "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestFlashcardService_GetOptions(t *testing.T) {
	card := testutil.Cards(models.LevelBasic, "basic", 1)[0]
	good := []models.AnswerOption{
		{Text: card.Answer, Correct: true}, {Text: "x"}, {Text: "y"}, {Text: "z"},
	}

	tests := []struct {
		name         string
		provider     stubOptions
		wantFallback bool
	}{
		{"generated", stubOptions{opts: good}, false},
		{"provider error", stubOptions{err: errors.New("rate limited")}, true},
		{"malformed", stubOptions{opts: good[:2]}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlashcardFixture()
			f.cards.On("Get", mock.Anything, card.ID).Return(&card, nil)

			opts, fallback, err := f.service(tt.provider, nil).GetOptions(context.Background(), "u1", card.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFallback, fallback)
			require.Len(t, opts, 4)

			var correct []string
			for _, o := range opts {
				if o.Correct {
					correct = append(correct, o.Text)
				}
			}
			assert.Equal(t, []string{card.Answer}, correct)
		})
	}
}

func TestFlashcardService_RecordAttemptUpdatesStats(t *testing.T) {
	card := testutil.Cards(models.LevelBasic, "basic", 1)[0]
	f := newFlashcardFixture()
	f.cards.On("Get", mock.Anything, card.ID).Return(&card, nil)
	f.progress.On("RecordAttempt", mock.Anything, "u1", card, true).
		Return(&models.Progress{UserID: "u1", CardID: card.ID, TimesSeen: 1, TimesCorrect: 1}, nil)
	f.stats.On("RecordReview", mock.Anything, "u1", true).Return(errors.New("disk full"))

	p, err := f.service(stubOptions{}, nil).RecordAttempt(context.Background(), "u1", card.ID, true)
	require.NoError(t, err, "a stats failure does not fail the attempt")
	assert.Equal(t, 1, p.TimesCorrect)

	f.progress.AssertExpectations(t)
	f.stats.AssertExpectations(t)
}

func TestFlashcardService_Completion(t *testing.T) {
	cards := testutil.Cards(models.LevelBasic, "basic", 3)
	ids := []string{cards[0].ID, cards[1].ID, cards[2].ID}

	f := newFlashcardFixture()
	f.cards.On("List", mock.Anything, models.LevelBasic, 0, 2).Return(cards[:2], nil)
	f.cards.On("IDsByLevel", mock.Anything, models.LevelBasic).Return(ids, nil)
	f.progress.On("GetForCards", mock.Anything, "u1", ids).Return(map[string]models.Progress{
		cards[0].ID: {TimesCorrect: 1},
		cards[1].ID: {TimesCorrect: 2},
	}, nil)

	c, err := f.service(stubOptions{}, nil).Completion(context.Background(), "u1", models.LevelBasic, 2)
	require.NoError(t, err)
	assert.True(t, c.BatchComplete)
	assert.False(t, c.AllComplete)
	assert.True(t, c.CanLoadMore)
	assert.False(t, c.CanGenerateMore)
}

func TestFlashcardService_GenerateRequiresGenerator(t *testing.T) {
	f := newFlashcardFixture()

	_, err := f.service(stubOptions{}, nil).GenerateCards(context.Background(), models.LevelBasic, 5)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfiguration))

	want := testutil.Cards(models.LevelBasic, "basic_ai", 2)
	got, err := f.service(stubOptions{}, stubGenerator{cards: want}).GenerateCards(context.Background(), models.LevelBasic, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFlashcardService_GetStatsDefaultsToZero(t *testing.T) {
	f := newFlashcardFixture()
	f.stats.On("Get", mock.Anything, "new-user").Return(nil, nil)

	st, err := f.service(stubOptions{}, nil).GetStats(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, &models.UserStats{UserID: "new-user"}, st)
}
