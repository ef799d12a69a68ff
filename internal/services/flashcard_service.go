package services

import (
	"context"

	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/study"
)

// OptionsProvider resolves answer options for a card
type OptionsProvider interface {
	GetOrGenerateOptions(ctx context.Context, userID string, card models.Card) ([]models.AnswerOption, error)
}

// CardGenerator creates and stores cards for a level
type CardGenerator interface {
	GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error)
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	ListCards(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error)
	CountCards(ctx context.Context, level models.Level) (int, error)
	CardIDs(ctx context.Context, level models.Level) ([]string, error)
	GetCard(ctx context.Context, id string) (*models.Card, error)
	// GetOptions returns the card's options, or placeholder options with
	// fallback set when they could not be resolved.
	GetOptions(ctx context.Context, userID, cardID string) (opts []models.AnswerOption, fallback bool, err error)
	RecordAttempt(ctx context.Context, userID, cardID string, correct bool) (*models.Progress, error)
	GetProgress(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error)
	GetCardProgress(ctx context.Context, userID, cardID string) (*models.Progress, error)
	// Completion evaluates gating for the first loaded cards of level.
	Completion(ctx context.Context, userID string, level models.Level, loaded int) (study.Completion, error)
	GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error)
	GetStats(ctx context.Context, userID string) (*models.UserStats, error)
}

type flashcardService struct {
	cards     repository.CardRepository
	progress  repository.ProgressRepository
	stats     repository.StatsRepository
	options   OptionsProvider
	generator CardGenerator
}

// NewFlashcardService creates a new FlashcardService. generator may be nil
// when no LLM is configured.
func NewFlashcardService(
	cards repository.CardRepository,
	progress repository.ProgressRepository,
	stats repository.StatsRepository,
	options OptionsProvider,
	generator CardGenerator,
) FlashcardService {
	return &flashcardService{
		cards:     cards,
		progress:  progress,
		stats:     stats,
		options:   options,
		generator: generator,
	}
}

func parseLevel(level models.Level) error {
	if !level.Valid() {
		return errors.NewValidationError("level", "must be one of basic, intermediate, advanced, expert")
	}
	return nil
}

func (s *flashcardService) ListCards(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: level=%s, offset=%d, limit=%d", level, offset, limit)

	if err := parseLevel(level); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, errors.NewValidationError("offset", "must not be negative")
	}

	cards, err := s.cards.List(ctx, level, offset, limit)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *flashcardService) CountCards(ctx context.Context, level models.Level) (int, error) {
	if err := parseLevel(level); err != nil {
		return 0, err
	}
	n, err := s.cards.Count(ctx, level)
	if err != nil {
		logger.FromContext(ctx).Error("failed to count cards: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *flashcardService) CardIDs(ctx context.Context, level models.Level) ([]string, error) {
	if err := parseLevel(level); err != nil {
		return nil, err
	}
	ids, err := s.cards.IDsByLevel(ctx, level)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list card ids: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return ids, nil
}

func (s *flashcardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

func (s *flashcardService) GetOptions(ctx context.Context, userID, cardID string) ([]models.AnswerOption, bool, error) {
	log := logger.FromContext(ctx)

	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, false, err
	}

	opts, err := s.options.GetOrGenerateOptions(ctx, userID, *card)
	if err == nil && deck.ValidOptions(opts) {
		return opts, false, nil
	}
	if err != nil {
		log.Warn("options unavailable for card %s, using fallback: %v", cardID, err)
	} else {
		log.Warn("malformed options for card %s, using fallback", cardID)
	}
	return deck.FallbackOptions(card.Answer, deck.DefaultSource), true, nil
}

func (s *flashcardService) RecordAttempt(ctx context.Context, userID, cardID string, correct bool) (*models.Progress, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording attempt: user=%s, card=%s, correct=%t", userID, cardID, correct)

	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	p, err := s.progress.RecordAttempt(ctx, userID, *card, correct)
	if err != nil {
		log.Error("failed to record attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.stats.RecordReview(ctx, userID, correct); err != nil {
		log.Warn("failed to update user statistics: %v", err)
	}
	return p, nil
}

func (s *flashcardService) GetProgress(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error) {
	progress, err := s.progress.GetForCards(ctx, userID, cardIDs)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return progress, nil
}

func (s *flashcardService) GetCardProgress(ctx context.Context, userID, cardID string) (*models.Progress, error) {
	p, err := s.progress.Get(ctx, userID, cardID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("progress", cardID)
	}
	return p, nil
}

func (s *flashcardService) Completion(ctx context.Context, userID string, level models.Level, loaded int) (study.Completion, error) {
	if loaded < 0 {
		return study.Completion{}, errors.NewValidationError("loaded", "must not be negative")
	}
	var cards []models.Card
	if loaded > 0 {
		var err error
		if cards, err = s.ListCards(ctx, level, 0, loaded); err != nil {
			return study.Completion{}, err
		}
	}
	levelIDs, err := s.CardIDs(ctx, level)
	if err != nil {
		return study.Completion{}, err
	}
	progress, err := s.GetProgress(ctx, userID, levelIDs)
	if err != nil {
		return study.Completion{}, err
	}
	return study.Evaluate(cards, progress, levelIDs, s.generator != nil), nil
}

func (s *flashcardService) GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error) {
	if s.generator == nil {
		return nil, errors.NewConfigurationError("card generation requires an LLM provider", nil)
	}
	cards, err := s.generator.GenerateCards(ctx, level, count)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *flashcardService) GetStats(ctx context.Context, userID string) (*models.UserStats, error) {
	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if st == nil {
		return &models.UserStats{UserID: userID}, nil
	}
	return st, nil
}
