package flashcard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/llm"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

// OptionsCache is a fast tier in front of the options table.
type OptionsCache interface {
	GetOptions(ctx context.Context, userID, cardID string) ([]models.AnswerOption, error)
	PutOptions(ctx context.Context, userID, cardID string, opts []models.AnswerOption) error
}

var distractorSchema = &llm.Schema{
	Name:        "flashcard-distractors",
	Description: "Three plausible but incorrect answers for a SQL flashcard",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"wrong_answers": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 3,
				"maxItems": 3,
			},
		},
		"required":             []string{"wrong_answers"},
		"additionalProperties": false,
	},
}

type distractorOutput struct {
	WrongAnswers []string `json:"wrong_answers"`
}

// OptionsService resolves the four answer options for a card.
type OptionsService struct {
	repo     repository.OptionsRepository
	cache    OptionsCache
	provider llm.Provider
	src      deck.Source
}

// NewOptionsService wires the option tiers. cache may be nil.
func NewOptionsService(repo repository.OptionsRepository, cache OptionsCache, provider llm.Provider, src deck.Source) *OptionsService {
	if src == nil {
		src = deck.DefaultSource
	}
	return &OptionsService{repo: repo, cache: cache, provider: provider, src: src}
}

// GetOrGenerateOptions returns cached options for the card, generating and
// caching them on a miss. Errors are returned as-is so the caller can fall
// back to placeholder options.
func (s *OptionsService) GetOrGenerateOptions(ctx context.Context, userID string, card models.Card) ([]models.AnswerOption, error) {
	log := logger.FromContext(ctx).WithPrefix("options")

	if s.cache != nil {
		opts, err := s.cache.GetOptions(ctx, userID, card.ID)
		if err != nil {
			log.Warn("options cache read failed for card %s: %v", card.ID, err)
		} else if deck.ValidOptions(opts) {
			log.Debug("options cache hit: card=%s", card.ID)
			return opts, nil
		}
	}

	opts, err := s.repo.Get(ctx, userID, card.ID)
	if err != nil {
		log.Warn("options table read failed for card %s: %v", card.ID, err)
	} else if deck.ValidOptions(opts) {
		log.Debug("options table hit: card=%s", card.ID)
		s.putCache(ctx, userID, card.ID, opts)
		return opts, nil
	}

	opts, err = s.generate(ctx, card)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Put(ctx, userID, card.ID, opts); err != nil {
		log.Warn("failed to store options for card %s: %v", card.ID, err)
	}
	s.putCache(ctx, userID, card.ID, opts)
	return opts, nil
}

func (s *OptionsService) putCache(ctx context.Context, userID, cardID string, opts []models.AnswerOption) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutOptions(ctx, userID, cardID, opts); err != nil {
		logger.FromContext(ctx).WithPrefix("options").Warn("options cache write failed for card %s: %v", cardID, err)
	}
}

func (s *OptionsService) generate(ctx context.Context, card models.Card) ([]models.AnswerOption, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeOptions)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      "You write multiple choice options for SQL learning flashcards. Reply with JSON only.",
		Messages:    llm.UserMessage(distractorPrompt(card)),
		Schema:      distractorSchema,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate options for %s: %w", card.ID, err)
	}

	var out distractorOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if err := checkDistractors(card.Answer, out.WrongAnswers); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	opts := make([]models.AnswerOption, 0, deck.OptionCount)
	opts = append(opts, models.AnswerOption{Text: card.Answer, Correct: true})
	for _, w := range out.WrongAnswers {
		opts = append(opts, models.AnswerOption{Text: strings.TrimSpace(w)})
	}
	return deck.ShuffleOptions(opts, s.src), nil
}

func checkDistractors(answer string, wrong []string) error {
	if len(wrong) != deck.OptionCount-1 {
		return fmt.Errorf("expected %d wrong answers, got %d", deck.OptionCount-1, len(wrong))
	}
	seen := map[string]bool{normalize(answer): true}
	for _, w := range wrong {
		n := normalize(w)
		if n == "" {
			return fmt.Errorf("empty wrong answer")
		}
		if seen[n] {
			return fmt.Errorf("wrong answer %q duplicates another option", w)
		}
		seen[n] = true
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func distractorPrompt(c models.Card) string {
	return fmt.Sprintf(`Topic: %s
Difficulty level: %s
Question: %s
Correct answer: %s

Write exactly 3 plausible but incorrect answers. Use common misconceptions, keep them close to the correct answer in length and style, and make sure none of them is also correct.

Return {"wrong_answers": ["...", "...", "..."]}.`, c.Topic, c.Level, c.Question, c.Answer)
}
