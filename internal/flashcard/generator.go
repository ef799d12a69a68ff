package flashcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/llm"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
)

const (
	DefaultGenerateCount = 5
	MaxGenerateCount     = 20
)

// ErrMissingFields is returned when generated cards lack required fields or
// the reply is not the expected JSON.
var ErrMissingFields = errors.New("generated flashcards are missing required fields")

var flashcardsSchema = &llm.Schema{
	Name:        "flashcards",
	Description: "A batch of SQL flashcards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic":       map[string]any{"type": "string"},
						"question":    map[string]any{"type": "string"},
						"answer":      map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
						"example":     map[string]any{"type": "string"},
					},
					"required": []string{"topic", "question", "answer"},
				},
			},
		},
		"required": []string{"flashcards"},
	},
}

type generatedCard struct {
	Topic       string `json:"topic"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Example     string `json:"example"`
}

// Generator creates new cards for a level with the LLM and stores them.
type Generator struct {
	cards    repository.CardRepository
	provider llm.Provider
	now      func() time.Time
	newID    func() string
}

func NewGenerator(cards repository.CardRepository, provider llm.Provider) *Generator {
	return &Generator{cards: cards, provider: provider, now: time.Now, newID: uuid.NewString}
}

// GenerateCards creates count cards for level (default 5, at most 20),
// persists them and returns them.
func (g *Generator) GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")

	if !level.Valid() {
		return nil, apperrors.NewValidationError("level", "Invalid level. Must be one of: basic, intermediate, advanced, expert")
	}
	count = clampCount(count)

	log.Info("generating %d %s flashcards", count, level)
	resp, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGenerate), llm.Request{
		System:      "You write concise flashcards that teach SQL. Reply with JSON only.",
		Messages:    llm.UserMessage(generatePrompt(level, count)),
		Schema:      flashcardsSchema,
		MaxTokens:   4000,
		Temperature: 0.8,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, apperrors.NewConfigurationError("Card generation needs an LLM provider. Set LLM_PROVIDER and its API key.", err)
		}
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, apperrors.NewUpstreamError("Generated flashcards were malformed", fmt.Errorf("%w: %v", ErrMissingFields, err))
		}
		return nil, apperrors.NewUpstreamError("Card generation failed", err)
	}

	cards, err := g.parse(resp.Content, level)
	if err != nil {
		log.Warn("discarding malformed generation: %v", err)
		return nil, apperrors.NewUpstreamError("Generated flashcards were malformed", err)
	}

	stored, err := g.cards.InsertBatch(ctx, cards)
	if err != nil {
		log.Error("failed to store generated cards: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if stored != len(cards) {
		log.Error("stored %d of %d generated cards", stored, len(cards))
		return nil, apperrors.NewInternalError(fmt.Errorf("stored %d of %d generated cards", stored, len(cards)))
	}

	log.Info("stored %d generated %s flashcards", len(cards), level)
	return cards, nil
}

func (g *Generator) parse(raw json.RawMessage, level models.Level) ([]models.Card, error) {
	var out struct {
		Flashcards []generatedCard `json:"flashcards"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	if len(out.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in reply", ErrMissingFields)
	}

	now := g.now().UTC()
	batch := strings.ReplaceAll(g.newID(), "-", "")[:12]
	cards := make([]models.Card, 0, len(out.Flashcards))
	for i, fc := range out.Flashcards {
		if strings.TrimSpace(fc.Topic) == "" || strings.TrimSpace(fc.Question) == "" || strings.TrimSpace(fc.Answer) == "" {
			return nil, fmt.Errorf("%w: flashcard %d", ErrMissingFields, i)
		}
		cards = append(cards, models.Card{
			ID:            fmt.Sprintf("%s_ai_%d_%d_%s", level, now.UnixMilli(), i, batch),
			Level:         level,
			Topic:         strings.TrimSpace(fc.Topic),
			Question:      strings.TrimSpace(fc.Question),
			Answer:        strings.TrimSpace(fc.Answer),
			Explanation:   strings.TrimSpace(fc.Explanation),
			Example:       strings.TrimSpace(fc.Example),
			IsAIGenerated: true,
			CreatedAt:     now,
		})
	}
	return cards, nil
}

func clampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultGenerateCount
	case n > MaxGenerateCount:
		return MaxGenerateCount
	default:
		return n
	}
}

func generatePrompt(level models.Level, count int) string {
	return fmt.Sprintf(`Create %d SQL flashcards for the %s level (%s).

Each flashcard needs a short topic, a question, and a concise answer. Add an explanation and a SQL example where they help.

Return {"flashcards": [{"topic": "...", "question": "...", "answer": "...", "explanation": "...", "example": "..."}]}.`,
		count, level, models.LevelDescriptions[level])
}
