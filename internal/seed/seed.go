// Package seed loads the built-in flashcards and assessment questions and
// imports cards from spreadsheets.
package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// seedEpoch orders seed cards by their position in the file.
var seedEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Bundle is a set of cards and questions to load.
type Bundle struct {
	Cards     []models.Card
	Questions []models.AssessmentQuestion
}

type document struct {
	Cards     []models.Card   `yaml:"cards"`
	Questions []questionEntry `yaml:"questions"`
}

type questionEntry struct {
	models.AssessmentQuestion `yaml:",inline"`
	Data                      map[string]any `yaml:"data"`
}

// Parse reads one YAML document with optional cards and questions lists.
func Parse(r io.Reader) (*Bundle, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	b := &Bundle{}
	for i, c := range doc.Cards {
		if err := validateCard(c); err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		c.CreatedAt = seedEpoch.Add(time.Duration(len(b.Cards)) * time.Second)
		b.Cards = append(b.Cards, c)
	}
	for i, q := range doc.Questions {
		question, err := q.toQuestion()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		b.Questions = append(b.Questions, question)
	}
	return b, nil
}

func (q questionEntry) toQuestion() (models.AssessmentQuestion, error) {
	out := q.AssessmentQuestion
	if out.ID == "" {
		return out, fmt.Errorf("missing id")
	}
	switch out.Type {
	case models.QuestionMultipleChoice, models.QuestionReadQuery, models.QuestionFindError,
		models.QuestionFillBlank, models.QuestionWriteQuery:
	default:
		return out, fmt.Errorf("%s: unknown question type %q", out.ID, out.Type)
	}
	if len(out.SpecificSkills) == 0 {
		return out, fmt.Errorf("%s: no skills", out.ID)
	}
	data, err := json.Marshal(q.Data)
	if err != nil {
		return out, fmt.Errorf("%s: encode data: %w", out.ID, err)
	}
	out.Data = data
	return out, nil
}

func validateCard(c models.Card) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("missing id")
	case !c.Level.Valid():
		return fmt.Errorf("%s: invalid level %q", c.ID, c.Level)
	case c.Question == "" || c.Answer == "":
		return fmt.Errorf("%s: question and answer are required", c.ID)
	}
	return nil
}

// Embedded returns the built-in cards and questions.
func Embedded() (*Bundle, error) {
	out := &Bundle{}
	entries, err := fs.Glob(dataFS, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, name := range entries {
		raw, err := dataFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		b, err := Parse(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Cards = append(out.Cards, b.Cards...)
		out.Questions = append(out.Questions, b.Questions...)
	}
	return out, nil
}

// LoadFile parses the YAML file at path.
func LoadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Result counts what Apply wrote.
type Result struct {
	Cards     int
	Questions int
}

// Apply upserts the bundle, so re-running a seed refreshes content without
// touching user progress.
func Apply(ctx context.Context, cards repository.CardRepository, assessments repository.AssessmentRepository, b *Bundle) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("seed")
	var res Result

	for _, c := range b.Cards {
		if err := cards.Upsert(ctx, c); err != nil {
			return res, fmt.Errorf("upsert card %s: %w", c.ID, err)
		}
		res.Cards++
	}
	if assessments != nil {
		for _, q := range b.Questions {
			if err := assessments.UpsertQuestion(ctx, q); err != nil {
				return res, fmt.Errorf("upsert question %s: %w", q.ID, err)
			}
			res.Questions++
		}
	}

	log.Info("seeded %d cards and %d questions", res.Cards, res.Questions)
	return res, nil
}
