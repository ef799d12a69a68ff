package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/llm"
	"github.com/vytor/sqlflash/internal/models"
)

const minFixLength = 10

// Grade scores r against a question of type t. deferred is true for
// responses that need the free-text grader; their grade is a zero
// placeholder until GradeDeferred runs.
func Grade(t models.QuestionType, q models.QuestionData, r models.ResponseData) (g models.Grade, deferred bool, err error) {
	if r.Skipped {
		return models.Grade{Feedback: "Question skipped"}, false, nil
	}

	switch t {
	case models.QuestionMultipleChoice, models.QuestionReadQuery:
		correct := r.SelectedOption != nil && q.CorrectAnswer != nil && *r.SelectedOption == *q.CorrectAnswer
		g = models.Grade{IsCorrect: correct, Feedback: q.Explanation}
		if correct {
			g.Score = 100
		}
		return g, false, nil

	case models.QuestionFindError:
		return gradeFindError(q, r), false, nil

	case models.QuestionFillBlank:
		return gradeFillBlank(q.Blanks, r.Blanks), false, nil

	case models.QuestionWriteQuery:
		return models.Grade{}, true, nil

	default:
		return models.Grade{}, false, apperrors.NewValidationError("question_type", fmt.Sprintf("unknown question type %q", t))
	}
}

func gradeFindError(q models.QuestionData, r models.ResponseData) models.Grade {
	text := r.FixedQuery
	if text == "" {
		text = r.ErrorDescription
	}

	keyTerm := strings.Split(strings.ToLower(q.ErrorDescription), " ")[0]
	hasKeyTerms := strings.Contains(strings.ToLower(text), keyTerm)
	providedFix := len(strings.TrimSpace(text)) > minFixLength

	g := models.Grade{
		IsCorrect: hasKeyTerms && providedFix,
		Feedback:  fmt.Sprintf("%s. Correct fix: %s", q.ErrorDescription, q.FixedQuery),
	}
	switch {
	case g.IsCorrect:
		g.Score = 100
	case hasKeyTerms || providedFix:
		g.Score = 50
	}
	return g
}

func gradeFillBlank(blanks []models.Blank, answers []string) models.Grade {
	if answers == nil || len(blanks) == 0 {
		return models.Grade{Feedback: "No answer provided"}
	}

	correct := 0
	var misses []string
	for i, b := range blanks {
		var given string
		if i < len(answers) {
			given = strings.ToUpper(strings.TrimSpace(answers[i]))
		}
		if blankMatches(given, b) {
			correct++
			continue
		}
		misses = append(misses, fmt.Sprintf("Blank %d: Expected %q", i+1, strings.ToUpper(b.CorrectAnswer)))
	}

	score := int(math.Round(float64(correct) / float64(len(blanks)) * 100))
	g := models.Grade{IsCorrect: score == 100, Score: score}
	if len(misses) == 0 {
		g.Feedback = "All blanks correct!"
	} else {
		g.Feedback = strings.Join(misses, ", ")
	}
	return g
}

func blankMatches(given string, b models.Blank) bool {
	if given == strings.ToUpper(strings.TrimSpace(b.CorrectAnswer)) {
		return true
	}
	for _, a := range b.AcceptableAnswers {
		if given == strings.ToUpper(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}

var gradeSchema = &llm.Schema{
	Name:        "query-grade",
	Description: "Grade of a learner's SQL query",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{"type": "boolean"},
			"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"feedback":  map[string]any{"type": "string"},
		},
		"required":             []string{"isCorrect", "score", "feedback"},
		"additionalProperties": false,
	},
}

// LLMGrader grades write_query responses with a language model.
type LLMGrader struct {
	provider llm.Provider
}

func NewLLMGrader(provider llm.Provider) *LLMGrader {
	return &LLMGrader{provider: provider}
}

// GradeDeferred grades resp against the question snapshot stored with it.
func (g *LLMGrader) GradeDeferred(ctx context.Context, resp models.AssessmentResponse) (models.Grade, error) {
	var q models.QuestionData
	if len(resp.QuestionData) > 0 {
		if err := json.Unmarshal(resp.QuestionData, &q); err != nil {
			return models.Grade{}, fmt.Errorf("decode question data: %w", err)
		}
	}
	var r models.ResponseData
	if len(resp.ResponseData) > 0 {
		if err := json.Unmarshal(resp.ResponseData, &r); err != nil {
			return models.Grade{}, fmt.Errorf("decode response data: %w", err)
		}
	}

	out, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGrade), llm.Request{
		System:      "You grade SQL queries written by learners. Reply with JSON only.",
		Messages:    llm.UserMessage(gradePrompt(q, r.Query)),
		Schema:      gradeSchema,
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		return models.Grade{}, err
	}

	var grade models.Grade
	if err := json.Unmarshal(out.Content, &grade); err != nil {
		return models.Grade{}, &llm.ErrInvalidResponse{Content: out.Content, Err: err}
	}
	grade.Score = clampScore(grade.Score)
	return grade, nil
}

func gradePrompt(q models.QuestionData, query string) string {
	return fmt.Sprintf(`Check if this SQL query correctly answers the question.

Question: %s
Description: %s

Expected Solution:
%s

Student's Query:
%s

Decide whether it is correct, give a score from 0 to 100, and write short feedback.

Respond in JSON: {"isCorrect": boolean, "score": number, "feedback": string}`, q.Question, q.Description, q.SolutionQuery, query)
}
