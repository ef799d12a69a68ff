package models

import (
	"fmt"
	"time"
)

// Level is a difficulty tier shared by flashcards and assessment skills.
type Level string

const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

// Levels lists every tier in ascending difficulty.
var Levels = []Level{LevelBasic, LevelIntermediate, LevelAdvanced, LevelExpert}

// LevelDescriptions describes the material each tier covers.
var LevelDescriptions = map[Level]string{
	LevelBasic:        "Basic SELECT, WHERE, and simple filtering",
	LevelIntermediate: "JOINs, GROUP BY, HAVING, and aggregate functions",
	LevelAdvanced:     "Window functions, subqueries, CTEs, and complex multi-table queries",
	LevelExpert:       "Recursive CTEs, advanced analytics, and performance optimization",
}

// Valid reports whether l is one of the known tiers.
func (l Level) Valid() bool {
	_, ok := LevelDescriptions[l]
	return ok
}

// ParseLevel converts s to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid level %q: must be one of basic, intermediate, advanced, expert", s)
	}
	return l, nil
}

// Card is an immutable flashcard.
type Card struct {
	ID            string    `json:"id" yaml:"id"`
	Level         Level     `json:"level" yaml:"level"`
	Topic         string    `json:"topic" yaml:"topic"`
	Question      string    `json:"question" yaml:"question"`
	Answer        string    `json:"answer" yaml:"answer"`
	Explanation   string    `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Example       string    `json:"example,omitempty" yaml:"example,omitempty"`
	IsAIGenerated bool      `json:"is_ai_generated" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
}

// AnswerOption is one multiple-choice answer for a card.
type AnswerOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Progress is the durable per-user, per-card attempt record.
type Progress struct {
	UserID       string    `json:"user_id"`
	CardID       string    `json:"card_id"`
	TimesSeen    int       `json:"times_seen"`
	TimesCorrect int       `json:"times_correct"`
	LastSeen     time.Time `json:"last_seen"`
	Topic        string    `json:"topic"`
	Level        Level     `json:"level"`
}

// UserStats aggregates review activity across all cards.
type UserStats struct {
	UserID                  string    `json:"user_id"`
	TotalFlashcardsReviewed int       `json:"total_flashcards_reviewed"`
	XP                      int       `json:"xp"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// XP awarded per flashcard attempt.
const (
	XPCorrectAnswer = 5
	XPWrongAnswer   = 2
)
