package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	ctx := logger.NewContext(context.Background(), logger.New(logger.WithLevel(logger.ERROR)))
	d, err := db.Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	return d
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Cards builds n basic cards with ids <prefix>_1.._n created one second
// apart.
func Cards(level models.Level, prefix string, n int) []models.Card {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			ID:        fmt.Sprintf("%s_%d", prefix, i+1),
			Level:     level,
			Topic:     "SELECT Basics",
			Question:  fmt.Sprintf("Question %d?", i+1),
			Answer:    fmt.Sprintf("Answer %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	return cards
}
