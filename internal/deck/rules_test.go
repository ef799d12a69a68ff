package deck_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/models"
)

func stateWithOptions(t *testing.T) (*deck.Reducer, deck.State) {
	t.Helper()
	r := newReducer(2)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 2)})
	s = r.Reduce(s, deck.SetOptions{Options: sampleOptions()})
	return r, s
}

func TestCheckSelect_LocksAfterCorrect(t *testing.T) {
	r, s := stateWithOptions(t)

	require.NoError(t, deck.CheckSelect(s, 1))
	s = r.Reduce(s, deck.SelectOption{Index: 1})

	err := deck.CheckSelect(s, 0)
	assert.ErrorIs(t, err, deck.ErrAnswerLocked)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel)
	assert.ErrorIs(t, deck.CheckRetry(s), deck.ErrNothingToRetry)
}

func TestCheckSelect_RetryAfterWrong(t *testing.T) {
	r, s := stateWithOptions(t)

	s = r.Reduce(s, deck.SelectOption{Index: 0})
	assert.ErrorIs(t, deck.CheckSelect(s, 0), deck.ErrAlreadySelected)
	assert.NoError(t, deck.CheckSelect(s, 2), "another option may be picked after a wrong one")

	require.NoError(t, deck.CheckRetry(s))
	s = r.Reduce(s, deck.ResetSelection{})
	assert.NoError(t, deck.CheckSelect(s, 0))
}

func TestCheckSelect_Preconditions(t *testing.T) {
	r := newReducer(1)

	assert.ErrorIs(t, deck.CheckSelect(deck.Initial(), 0), deck.ErrNoCard)

	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 1)})
	assert.ErrorIs(t, deck.CheckSelect(s, 0), deck.ErrNoOptions)

	s = r.Reduce(s, deck.SetOptions{Options: sampleOptions()})
	assert.ErrorIs(t, deck.CheckSelect(s, 4), deck.ErrOptionRange)
	assert.ErrorIs(t, deck.CheckSelect(s, -1), deck.ErrOptionRange)
	assert.ErrorIs(t, deck.CheckRetry(s), deck.ErrNothingToRetry)
}

func TestValidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []models.AnswerOption
		want bool
	}{
		{"well formed", sampleOptions(), true},
		{"too few", sampleOptions()[:3], false},
		{"too many", append(sampleOptions(), models.AnswerOption{Text: "E"}), false},
		{"no correct", []models.AnswerOption{{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"}}, false},
		{"two correct", []models.AnswerOption{{Text: "A", Correct: true}, {Text: "B", Correct: true}, {Text: "C"}, {Text: "D"}}, false},
		{"empty text", []models.AnswerOption{{Text: "", Correct: true}, {Text: "B"}, {Text: "C"}, {Text: "D"}}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deck.ValidOptions(tt.opts))
		})
	}
}

func TestFallbackOptions_WellFormed(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		opts := deck.FallbackOptions("SELECT DISTINCT", rand.New(rand.NewPCG(seed, 99)))

		require.True(t, deck.ValidOptions(opts))
		var texts []string
		for _, o := range opts {
			texts = append(texts, o.Text)
			if o.Correct {
				assert.Equal(t, "SELECT DISTINCT", o.Text)
			}
		}
		assert.ElementsMatch(t, []string{"SELECT DISTINCT", "Option A", "Option B", "Option C"}, texts)
	}
}
