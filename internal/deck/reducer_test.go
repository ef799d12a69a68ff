package deck_test

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/models"
)

func makeCards(prefix string, n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			ID:       fmt.Sprintf("%s_%d", prefix, i+1),
			Level:    models.LevelBasic,
			Topic:    "WHERE Clause",
			Question: fmt.Sprintf("question %d", i+1),
			Answer:   fmt.Sprintf("answer %d", i+1),
		}
	}
	return cards
}

func newReducer(seed uint64) *deck.Reducer {
	return deck.NewReducer(rand.New(rand.NewPCG(seed, seed+1)))
}

func assertPermutation(t *testing.T, n int, got []int) {
	t.Helper()
	require.Len(t, got, n)
	sorted := append([]int(nil), got...)
	sort.Ints(sorted)
	for i := range sorted {
		assert.Equal(t, i, sorted[i])
	}
}

func sampleOptions() []models.AnswerOption {
	return []models.AnswerOption{
		{Text: "A", Correct: false},
		{Text: "B", Correct: true},
		{Text: "C", Correct: false},
		{Text: "D", Correct: false},
	}
}

func TestInitialState(t *testing.T) {
	s := deck.Initial()
	assert.True(t, s.Loading.Cards)
	assert.False(t, s.Loading.Options)
	assert.Empty(t, s.Cards)
	_, ok := s.CurrentCard()
	assert.False(t, ok)
}

func TestShuffleCoverage(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 17, 64} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			r := newReducer(uint64(n))
			s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", n)})
			assertPermutation(t, n, s.ShuffledIndices)

			s = r.Reduce(s, deck.AddCards{Cards: makeCards("b", 3)})
			assertPermutation(t, n+3, s.ShuffledIndices)
			assert.Equal(t, 0, s.CurrentIndex)
		})
	}
}

func TestAddCards_AppendsAndReshuffles(t *testing.T) {
	r := newReducer(7)
	first := makeCards("a", 5)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: first})
	s = r.Reduce(s, deck.NextCard{})
	s = r.Reduce(s, deck.NextCard{})
	require.Equal(t, 2, s.CurrentIndex)

	s = r.Reduce(s, deck.AddCards{Cards: makeCards("b", 5)})

	require.Len(t, s.Cards, 10)
	assert.Equal(t, first, s.Cards[:5], "existing cards keep their order")
	assert.Equal(t, "b_1", s.Cards[5].ID)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestNavigationBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 43))
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 6)})

	for i := 0; i < 500; i++ {
		if rng.IntN(2) == 0 {
			s = r.Reduce(s, deck.NextCard{})
		} else {
			s = r.Reduce(s, deck.PreviousCard{})
		}
		require.GreaterOrEqual(t, s.CurrentIndex, 0)
		require.LessOrEqual(t, s.CurrentIndex, len(s.Cards)-1)
	}
}

func TestNavigationClamps(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 2)})

	s = r.Reduce(s, deck.PreviousCard{})
	assert.Equal(t, 0, s.CurrentIndex)

	s = r.Reduce(s, deck.NextCard{})
	s = r.Reduce(s, deck.NextCard{})
	assert.Equal(t, 1, s.CurrentIndex)

	empty := r.Reduce(deck.Initial(), deck.SetCards{})
	empty = r.Reduce(empty, deck.NextCard{})
	assert.Equal(t, 0, empty.CurrentIndex)
}

func TestResetOnNavigation(t *testing.T) {
	events := []deck.Event{
		deck.NextCard{},
		deck.PreviousCard{},
		deck.SetCards{Cards: makeCards("c", 4)},
		deck.AddCards{Cards: makeCards("d", 2)},
	}

	for _, ev := range events {
		t.Run(fmt.Sprintf("%T", ev), func(t *testing.T) {
			r := newReducer(3)
			s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 4)})
			s = r.Reduce(s, deck.NextCard{})
			s = r.Reduce(s, deck.FlipCard{})
			s = r.Reduce(s, deck.SetOptions{Options: sampleOptions()})
			s = r.Reduce(s, deck.SelectOption{Index: 2})
			require.True(t, s.IsFlipped)
			require.NotNil(t, s.SelectedOption)

			s = r.Reduce(s, ev)

			assert.False(t, s.IsFlipped)
			assert.Nil(t, s.SelectedOption)
			assert.False(t, s.ShowOptions)
			assert.Empty(t, s.Options)
		})
	}
}

func TestFlipToggles(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 1)})
	s = r.Reduce(s, deck.FlipCard{})
	assert.True(t, s.IsFlipped)
	s = r.Reduce(s, deck.FlipCard{})
	assert.False(t, s.IsFlipped)
}

func TestSelectionAndReset(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 1)})
	s = r.Reduce(s, deck.SetOptions{Options: sampleOptions()})
	assert.True(t, s.ShowOptions)

	s = r.Reduce(s, deck.SelectOption{Index: 0})
	idx, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, s.SelectedIsCorrect())

	s = r.Reduce(s, deck.ResetSelection{})
	assert.Nil(t, s.SelectedOption)
	assert.Len(t, s.Options, 4, "retry keeps the options")
}

func TestStatsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	r := newReducer(1)
	s := deck.Initial()

	prev := s.Stats
	for i := 0; i < 200; i++ {
		s = r.Reduce(s, deck.IncrementStats{Correct: rng.IntN(3) == 0})
		assert.GreaterOrEqual(t, s.Stats.Reviewed, prev.Reviewed)
		assert.GreaterOrEqual(t, s.Stats.Correct, prev.Correct)
		assert.LessOrEqual(t, s.Stats.Correct, s.Stats.Reviewed)
		prev = s.Stats
	}
	assert.Equal(t, 200, s.Stats.Reviewed)

	s = r.Reduce(s, deck.ResetStats{})
	assert.Equal(t, deck.SessionStats{}, s.Stats)
}

func TestLoadingFlagsIndependent(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetLoading{Kind: deck.LoadingCards, Value: false})
	s = r.Reduce(s, deck.SetLoading{Kind: deck.LoadingMore, Value: true})
	s = r.Reduce(s, deck.SetLoading{Kind: deck.LoadingOptions, Value: true})

	assert.Equal(t, deck.Loading{Options: true, More: true}, s.Loading)

	s = r.Reduce(s, deck.SetLoading{Kind: deck.LoadingGenerating, Value: true})
	s = r.Reduce(s, deck.SetLoading{Kind: deck.LoadingMore, Value: false})
	assert.Equal(t, deck.Loading{Options: true, Generating: true}, s.Loading)
}

func TestResetAll(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 3)})
	s = r.Reduce(s, deck.IncrementStats{Correct: true})
	s = r.Reduce(s, deck.SetLoading{Kind: deck.LoadingCards, Value: false})

	s = r.Reduce(s, deck.ResetAll{})

	assert.Empty(t, s.Cards)
	assert.Equal(t, deck.SessionStats{}, s.Stats)
	assert.True(t, s.Loading.Cards)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	r := newReducer(1)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: makeCards("a", 3)})
	before := s.Clone()

	_ = r.Reduce(s, deck.AddCards{Cards: makeCards("b", 2)})
	_ = r.Reduce(s, deck.NextCard{})

	assert.Equal(t, before, s)
}

func TestCurrentCard(t *testing.T) {
	r := newReducer(5)
	cards := makeCards("a", 4)
	s := r.Reduce(deck.Initial(), deck.SetCards{Cards: cards})

	for i := 0; i < len(cards); i++ {
		card, ok := s.CurrentCard()
		require.True(t, ok)
		assert.Equal(t, cards[s.ShuffledIndices[s.CurrentIndex]], card)
		s = r.Reduce(s, deck.NextCard{})
	}
}
