package deck

import (
	"fmt"
	"math/rand/v2"

	"github.com/vytor/sqlflash/internal/models"
)

// Source supplies the randomness used for shuffling. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the math/rand/v2 global generator.
var DefaultSource Source = globalSource{}

// Reducer applies events to a State. It holds only its random source.
type Reducer struct {
	src Source
}

// NewReducer returns a Reducer shuffling with src, or DefaultSource when nil.
func NewReducer(src Source) *Reducer {
	if src == nil {
		src = DefaultSource
	}
	return &Reducer{src: src}
}

// Reduce returns the state that follows s after e. The input state is not
// modified.
func (r *Reducer) Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case SetCards:
		cards := append([]models.Card(nil), ev.Cards...)
		s.Cards = cards
		s.ShuffledIndices = Permutation(len(cards), r.src)
		s.CurrentIndex = 0
		s = clearCardState(s)

	case AddCards:
		cards := make([]models.Card, 0, len(s.Cards)+len(ev.Cards))
		cards = append(cards, s.Cards...)
		cards = append(cards, ev.Cards...)
		s.Cards = cards
		// The whole deck is reshuffled and the learner starts over from the top.
		s.ShuffledIndices = Permutation(len(cards), r.src)
		s.CurrentIndex = 0
		s = clearCardState(s)

	case FlipCard:
		s.IsFlipped = !s.IsFlipped

	case NextCard:
		if s.CurrentIndex < len(s.ShuffledIndices)-1 {
			s.CurrentIndex++
		}
		s = clearCardState(s)

	case PreviousCard:
		if s.CurrentIndex > 0 {
			s.CurrentIndex--
		}
		s = clearCardState(s)

	case SetOptions:
		s.Options = append([]models.AnswerOption(nil), ev.Options...)
		s.ShowOptions = true

	case SelectOption:
		idx := ev.Index
		s.SelectedOption = &idx

	case ResetSelection:
		s.SelectedOption = nil

	case IncrementStats:
		s.Stats.Reviewed++
		if ev.Correct {
			s.Stats.Correct++
		}

	case ResetStats:
		s.Stats = SessionStats{}

	case SetLoading:
		switch ev.Kind {
		case LoadingCards:
			s.Loading.Cards = ev.Value
		case LoadingOptions:
			s.Loading.Options = ev.Value
		case LoadingMore:
			s.Loading.More = ev.Value
		case LoadingGenerating:
			s.Loading.Generating = ev.Value
		}

	case ResetCardState:
		s = clearCardState(s)

	case ResetAll:
		s = Initial()

	default:
		panic(fmt.Sprintf("deck: unhandled event %T", e))
	}
	return s
}

func clearCardState(s State) State {
	s.IsFlipped = false
	s.Options = nil
	s.SelectedOption = nil
	s.ShowOptions = false
	return s
}

// Permutation returns a Fisher-Yates shuffle of [0, n).
func Permutation(n int, src Source) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
