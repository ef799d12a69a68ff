package deck

import (
	"errors"

	"github.com/vytor/sqlflash/internal/models"
)

// OptionCount is the number of answer options shown per card.
const OptionCount = 4

var (
	ErrNoCard          = errors.New("no card is displayed")
	ErrNoOptions       = errors.New("answer options are not loaded")
	ErrOptionRange     = errors.New("option index out of range")
	ErrAnswerLocked    = errors.New("the correct answer is already selected")
	ErrAlreadySelected = errors.New("option is already selected")
	ErrNothingToRetry  = errors.New("no wrong selection to retry")
)

// CheckSelect reports whether index may be selected in s. Once the correct
// option is chosen the answer is final; after a wrong pick any other option
// may still be chosen.
func CheckSelect(s State, index int) error {
	if _, ok := s.CurrentCard(); !ok {
		return ErrNoCard
	}
	if !s.ShowOptions || len(s.Options) == 0 {
		return ErrNoOptions
	}
	if index < 0 || index >= len(s.Options) {
		return ErrOptionRange
	}
	if s.SelectedIsCorrect() {
		return ErrAnswerLocked
	}
	if cur, ok := s.Selected(); ok && cur == index {
		return ErrAlreadySelected
	}
	return nil
}

// CheckRetry reports whether the current selection may be cleared.
func CheckRetry(s State) error {
	if _, ok := s.Selected(); !ok || s.SelectedIsCorrect() {
		return ErrNothingToRetry
	}
	return nil
}

// ValidOptions reports whether opts has exactly OptionCount entries with
// exactly one correct, all with non-empty text.
func ValidOptions(opts []models.AnswerOption) bool {
	if len(opts) != OptionCount {
		return false
	}
	correct := 0
	for _, o := range opts {
		if o.Text == "" {
			return false
		}
		if o.Correct {
			correct++
		}
	}
	return correct == 1
}

var fallbackDistractors = [...]string{"Option A", "Option B", "Option C"}

// FallbackOptions builds a shuffled option set from the correct answer and
// three placeholder distractors.
func FallbackOptions(answer string, src Source) []models.AnswerOption {
	if src == nil {
		src = DefaultSource
	}
	opts := make([]models.AnswerOption, 0, OptionCount)
	opts = append(opts, models.AnswerOption{Text: answer, Correct: true})
	for _, d := range fallbackDistractors {
		opts = append(opts, models.AnswerOption{Text: d})
	}
	return ShuffleOptions(opts, src)
}

// ShuffleOptions returns a shuffled copy of opts.
func ShuffleOptions(opts []models.AnswerOption, src Source) []models.AnswerOption {
	out := make([]models.AnswerOption, len(opts))
	for i, p := range Permutation(len(opts), src) {
		out[i] = opts[p]
	}
	return out
}
