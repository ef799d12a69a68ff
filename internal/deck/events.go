package deck

import "github.com/vytor/sqlflash/internal/models"

// Event is a deck transition. The set of implementations is closed; Reduce
// handles each one explicitly.
type Event interface {
	event()
}

// SetCards replaces the deck after a (re)load.
type SetCards struct{ Cards []models.Card }

// AddCards appends a loaded batch.
type AddCards struct{ Cards []models.Card }

// FlipCard toggles the answer side.
type FlipCard struct{}

// NextCard advances one card, clamped at the end.
type NextCard struct{}

// PreviousCard goes back one card, clamped at the start.
type PreviousCard struct{}

// SetOptions installs the answer options for the current card.
type SetOptions struct{ Options []models.AnswerOption }

// SelectOption records the chosen option.
type SelectOption struct{ Index int }

// ResetSelection clears a wrong pick so the learner can try again.
type ResetSelection struct{}

// IncrementStats counts one judged answer.
type IncrementStats struct{ Correct bool }

// ResetStats zeroes the session counters.
type ResetStats struct{}

// SetLoading sets one loading flag.
type SetLoading struct {
	Kind  LoadingKind
	Value bool
}

// ResetCardState clears flip, options and selection.
type ResetCardState struct{}

// ResetAll returns to the initial state for a new level.
type ResetAll struct{}

func (SetCards) event()       {}
func (AddCards) event()       {}
func (FlipCard) event()       {}
func (NextCard) event()       {}
func (PreviousCard) event()   {}
func (SetOptions) event()     {}
func (SelectOption) event()   {}
func (ResetSelection) event() {}
func (IncrementStats) event() {}
func (ResetStats) event()     {}
func (SetLoading) event()     {}
func (ResetCardState) event() {}
func (ResetAll) event()       {}
