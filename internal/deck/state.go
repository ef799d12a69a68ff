// Package deck holds the flashcard deck state and its transition function.
//
// Reduce never performs I/O. Card fetching, option generation and progress
// recording happen in the caller, and their results come back as events.
package deck

import "github.com/vytor/sqlflash/internal/models"

// LoadingKind names one of the independent loading flags.
type LoadingKind string

const (
	LoadingCards      LoadingKind = "cards"
	LoadingOptions    LoadingKind = "options"
	LoadingMore       LoadingKind = "more"
	LoadingGenerating LoadingKind = "generating"
)

// Loading holds one flag per asynchronous operation. Any combination is valid.
type Loading struct {
	Cards      bool `json:"cards"`
	Options    bool `json:"options"`
	More       bool `json:"more"`
	Generating bool `json:"generating"`
}

// SessionStats counts answers judged since the level was selected.
type SessionStats struct {
	Reviewed int `json:"reviewed"`
	Correct  int `json:"correct"`
}

// State is the complete deck state for one study session.
type State struct {
	Cards           []models.Card         `json:"cards"`
	ShuffledIndices []int                 `json:"shuffled_indices"`
	CurrentIndex    int                   `json:"current_index"`
	IsFlipped       bool                  `json:"is_flipped"`
	Options         []models.AnswerOption `json:"options"`
	SelectedOption  *int                  `json:"selected_option"`
	ShowOptions     bool                  `json:"show_options"`
	Stats           SessionStats          `json:"session_stats"`
	Loading         Loading               `json:"loading"`
}

// Initial returns the state of a freshly selected level, waiting for cards.
func Initial() State {
	return State{
		Cards:           []models.Card{},
		ShuffledIndices: []int{},
		Loading:         Loading{Cards: true},
	}
}

// CurrentCard returns cards[shuffledIndices[currentIndex]], or false when the
// deck is empty.
func (s State) CurrentCard() (models.Card, bool) {
	if len(s.Cards) == 0 || len(s.ShuffledIndices) == 0 {
		return models.Card{}, false
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.ShuffledIndices) {
		return models.Card{}, false
	}
	idx := s.ShuffledIndices[s.CurrentIndex]
	if idx < 0 || idx >= len(s.Cards) {
		return models.Card{}, false
	}
	return s.Cards[idx], true
}

// Selected returns the selected option index, if any.
func (s State) Selected() (int, bool) {
	if s.SelectedOption == nil {
		return 0, false
	}
	return *s.SelectedOption, true
}

// SelectedIsCorrect reports whether the current selection is the correct option.
func (s State) SelectedIsCorrect() bool {
	i, ok := s.Selected()
	return ok && i >= 0 && i < len(s.Options) && s.Options[i].Correct
}

// Clone returns a deep copy so snapshots can be handed to other goroutines.
func (s State) Clone() State {
	out := s
	out.Cards = append([]models.Card(nil), s.Cards...)
	out.ShuffledIndices = append([]int(nil), s.ShuffledIndices...)
	out.Options = append([]models.AnswerOption(nil), s.Options...)
	if s.SelectedOption != nil {
		v := *s.SelectedOption
		out.SelectedOption = &v
	}
	return out
}
