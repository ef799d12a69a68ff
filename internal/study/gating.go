package study

import "github.com/vytor/sqlflash/internal/models"

// Completion reports which follow-up actions the learner is offered.
type Completion struct {
	BatchComplete   bool `json:"batchComplete"`
	AllComplete     bool `json:"allComplete"`
	CanLoadMore     bool `json:"canLoadMore"`
	CanGenerateMore bool `json:"canGenerateMore"`
	Loaded          int  `json:"loaded"`
	Total           int  `json:"total"`
}

func answered(progress map[string]models.Progress, id string) bool {
	p, ok := progress[id]
	return ok && p.TimesCorrect > 0
}

// BatchComplete reports whether every loaded card has been answered
// correctly at least once. An empty deck or missing progress is never
// complete.
func BatchComplete(cards []models.Card, progress map[string]models.Progress) bool {
	if len(cards) == 0 || len(progress) == 0 {
		return false
	}
	for _, c := range cards {
		if !answered(progress, c.ID) {
			return false
		}
	}
	return true
}

// AllComplete reports whether the batch is complete and so is every card
// the level has.
func AllComplete(cards []models.Card, progress map[string]models.Progress, levelIDs []string) bool {
	if !BatchComplete(cards, progress) {
		return false
	}
	for _, id := range levelIDs {
		if !answered(progress, id) {
			return false
		}
	}
	return true
}

// Evaluate computes the gating state for a loaded batch.
func Evaluate(cards []models.Card, progress map[string]models.Progress, levelIDs []string, canGenerate bool) Completion {
	c := Completion{
		BatchComplete: BatchComplete(cards, progress),
		Loaded:        len(cards),
		Total:         len(levelIDs),
	}
	c.AllComplete = c.BatchComplete && AllComplete(cards, progress, levelIDs)
	c.CanLoadMore = c.BatchComplete && !c.AllComplete && len(cards) < len(levelIDs)
	c.CanGenerateMore = c.AllComplete && canGenerate
	return c
}
