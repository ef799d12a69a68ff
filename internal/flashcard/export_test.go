package flashcard

import "time"

// SetClock replaces the time source used to stamp generated cards.
func (g *Generator) SetClock(now func() time.Time) { g.now = now }
