package study_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vytor/sqlflash/internal/models"
)

// fakeCards serves cards in insertion order. When pageGate is set, fetches
// past the first page signal pageEntered and block until pageGate closes.
type fakeCards struct {
	mu          sync.Mutex
	cards       map[models.Level][]models.Card
	err         error
	pageGate    chan struct{}
	pageEntered chan struct{}
}

func newFakeCards(level models.Level, n int) *fakeCards {
	f := &fakeCards{cards: map[models.Level][]models.Card{}}
	f.add(level, "c", n)
	return f
}

func (f *fakeCards) add(level models.Level, prefix string, n int) []models.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := len(f.cards[level])
	var added []models.Card
	for i := 0; i < n; i++ {
		added = append(added, models.Card{
			ID:       fmt.Sprintf("%s_%d", prefix, start+i+1),
			Level:    level,
			Topic:    "WHERE Clause",
			Question: fmt.Sprintf("question %d", start+i+1),
			Answer:   fmt.Sprintf("answer %d", start+i+1),
		})
	}
	f.cards[level] = append(f.cards[level], added...)
	return added
}

func (f *fakeCards) ListCards(_ context.Context, level models.Level, offset, limit int) ([]models.Card, error) {
	if offset > 0 && f.pageGate != nil {
		f.pageEntered <- struct{}{}
		<-f.pageGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := f.cards[level]
	if offset >= len(all) {
		return nil, nil
	}
	end := min(len(all), offset+limit)
	return append([]models.Card(nil), all[offset:end]...), nil
}

func (f *fakeCards) CountCards(_ context.Context, level models.Level) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cards[level]), nil
}

func (f *fakeCards) CardIDs(_ context.Context, level models.Level) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, c := range f.cards[level] {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func optionsFor(c models.Card) []models.AnswerOption {
	return []models.AnswerOption{
		{Text: c.ID + " wrong 1"},
		{Text: c.Answer, Correct: true},
		{Text: c.ID + " wrong 2"},
		{Text: c.ID + " wrong 3"},
	}
}

// fakeOptions serves optionsFor(card). When gate is set the first request
// blocks until gate is closed, ignoring cancellation, to model a late reply.
type fakeOptions struct {
	mu    sync.Mutex
	calls []string
	gate  chan struct{}
	fail  map[string]bool
}

func (f *fakeOptions) GetOrGenerateOptions(_ context.Context, _ string, card models.Card) ([]models.AnswerOption, error) {
	f.mu.Lock()
	f.calls = append(f.calls, card.ID)
	first := len(f.calls) == 1
	gate := f.gate
	fail := f.fail[card.ID]
	f.mu.Unlock()

	if first && gate != nil {
		<-gate
	}
	if fail {
		return nil, errors.New("provider down")
	}
	return optionsFor(card), nil
}

func (f *fakeOptions) firstCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[0]
}

type fakeProgress struct {
	mu      sync.Mutex
	records map[string]models.Progress
	failRec bool
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{records: map[string]models.Progress{}}
}

func (f *fakeProgress) RecordAttempt(_ context.Context, userID, cardID string, correct bool) (*models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRec {
		return nil, errors.New("store unavailable")
	}
	p := f.records[cardID]
	p.UserID, p.CardID = userID, cardID
	p.TimesSeen++
	if correct {
		p.TimesCorrect++
	}
	f.records[cardID] = p
	return &p, nil
}

func (f *fakeProgress) GetProgress(_ context.Context, _ string, cardIDs []string) (map[string]models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.Progress{}
	for _, id := range cardIDs {
		if p, ok := f.records[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeGenerator struct {
	cards *fakeCards
	err   error
	calls int
}

func (g *fakeGenerator) GenerateCards(_ context.Context, level models.Level, count int) ([]models.Card, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.cards.add(level, "gen", count), nil
}
