// Package study runs a flashcard study session: it owns the deck state,
// resolves answer options for the current card, records attempts and
// re-evaluates completion gating.
package study

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

// Defaults applied by NewSession.
const (
	DefaultBatchSize     = 5
	DefaultGenerateCount = 5
	DefaultGatingDelay   = 100 * time.Millisecond
)

var (
	ErrInFlight    = errors.New("request already in flight")
	ErrNoGenerator = errors.New("card generation is not available")
	ErrNoLevel     = errors.New("no level selected")
	ErrClosed      = errors.New("session closed")
)

// CardProvider serves the cards of a level.
type CardProvider interface {
	ListCards(ctx context.Context, level models.Level, offset, limit int) ([]models.Card, error)
	CountCards(ctx context.Context, level models.Level) (int, error)
	CardIDs(ctx context.Context, level models.Level) ([]string, error)
}

// OptionsProvider returns the four answer options of a card.
type OptionsProvider interface {
	GetOrGenerateOptions(ctx context.Context, userID string, card models.Card) ([]models.AnswerOption, error)
}

// ProgressStore records attempts and reports per-card progress.
type ProgressStore interface {
	RecordAttempt(ctx context.Context, userID, cardID string, correct bool) (*models.Progress, error)
	GetProgress(ctx context.Context, userID string, cardIDs []string) (map[string]models.Progress, error)
}

// Generator creates and stores new cards for a level.
type Generator interface {
	GenerateCards(ctx context.Context, level models.Level, count int) ([]models.Card, error)
}

// Config holds the session settings.
type Config struct {
	UserID        string
	BatchSize     int
	GenerateCount int
	GatingDelay   time.Duration
	Source        deck.Source
}

// Snapshot is a copy of the session state sent to subscribers.
type Snapshot struct {
	Level      models.Level
	State      deck.State
	Completion Completion
	// Progress is the stored record for the current card, if any.
	Progress *models.Progress
	Err      error
}

// Session is the single owner of a learner's deck state. All methods are
// safe for concurrent use.
type Session struct {
	cards     CardProvider
	options   OptionsProvider
	progress  ProgressStore
	generator Generator
	cfg       Config
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	reducer    *deck.Reducer
	src        deck.Source
	state      deck.State
	level      models.Level
	epoch      uint64
	deckGen    uint64
	records    map[string]models.Progress
	completion Completion
	err        error
	closed     bool

	optToken  uint64
	optCancel context.CancelFunc

	subs    map[int]chan Snapshot
	nextSub int
}

// NewSession creates a session. generator may be nil, which disables
// GenerateMore. Background work stops when ctx is cancelled or Close is
// called.
func NewSession(ctx context.Context, cards CardProvider, options OptionsProvider, progress ProgressStore, generator Generator, cfg Config) *Session {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.GenerateCount <= 0 {
		cfg.GenerateCount = DefaultGenerateCount
	}
	if cfg.GatingDelay <= 0 {
		cfg.GatingDelay = DefaultGatingDelay
	}
	if cfg.Source == nil {
		cfg.Source = deck.DefaultSource
	}

	ctx, cancel := context.WithCancel(ctx)
	log := logger.FromContext(ctx).WithPrefix("study").WithField("user_id", cfg.UserID)
	ctx = logger.NewContext(ctx, log)

	return &Session{
		cards:     cards,
		options:   options,
		progress:  progress,
		generator: generator,
		cfg:       cfg,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		reducer:   deck.NewReducer(cfg.Source),
		src:       cfg.Source,
		state:     deck.Initial(),
		records:   map[string]models.Progress{},
		subs:      map[int]chan Snapshot{},
	}
}

// Subscribe returns a channel of snapshots. A slow subscriber only misses
// intermediate snapshots, never the latest one. cancel releases the
// subscription.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Completion returns the last evaluated gating state.
func (s *Session) Completion() Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completion
}

// Wait blocks until background work started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close stops background work and closes all subscriptions.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// SelectLevel starts a fresh session on level and loads its first batch.
// A failed load leaves an empty deck and reports the error.
func (s *Session) SelectLevel(ctx context.Context, level models.Level) error {
	if _, err := models.ParseLevel(string(level)); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.epoch++
	epoch := s.epoch
	s.level = level
	s.cancelOptionsLocked()
	s.records = map[string]models.Progress{}
	s.completion = Completion{}
	s.err = nil
	s.dispatchLocked(deck.ResetAll{})
	s.dispatchLocked(deck.ResetStats{})
	s.mu.Unlock()

	s.log.Info("loading %s cards", level)
	cards, err := s.cards.ListCards(ctx, level, 0, s.cfg.BatchSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return nil
	}
	if err != nil {
		s.log.Error("failed to load %s cards: %v", level, err)
		s.err = err
		cards = nil
	}
	s.deckGen++
	s.dispatchLocked(deck.SetCards{Cards: cards})
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingCards, Value: false})
	s.resolveOptionsLocked()
	s.refreshLater(epoch, 0)
	return err
}

// Flip toggles the answer side of the current card.
func (s *Session) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.CurrentCard(); !ok {
		return
	}
	s.dispatchLocked(deck.FlipCard{})
}

// Next moves to the next card. It does nothing on the last card.
func (s *Session) Next(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentIndex >= len(s.state.ShuffledIndices)-1 {
		return
	}
	s.moveLocked(deck.NextCard{})
}

// Previous moves to the previous card. It does nothing on the first card.
func (s *Session) Previous(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentIndex == 0 {
		return
	}
	s.moveLocked(deck.PreviousCard{})
}

func (s *Session) moveLocked(ev deck.Event) {
	before, _ := s.state.CurrentCard()
	s.dispatchLocked(ev)
	if after, ok := s.state.CurrentCard(); ok && after.ID != before.ID {
		s.dispatchLocked(deck.ResetCardState{})
		s.resolveOptionsLocked()
	}
}

// Select picks an answer option. The attempt is recorded in the background
// and gating is re-evaluated once the record settles.
func (s *Session) Select(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := deck.CheckSelect(s.state, index); err != nil {
		return err
	}
	card, _ := s.state.CurrentCard()
	correct := s.state.Options[index].Correct

	s.dispatchLocked(deck.SelectOption{Index: index})
	s.dispatchLocked(deck.IncrementStats{Correct: correct})

	epoch := s.epoch
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		p, err := s.progress.RecordAttempt(s.ctx, s.cfg.UserID, card.ID, correct)
		if err != nil {
			s.log.Warn("failed to record attempt for card %s: %v", card.ID, err)
		} else if p != nil {
			s.mu.Lock()
			if epoch == s.epoch {
				s.records[card.ID] = *p
				s.broadcastLocked()
			}
			s.mu.Unlock()
		}
		s.refreshAfter(epoch, s.cfg.GatingDelay)
	}()
	return nil
}

// Retry clears a wrong selection.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := deck.CheckRetry(s.state); err != nil {
		return err
	}
	s.dispatchLocked(deck.ResetSelection{})
	return nil
}

// LoadMore appends the next batch of cards.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.level == "" {
		s.mu.Unlock()
		return ErrNoLevel
	}
	if s.state.Loading.More {
		s.mu.Unlock()
		return ErrInFlight
	}
	epoch, gen, level, offset := s.epoch, s.deckGen, s.level, len(s.state.Cards)
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingMore, Value: true})
	s.mu.Unlock()

	cards, err := s.cards.ListCards(ctx, level, offset, s.cfg.BatchSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return nil
	}
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingMore, Value: false})
	if err != nil {
		s.log.Error("failed to load more %s cards: %v", level, err)
		s.err = err
		s.broadcastLocked()
		return err
	}
	// The deck was reloaded during the fetch, so offset no longer applies.
	if gen != s.deckGen {
		s.log.Debug("dropping %d %s cards loaded before a reload", len(cards), level)
		s.broadcastLocked()
		return nil
	}
	if len(cards) > 0 {
		s.log.Info("loaded %d more %s cards", len(cards), level)
		s.dispatchLocked(deck.AddCards{Cards: cards})
		s.resolveOptionsLocked()
	}
	s.refreshLater(epoch, 0)
	return nil
}

// GenerateMore asks the generator for count new cards, zero meaning the
// configured default, then reloads the whole level.
func (s *Session) GenerateMore(ctx context.Context, count int) error {
	if s.generator == nil {
		return ErrNoGenerator
	}
	if count <= 0 {
		count = s.cfg.GenerateCount
	}

	s.mu.Lock()
	if s.level == "" {
		s.mu.Unlock()
		return ErrNoLevel
	}
	if s.state.Loading.Generating {
		s.mu.Unlock()
		return ErrInFlight
	}
	epoch, level := s.epoch, s.level
	s.err = nil
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingGenerating, Value: true})
	s.mu.Unlock()

	cards, err := s.generateAndReload(ctx, level, count)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return err
	}
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingGenerating, Value: false})
	if err != nil {
		s.log.Error("failed to generate %s cards: %v", level, err)
		s.err = err
		s.broadcastLocked()
		return err
	}
	s.deckGen++
	s.dispatchLocked(deck.SetCards{Cards: cards})
	s.resolveOptionsLocked()
	s.refreshLater(epoch, 0)
	return nil
}

func (s *Session) generateAndReload(ctx context.Context, level models.Level, count int) ([]models.Card, error) {
	generated, err := s.generator.GenerateCards(ctx, level, count)
	if err != nil {
		return nil, err
	}
	s.log.Info("generated %d %s cards", len(generated), level)

	total, err := s.cards.CountCards(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	cards, err := s.cards.ListCards(ctx, level, 0, total)
	if err != nil {
		return nil, fmt.Errorf("reload cards: %w", err)
	}
	return cards, nil
}

// Refresh re-evaluates completion gating against the progress store.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	epoch, level := s.epoch, s.level
	cards := append([]models.Card(nil), s.state.Cards...)
	s.mu.Unlock()

	if level == "" {
		return ErrNoLevel
	}

	levelIDs, err := s.cards.CardIDs(ctx, level)
	if err != nil {
		return fmt.Errorf("list card ids: %w", err)
	}
	ids := make([]string, 0, len(levelIDs)+len(cards))
	ids = append(ids, levelIDs...)
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	progress, err := s.progress.GetProgress(ctx, s.cfg.UserID, ids)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}

	completion := Evaluate(cards, progress, levelIDs, s.generator != nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return nil
	}
	for id, p := range progress {
		s.records[id] = p
	}
	if completion != s.completion {
		s.log.Debug("gating: batch=%t all=%t loaded=%d total=%d",
			completion.BatchComplete, completion.AllComplete, completion.Loaded, completion.Total)
	}
	s.completion = completion
	s.broadcastLocked()
	return nil
}

func (s *Session) refreshLater(epoch uint64, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshAfter(epoch, delay)
	}()
}

func (s *Session) refreshAfter(epoch uint64, delay time.Duration) {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-s.ctx.Done():
			return
		}
	}

	s.mu.Lock()
	stale := epoch != s.epoch
	s.mu.Unlock()
	if stale {
		return
	}
	if err := s.Refresh(s.ctx); err != nil && s.ctx.Err() == nil {
		s.log.Warn("failed to evaluate completion: %v", err)
	}
}

// resolveOptionsLocked starts option resolution for the current card. A
// result arriving after the card changed is dropped.
func (s *Session) resolveOptionsLocked() {
	s.cancelOptionsLocked()

	card, ok := s.state.CurrentCard()
	if !ok {
		return
	}
	s.optToken++
	token := s.optToken
	ctx, cancel := context.WithCancel(s.ctx)
	s.optCancel = cancel
	s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingOptions, Value: true})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		opts, err := s.options.GetOrGenerateOptions(ctx, s.cfg.UserID, card)

		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.state.CurrentCard(); token != s.optToken || !ok || cur.ID != card.ID {
			s.log.Debug("dropping stale options for card %s", card.ID)
			return
		}
		if err != nil || !deck.ValidOptions(opts) {
			if err != nil {
				s.log.Warn("options unavailable for card %s, using fallback: %v", card.ID, err)
			} else {
				s.log.Warn("malformed options for card %s, using fallback", card.ID)
			}
			opts = deck.FallbackOptions(card.Answer, s.src)
		}
		s.optCancel = nil
		s.dispatchLocked(deck.SetOptions{Options: opts})
		s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingOptions, Value: false})
	}()
}

func (s *Session) cancelOptionsLocked() {
	if s.optCancel != nil {
		s.optCancel()
		s.optCancel = nil
	}
	if s.state.Loading.Options {
		s.dispatchLocked(deck.SetLoading{Kind: deck.LoadingOptions, Value: false})
	}
}

func (s *Session) dispatchLocked(ev deck.Event) {
	s.state = s.reducer.Reduce(s.state, ev)
	s.broadcastLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Level:      s.level,
		State:      s.state.Clone(),
		Completion: s.completion,
		Err:        s.err,
	}
	if card, ok := s.state.CurrentCard(); ok {
		if p, ok := s.records[card.ID]; ok {
			snap.Progress = &p
		}
	}
	return snap
}

func (s *Session) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
