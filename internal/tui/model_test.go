package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/study"
)

type staticCards []models.Card

func (c staticCards) ListCards(_ context.Context, _ models.Level, offset, limit int) ([]models.Card, error) {
	if offset >= len(c) {
		return nil, nil
	}
	return append([]models.Card(nil), c[offset:min(len(c), offset+limit)]...), nil
}

func (c staticCards) CountCards(context.Context, models.Level) (int, error) { return len(c), nil }

func (c staticCards) CardIDs(context.Context, models.Level) ([]string, error) {
	ids := make([]string, len(c))
	for i, card := range c {
		ids[i] = card.ID
	}
	return ids, nil
}

type noOptions struct{}

func (noOptions) GetOrGenerateOptions(context.Context, string, models.Card) ([]models.AnswerOption, error) {
	return nil, errors.New("provider not configured")
}

type memoryProgress struct{ seen map[string]models.Progress }

func (p *memoryProgress) RecordAttempt(_ context.Context, userID, cardID string, correct bool) (*models.Progress, error) {
	rec := p.seen[cardID]
	rec.UserID, rec.CardID = userID, cardID
	rec.TimesSeen++
	if correct {
		rec.TimesCorrect++
	}
	p.seen[cardID] = rec
	return &rec, nil
}

func (p *memoryProgress) GetProgress(_ context.Context, _ string, ids []string) (map[string]models.Progress, error) {
	out := map[string]models.Progress{}
	for _, id := range ids {
		if rec, ok := p.seen[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func newTestModel(t *testing.T, n int) (Model, *study.Session) {
	t.Helper()
	cards := make(staticCards, n)
	for i := range cards {
		cards[i] = models.Card{
			ID:       fmt.Sprintf("basic_%d", i+1),
			Level:    models.LevelBasic,
			Topic:    "WHERE Clause",
			Question: fmt.Sprintf("What does query %d return?", i+1),
			Answer:   fmt.Sprintf("rows %d", i+1),
		}
	}

	ctx := context.Background()
	session := study.NewSession(ctx, cards, noOptions{}, &memoryProgress{seen: map[string]models.Progress{}}, nil, study.Config{
		UserID:      "u1",
		GatingDelay: time.Millisecond,
	})
	t.Cleanup(session.Close)

	require.NoError(t, session.SelectLevel(ctx, models.LevelBasic))
	session.Wait()
	return New(ctx, session), session
}

func correctIndex(t *testing.T, s study.Snapshot) int {
	t.Helper()
	for i, o := range s.State.Options {
		if o.Correct {
			return i
		}
	}
	t.Fatal("no correct option")
	return -1
}

func TestModel_FlipAndNavigate(t *testing.T) {
	m, session := newTestModel(t, 3)

	next, _ := m.Update(tea.KeyPressMsg{Code: ' '})
	m = next.(Model)
	assert.True(t, session.Snapshot().State.IsFlipped)

	next, _ = m.Update(keyPress('l'))
	m = next.(Model)
	assert.Equal(t, 1, session.Snapshot().State.CurrentIndex)
	assert.False(t, session.Snapshot().State.IsFlipped)

	next, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	_ = next.(Model)
	assert.Equal(t, 0, session.Snapshot().State.CurrentIndex)
}

func TestModel_SelectRendersOutcome(t *testing.T) {
	m, session := newTestModel(t, 2)

	idx := correctIndex(t, session.Snapshot())
	next, _ := m.Update(keyPress(rune('1' + idx)))
	m = next.(Model)
	session.Wait()

	snap := session.Snapshot()
	assert.Equal(t, 1, snap.State.Stats.Correct)
	assert.Contains(t, m.render(), "✓")

	next, _ = m.Update(keyPress(rune('1' + (idx+1)%4)))
	m = next.(Model)
	assert.Contains(t, m.status, "already answered")
}

func TestModel_RetryWithoutSelection(t *testing.T) {
	m, _ := newTestModel(t, 1)

	next, _ := m.Update(keyPress('r'))
	assert.Equal(t, "nothing to retry", next.(Model).status)
}

func TestModel_SnapshotMessagesUpdateView(t *testing.T) {
	m, session := newTestModel(t, 1)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, snapshotMsg{}, msg)

	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd, "the model keeps listening")

	card, ok := session.Snapshot().State.CurrentCard()
	require.True(t, ok)
	assert.Contains(t, m.render(), card.Question)
}

func TestModel_GenerateWithoutGenerator(t *testing.T) {
	m, _ := newTestModel(t, 1)

	next, cmd := m.Update(keyPress('g'))
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	assert.Contains(t, next.(Model).status, "generate failed")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, 1)

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
