// Package tui is a terminal client for a study session. It renders session
// snapshots and forwards key presses; all deck rules live in the session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/vytor/sqlflash/internal/deck"
	"github.com/vytor/sqlflash/internal/study"
)

const cardWidth = 72

type snapshotMsg struct{ snap study.Snapshot }

type closedMsg struct{}

type actionDoneMsg struct {
	action string
	err    error
}

// Model is the Bubble Tea model for one study session.
type Model struct {
	ctx     context.Context
	session *study.Session
	updates <-chan study.Snapshot
	cancel  func()

	snap   study.Snapshot
	status string
	width  int
	height int
}

// New subscribes to session. The session should already have a level
// selected.
func New(ctx context.Context, session *study.Session) Model {
	updates, cancel := session.Subscribe()
	return Model{
		ctx:     ctx,
		session: session,
		updates: updates,
		cancel:  cancel,
		snap:    session.Snapshot(),
	}
}

func waitForSnapshot(updates <-chan study.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.snap = msg.snap
		return m, waitForSnapshot(m.updates)

	case closedMsg:
		return m, tea.Quit

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = msg.action + " done"
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "space":
		m.session.Flip()
	case "left", "h":
		m.session.Previous(m.ctx)
	case "right", "l":
		m.session.Next(m.ctx)
	case "1", "2", "3", "4":
		index := int(key[0] - '1')
		if err := m.session.Select(m.ctx, index); err != nil {
			m.status = selectMessage(err)
		}
	case "r":
		if err := m.session.Retry(); err != nil {
			m.status = "nothing to retry"
		}
	case "m":
		m.status = "loading more cards..."
		return m, m.run("load more", m.session.LoadMore)
	case "g":
		m.status = "generating cards..."
		return m, m.run("generate", func(ctx context.Context) error {
			return m.session.GenerateMore(ctx, 0)
		})
	}

	m.snap = m.session.Snapshot()
	return m, nil
}

func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func selectMessage(err error) string {
	switch {
	case errors.Is(err, deck.ErrAnswerLocked):
		return "already answered, press → for the next card"
	case errors.Is(err, deck.ErrNoOptions):
		return "options are still loading"
	case errors.Is(err, deck.ErrAlreadySelected):
		return "already picked, press r to retry"
	default:
		return err.Error()
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m Model) render() string {
	var b strings.Builder
	s := m.snap.State

	b.WriteString(titleStyle.Render("SQLFlash · " + string(m.snap.Level)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("reviewed %d · correct %d", s.Stats.Reviewed, s.Stats.Correct)))
	b.WriteString("\n\n")

	switch {
	case s.Loading.Cards:
		b.WriteString(hintStyle.Render("loading cards..."))
	case len(s.Cards) == 0:
		b.WriteString(hintStyle.Render("no cards for this level, press g to generate some"))
	default:
		b.WriteString(m.renderCard())
	}
	b.WriteString("\n\n")

	if line := m.renderCompletion(); line != "" {
		b.WriteString(line + "\n")
	}
	if m.snap.Err != nil {
		b.WriteString(errorStyle.Render("error: "+m.snap.Err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString(dimStyle.Render(m.status) + "\n")
	}
	b.WriteString(hintStyle.Render("space flip · ←/→ move · 1-4 answer · r retry · m more · g generate · q quit"))
	return b.String()
}

func (m Model) renderCard() string {
	s := m.snap.State
	card, _ := s.CurrentCard()

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("card %d/%d · %s", s.CurrentIndex+1, len(s.Cards), card.Topic)))
	b.WriteString("\n\n")
	b.WriteString(questionStyle.Render(card.Question))

	if s.IsFlipped {
		b.WriteString("\n\n" + answerStyle.Render(card.Answer))
		if card.Explanation != "" {
			b.WriteString("\n" + dimStyle.Render(card.Explanation))
		}
		if card.Example != "" {
			b.WriteString("\n" + dimStyle.Render(card.Example))
		}
	}

	b.WriteString("\n\n")
	switch {
	case s.Loading.Options:
		b.WriteString(hintStyle.Render("loading options..."))
	case s.ShowOptions:
		b.WriteString(m.renderOptions())
	}

	if p := m.snap.Progress; p != nil {
		b.WriteString("\n\n" + dimStyle.Render(fmt.Sprintf("seen %d · correct %d", p.TimesSeen, p.TimesCorrect)))
	}
	return cardStyle.Width(cardWidth).Render(b.String())
}

func (m Model) renderOptions() string {
	s := m.snap.State
	selected, hasSelection := s.Selected()

	lines := make([]string, 0, len(s.Options))
	for i, o := range s.Options {
		line := fmt.Sprintf("%d) %s", i+1, o.Text)
		style := optionStyle
		if hasSelection && i == selected {
			if o.Correct {
				style = correctStyle
				line += "  ✓"
			} else {
				style = wrongStyle
				line += "  ✗"
			}
		}
		lines = append(lines, style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderCompletion() string {
	c := m.snap.Completion
	switch {
	case c.AllComplete && c.CanGenerateMore:
		return correctStyle.Render("level complete! press g to generate more cards")
	case c.AllComplete:
		return correctStyle.Render("level complete!")
	case c.CanLoadMore:
		return correctStyle.Render(fmt.Sprintf("batch complete (%d/%d), press m to load more", c.Loaded, c.Total))
	}
	return ""
}

// Run starts the terminal client and blocks until the learner quits.
func Run(ctx context.Context, session *study.Session) error {
	p := tea.NewProgram(New(ctx, session))
	_, err := p.Run()
	return err
}
