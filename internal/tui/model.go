// Package tui is the terminal front end: a bubbletea model driving one
// app.Session through the session's event loop.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

const (
	barWidth   = 30
	logEntries = 5
)

// Caller runs fn on the session's goroutine and returns its error.
type Caller func(fn func() error) error

type screen int

const (
	screenStart screen = iota
	screenRound
	screenSummary
)

type statusMsg app.Status

type actionDoneMsg struct{ err error }

var difficultyKeys = map[string]domain.Difficulty{
	"e": domain.Easy,
	"n": domain.Normal,
	"h": domain.Hard,
}

var decisionKeys = map[string]domain.Decision{
	"a": domain.Accept,
	"r": domain.Reject,
	"m": domain.Maybe,
}

type Model struct {
	ctx     context.Context
	session *app.Session
	call    Caller
	msgs    <-chan tea.Msg
	slots   int

	screen   screen
	status   app.Status
	round    int
	total    int
	revealed bool
	slot     int
	card     domain.RoundItem
	timer    engine.TimerState
	low      bool
	stress   string
	timeUp   bool
	asking   domain.Decision
	input    textinput.Model
	log      []string
	summary  engine.Summary
	err      string
}

// New builds the model. msgs must be the channel the session's Presenter posts to.
func New(ctx context.Context, session *app.Session, call Caller, msgs <-chan tea.Msg, slots int) Model {
	in := textinput.New()
	in.Placeholder = "Type your answer..."
	in.CharLimit = 500
	in.Width = 60
	if slots <= 0 {
		slots = engine.DefaultSlots
	}
	return Model{
		ctx:     ctx,
		session: session,
		call:    call,
		msgs:    msgs,
		slots:   slots,
		status:  session.Status(),
		input:   in,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.load())
}

func (m Model) listen() tea.Cmd {
	msgs := m.msgs
	return func() tea.Msg { return <-msgs }
}

func (m Model) load() tea.Cmd {
	ctx, session, call := m.ctx, m.session, m.call
	return func() tea.Msg {
		ds, err := session.Fetch(ctx)
		var st app.Status
		if cerr := call(func() error {
			st = session.Loaded(ds, err)
			return nil
		}); cerr != nil {
			return actionDoneMsg{err: cerr}
		}
		return statusMsg(st)
	}
}

func (m Model) act(fn func() error) tea.Cmd {
	call := m.call
	return func() tea.Msg { return actionDoneMsg{err: call(fn)} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case statusMsg:
		m.status = app.Status(msg)
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil

	case roundMsg:
		m.screen = screenRound
		m.round, m.total = msg.number, msg.total
		m.revealed, m.slot = false, 0
		m.card = domain.RoundItem{}
		m.timer = engine.TimerState{}
		m.low, m.timeUp = false, false
		m.stress = ""
		m.asking = ""
		m.err = ""
		m.input.Reset()
		m.input.Blur()
	case cardMsg:
		m.revealed = true
		m.slot, m.card = msg.slot, msg.item
		if m.session.Mode() == domain.ModeAnswer {
			m.input.Placeholder = "Type your answer..."
			m.input.Focus()
		}
	case tickMsg:
		m.timer = engine.TimerState(msg)
	case lowTimeMsg:
		m.low = true
	case stressMsg:
		m.stress = string(msg)
	case stressClearMsg:
		m.stress = ""
	case timeUpMsg:
		m.timeUp = true
		m.input.Blur()
	case promptMsg:
		m.asking = domain.Decision(msg)
		m.input.Reset()
		m.input.Placeholder = "Why? (enter to submit, esc to skip)"
		m.input.Focus()
	case recordedMsg:
		m.log = append(m.log, engine.LogLine(m.session.Mode(), msg.index, msg.outcome))
		m.asking = ""
		m.input.Blur()
	case completeMsg:
		m.screen = screenSummary
		m.summary = engine.Summary(msg)
		m.input.Blur()
	default:
		return m, nil
	}
	return m, m.listen()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.screen == screenRound {
		return m.handleRoundKey(msg)
	}

	key := msg.String()
	if key == "q" || key == "esc" {
		return m, tea.Quit
	}
	difficulty, ok := difficultyKeys[key]
	if !ok || !m.status.CanStart {
		return m, nil
	}
	m.err = ""
	m.log = nil
	session := m.session
	return m, m.act(func() error { return session.Start(string(difficulty)) })
}

func (m Model) handleRoundKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.session

	if m.asking != "" {
		switch msg.Type {
		case tea.KeyEnter:
			text := m.input.Value()
			m.input.Reset()
			return m, m.act(func() error { return session.Reason(text) })
		case tea.KeyEsc:
			m.input.Reset()
			return m, m.act(func() error { return session.Reason("") })
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if !m.revealed {
		key := msg.String()
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= m.slots {
			slot := int(key[0] - '1')
			return m, m.act(func() error { return session.Reveal(slot) })
		}
		return m, nil
	}
	if m.timeUp {
		return m, nil
	}

	if session.Mode() == domain.ModeAnswer {
		if msg.Type == tea.KeyEnter {
			text := m.input.Value()
			m.input.Reset()
			return m, m.act(func() error { return session.Answer(text) })
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	key := msg.String()
	if d, ok := decisionKeys[key]; ok {
		return m, m.act(func() error { return session.Decide(string(d), true) })
	}
	if d, ok := decisionKeys[strings.ToLower(key)]; ok {
		return m, m.act(func() error { return session.Decide(string(d), false) })
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	switch m.screen {
	case screenStart:
		m.viewStart(&b)
	case screenRound:
		m.viewRound(&b)
	case screenSummary:
		m.viewSummary(&b)
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	return appStyle.Render(b.String())
}

func (m Model) viewStart(b *strings.Builder) {
	b.WriteString(titleStyle.Render(modeTitle(m.session.Mode())) + "\n")
	b.WriteString(mutedStyle.Render("Course: "+m.status.Course) + "\n\n")

	switch m.status.State {
	case app.LoadPending:
		b.WriteString(mutedStyle.Render("Questions are still loading…") + "\n")
	case app.LoadFailed:
		if m.status.Message != "" {
			b.WriteString(errorStyle.Render(m.status.Message) + "\n")
		} else {
			b.WriteString(errorStyle.Render("Questions failed to load.") + "\n")
		}
	}
	if m.status.State == app.LoadReady && m.status.Message != "" {
		b.WriteString(errorStyle.Render(m.status.Message) + "\n")
	}
	if m.status.CanStart {
		b.WriteString("Choose difficulty: [e]asy  [n]ormal  [h]ard\n")
	}
	b.WriteString(mutedStyle.Render("q to quit") + "\n")
}

func (m Model) viewRound(b *strings.Builder) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("Round %d/%d", m.round, m.total)) + "\n")
	b.WriteString(m.timerBar() + "\n")
	if m.stress != "" {
		b.WriteString(stressStyle.Render(m.stress) + "\n")
	}
	b.WriteString("\n")

	if !m.revealed {
		cards := make([]string, 0, m.slots)
		for i := 1; i <= m.slots; i++ {
			cards = append(cards, cardStyle.Width(8).Render(fmt.Sprintf("[%d]", i)))
		}
		b.WriteString("Pick a card:\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")
	} else {
		body := m.card.Prompt
		if m.session.Mode() == domain.ModeJudge {
			body += "\n\n" + mutedStyle.Render("Candidate: ") + m.card.SecondaryText
		}
		b.WriteString(activeCardStyle.Render(body) + "\n")

		switch {
		case m.asking != "":
			b.WriteString(fmt.Sprintf("Why %s?\n", m.asking))
			b.WriteString(m.input.View() + "\n")
		case m.timeUp:
			b.WriteString(errorStyle.Render("Time's up!") + "\n")
		case m.session.Mode() == domain.ModeAnswer:
			b.WriteString(m.input.View() + "\n")
			b.WriteString(mutedStyle.Render("enter to submit") + "\n")
		default:
			b.WriteString(mutedStyle.Render("a/r/m decide and explain · A/R/M decide") + "\n")
		}
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		start := max(0, len(m.log)-logEntries)
		for _, line := range m.log[start:] {
			b.WriteString(mutedStyle.Render(line) + "\n")
		}
	}
}

func (m Model) viewSummary(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Session complete") + "\n\n")
	b.WriteString(m.summary.Text())
	b.WriteString("\n" + mutedStyle.Render("Play again: [e]asy  [n]ormal  [h]ard · q to quit") + "\n")
}

func (m Model) timerBar() string {
	if !m.revealed {
		return mutedStyle.Render("Reveal a card to start the clock")
	}
	filled := int(math.Round(m.timer.Proportion() * barWidth))
	fill := barFill
	if m.low {
		fill = barLowFill
	}
	secs := int(math.Ceil(m.timer.Remaining.Seconds()))
	return fill.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %ds", secs)
}

func modeTitle(mode domain.Mode) string {
	if mode == domain.ModeJudge {
		return "Interview Practice: judge the candidate"
	}
	return "Stress Quiz: answer under pressure"
}
