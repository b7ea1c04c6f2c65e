package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
	"stress-quiz/internal/engine/enginetest"
	"stress-quiz/internal/infra/memory"
)

type harness struct {
	t     *testing.T
	clock *enginetest.FakeClock
	msgs  chan tea.Msg
	model Model
}

func newHarness(t *testing.T, profile engine.Settings, ds domain.Dataset) *harness {
	t.Helper()
	repo := memory.NewDatasetRepository(memory.NewStaticLoader(map[string]domain.Dataset{profile.DatasetName: ds}), time.Minute)
	service := app.NewService(memory.NewSessionStore(), repo,
		app.WithProfile(profile),
		app.WithRandSource(func() engine.Rand { return &enginetest.ScriptedRand{} }),
	)
	clock := enginetest.NewFakeClock()
	msgs := make(chan tea.Msg, 1024)
	session := service.Open("", profile.Mode, "", clock, NewPresenter(context.Background(), msgs))
	direct := func(fn func() error) error { return fn() }
	return &harness{
		t:     t,
		clock: clock,
		msgs:  msgs,
		model: New(context.Background(), session, direct, msgs, profile.Slots),
	}
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	m, cmd := h.model.Update(msg)
	h.model = m.(Model)
	return cmd
}

func (h *harness) load() {
	h.update(h.model.load()())
}

// act presses a key that triggers a session action and applies the result.
func (h *harness) act(key tea.KeyMsg) {
	h.t.Helper()
	cmd := h.update(key)
	require.NotNil(h.t, cmd, "expected %q to trigger an action", key.String())
	h.update(cmd())
	h.drain()
}

func (h *harness) typeText(text string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// drain applies every message the presenter has posted so far.
func (h *harness) drain() {
	for {
		select {
		case msg := <-h.msgs:
			h.update(msg)
		default:
			return
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func answerProfile() engine.Settings {
	p := engine.AnswerProfile()
	p.TotalRounds = 1
	p.Curveballs = 0
	return p
}

func judgeProfile() engine.Settings {
	p := engine.JudgeProfile()
	p.TotalRounds = 1
	p.Curveballs = 0
	return p
}

func htmlDataset() domain.Dataset {
	return domain.Dataset{Courses: map[string]domain.CoursePool{
		"HTML": {ByDifficulty: map[domain.Difficulty][]domain.RoundItem{
			domain.Easy: {{ID: "q1", Prompt: "What does <em> do?", Time: 10}},
		}},
	}}
}

func webDataset() domain.Dataset {
	return domain.Dataset{Courses: map[string]domain.CoursePool{
		"Web Development": {Flat: []domain.RoundItem{{ID: "j1", Prompt: "Explain CORS", SecondaryText: "It is a header"}}},
	}}
}

func TestStartKeysWaitForDataset(t *testing.T) {
	h := newHarness(t, answerProfile(), htmlDataset())

	assert.Contains(t, h.model.View(), "Questions are still loading…")
	assert.Nil(t, h.update(runes("e")))

	h.load()
	assert.True(t, h.model.status.CanStart)
	assert.Contains(t, h.model.View(), "Choose difficulty")
}

func TestAnswerRoundFlow(t *testing.T) {
	h := newHarness(t, answerProfile(), htmlDataset())
	h.load()

	h.act(runes("e"))
	require.Equal(t, screenRound, h.model.screen)
	assert.Equal(t, 1, h.model.round)
	assert.Equal(t, 1, h.model.total)
	assert.Contains(t, h.model.View(), "Pick a card")

	h.act(runes("2"))
	assert.True(t, h.model.revealed)
	assert.Equal(t, 1, h.model.slot)
	assert.Equal(t, "What does <em> do?", h.model.card.Prompt)
	assert.Equal(t, 10*time.Second, h.model.timer.Remaining)

	h.typeText("emphasis")
	h.act(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, screenSummary, h.model.screen)
	require.Len(t, h.model.summary.Lines, 1)
	assert.Equal(t, "emphasis", h.model.summary.Lines[0].Response)
	assert.Equal(t, []string{"Q1: emphasis"}, h.model.log)
	assert.Contains(t, h.model.View(), "Your answer: emphasis")
}

func TestAnswerRoundTimesOut(t *testing.T) {
	h := newHarness(t, answerProfile(), htmlDataset())
	h.load()
	h.act(runes("e"))
	h.act(runes("1"))

	h.clock.Advance(8 * time.Second)
	h.drain()
	assert.True(t, h.model.low)
	assert.Equal(t, screenRound, h.model.screen)

	h.clock.Advance(3 * time.Second)
	h.drain()
	require.Equal(t, screenSummary, h.model.screen)
	assert.True(t, h.model.summary.Lines[0].Auto)
	assert.Contains(t, h.model.summary.Text(), "[No Answer]")
}

func TestInvalidRevealIsIgnored(t *testing.T) {
	h := newHarness(t, answerProfile(), htmlDataset())
	h.load()
	h.act(runes("e"))

	assert.Nil(t, h.update(runes("7")))
	assert.False(t, h.model.revealed)
}

func TestJudgeAskWhyFlow(t *testing.T) {
	h := newHarness(t, judgeProfile(), webDataset())
	h.load()
	h.act(runes("n"))
	h.act(runes("1"))
	assert.Contains(t, h.model.View(), "It is a header")

	h.act(runes("r"))
	require.Equal(t, domain.Reject, h.model.asking)
	assert.Contains(t, h.model.View(), "Why Reject?")

	h.typeText("too vague")
	h.act(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, screenSummary, h.model.screen)
	line := h.model.summary.Lines[0]
	assert.Equal(t, "Reject", line.Response)
	assert.Equal(t, "too vague", line.Reason)
	assert.False(t, line.Auto)
	assert.Equal(t, []string{"Q1: Reject - too vague"}, h.model.log)
}

func TestJudgeDirectDecisionAndSkippedReason(t *testing.T) {
	h := newHarness(t, judgeProfile(), webDataset())
	h.load()
	h.act(runes("h"))
	h.act(runes("1"))
	h.act(runes("M"))

	require.Equal(t, screenSummary, h.model.screen)
	assert.Equal(t, "Maybe", h.model.summary.Lines[0].Response)

	// a finished session can be restarted from the summary screen
	h.act(runes("e"))
	require.Equal(t, screenRound, h.model.screen)
	assert.Empty(t, h.model.log)
	h.act(runes("1"))
	h.act(runes("a"))
	h.act(tea.KeyMsg{Type: tea.KeyEsc})

	require.Equal(t, screenSummary, h.model.screen)
	assert.Equal(t, "Accept", h.model.summary.Lines[0].Response)
	assert.Empty(t, h.model.summary.Lines[0].Reason)
	assert.Contains(t, h.model.summary.Text(), "Reason: (none)")
}

func TestJudgeMissingCourseDisablesStart(t *testing.T) {
	h := newHarness(t, judgeProfile(), domain.Dataset{Courses: map[string]domain.CoursePool{
		"Databases": {Flat: []domain.RoundItem{{ID: "d1", Prompt: "Indexes?"}}},
	}})
	h.load()

	assert.False(t, h.model.status.CanStart)
	assert.Nil(t, h.update(runes("e")))
	assert.True(t, strings.Contains(h.model.View(), `Course "Web Development" not found`))
}

func TestQuitFromStartScreen(t *testing.T) {
	h := newHarness(t, answerProfile(), htmlDataset())

	cmd := h.update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
