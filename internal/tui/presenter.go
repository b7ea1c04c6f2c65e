package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

type (
	roundMsg       struct{ number, total int }
	tickMsg        engine.TimerState
	lowTimeMsg     struct{}
	stressMsg      string
	stressClearMsg struct{}
	timeUpMsg      struct{}
	promptMsg      domain.Decision
	completeMsg    engine.Summary
)

type cardMsg struct {
	slot int
	item domain.RoundItem
}

type recordedMsg struct {
	index   int
	outcome domain.Outcome
}

// Presenter forwards engine output to the bubbletea program as messages.
// Ticks are dropped when the program falls behind.
type Presenter struct {
	ctx  context.Context
	msgs chan<- tea.Msg
}

func NewPresenter(ctx context.Context, msgs chan<- tea.Msg) *Presenter {
	return &Presenter{ctx: ctx, msgs: msgs}
}

func (p *Presenter) post(msg tea.Msg) {
	select {
	case p.msgs <- msg:
	case <-p.ctx.Done():
	}
}

func (p *Presenter) ShowRound(number, total int) { p.post(roundMsg{number: number, total: total}) }

func (p *Presenter) RevealCard(slot int, item domain.RoundItem) {
	p.post(cardMsg{slot: slot, item: item})
}

func (p *Presenter) ShowTime(state engine.TimerState) {
	select {
	case p.msgs <- tickMsg(state):
	default:
	}
}

func (p *Presenter) LowTime()                  { p.post(lowTimeMsg{}) }
func (p *Presenter) ShowStress(message string) { p.post(stressMsg(message)) }
func (p *Presenter) ClearStress()              { p.post(stressClearMsg{}) }
func (p *Presenter) TimeUp()                   { p.post(timeUpMsg{}) }

func (p *Presenter) PromptReason(decision domain.Decision) { p.post(promptMsg(decision)) }

func (p *Presenter) Recorded(index int, outcome domain.Outcome) {
	p.post(recordedMsg{index: index, outcome: outcome})
}

func (p *Presenter) Complete(summary engine.Summary) { p.post(completeMsg(summary)) }
