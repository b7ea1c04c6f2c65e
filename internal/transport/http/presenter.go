package http

import (
	"context"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

// wsPresenter turns engine output into outbound envelopes. It runs on the
// session's event loop; ticks are dropped when the writer falls behind, every
// other message waits for room.
type wsPresenter struct {
	ctx  context.Context
	mode domain.Mode
	send chan<- outboundMessage[any]
}

func (p *wsPresenter) emit(typ string, payload any) {
	select {
	case p.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-p.ctx.Done():
	}
}

func (p *wsPresenter) ShowRound(number, total int) {
	p.emit("round", roundPayload{Number: number, Total: total})
}

func (p *wsPresenter) RevealCard(slot int, item domain.RoundItem) {
	p.emit("card", cardPayload{Slot: slot, Item: item})
}

func (p *wsPresenter) ShowTime(state engine.TimerState) {
	select {
	case p.send <- outboundMessage[any]{Type: "tick", Payload: newTick(state)}:
	default:
	}
}

func (p *wsPresenter) LowTime()                  { p.emit("lowTime", empty{}) }
func (p *wsPresenter) ShowStress(message string) { p.emit("stress", stressPayload{Message: message}) }
func (p *wsPresenter) ClearStress()              { p.emit("stressClear", empty{}) }
func (p *wsPresenter) TimeUp()                   { p.emit("timeUp", empty{}) }

func (p *wsPresenter) PromptReason(decision domain.Decision) {
	p.emit("promptReason", decisionPayload{Decision: decision})
}

func (p *wsPresenter) Recorded(index int, outcome domain.Outcome) {
	p.emit("recorded", recordedPayload{Index: index, Outcome: outcome, Line: engine.LogLine(p.mode, index, outcome)})
}

func (p *wsPresenter) Complete(summary engine.Summary) {
	p.emit("summary", summaryPayload{Summary: summary, Text: summary.Text()})
}
