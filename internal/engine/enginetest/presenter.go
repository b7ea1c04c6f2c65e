package enginetest

import (
	"fmt"
	"strings"
	"sync"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

// Presenter records every call as a short line, e.g. "round 1/10" or "time-up".
// Ticks are kept apart in Ticks so the log stays readable.
type Presenter struct {
	mu      sync.Mutex
	calls   []string
	Ticks   []engine.TimerState
	Summary *engine.Summary
}

func (p *Presenter) add(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *Presenter) ShowRound(number, total int) { p.add("round %d/%d", number, total) }

func (p *Presenter) RevealCard(slot int, item domain.RoundItem) {
	p.add("reveal %d %s", slot, item.ID)
}

func (p *Presenter) ShowTime(state engine.TimerState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Ticks = append(p.Ticks, state)
}

func (p *Presenter) LowTime() { p.add("low-time") }

func (p *Presenter) ShowStress(message string) { p.add("stress %s", message) }

func (p *Presenter) ClearStress() { p.add("stress-clear") }

func (p *Presenter) TimeUp() { p.add("time-up") }

func (p *Presenter) PromptReason(decision domain.Decision) { p.add("why %s", decision) }

func (p *Presenter) Recorded(index int, outcome domain.Outcome) {
	p.add("recorded %d %s", index, outcome.RoundItemID)
}

func (p *Presenter) Complete(summary engine.Summary) {
	p.mu.Lock()
	p.Summary = &summary
	p.mu.Unlock()
	p.add("complete")
}

// Calls returns the recorded lines.
func (p *Presenter) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// Count returns how many recorded lines start with prefix.
func (p *Presenter) Count(prefix string) int {
	n := 0
	for _, c := range p.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// LastTick returns the most recent timer state shown.
func (p *Presenter) LastTick() (engine.TimerState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Ticks) == 0 {
		return engine.TimerState{}, false
	}
	return p.Ticks[len(p.Ticks)-1], true
}
