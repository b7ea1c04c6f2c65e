package engine

import "stress-quiz/internal/domain"

// Presenter renders what the runner decides. Calls arrive on the runner's
// goroutine and must not call back into the runner synchronously.
type Presenter interface {
	ShowRound(number, total int)
	RevealCard(slot int, item domain.RoundItem)
	ShowTime(state TimerState)
	LowTime()
	ShowStress(message string)
	ClearStress()
	TimeUp()
	PromptReason(decision domain.Decision)
	Recorded(index int, outcome domain.Outcome)
	Complete(summary Summary)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) ShowRound(int, int)               {}
func (NopPresenter) RevealCard(int, domain.RoundItem) {}
func (NopPresenter) ShowTime(TimerState)              {}
func (NopPresenter) LowTime()                         {}
func (NopPresenter) ShowStress(string)                {}
func (NopPresenter) ClearStress()                     {}
func (NopPresenter) TimeUp()                          {}
func (NopPresenter) PromptReason(domain.Decision)     {}
func (NopPresenter) Recorded(int, domain.Outcome)     {}
func (NopPresenter) Complete(Summary)                 {}
