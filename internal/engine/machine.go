package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stress-quiz/internal/domain"
)

var (
	ErrInvalidTransition = errors.New("action not allowed now")
	ErrWrongMode         = errors.New("action not available in this mode")
	ErrInvalidSlot       = errors.New("invalid card slot")
	ErrUnknownDecision   = errors.New("unknown decision")
	ErrUnsupportedEvent  = errors.New("unsupported event")
)

// noPrompt is shown for judge items without scenario or question text.
const noPrompt = "(no prompt provided)"

type Phase string

const (
	PhaseAwaitingStart   Phase = "awaiting_start"
	PhaseRoundShowing    Phase = "round_showing"
	PhaseRoundAnswering  Phase = "round_answering"
	PhaseAwaitingReason  Phase = "awaiting_reason"
	PhaseRoundResolved   Phase = "round_resolved"
	PhaseSessionComplete Phase = "session_complete"
)

// State is the session as seen by the transition function.
type State struct {
	Phase         Phase
	Mode          domain.Mode
	Rounds        []domain.RoundItem
	Index         int
	Slot          int // revealed card, -1 while face-down
	Pending       domain.Decision
	Slots         int
	DefaultTime   time.Duration
	ReasonTimeout time.Duration
}

// NewState is a session awaiting start.
func NewState(mode domain.Mode) State {
	return State{Phase: PhaseAwaitingStart, Mode: mode, Slot: -1, Slots: DefaultSlots}
}

// Total is the number of rounds in the session.
func (s State) Total() int {
	return len(s.Rounds)
}

// Current returns the round item at Index.
func (s State) Current() (domain.RoundItem, bool) {
	if s.Index < 0 || s.Index >= len(s.Rounds) {
		return domain.RoundItem{}, false
	}
	return s.displayItem(s.Rounds[s.Index]), true
}

// Done reports whether the session has completed.
func (s State) Done() bool {
	return s.Phase == PhaseSessionComplete
}

func (s State) displayItem(item domain.RoundItem) domain.RoundItem {
	if s.Mode == domain.ModeJudge && item.Prompt == "" {
		item.Prompt = noPrompt
	}
	return item
}

func (s State) roundDuration(item domain.RoundItem) time.Duration {
	if item.Time > 0 {
		return seconds(item.Time)
	}
	return s.DefaultTime
}

// Event is an input to Step.
type Event interface{ isEvent() }

type Started struct {
	Rounds        []domain.RoundItem
	DefaultTime   time.Duration
	ReasonTimeout time.Duration
	Slots         int
}

type Revealed struct{ Slot int }

type Answered struct{ Text string }

type Decided struct {
	Decision domain.Decision
	AskWhy   bool
}

type Reasoned struct{ Text string }

// Expired is the countdown (or bounded reason prompt) running out for Round.
type Expired struct{ Round int }

type Stressed struct {
	Round int
	Event StressEvent
}

type Advanced struct{}

func (Started) isEvent()  {}
func (Revealed) isEvent() {}
func (Answered) isEvent() {}
func (Decided) isEvent()  {}
func (Reasoned) isEvent() {}
func (Expired) isEvent()  {}
func (Stressed) isEvent() {}
func (Advanced) isEvent() {}

// Effect is an instruction Step hands to the runner.
type Effect interface{ isEffect() }

type ShowRound struct{ Number, Total int }

type RevealCard struct {
	Slot int
	Item domain.RoundItem
}

type ScheduleStress struct {
	Round    int
	Duration time.Duration
}

type StartTimer struct {
	Round    int
	Duration time.Duration
}

type ApplyStress struct{ Event StressEvent }

type StopTimer struct{}

// CancelScheduled drops every pending one-shot of the current round.
type CancelScheduled struct{}

type PromptReason struct{ Decision domain.Decision }

type ScheduleReasonTimeout struct {
	Round int
	After time.Duration
}

type TimeUp struct{}

type Record struct {
	Index   int
	Outcome domain.Outcome
}

type Complete struct{ Rounds int }

func (ShowRound) isEffect()             {}
func (RevealCard) isEffect()            {}
func (ScheduleStress) isEffect()        {}
func (StartTimer) isEffect()            {}
func (ApplyStress) isEffect()           {}
func (StopTimer) isEffect()             {}
func (CancelScheduled) isEffect()       {}
func (PromptReason) isEffect()          {}
func (ScheduleReasonTimeout) isEffect() {}
func (TimeUp) isEffect()                {}
func (Record) isEffect()                {}
func (Complete) isEffect()              {}

// Step is the session transition function. It never mutates s; on error the
// returned state is s unchanged. Expired and Stressed events that do not belong
// to the live round are ignored.
func Step(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Started:
		if s.Phase != PhaseAwaitingStart {
			return s, nil, transitionError(s, ev)
		}
		if len(e.Rounds) == 0 {
			return s, nil, domain.ErrPoolNotFound
		}
		next := s
		next.Rounds = e.Rounds
		next.Index = 0
		next.Slot = -1
		next.Pending = ""
		next.DefaultTime = e.DefaultTime
		next.ReasonTimeout = e.ReasonTimeout
		if e.Slots > 0 {
			next.Slots = e.Slots
		}
		next.Phase = PhaseRoundShowing
		return next, []Effect{ShowRound{Number: 1, Total: next.Total()}}, nil

	case Revealed:
		if s.Phase != PhaseRoundShowing {
			return s, nil, transitionError(s, ev)
		}
		if e.Slot < 0 || e.Slot >= s.Slots {
			return s, nil, fmt.Errorf("%w: %d", ErrInvalidSlot, e.Slot)
		}
		item := s.Rounds[s.Index]
		d := s.roundDuration(item)
		next := s
		next.Phase = PhaseRoundAnswering
		next.Slot = e.Slot
		// StartTimer goes last: a zero-length round expires inside it.
		return next, []Effect{
			RevealCard{Slot: e.Slot, Item: s.displayItem(item)},
			ScheduleStress{Round: s.Index, Duration: d},
			StartTimer{Round: s.Index, Duration: d},
		}, nil

	case Answered:
		if s.Mode != domain.ModeAnswer {
			return s, nil, ErrWrongMode
		}
		if s.Phase != PhaseRoundAnswering {
			return s, nil, transitionError(s, ev)
		}
		return resolve(s, s.outcome(e.Text, ""), false)

	case Decided:
		if s.Mode != domain.ModeJudge {
			return s, nil, ErrWrongMode
		}
		if s.Phase != PhaseRoundAnswering {
			return s, nil, transitionError(s, ev)
		}
		if !e.Decision.Valid() {
			return s, nil, fmt.Errorf("%w: %q", ErrUnknownDecision, e.Decision)
		}
		if !e.AskWhy {
			return resolve(s, s.outcome(string(e.Decision), ""), false)
		}
		next := s
		next.Phase = PhaseAwaitingReason
		next.Pending = e.Decision
		effects := []Effect{StopTimer{}, CancelScheduled{}, PromptReason{Decision: e.Decision}}
		if s.ReasonTimeout > 0 {
			effects = append(effects, ScheduleReasonTimeout{Round: s.Index, After: s.ReasonTimeout})
		}
		return next, effects, nil

	case Reasoned:
		if s.Mode != domain.ModeJudge {
			return s, nil, ErrWrongMode
		}
		if s.Phase != PhaseAwaitingReason {
			return s, nil, transitionError(s, ev)
		}
		return resolve(s, s.outcome(string(s.Pending), strings.TrimSpace(e.Text)), false)

	case Expired:
		if e.Round != s.Index || (s.Phase != PhaseRoundAnswering && s.Phase != PhaseAwaitingReason) {
			return s, nil, nil
		}
		return resolve(s, s.timeoutOutcome(), true)

	case Stressed:
		if e.Round != s.Index || s.Phase != PhaseRoundAnswering {
			return s, nil, nil
		}
		return s, []Effect{ApplyStress{Event: e.Event}}, nil

	case Advanced:
		if s.Phase != PhaseRoundResolved {
			return s, nil, transitionError(s, ev)
		}
		next := s
		next.Index++
		next.Slot = -1
		next.Pending = ""
		if next.Index >= next.Total() {
			next.Phase = PhaseSessionComplete
			return next, []Effect{Complete{Rounds: next.Total()}}, nil
		}
		next.Phase = PhaseRoundShowing
		return next, []Effect{ShowRound{Number: next.Index + 1, Total: next.Total()}}, nil

	default:
		return s, nil, fmt.Errorf("%w: %T", ErrUnsupportedEvent, ev)
	}
}

func resolve(s State, o domain.Outcome, auto bool) (State, []Effect, error) {
	o.Auto = auto
	next := s
	next.Phase = PhaseRoundResolved
	next.Pending = ""
	effects := []Effect{StopTimer{}, CancelScheduled{}}
	if auto {
		effects = append(effects, TimeUp{})
	}
	effects = append(effects, Record{Index: s.Index, Outcome: o})
	return next, effects, nil
}

func (s State) outcome(response, reason string) domain.Outcome {
	item := s.displayItem(s.Rounds[s.Index])
	return domain.Outcome{
		RoundItemID:   item.ID,
		Prompt:        item.Prompt,
		SecondaryText: item.SecondaryText,
		Response:      response,
		Reason:        reason,
	}
}

// timeoutOutcome is the fixed auto response: empty text, or Maybe without a reason.
func (s State) timeoutOutcome() domain.Outcome {
	if s.Mode == domain.ModeJudge {
		return s.outcome(string(domain.Maybe), "")
	}
	return s.outcome("", "")
}

func transitionError(s State, ev Event) error {
	return fmt.Errorf("%w: %s during %s", ErrInvalidTransition, eventName(ev), s.Phase)
}

func eventName(ev Event) string {
	name := fmt.Sprintf("%T", ev)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
