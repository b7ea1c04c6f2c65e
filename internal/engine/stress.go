package engine

import "time"

// StressKind names what a stress event does to the countdown.
type StressKind string

const (
	KindSpeed   StressKind = "speed"
	KindBonus   StressKind = "bonus"
	KindPenalty StressKind = "penalty"
)

// minBaseline keeps the proportion denominator away from zero after a compression.
const minBaseline = time.Second

// StressEvent is a catalog entry. Entries are stateless.
type StressEvent struct {
	Kind    StressKind `json:"kind"`
	Factor  float64    `json:"factor,omitempty"`
	Seconds float64    `json:"seconds,omitempty"`
	Message string     `json:"message"`
}

// Speed divides the remaining time by factor.
func Speed(factor float64, message string) StressEvent {
	return StressEvent{Kind: KindSpeed, Factor: factor, Message: message}
}

// Bonus adds seconds to the remaining time.
func Bonus(seconds float64, message string) StressEvent {
	return StressEvent{Kind: KindBonus, Seconds: seconds, Message: message}
}

// Penalty removes seconds from the remaining time, floored at zero.
func Penalty(seconds float64, message string) StressEvent {
	return StressEvent{Kind: KindPenalty, Seconds: seconds, Message: message}
}

// Apply returns the timer state after the event.
func (e StressEvent) Apply(s TimerState) TimerState {
	switch e.Kind {
	case KindSpeed:
		if e.Factor <= 0 {
			return s
		}
		s.Remaining = time.Duration(float64(s.Remaining) / e.Factor)
		s.Baseline = max(s.Remaining, minBaseline)
	case KindBonus:
		s.Remaining += seconds(e.Seconds)
		s.Baseline = max(s.Baseline, s.Remaining)
	case KindPenalty:
		s.Remaining = max(0, s.Remaining-seconds(e.Seconds))
	}
	return s
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Firing is a planned stress event for one round.
type Firing struct {
	Delay time.Duration
	Event StressEvent
}

// StressEngine decides whether and when a round gets a stress event.
type StressEngine struct {
	settings StressSettings
	rng      Rand
}

func NewStressEngine(settings StressSettings, rng Rand) *StressEngine {
	return &StressEngine{settings: settings, rng: rng}
}

// Plan draws at most one firing for a round of the given length. The delay is
// uniform in [0, round-Headroom], so the event always lands before natural expiry.
func (e *StressEngine) Plan(round time.Duration) (Firing, bool) {
	if len(e.settings.Catalog) == 0 || round <= e.settings.Headroom {
		return Firing{}, false
	}
	if e.rng.Float64() >= e.settings.Probability {
		return Firing{}, false
	}
	window := round - e.settings.Headroom
	delay := time.Duration(e.rng.Float64() * float64(window))
	event := e.settings.Catalog[e.rng.Intn(len(e.settings.Catalog))]
	return Firing{Delay: delay, Event: event}, true
}

// MaybeSchedule plans a firing and, if one is drawn, schedules fire on clock.
func (e *StressEngine) MaybeSchedule(round time.Duration, clock Clock, fire func(StressEvent)) (Cancel, bool) {
	firing, ok := e.Plan(round)
	if !ok {
		return nil, false
	}
	return clock.AfterFunc(firing.Delay, func() { fire(firing.Event) }), true
}

// Display is how long a fired event's message stays visible.
func (e *StressEngine) Display() time.Duration {
	return e.settings.Display
}
