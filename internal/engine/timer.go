package engine

import "time"

// lowTimeFloor is the minimum low-time threshold.
const lowTimeFloor = 5 * time.Second

// TimerState is one round's countdown. Baseline is the proportion denominator.
type TimerState struct {
	Start     time.Duration `json:"start"`
	Remaining time.Duration `json:"remaining"`
	Baseline  time.Duration `json:"baseline"`
}

// Proportion is Remaining/Baseline clamped to [0,1].
func (s TimerState) Proportion() float64 {
	if s.Baseline <= 0 {
		return 0
	}
	p := float64(s.Remaining) / float64(s.Baseline)
	return min(max(p, 0), 1)
}

// LowTimeThreshold is max(5s, 20% of the starting duration).
func (s TimerState) LowTimeThreshold() time.Duration {
	return max(lowTimeFloor, s.Start/5)
}

// TimerListener receives countdown notifications.
type TimerListener interface {
	OnTick(TimerState)
	// OnLowTime fires once per countdown, the first time the threshold is crossed.
	OnLowTime(TimerState)
	// OnExpire fires exactly once per countdown when remaining reaches zero.
	OnExpire()
}

// Timer drives a single countdown. Remaining time is derived from the clock's
// elapsed time, never from the number of ticks delivered.
type Timer struct {
	clock    Clock
	interval time.Duration
	listener TimerListener

	start     time.Duration
	baseline  time.Duration
	shift     time.Duration // net stress adjustment
	startedAt time.Time
	last      TimerState
	lowTime   bool
	running   bool
	cancel    Cancel
}

func NewTimer(clock Clock, interval time.Duration, listener TimerListener) *Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Timer{clock: clock, interval: interval, listener: listener}
}

// Start stops any running countdown and begins a new one. A non-positive
// duration expires immediately without ticking.
func (t *Timer) Start(d time.Duration) {
	t.Stop()
	t.start = d
	t.baseline = d
	t.shift = 0
	t.lowTime = false
	t.startedAt = t.clock.Now()
	t.last = TimerState{Start: d, Remaining: max(d, 0), Baseline: d}

	if d <= 0 {
		t.listener.OnExpire()
		return
	}
	t.running = true
	t.cancel = t.clock.Every(t.interval, t.tick)
	t.emit(t.last)
}

// Stop cancels ticking. It is idempotent and never fires OnExpire.
func (t *Timer) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.running {
		t.last = t.current()
		t.running = false
	}
}

// Running reports whether the countdown is still ticking.
func (t *Timer) Running() bool {
	return t.running
}

// State returns the live countdown, or the last one once stopped.
func (t *Timer) State() TimerState {
	if t.running {
		return t.current()
	}
	return t.last
}

// Apply perturbs the running countdown. A penalty down to zero expires on the next tick.
func (t *Timer) Apply(ev StressEvent) TimerState {
	if !t.running {
		return t.last
	}
	cur := t.current()
	next := ev.Apply(cur)
	t.shift += next.Remaining - cur.Remaining
	t.baseline = next.Baseline
	t.emit(next)
	return next
}

func (t *Timer) current() TimerState {
	elapsed := t.clock.Now().Sub(t.startedAt)
	return TimerState{
		Start:     t.start,
		Remaining: max(0, t.start+t.shift-elapsed),
		Baseline:  t.baseline,
	}
}

func (t *Timer) tick() {
	if !t.running {
		return
	}
	s := t.current()
	t.emit(s)
	if s.Remaining <= 0 {
		t.Stop()
		t.listener.OnExpire()
	}
}

func (t *Timer) emit(s TimerState) {
	t.last = s
	if !t.lowTime && s.Remaining <= s.LowTimeThreshold() {
		t.lowTime = true
		t.listener.OnLowTime(s)
	}
	t.listener.OnTick(s)
}
