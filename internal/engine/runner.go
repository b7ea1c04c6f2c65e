package engine

import (
	"fmt"

	"go.uber.org/zap"

	"stress-quiz/internal/domain"
)

// Runner owns one session: it feeds events through Step and carries out the
// effects against the clock, the timer and the presenter. It is not safe for
// concurrent use; every call, including clock callbacks, must arrive on one goroutine.
type Runner struct {
	settings  Settings
	clock     Clock
	rng       Rand
	presenter Presenter
	logger    *zap.Logger

	timer    *Timer
	stress   *StressEngine
	recorder *Recorder

	state         State
	course        string
	difficulty    domain.Difficulty
	timerRound    int
	scheduled     []Cancel
	stressVisible bool

	queue    []Event
	draining bool
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(settings Settings, clock Clock, rng Rand, presenter Presenter, opts ...Option) *Runner {
	settings = settings.withDefaults()
	if presenter == nil {
		presenter = NopPresenter{}
	}
	r := &Runner{
		settings:  settings,
		clock:     clock,
		rng:       rng,
		presenter: presenter,
		logger:    zap.NewNop(),
		stress:    NewStressEngine(settings.Stress, rng),
		recorder:  NewRecorder(settings.Mode),
		state:     NewState(settings.Mode),
	}
	r.timer = NewTimer(clock, settings.TickInterval, timerEvents{r})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start draws the session's rounds and shows the first one. On error no
// session is created and the runner stays ready for another attempt.
func (r *Runner) Start(ds domain.Dataset, course string, difficulty domain.Difficulty) error {
	if r.state.Phase != PhaseAwaitingStart {
		return fmt.Errorf("%w: start during %s", ErrInvalidTransition, r.state.Phase)
	}
	base, ok := r.settings.DurationFor(difficulty)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}
	rounds, err := SelectRounds(ds, course, difficulty, r.settings.TotalRounds, r.settings.Curveballs, r.rng)
	if err != nil {
		return err
	}
	r.course = course
	r.difficulty = difficulty
	r.logger.Info("session started",
		zap.String("mode", string(r.settings.Mode)),
		zap.String("course", course),
		zap.String("difficulty", string(difficulty)),
		zap.Int("rounds", len(rounds)))
	return r.dispatch(Started{
		Rounds:        rounds,
		DefaultTime:   base,
		ReasonTimeout: r.settings.ReasonTimeout,
		Slots:         r.settings.Slots,
	})
}

// Reveal flips one of the face-down cards. Every slot shows the same round.
func (r *Runner) Reveal(slot int) error {
	return r.dispatch(Revealed{Slot: slot})
}

// Answer submits a free-text response (answer mode).
func (r *Runner) Answer(text string) error {
	return r.dispatch(Answered{Text: text})
}

// Decide submits a verdict (judge mode). With askWhy the round waits for SubmitReason.
func (r *Runner) Decide(decision domain.Decision, askWhy bool) error {
	return r.dispatch(Decided{Decision: decision, AskWhy: askWhy})
}

// SubmitReason completes a pending verdict; an empty reason skips it.
func (r *Runner) SubmitReason(text string) error {
	return r.dispatch(Reasoned{Text: text})
}

// End cancels the countdown and every pending callback. The state is left as is.
func (r *Runner) End() {
	r.timer.Stop()
	r.cancelScheduled()
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) Timer() TimerState {
	return r.timer.State()
}

func (r *Runner) Outcomes() []domain.Outcome {
	return r.recorder.Outcomes()
}

func (r *Runner) Summary() Summary {
	return r.recorder.Render()
}

func (r *Runner) Settings() Settings {
	return r.settings
}

func (r *Runner) Course() string {
	return r.course
}

func (r *Runner) Difficulty() domain.Difficulty {
	return r.difficulty
}

// dispatch runs ev and then drains events raised while applying its effects,
// so Step is never re-entered. Only ev's own error is returned.
func (r *Runner) dispatch(ev Event) error {
	if r.draining {
		r.queue = append(r.queue, ev)
		return nil
	}
	r.draining = true
	defer func() { r.draining = false }()

	err := r.step(ev)
	for len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		if qerr := r.step(next); qerr != nil {
			r.logger.Warn("queued event rejected", zap.String("event", eventName(next)), zap.Error(qerr))
		}
	}
	return err
}

func (r *Runner) step(ev Event) error {
	next, effects, err := Step(r.state, ev)
	if err != nil {
		return err
	}
	r.state = next
	for _, eff := range effects {
		r.apply(eff)
	}
	if next.Phase == PhaseRoundResolved {
		r.queue = append(r.queue, Advanced{})
	}
	return nil
}

func (r *Runner) apply(eff Effect) {
	switch e := eff.(type) {
	case ShowRound:
		r.presenter.ShowRound(e.Number, e.Total)
	case RevealCard:
		r.presenter.RevealCard(e.Slot, e.Item)
	case ScheduleStress:
		round := e.Round
		cancel, ok := r.stress.MaybeSchedule(e.Duration, r.clock, func(ev StressEvent) {
			_ = r.dispatch(Stressed{Round: round, Event: ev})
		})
		if ok {
			r.scheduled = append(r.scheduled, cancel)
		}
	case StartTimer:
		r.timerRound = e.Round
		r.timer.Start(e.Duration)
	case ApplyStress:
		r.applyStress(e.Event)
	case StopTimer:
		r.timer.Stop()
	case CancelScheduled:
		r.cancelScheduled()
	case PromptReason:
		r.presenter.PromptReason(e.Decision)
	case ScheduleReasonTimeout:
		round := e.Round
		r.scheduled = append(r.scheduled, r.clock.AfterFunc(e.After, func() {
			_ = r.dispatch(Expired{Round: round})
		}))
	case TimeUp:
		r.presenter.TimeUp()
	case Record:
		r.recorder.Record(e.Outcome)
		r.logger.Debug("round recorded",
			zap.Int("round", e.Index+1),
			zap.String("item", string(e.Outcome.RoundItemID)),
			zap.Bool("auto", e.Outcome.Auto))
		r.presenter.Recorded(e.Index, e.Outcome)
	case Complete:
		r.logger.Info("session complete", zap.String("course", r.course), zap.Int("rounds", e.Rounds))
		r.presenter.Complete(r.recorder.Render())
	}
}

func (r *Runner) applyStress(ev StressEvent) {
	state := r.timer.Apply(ev)
	r.logger.Debug("stress event",
		zap.Int("round", r.state.Index+1),
		zap.String("event", string(ev.Kind)),
		zap.Duration("remaining", state.Remaining))
	r.presenter.ShowStress(ev.Message)
	r.stressVisible = true
	r.scheduled = append(r.scheduled, r.clock.AfterFunc(r.stress.Display(), func() {
		if r.stressVisible {
			r.stressVisible = false
			r.presenter.ClearStress()
		}
	}))
}

func (r *Runner) cancelScheduled() {
	for _, cancel := range r.scheduled {
		cancel()
	}
	r.scheduled = nil
	if r.stressVisible {
		r.stressVisible = false
		r.presenter.ClearStress()
	}
}

// timerEvents adapts timer notifications into runner events.
type timerEvents struct{ r *Runner }

func (t timerEvents) OnTick(s TimerState) {
	t.r.presenter.ShowTime(s)
}

func (t timerEvents) OnLowTime(TimerState) {
	t.r.presenter.LowTime()
}

func (t timerEvents) OnExpire() {
	_ = t.r.dispatch(Expired{Round: t.r.timerRound})
}
