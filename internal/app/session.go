package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

type LoadState string

const (
	LoadPending LoadState = "loading"
	LoadReady   LoadState = "ready"
	LoadFailed  LoadState = "failed"
)

// Status is what the start screen needs: whether starting is possible and why not.
type Status struct {
	State        LoadState           `json:"state"`
	Mode         domain.Mode         `json:"mode"`
	Course       string              `json:"course"`
	CourseExists bool                `json:"courseExists"`
	CanStart     bool                `json:"canStart"`
	Difficulties []domain.Difficulty `json:"difficulties,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// Session is one user's page: the dataset load state plus at most one running
// engine.Runner. Apart from Fetch, methods must be called on the goroutine that
// delivers the clock's callbacks.
type Session struct {
	id        string
	service   *Service
	settings  engine.Settings
	course    string
	clock     engine.Clock
	presenter engine.Presenter
	logger    *zap.Logger

	load    LoadState
	loadErr error
	dataset domain.Dataset
	runner  *engine.Runner
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() domain.Mode {
	return s.settings.Mode
}

func (s *Session) Course() string {
	return s.course
}

// Fetch loads the mode's dataset. Safe to call from any goroutine; hand the
// result to Loaded on the session's goroutine.
func (s *Session) Fetch(ctx context.Context) (domain.Dataset, error) {
	return s.service.dataset(ctx, s.settings)
}

// Load fetches and applies the dataset synchronously.
func (s *Session) Load(ctx context.Context) Status {
	return s.Loaded(s.Fetch(ctx))
}

// Loaded records the outcome of a fetch.
func (s *Session) Loaded(ds domain.Dataset, err error) Status {
	if err != nil {
		s.load = LoadFailed
		s.loadErr = err
		s.logger.Error("dataset load failed", zap.String("dataset", s.settings.DatasetFile()), zap.Error(err))
		return s.Status()
	}
	s.load = LoadReady
	s.loadErr = nil
	s.dataset = ds
	if s.settings.Mode == domain.ModeJudge && !ds.HasCourse(s.course) {
		s.logger.Warn("course not in dataset", zap.String("course", s.course))
	}
	return s.Status()
}

func (s *Session) Status() Status {
	st := Status{
		State:  s.load,
		Mode:   s.settings.Mode,
		Course: s.course,
	}
	if st.State == "" {
		st.State = LoadPending
	}
	switch st.State {
	case LoadReady:
		st.CourseExists = s.dataset.HasCourse(s.course)
		st.Difficulties = s.dataset.Difficulties(s.course)
		st.CanStart = st.CourseExists || s.settings.Mode == domain.ModeAnswer
		if s.settings.Mode == domain.ModeJudge && !st.CourseExists {
			st.Message = fmt.Sprintf("Course %q not found in %s. Pick another course.", s.course, s.settings.DatasetFile())
		}
	case LoadFailed:
		if s.settings.Mode == domain.ModeJudge {
			st.Message = fmt.Sprintf("Couldn't load %s.", s.settings.DatasetFile())
		}
	}
	return st
}

// Start begins a session at the given difficulty. Nothing is created on error.
func (s *Session) Start(difficulty string) error {
	switch s.load {
	case LoadReady:
	case LoadFailed:
		return s.loadErr
	default:
		return domain.ErrPrematureStart
	}
	if s.runner != nil && !s.runner.State().Done() {
		return fmt.Errorf("%w: session already running", engine.ErrInvalidTransition)
	}
	if s.settings.Mode == domain.ModeJudge && !s.dataset.HasCourse(s.course) {
		return fmt.Errorf("%w: course %q not found in %s", domain.ErrPoolNotFound, s.course, s.settings.DatasetFile())
	}
	diff, err := domain.ParseDifficulty(difficulty)
	if err != nil {
		return err
	}

	runner := engine.NewRunner(s.settings, s.clock, s.service.newRand(), s.presenter, engine.WithLogger(s.logger))
	if err := runner.Start(s.dataset, s.course, diff); err != nil {
		s.logger.Info("start rejected", zap.String("difficulty", string(diff)), zap.Error(err))
		return err
	}
	s.runner = runner
	return nil
}

func (s *Session) Reveal(slot int) error {
	r, err := s.active()
	if err != nil {
		return err
	}
	return r.Reveal(slot)
}

func (s *Session) Answer(text string) error {
	r, err := s.active()
	if err != nil {
		return err
	}
	return r.Answer(text)
}

// Decide takes a verdict label in any casing.
func (s *Session) Decide(decision string, askWhy bool) error {
	r, err := s.active()
	if err != nil {
		return err
	}
	d, ok := domain.ParseDecision(decision)
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownDecision, decision)
	}
	return r.Decide(d, askWhy)
}

func (s *Session) Reason(text string) error {
	r, err := s.active()
	if err != nil {
		return err
	}
	return r.SubmitReason(text)
}

// Runner exposes the running engine, if any.
func (s *Session) Runner() (*engine.Runner, bool) {
	return s.runner, s.runner != nil
}

// End stops any pending timers. The recorded outcomes stay readable.
func (s *Session) End() {
	if s.runner != nil {
		s.runner.End()
	}
}

func (s *Session) active() (*engine.Runner, error) {
	if s.runner == nil {
		return nil, domain.ErrNoSession
	}
	return s.runner, nil
}

// IsUserError reports whether err is a rejected action rather than a fault.
func IsUserError(err error) bool {
	for _, target := range []error{
		domain.ErrPrematureStart,
		domain.ErrPoolNotFound,
		domain.ErrInvalidDifficulty,
		domain.ErrNoSession,
		engine.ErrInvalidTransition,
		engine.ErrWrongMode,
		engine.ErrInvalidSlot,
		engine.ErrUnknownDecision,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
