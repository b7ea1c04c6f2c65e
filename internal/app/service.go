package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

// SessionRepository tracks live sessions (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(id string) (*Session, bool)
	Remove(id string)
	Len() int
	// Touch marks a session as still in use.
	Touch(ctx context.Context, id string) error
}

// DatasetRepository loads round datasets by name (from cache/backing store).
type DatasetRepository interface {
	GetDataset(ctx context.Context, name string) (domain.Dataset, error)
}

// Service opens sessions and answers course lookups.
type Service struct {
	sessions SessionRepository
	datasets DatasetRepository
	logger   *zap.Logger
	newRand  func() engine.Rand
	profiles map[domain.Mode]engine.Settings
}

type ServiceOption func(*Service)

// WithProfile replaces the built-in settings for the profile's mode.
func WithProfile(settings engine.Settings) ServiceOption {
	return func(s *Service) { s.profiles[settings.Mode] = settings }
}

func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandSource sets how each session's randomness is created.
func WithRandSource(fn func() engine.Rand) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newRand = fn
		}
	}
}

func NewService(sessions SessionRepository, datasets DatasetRepository, opts ...ServiceOption) *Service {
	s := &Service{
		sessions: sessions,
		datasets: datasets,
		logger:   zap.NewNop(),
		newRand:  func() engine.Rand { return engine.NewRand(0) },
		profiles: map[domain.Mode]engine.Settings{
			domain.ModeAnswer: engine.AnswerProfile(),
			domain.ModeJudge:  engine.JudgeProfile(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the engine settings used for mode.
func (s *Service) Settings(mode domain.Mode) engine.Settings {
	if settings, ok := s.profiles[mode]; ok {
		return settings
	}
	return engine.ProfileFor(mode)
}

// Open registers a new session. An empty course selects the mode's default,
// an empty id gets a fresh uuid. The clock must deliver callbacks on the
// goroutine that drives the session.
func (s *Service) Open(id string, mode domain.Mode, course string, clock engine.Clock, presenter engine.Presenter) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	settings := s.Settings(mode)
	if course == "" {
		course = settings.DefaultCourse
	}
	session := &Session{
		id:        id,
		service:   s,
		settings:  settings,
		course:    course,
		clock:     clock,
		presenter: presenter,
		logger:    s.logger.With(zap.String("session", id), zap.String("mode", string(mode))),
	}
	s.sessions.Add(session)
	return session
}

// Close ends a session and forgets it.
func (s *Service) Close(id string) {
	if session, ok := s.sessions.Get(id); ok {
		session.End()
	}
	s.sessions.Remove(id)
}

// Lookup returns a live session.
func (s *Service) Lookup(id string) (*Session, bool) {
	return s.sessions.Get(id)
}

// Touch refreshes a session's liveness; failures are logged only.
func (s *Service) Touch(ctx context.Context, id string) {
	if err := s.sessions.Touch(ctx, id); err != nil {
		s.logger.Debug("session touch failed", zap.String("session", id), zap.Error(err))
	}
}

// Live is the number of open sessions.
func (s *Service) Live() int {
	return s.sessions.Len()
}

// CourseInfo describes what a course offers in a mode.
type CourseInfo struct {
	Mode         domain.Mode         `json:"mode"`
	Course       string              `json:"course"`
	Exists       bool                `json:"exists"`
	Difficulties []domain.Difficulty `json:"difficulties"`
	Curveballs   int                 `json:"curveballs"`
}

// Course loads the mode's dataset and reports on one course.
func (s *Service) Course(ctx context.Context, mode domain.Mode, course string) (CourseInfo, error) {
	settings := s.Settings(mode)
	if course == "" {
		course = settings.DefaultCourse
	}
	ds, err := s.dataset(ctx, settings)
	if err != nil {
		return CourseInfo{}, err
	}
	info := CourseInfo{
		Mode:         mode,
		Course:       course,
		Exists:       ds.HasCourse(course),
		Difficulties: ds.Difficulties(course),
		Curveballs:   len(ds.Curveball),
	}
	if info.Difficulties == nil {
		info.Difficulties = []domain.Difficulty{}
	}
	return info, nil
}

// Courses lists the courses in the mode's dataset.
func (s *Service) Courses(ctx context.Context, mode domain.Mode) ([]string, error) {
	ds, err := s.dataset(ctx, s.Settings(mode))
	if err != nil {
		return nil, err
	}
	return ds.CourseNames(), nil
}

func (s *Service) dataset(ctx context.Context, settings engine.Settings) (domain.Dataset, error) {
	ds, err := s.datasets.GetDataset(ctx, settings.DatasetName)
	if err != nil {
		if errors.Is(err, domain.ErrDatasetLoad) {
			return domain.Dataset{}, err
		}
		return domain.Dataset{}, fmt.Errorf("%w: %s: %w", domain.ErrDatasetLoad, settings.DatasetFile(), err)
	}
	return ds, nil
}
