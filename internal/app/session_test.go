package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
	"stress-quiz/internal/engine/enginetest"
	"stress-quiz/internal/infra/memory"
)

type fixture struct {
	service   *app.Service
	clock     *enginetest.FakeClock
	presenter *enginetest.Presenter
}

func newFixture(datasets map[string]domain.Dataset, opts ...app.ServiceOption) *fixture {
	repo := memory.NewDatasetRepository(memory.NewStaticLoader(datasets), time.Minute)
	opts = append(opts, app.WithRandSource(func() engine.Rand { return &enginetest.ScriptedRand{} }))
	return &fixture{
		service:   app.NewService(memory.NewSessionStore(), repo, opts...),
		clock:     enginetest.NewFakeClock(),
		presenter: &enginetest.Presenter{},
	}
}

func (f *fixture) open(mode domain.Mode, course string) *app.Session {
	return f.service.Open("", mode, course, f.clock, f.presenter)
}

func answerDataset() domain.Dataset {
	return domain.Dataset{Courses: map[string]domain.CoursePool{
		"HTML": {ByDifficulty: map[domain.Difficulty][]domain.RoundItem{
			domain.Easy: {{ID: "q1", Prompt: "P", Time: 1}},
		}},
	}}
}

func judgeDataset() domain.Dataset {
	return domain.Dataset{Courses: map[string]domain.CoursePool{
		"Web Development": {Flat: []domain.RoundItem{{ID: "j1", Prompt: "Explain CORS", SecondaryText: "A header"}}},
	}}
}

func TestStartBeforeLoadIsPremature(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"questions": answerDataset()})
	session := f.open(domain.ModeAnswer, "")

	if st := session.Status(); st.State != app.LoadPending || st.CanStart {
		t.Fatalf("expected pending status, got %+v", st)
	}
	if err := session.Start("easy"); !errors.Is(err, domain.ErrPrematureStart) {
		t.Fatalf("expected premature start, got %v", err)
	}
	if _, ok := session.Runner(); ok {
		t.Fatalf("expected no runner after premature start")
	}
	if err := session.Reveal(0); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
}

func TestAnswerSessionAutoResolves(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"questions": answerDataset()})
	session := f.open(domain.ModeAnswer, "")
	if session.Course() != "HTML" {
		t.Fatalf("expected default course HTML, got %q", session.Course())
	}

	st := session.Load(context.Background())
	if !st.CanStart || st.State != app.LoadReady {
		t.Fatalf("expected ready status, got %+v", st)
	}
	if err := session.Start("EASY"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Reveal(0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	f.clock.Advance(time.Second)

	runner, _ := session.Runner()
	outcomes := runner.Outcomes()
	if len(outcomes) != 1 || !outcomes[0].Auto || outcomes[0].Response != "" {
		t.Fatalf("expected one auto outcome, got %+v", outcomes)
	}
	if runner.State().Index != 1 {
		t.Fatalf("expected round 2, got index %d", runner.State().Index)
	}
	if f.presenter.Count("why") != 0 {
		t.Fatalf("unexpected why prompt: %v", f.presenter.Calls())
	}
	if err := session.Start("easy"); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("expected running session to block restart, got %v", err)
	}
}

func TestAnswerModeLoadFailureHasNoMessage(t *testing.T) {
	f := newFixture(nil)
	session := f.open(domain.ModeAnswer, "")

	st := session.Load(context.Background())
	if st.State != app.LoadFailed || st.CanStart || st.Message != "" {
		t.Fatalf("unexpected status %+v", st)
	}
	err := session.Start("easy")
	if !errors.Is(err, domain.ErrDatasetLoad) || !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}

func TestJudgeModeLoadFailureNamesDataset(t *testing.T) {
	f := newFixture(nil)
	session := f.open(domain.ModeJudge, "")

	st := session.Load(context.Background())
	if !strings.Contains(st.Message, "interviewer-questions.json") {
		t.Fatalf("expected message naming the dataset file, got %q", st.Message)
	}
}

func TestJudgeModeMissingCourseBlocksStart(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"interviewer-questions": judgeDataset()})
	session := f.open(domain.ModeJudge, "Data Science")

	st := session.Load(context.Background())
	if st.CourseExists || st.CanStart {
		t.Fatalf("expected course missing, got %+v", st)
	}
	if !strings.Contains(st.Message, `"Data Science"`) || !strings.Contains(st.Message, "interviewer-questions.json") {
		t.Fatalf("unexpected message %q", st.Message)
	}
	if err := session.Start("easy"); !errors.Is(err, domain.ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
	if _, ok := session.Runner(); ok {
		t.Fatalf("expected no runner")
	}
}

func TestAnswerModeMissingCourseFailsAtStart(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"questions": answerDataset()})
	session := f.open(domain.ModeAnswer, "CSS")

	st := session.Load(context.Background())
	if !st.CanStart || st.CourseExists {
		t.Fatalf("answer mode enables start once loaded, got %+v", st)
	}
	if err := session.Start("easy"); !errors.Is(err, domain.ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
	if _, ok := session.Runner(); ok {
		t.Fatalf("expected no runner")
	}
}

func TestJudgeDecisionWithReason(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"interviewer-questions": judgeDataset()})
	session := f.open(domain.ModeJudge, "")
	session.Load(context.Background())

	if err := session.Start("hard"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Reveal(1); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if err := session.Decide("hire", false); !errors.Is(err, engine.ErrUnknownDecision) {
		t.Fatalf("expected unknown decision, got %v", err)
	}
	if err := session.Answer("text"); !errors.Is(err, engine.ErrWrongMode) {
		t.Fatalf("expected wrong mode, got %v", err)
	}
	if err := session.Decide("accept", true); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := session.Reason("clear and correct"); err != nil {
		t.Fatalf("reason: %v", err)
	}

	runner, _ := session.Runner()
	o := runner.Outcomes()[0]
	if o.Response != "Accept" || o.Reason != "clear and correct" || o.Auto {
		t.Fatalf("unexpected outcome %+v", o)
	}
}

func TestInvalidDifficulty(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"questions": answerDataset()})
	session := f.open(domain.ModeAnswer, "")
	session.Load(context.Background())

	if err := session.Start("extreme"); !errors.Is(err, domain.ErrInvalidDifficulty) {
		t.Fatalf("expected invalid difficulty, got %v", err)
	}
	if !app.IsUserError(domain.ErrInvalidDifficulty) || app.IsUserError(errors.New("disk on fire")) {
		t.Fatalf("unexpected IsUserError classification")
	}
}

func TestCourseInfo(t *testing.T) {
	f := newFixture(map[string]domain.Dataset{"interviewer-questions": judgeDataset()})

	info, err := f.service.Course(context.Background(), domain.ModeJudge, "")
	if err != nil {
		t.Fatalf("course: %v", err)
	}
	if !info.Exists || info.Course != "Web Development" || len(info.Difficulties) != 3 {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := f.service.Course(context.Background(), domain.ModeAnswer, "HTML"); !errors.Is(err, domain.ErrDatasetLoad) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestWithProfileOverridesRounds(t *testing.T) {
	settings := engine.AnswerProfile()
	settings.TotalRounds = 2
	f := newFixture(map[string]domain.Dataset{"questions": answerDataset()}, app.WithProfile(settings))
	session := f.open(domain.ModeAnswer, "")
	session.Load(context.Background())

	if err := session.Start("easy"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := session.Reveal(0); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
		if err := session.Answer("x"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	runner, _ := session.Runner()
	if !runner.State().Done() {
		t.Fatalf("expected session complete after two rounds")
	}
	if err := session.Start("easy"); err != nil {
		t.Fatalf("restart after completion: %v", err)
	}
}
