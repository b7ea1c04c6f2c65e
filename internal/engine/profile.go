package engine

import (
	"time"

	"stress-quiz/internal/domain"
)

const (
	DefaultTotalRounds  = 10
	DefaultCurveballs   = 2
	DefaultSlots        = 3
	DefaultTickInterval = 20 * time.Millisecond
)

// StressSettings tunes the stress event engine.
type StressSettings struct {
	Probability float64
	// Headroom is the countdown left visible after a firing; rounds no longer than it never fire.
	Headroom time.Duration
	// Display is how long the event message stays up.
	Display time.Duration
	Catalog []StressEvent
}

// Settings parametrizes the engine for one mode.
type Settings struct {
	Mode          domain.Mode
	TotalRounds   int
	Curveballs    int
	Slots         int
	Durations     map[domain.Difficulty]time.Duration
	TickInterval  time.Duration
	ReasonTimeout time.Duration // zero leaves the judge "why" prompt unbounded
	Stress        StressSettings
	DefaultCourse string
	DatasetName   string
}

// AnswerProfile is the self-graded question mode.
func AnswerProfile() Settings {
	return Settings{
		Mode:        domain.ModeAnswer,
		TotalRounds: DefaultTotalRounds,
		Curveballs:  DefaultCurveballs,
		Slots:       DefaultSlots,
		Durations: map[domain.Difficulty]time.Duration{
			domain.Easy:   25 * time.Second,
			domain.Normal: 35 * time.Second,
			domain.Hard:   45 * time.Second,
		},
		TickInterval: DefaultTickInterval,
		Stress: StressSettings{
			Probability: 0.5,
			Headroom:    3 * time.Second,
			Display:     3 * time.Second,
			Catalog: []StressEvent{
				Speed(2, "Time pressure! 2× faster"),
				Speed(0.5, "Breather! 2× slower"),
				Bonus(5, "Lucky! +5s added"),
				Penalty(5, "Oops! -5s lost"),
			},
		},
		DefaultCourse: "HTML",
		DatasetName:   "questions",
	}
}

// JudgeProfile is the interviewer mode.
func JudgeProfile() Settings {
	return Settings{
		Mode:        domain.ModeJudge,
		TotalRounds: DefaultTotalRounds,
		Curveballs:  DefaultCurveballs,
		Slots:       DefaultSlots,
		Durations: map[domain.Difficulty]time.Duration{
			domain.Easy:   75 * time.Second,
			domain.Normal: 60 * time.Second,
			domain.Hard:   45 * time.Second,
		},
		TickInterval: DefaultTickInterval,
		Stress: StressSettings{
			Probability: 0.5,
			Headroom:    3 * time.Second,
			Display:     3 * time.Second,
			Catalog: []StressEvent{
				Speed(2, "Panel interrupts! 2× faster"),
				Speed(0.5, "Follow-up needed, slower pace"),
				Bonus(8, "Extra detail requested: +8s"),
				Penalty(8, "Time constraint: -8s"),
			},
		},
		DefaultCourse: "Web Development",
		DatasetName:   "interviewer-questions",
	}
}

// ProfileFor returns the built-in profile for mode.
func ProfileFor(mode domain.Mode) Settings {
	if mode == domain.ModeJudge {
		return JudgeProfile()
	}
	return AnswerProfile()
}

// DatasetFile is the document name shown to users when loading fails.
func (s Settings) DatasetFile() string {
	return s.DatasetName + ".json"
}

// DurationFor returns the base round duration for a difficulty.
func (s Settings) DurationFor(d domain.Difficulty) (time.Duration, bool) {
	v, ok := s.Durations[d]
	return v, ok
}

func (s Settings) withDefaults() Settings {
	if s.TotalRounds <= 0 {
		s.TotalRounds = DefaultTotalRounds
	}
	if s.Curveballs < 0 {
		s.Curveballs = 0
	}
	if s.Slots <= 0 {
		s.Slots = DefaultSlots
	}
	if s.TickInterval <= 0 {
		s.TickInterval = DefaultTickInterval
	}
	if s.Durations == nil {
		s.Durations = ProfileFor(s.Mode).Durations
	}
	return s
}
