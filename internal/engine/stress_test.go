package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stress-quiz/internal/engine"
	"stress-quiz/internal/engine/enginetest"
)

func TestStressEventApply(t *testing.T) {
	base := engine.TimerState{Start: 25 * time.Second, Remaining: 20 * time.Second, Baseline: 25 * time.Second}

	cases := []struct {
		name          string
		event         engine.StressEvent
		in            engine.TimerState
		wantRemaining time.Duration
		wantBaseline  time.Duration
	}{
		{"speed compresses remaining and baseline", engine.Speed(2, ""), base, 10 * time.Second, 10 * time.Second},
		{"slow down stretches both", engine.Speed(0.5, ""), base, 40 * time.Second, 40 * time.Second},
		{"speed keeps a one second baseline floor", engine.Speed(2, ""),
			engine.TimerState{Start: 25 * time.Second, Remaining: time.Second, Baseline: 25 * time.Second},
			500 * time.Millisecond, time.Second},
		{"bonus within baseline", engine.Bonus(5, ""), base, 25 * time.Second, 25 * time.Second},
		{"bonus past baseline raises it", engine.Bonus(5, ""),
			engine.TimerState{Start: 25 * time.Second, Remaining: 22 * time.Second, Baseline: 25 * time.Second},
			27 * time.Second, 27 * time.Second},
		{"penalty leaves baseline", engine.Penalty(5, ""), base, 15 * time.Second, 25 * time.Second},
		{"penalty floors at zero", engine.Penalty(5, ""),
			engine.TimerState{Start: 25 * time.Second, Remaining: 3 * time.Second, Baseline: 25 * time.Second},
			0, 25 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.event.Apply(tc.in)
			assert.Equal(t, tc.wantRemaining, got.Remaining)
			assert.Equal(t, tc.wantBaseline, got.Baseline)
			assert.Equal(t, tc.in.Start, got.Start)
		})
	}
}

func TestStressPlanSkipsShortRounds(t *testing.T) {
	rng := &enginetest.ScriptedRand{Floats: []float64{0, 0}}
	e := engine.NewStressEngine(engine.AnswerProfile().Stress, rng)

	_, ok := e.Plan(3 * time.Second)
	assert.False(t, ok)
	assert.Len(t, rng.Floats, 2, "no draws for rounds inside the headroom")
}

func TestStressPlanProbability(t *testing.T) {
	e := engine.NewStressEngine(engine.AnswerProfile().Stress, &enginetest.ScriptedRand{Floats: []float64{0.5}})
	_, ok := e.Plan(20 * time.Second)
	assert.False(t, ok, "a draw of 0.5 misses a 0.5 probability")

	e = engine.NewStressEngine(engine.AnswerProfile().Stress, &enginetest.ScriptedRand{
		Floats: []float64{0.49, 0.5},
		Ints:   []int{2},
	})
	firing, ok := e.Plan(20 * time.Second)
	require.True(t, ok)
	assert.Equal(t, 8500*time.Millisecond, firing.Delay)
	assert.Equal(t, engine.KindBonus, firing.Event.Kind)
	assert.Equal(t, "Lucky! +5s added", firing.Event.Message)
}

func TestStressFiringLandsBeforeExpiry(t *testing.T) {
	settings := engine.JudgeProfile().Stress
	rng := engine.NewRand(42)
	e := engine.NewStressEngine(settings, rng)

	fired := 0
	for i := 0; i < 2000; i++ {
		round := time.Duration(3000+rng.Intn(80000)) * time.Millisecond
		firing, ok := e.Plan(round)
		if !ok {
			continue
		}
		fired++
		require.GreaterOrEqual(t, firing.Delay, time.Duration(0))
		require.LessOrEqual(t, firing.Delay+settings.Headroom, round, "round %v", round)
	}
	assert.Greater(t, fired, 0)
}

func TestMaybeScheduleUsesClock(t *testing.T) {
	clock := enginetest.NewFakeClock()
	e := engine.NewStressEngine(engine.AnswerProfile().Stress, &enginetest.ScriptedRand{
		Floats: []float64{0, 0.5},
		Ints:   []int{3},
	})

	var got []engine.StressEvent
	cancel, ok := e.MaybeSchedule(13*time.Second, clock, func(ev engine.StressEvent) { got = append(got, ev) })
	require.True(t, ok)
	require.NotNil(t, cancel)

	clock.Advance(4999 * time.Millisecond)
	assert.Empty(t, got)
	clock.Advance(time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, engine.KindPenalty, got[0].Kind)

	clock.Advance(time.Minute)
	assert.Len(t, got, 1, "one firing per round")
}
