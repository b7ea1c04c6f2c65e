package http

import (
	"encoding/json"
	"math"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Difficulty string `json:"difficulty"`
}

type revealPayload struct {
	Slot int `json:"slot"`
}

type textPayload struct {
	Text string `json:"text"`
}

type decidePayload struct {
	Decision string `json:"decision"`
	Why      bool   `json:"why"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	ID     string      `json:"id"`
	Mode   domain.Mode `json:"mode"`
	Course string      `json:"course"`
}

type roundPayload struct {
	Number int `json:"number"`
	Total  int `json:"total"`
}

type cardPayload struct {
	Slot int              `json:"slot"`
	Item domain.RoundItem `json:"item"`
}

type tickPayload struct {
	RemainingMs int64   `json:"remainingMs"`
	BaselineMs  int64   `json:"baselineMs"`
	Proportion  float64 `json:"proportion"`
	Seconds     int     `json:"seconds"` // whole seconds left, rounded up for display
}

type stressPayload struct {
	Message string `json:"message"`
}

type decisionPayload struct {
	Decision domain.Decision `json:"decision"`
}

type recordedPayload struct {
	Index   int            `json:"index"`
	Outcome domain.Outcome `json:"outcome"`
	Line    string         `json:"line"`
}

type summaryPayload struct {
	engine.Summary
	Text string `json:"text"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type empty struct{}

func newTick(s engine.TimerState) tickPayload {
	return tickPayload{
		RemainingMs: s.Remaining.Milliseconds(),
		BaselineMs:  s.Baseline.Milliseconds(),
		Proportion:  s.Proportion(),
		Seconds:     int(math.Ceil(s.Remaining.Seconds())),
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}
