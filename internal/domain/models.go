package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects how a round is answered.
type Mode string

const (
	// ModeAnswer is the self-graded free-text mode.
	ModeAnswer Mode = "answer"
	// ModeJudge is the interviewer mode with Accept/Reject/Maybe decisions.
	ModeJudge Mode = "judge"
)

// ParseMode maps a label to a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeAnswer, "":
		return ModeAnswer, nil
	case ModeJudge:
		return ModeJudge, nil
	default:
		return "", fmt.Errorf("unknown mode %q", raw)
	}
}

// Difficulty is the session difficulty label.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// Difficulties lists the valid labels in display order.
var Difficulties = []Difficulty{Easy, Normal, Hard}

// ParseDifficulty validates a difficulty label.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case Easy, Normal, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
	}
}

// Decision is a judge-mode verdict.
type Decision string

const (
	Accept Decision = "Accept"
	Reject Decision = "Reject"
	Maybe  Decision = "Maybe"
)

// Valid reports whether d is one of the three verdicts.
func (d Decision) Valid() bool {
	return d == Accept || d == Reject || d == Maybe
}

// ParseDecision accepts any casing of a verdict.
func ParseDecision(raw string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accept":
		return Accept, true
	case "reject":
		return Reject, true
	case "maybe":
		return Maybe, true
	}
	return "", false
}

// ItemID identifies a round item. Datasets use both numbers and strings.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// RoundItem is one card drawn from a pool.
type RoundItem struct {
	ID            ItemID  `json:"id"`
	Prompt        string  `json:"prompt"`
	SecondaryText string  `json:"secondaryText,omitempty"` // candidate answer, judge mode only
	Time          float64 `json:"time,omitempty"`          // seconds; zero means the difficulty default
}

// rawItem is the dataset document shape.
type rawItem struct {
	ID        ItemID  `json:"id"`
	Question  string  `json:"question"`
	Scenario  string  `json:"scenario"`
	Candidate string  `json:"candidate"`
	Prompt    string  `json:"prompt"`
	Secondary string  `json:"secondaryText"`
	Time      float64 `json:"time"`
}

func (it *RoundItem) UnmarshalJSON(data []byte) error {
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	prompt := raw.Scenario
	if prompt == "" {
		prompt = raw.Question
	}
	if prompt == "" {
		prompt = raw.Prompt
	}
	secondary := raw.Candidate
	if secondary == "" {
		secondary = raw.Secondary
	}
	*it = RoundItem{
		ID:            raw.ID,
		Prompt:        prompt,
		SecondaryText: secondary,
		Time:          raw.Time,
	}
	return nil
}

// Outcome is the recorded result of one round. Never mutated once appended.
type Outcome struct {
	RoundItemID   ItemID `json:"roundItemId"`
	Prompt        string `json:"prompt"`
	SecondaryText string `json:"secondaryText,omitempty"`
	Response      string `json:"response"`
	Reason        string `json:"reason,omitempty"`
	Auto          bool   `json:"auto"`
}
