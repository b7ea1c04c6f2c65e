package engine

import (
	"fmt"
	"strings"

	"stress-quiz/internal/domain"
)

const (
	noAnswer = "[No Answer]"
	noReason = "(none)"
)

// Recorder keeps the session's outcomes in round order.
type Recorder struct {
	mode     domain.Mode
	outcomes []domain.Outcome
}

func NewRecorder(mode domain.Mode) *Recorder {
	return &Recorder{mode: mode}
}

// Record appends o. Outcomes are never reordered or deduplicated.
func (r *Recorder) Record(o domain.Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func (r *Recorder) Len() int {
	return len(r.outcomes)
}

// Outcomes returns a copy of the history.
func (r *Recorder) Outcomes() []domain.Outcome {
	out := make([]domain.Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

func (r *Recorder) Render() Summary {
	return Render(r.mode, r.outcomes)
}

// SummaryLine is one round in the final summary.
type SummaryLine struct {
	Number        int    `json:"number"`
	Prompt        string `json:"prompt"`
	SecondaryText string `json:"secondaryText,omitempty"`
	Response      string `json:"response"`
	Reason        string `json:"reason,omitempty"`
	Auto          bool   `json:"auto"`
}

// Summary is a read-only projection of the outcomes.
type Summary struct {
	Mode  domain.Mode   `json:"mode"`
	Lines []SummaryLine `json:"lines"`
}

// Render projects outcomes into a Summary without scoring or aggregation.
func Render(mode domain.Mode, outcomes []domain.Outcome) Summary {
	lines := make([]SummaryLine, 0, len(outcomes))
	for i, o := range outcomes {
		lines = append(lines, SummaryLine{
			Number:        i + 1,
			Prompt:        o.Prompt,
			SecondaryText: o.SecondaryText,
			Response:      o.Response,
			Reason:        o.Reason,
			Auto:          o.Auto,
		})
	}
	return Summary{Mode: mode, Lines: lines}
}

// Text renders the summary for plain-text output.
func (s Summary) Text() string {
	var b strings.Builder
	for i, l := range s.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Q%d: %s\n", l.Number, l.Prompt)
		if s.Mode == domain.ModeJudge {
			fmt.Fprintf(&b, "Candidate: %s\n", l.SecondaryText)
			fmt.Fprintf(&b, "Your decision: %s%s\n", l.Response, autoTag(l.Auto))
			fmt.Fprintf(&b, "Reason: %s\n", orDefault(l.Reason, noReason))
			continue
		}
		fmt.Fprintf(&b, "Your answer: %s\n", orDefault(l.Response, noAnswer))
	}
	return b.String()
}

// LogLine is the one-line running log entry for the round at index.
func LogLine(mode domain.Mode, index int, o domain.Outcome) string {
	if mode == domain.ModeJudge {
		line := fmt.Sprintf("Q%d: %s%s", index+1, o.Response, autoTag(o.Auto))
		if o.Reason != "" {
			line += " - " + o.Reason
		}
		return line
	}
	return fmt.Sprintf("Q%d: %s", index+1, orDefault(o.Response, noAnswer))
}

func autoTag(auto bool) string {
	if auto {
		return " (auto)"
	}
	return ""
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
