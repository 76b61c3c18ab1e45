package compliance

import (
	"encoding/json"
	"time"
)

// Status is the overall outcome of a check.
type Status string

const (
	StatusCleared Status = "cleared"
	StatusFlagged Status = "flagged"
)

// CheckedAtLayout renders checkedAt as ISO-8601 UTC with millisecond precision.
const CheckedAtLayout = "2006-01-02T15:04:05.000Z"

// Result is the derived compliance outcome. It is recomputed on every check.
type Result struct {
	Status    Status
	Findings  []Finding
	CheckedAt time.Time
}

// BuildResult assembles a Result; status is flagged iff findings is non-empty.
func BuildResult(findings []Finding, checkedAt time.Time) Result {
	if findings == nil {
		findings = []Finding{}
	}
	status := StatusCleared
	if len(findings) > 0 {
		status = StatusFlagged
	}
	return Result{
		Status:    status,
		Findings:  findings,
		CheckedAt: checkedAt.UTC().Truncate(time.Millisecond),
	}
}

// Flagged reports whether any rule fired.
func (r Result) Flagged() bool {
	return r.Status == StatusFlagged
}

// Messages returns the finding texts in rule order.
func (r Result) Messages() []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Message
	}
	return out
}

// RuleIDs returns the IDs of the rules that fired, in rule order.
func (r Result) RuleIDs() []RuleID {
	out := make([]RuleID, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.RuleID
	}
	return out
}

// FormattedCheckedAt renders CheckedAt with CheckedAtLayout.
func (r Result) FormattedCheckedAt() string {
	return r.CheckedAt.UTC().Format(CheckedAtLayout)
}

type resultJSON struct {
	Status    Status   `json:"status"`
	Findings  []string `json:"findings"`
	Rules     []RuleID `json:"rules"`
	CheckedAt string   `json:"checkedAt"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Status:    r.Status,
		Findings:  r.Messages(),
		Rules:     r.RuleIDs(),
		CheckedAt: r.FormattedCheckedAt(),
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	checkedAt, err := time.Parse(CheckedAtLayout, raw.CheckedAt)
	if err != nil {
		return err
	}
	findings := make([]Finding, len(raw.Findings))
	for i, msg := range raw.Findings {
		findings[i].Message = msg
		if i < len(raw.Rules) {
			findings[i].RuleID = raw.Rules[i]
		}
	}
	*r = Result{Status: raw.Status, Findings: findings, CheckedAt: checkedAt}
	return nil
}
