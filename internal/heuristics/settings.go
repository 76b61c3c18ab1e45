package heuristics

import (
	"slices"

	"opsdesk/internal/compliance"
	dErrors "opsdesk/pkg/domain-errors"
)

// SLA holds the service-level thresholds notifications are derived from.
type SLA struct {
	ResponseHours     int `yaml:"response_hours" json:"responseHours"`
	DealFollowUpDays  int `yaml:"deal_follow_up_days" json:"dealFollowUpDays"`
	MaxDelayDays      int `yaml:"max_delay_days" json:"maxDelayDays"`
	ArrivalGraceHours int `yaml:"arrival_grace_hours" json:"arrivalGraceHours"`
}

// Weights are the score adjustments applied by WinLikelihood and CXRisk.
type Weights struct {
	ChampionIdentified int `yaml:"champion_identified" json:"championIdentified"`
	QuoteSent          int `yaml:"quote_sent" json:"quoteSent"`
	CompetitorPenalty  int `yaml:"competitor_penalty" json:"competitorPenalty"`
	StaleContact       int `yaml:"stale_contact" json:"staleContact"`
	OverdueClose       int `yaml:"overdue_close" json:"overdueClose"`
	DelayPerDay        int `yaml:"delay_per_day" json:"delayPerDay"`
	ComplianceFinding  int `yaml:"compliance_finding" json:"complianceFinding"`
	UnansweredMessage  int `yaml:"unanswered_message" json:"unansweredMessage"`
	NegativeSentiment  int `yaml:"negative_sentiment" json:"negativeSentiment"`
}

// Settings is an immutable snapshot of heuristics configuration. Compliance
// carries watchlist overrides; the zero value leaves the defaults in place.
type Settings struct {
	SLA              SLA                   `yaml:"sla" json:"sla"`
	Weights          Weights               `yaml:"weights" json:"weights"`
	NegativeKeywords []string              `yaml:"negative_keywords" json:"negativeKeywords"`
	Compliance       compliance.Watchlists `yaml:"compliance" json:"compliance"`
}

func DefaultSettings() Settings {
	return Settings{
		SLA: SLA{
			ResponseHours:     24,
			DealFollowUpDays:  7,
			MaxDelayDays:      3,
			ArrivalGraceHours: 12,
		},
		Weights: Weights{
			ChampionIdentified: 10,
			QuoteSent:          5,
			CompetitorPenalty:  5,
			StaleContact:       15,
			OverdueClose:       10,
			DelayPerDay:        8,
			ComplianceFinding:  5,
			UnansweredMessage:  10,
			NegativeSentiment:  10,
		},
		NegativeKeywords: []string{"late", "delay", "damaged", "complaint", "cancel", "refund", "angry"},
		Compliance:       compliance.DefaultWatchlists(),
	}
}

// Validate rejects negative thresholds and weights.
func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"sla.response_hours", s.SLA.ResponseHours},
		{"sla.deal_follow_up_days", s.SLA.DealFollowUpDays},
		{"sla.max_delay_days", s.SLA.MaxDelayDays},
		{"sla.arrival_grace_hours", s.SLA.ArrivalGraceHours},
		{"weights.champion_identified", s.Weights.ChampionIdentified},
		{"weights.quote_sent", s.Weights.QuoteSent},
		{"weights.competitor_penalty", s.Weights.CompetitorPenalty},
		{"weights.stale_contact", s.Weights.StaleContact},
		{"weights.overdue_close", s.Weights.OverdueClose},
		{"weights.delay_per_day", s.Weights.DelayPerDay},
		{"weights.compliance_finding", s.Weights.ComplianceFinding},
		{"weights.unanswered_message", s.Weights.UnansweredMessage},
		{"weights.negative_sentiment", s.Weights.NegativeSentiment},
		{"compliance.min_hs_code_length", s.Compliance.MinHSCodeLength},
	}
	for _, c := range checks {
		if c.value < 0 {
			return dErrors.New(dErrors.CodeValidation, c.name+" cannot be negative")
		}
	}
	if s.Compliance.HeavyCargoLimitKg < 0 {
		return dErrors.New(dErrors.CodeValidation, "compliance.heavy_cargo_limit_kg cannot be negative")
	}
	return nil
}

// Clone returns a deep copy so snapshots can be handed out freely.
func (s Settings) Clone() Settings {
	out := s
	out.NegativeKeywords = slices.Clone(s.NegativeKeywords)
	out.Compliance = s.Compliance.Clone()
	return out
}
