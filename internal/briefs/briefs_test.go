package briefs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdesk/internal/compliance"
	"opsdesk/internal/heuristics"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestShipmentBrief(t *testing.T) {
	sent := now.Add(-2 * time.Hour)
	in := ShipmentInput{
		Shipment: records.Shipment{Reference: "SH-100", Customer: "Acme"},
		Compliance: compliance.BuildResult([]compliance.Finding{
			{RuleID: compliance.RuleMissingShipper, Message: "Missing shipper information"},
		}, now),
		Risk: heuristics.RiskScore{
			Score:     21,
			Level:     heuristics.RiskLow,
			DelayDays: 2,
			Factors:   []heuristics.Factor{{Code: "delay", Impact: 16, Detail: "2 day(s) behind promise"}},
		},
		Communications: []*records.Communication{
			{Direction: records.DirectionInbound, Channel: records.ChannelEmail, SentAt: sent},
		},
	}

	b, err := Shipment(in, now)
	require.NoError(t, err)

	assert.Equal(t, "Shipment SH-100", b.Title)
	assert.Equal(t, "Shipment SH-100 for Acme is flagged with low customer-experience risk (21/100).", b.Summary)
	assert.Equal(t, []string{
		"Missing shipper information",
		"Running 2 day(s) behind the promised date",
		"1 inbound message(s) awaiting a reply",
		"Last inbound message via email 2 hours ago",
	}, b.Highlights)
	assert.Equal(t, now, b.GeneratedAt)
	assert.Contains(t, b.Markdown, "# Shipment SH-100\n")
	assert.Contains(t, b.Markdown, "Status: **flagged** (checked 2024-03-15T12:00:00.000Z)")
	assert.Contains(t, b.Markdown, "- 2 day(s) behind promise (+16)")

	again, err := Shipment(in, now)
	require.NoError(t, err)
	assert.Equal(t, b, again, "rendering is deterministic")
}

func TestShipmentBriefNothingToReport(t *testing.T) {
	b, err := Shipment(ShipmentInput{
		Shipment:   records.Shipment{ID: domain.NewShipmentID()},
		Compliance: compliance.BuildResult(nil, now),
		Risk:       heuristics.RiskScore{Level: heuristics.RiskLow},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{noAttentionLabel}, b.Highlights)
	assert.Contains(t, b.Summary, "is cleared with low")
}

func TestDailyBrief(t *testing.T) {
	in := DailyInput{
		Shipments: []ShipmentLine{
			{Label: "SH-1", Flagged: true, Findings: 2, Risk: heuristics.RiskScore{Level: heuristics.RiskHigh}},
			{Label: "SH-2", Risk: heuristics.RiskScore{Level: heuristics.RiskLow}},
		},
		Deals: []DealLine{
			{Name: "Beta", Stage: domain.DealStageProposal, Value: 5000, Currency: "USD", Score: 50},
			{Name: "Alpha", Stage: domain.DealStageNegotiation, Value: 12500.5, Currency: "USD", Score: 80},
			{Name: "Closed", Stage: domain.DealStageWon, Value: 99999, Score: 100},
		},
		Notifications: []heuristics.Notification{
			{Severity: heuristics.SeverityWarning, Kind: heuristics.KindComplianceFlagged, Message: "flagged", CreatedAt: now},
			{Severity: heuristics.SeverityCritical, Kind: heuristics.KindCXRisk, Message: "risky", CreatedAt: now},
		},
	}

	b, err := Daily(in, now)
	require.NoError(t, err)

	assert.Equal(t, "Daily operations brief 2024-03-15", b.Title)
	assert.Equal(t, "2 shipment(s) tracked, 1 flagged for compliance and 1 at high risk. 2 open deal(s) worth 17,500.5. 1 critical notification(s).", b.Summary)
	assert.Equal(t, []string{
		"[critical] risky",
		"[warning] flagged",
		"Deal Alpha is at 80% win likelihood (negotiation)",
		"Deal Beta is at 50% win likelihood (proposal)",
	}, b.Highlights)
	assert.Contains(t, b.Markdown, "| critical | cx_risk | risky |")
	assert.Contains(t, b.Markdown, "| Alpha | negotiation | USD 12,500.5 | 80% |")
	assert.Contains(t, b.Markdown, "| Closed | won | 99,999 | 100% |")
}

func TestDailyBriefEmpty(t *testing.T) {
	b, err := Daily(DailyInput{}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{noAttentionLabel}, b.Highlights)
	assert.Contains(t, b.Markdown, "No open notifications.")
	assert.Contains(t, b.Markdown, "No deals in the pipeline.")
}
