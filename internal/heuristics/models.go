// Package heuristics scores deals and shipments and derives operator
// notifications from SLA breaches. Everything here is pure: callers pass the
// settings snapshot, the records and the evaluation time.
package heuristics

import (
	"time"

	"opsdesk/pkg/domain"
)

// Factor explains one adjustment applied to a score.
type Factor struct {
	Code   string `json:"code"`
	Impact int    `json:"impact"`
	Detail string `json:"detail"`
}

// WinScore is the win likelihood of a deal, 0..100.
type WinScore struct {
	DealID  domain.DealID `json:"dealId"`
	Score   int           `json:"score"`
	Factors []Factor      `json:"factors"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LevelFor buckets a 0..100 score.
func LevelFor(score int) RiskLevel {
	switch {
	case score < 34:
		return RiskLow
	case score < 67:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// RiskScore is the customer-experience risk of a shipment, 0..100.
type RiskScore struct {
	ShipmentID domain.ShipmentID `json:"shipmentId"`
	Score      int               `json:"score"`
	Level      RiskLevel         `json:"level"`
	DelayDays  int               `json:"delayDays"`
	Factors    []Factor          `json:"factors"`
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities; higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

type Kind string

const (
	KindOverdueArrival    Kind = "overdue_arrival"
	KindSLADelay          Kind = "sla_delay"
	KindComplianceFlagged Kind = "compliance_flagged"
	KindUnansweredMessage Kind = "unanswered_message"
	KindStaleDeal         Kind = "stale_deal"
	KindCXRisk            Kind = "cx_risk"
)

type SubjectType string

const (
	SubjectShipment      SubjectType = "shipment"
	SubjectDeal          SubjectType = "deal"
	SubjectCommunication SubjectType = "communication"
)

// Notification is an operator-facing alert. The ID is derived from kind and
// subject, so the same condition keeps the same ID across sweeps and an
// acknowledgement sticks until the condition clears.
type Notification struct {
	ID           domain.NotificationID `json:"id"`
	Kind         Kind                  `json:"kind"`
	Severity     Severity              `json:"severity"`
	SubjectType  SubjectType           `json:"subjectType"`
	SubjectID    string                `json:"subjectId"`
	Message      string                `json:"message"`
	CreatedAt    time.Time             `json:"createdAt"`
	Acknowledged bool                  `json:"acknowledged"`
}

func newNotification(kind Kind, sev Severity, subjectType SubjectType, subjectID, msg string, at time.Time) Notification {
	return Notification{
		ID:          domain.NotificationIDFor(string(kind), string(subjectType)+":"+subjectID),
		Kind:        kind,
		Severity:    sev,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Message:     msg,
		CreatedAt:   at.UTC(),
	}
}
