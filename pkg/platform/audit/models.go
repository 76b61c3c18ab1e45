package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and Kafka routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: every
	// compliance check and its outcome. Never sampled.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers operator activity and background work:
	// record ingestion, acknowledgements, sweeps.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject identifies the record acted on, e.g. "shipment:<uuid>".
	Subject  string
	Action   string
	Decision string
	Reason   string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// ActorID is the operator subject, or "system" for background work.
	ActorID string
}

type AuditEvent string

const (
	// Compliance events
	EventComplianceChecked AuditEvent = "compliance_checked"

	// Record events
	EventShipmentCreated     AuditEvent = "shipment_created"
	EventDealCreated         AuditEvent = "deal_created"
	EventCommunicationLogged AuditEvent = "communication_logged"

	// Dashboard events
	EventNotificationAcked   AuditEvent = "notification_acknowledged"
	EventDailyBriefGenerated AuditEvent = "daily_brief_generated"

	// Background events
	EventSLASweepCompleted  AuditEvent = "sla_sweep_completed"
	EventHeuristicsReloaded AuditEvent = "heuristics_reloaded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventComplianceChecked: CategoryCompliance,

	EventShipmentCreated:     CategoryOperations,
	EventDealCreated:         CategoryOperations,
	EventCommunicationLogged: CategoryOperations,
	EventNotificationAcked:   CategoryOperations,
	EventDailyBriefGenerated: CategoryOperations,
	EventSLASweepCompleted:   CategoryOperations,
	EventHeuristicsReloaded:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ActorSystem marks events produced by background workers.
const ActorSystem = "system"

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
