// Package records holds the operational records the dashboard works over:
// shipments, deals and the communications attached to them.
package records

import (
	"time"

	"opsdesk/internal/compliance"
	"opsdesk/pkg/domain"
)

// Shipment is a stored shipment. The compliance fields are embedded so the
// JSON shape matches the ad-hoc check payload plus identity and timestamps.
type Shipment struct {
	ID        domain.ShipmentID `json:"id"`
	Reference string            `json:"reference,omitempty"`
	Customer  string            `json:"customer,omitempty"`
	compliance.Shipment
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ComplianceShipment satisfies compliance.Record.
func (s Shipment) ComplianceShipment() compliance.Shipment {
	return s.Shipment
}

// Subject is the audit subject for this shipment.
func (s Shipment) Subject() string {
	return "shipment:" + s.ID.String()
}

// Label is a human-friendly name: the reference when set, else the ID.
func (s Shipment) Label() string {
	if s.Reference != "" {
		return s.Reference
	}
	return s.ID.String()
}

// Deal is a commercial opportunity tracked in the pipeline.
type Deal struct {
	ID                 domain.DealID    `json:"id"`
	Name               string           `json:"name"`
	Customer           string           `json:"customer,omitempty"`
	Stage              domain.DealStage `json:"stage"`
	Value              float64          `json:"value"`
	Currency           string           `json:"currency,omitempty"`
	ChampionIdentified bool             `json:"championIdentified"`
	QuoteSent          bool             `json:"quoteSent"`
	CompetitorCount    int              `json:"competitorCount"`
	LastContactAt      *time.Time       `json:"lastContactAt,omitempty"`
	ExpectedCloseAt    *time.Time       `json:"expectedCloseAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

func (d Deal) Subject() string {
	return "deal:" + d.ID.String()
}

// Direction of a communication relative to the operations team.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Channel a communication arrived on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
	ChannelChat  Channel = "chat"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelPhone, ChannelChat:
		return true
	}
	return false
}

// Communication is one message linked to a shipment and/or a deal.
type Communication struct {
	ID          domain.CommunicationID `json:"id"`
	ShipmentID  *domain.ShipmentID     `json:"shipmentId,omitempty"`
	DealID      *domain.DealID         `json:"dealId,omitempty"`
	Direction   Direction              `json:"direction"`
	Channel     Channel                `json:"channel"`
	From        string                 `json:"from,omitempty"`
	Subject     string                 `json:"subject,omitempty"`
	Body        string                 `json:"body,omitempty"`
	SentAt      time.Time              `json:"sentAt"`
	RespondedAt *time.Time             `json:"respondedAt,omitempty"`
}

func (c Communication) AuditSubject() string {
	return "communication:" + c.ID.String()
}

// AwaitingReply reports an inbound message nobody has answered yet.
func (c Communication) AwaitingReply() bool {
	return c.Direction == DirectionInbound && c.RespondedAt == nil
}

// CommunicationFilter narrows ListCommunications. Zero value lists everything.
type CommunicationFilter struct {
	ShipmentID *domain.ShipmentID
	DealID     *domain.DealID
}

// Matches reports whether c passes the filter.
func (f CommunicationFilter) Matches(c *Communication) bool {
	if f.ShipmentID != nil && (c.ShipmentID == nil || *c.ShipmentID != *f.ShipmentID) {
		return false
	}
	if f.DealID != nil && (c.DealID == nil || *c.DealID != *f.DealID) {
		return false
	}
	return true
}

// Snapshot is a consistent view of every record, used by the heuristics
// notifications pass and the daily brief.
type Snapshot struct {
	Shipments      []*Shipment
	Deals          []*Deal
	Communications []*Communication
}

// CommunicationsFor returns the communications linked to a shipment.
func (s Snapshot) CommunicationsFor(id domain.ShipmentID) []*Communication {
	filter := CommunicationFilter{ShipmentID: &id}
	var out []*Communication
	for _, c := range s.Communications {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
