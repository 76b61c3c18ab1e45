// Package domain holds value types shared across modules: typed identifiers and
// small enums that must be validated at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "opsdesk/pkg/domain-errors"
)

// Typed IDs keep shipment, deal and communication identifiers from being mixed
// up at compile time.
type (
	ShipmentID      uuid.UUID
	DealID          uuid.UUID
	CommunicationID uuid.UUID
	NotificationID  uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

// ParseShipmentID parses and validates a shipment identifier.
func ParseShipmentID(s string) (ShipmentID, error) {
	u, err := parseUUID("shipment_id", s)
	return ShipmentID(u), err
}

// ParseDealID parses and validates a deal identifier.
func ParseDealID(s string) (DealID, error) {
	u, err := parseUUID("deal_id", s)
	return DealID(u), err
}

// ParseCommunicationID parses and validates a communication identifier.
func ParseCommunicationID(s string) (CommunicationID, error) {
	u, err := parseUUID("communication_id", s)
	return CommunicationID(u), err
}

// ParseNotificationID parses and validates a notification identifier.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID("notification_id", s)
	return NotificationID(u), err
}

func NewShipmentID() ShipmentID           { return ShipmentID(uuid.New()) }
func NewDealID() DealID                   { return DealID(uuid.New()) }
func NewCommunicationID() CommunicationID { return CommunicationID(uuid.New()) }

func (id ShipmentID) String() string      { return uuid.UUID(id).String() }
func (id DealID) String() string          { return uuid.UUID(id).String() }
func (id CommunicationID) String() string { return uuid.UUID(id).String() }
func (id NotificationID) String() string  { return uuid.UUID(id).String() }

func (id ShipmentID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id DealID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CommunicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as canonical UUID strings in JSON.
func (id ShipmentID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id DealID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id CommunicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id NotificationID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *ShipmentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *DealID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *CommunicationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *NotificationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NotificationIDFor derives a stable notification ID so that the same condition
// on the same subject always maps to the same notification across sweeps.
func NotificationIDFor(kind, subject string) NotificationID {
	return NotificationID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+"/"+subject)))
}
