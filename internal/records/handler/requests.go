package handler

import (
	"strings"
	"time"

	"opsdesk/internal/compliance"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
)

const maxTextLen = 256

// CreateShipmentRequest is the body of POST /shipments. The compliance fields
// are accepted with the same lenient typing as POST /compliance/check.
type CreateShipmentRequest struct {
	Reference string `json:"reference"`
	Customer  string `json:"customer"`
	compliance.Shipment
}

func (r *CreateShipmentRequest) Normalize() {
	r.Reference = strings.TrimSpace(r.Reference)
	r.Customer = strings.TrimSpace(r.Customer)
}

func (r *CreateShipmentRequest) Validate() error {
	if len(r.Reference) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "reference is too long")
	}
	if len(r.Customer) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "customer is too long")
	}
	if w, ok := r.Weight.Get(); ok && w < 0 {
		return dErrors.New(dErrors.CodeValidation, "weight cannot be negative")
	}
	return nil
}

func (r *CreateShipmentRequest) ToShipment() *records.Shipment {
	return &records.Shipment{
		Reference: r.Reference,
		Customer:  r.Customer,
		Shipment:  r.Shipment,
	}
}

// CreateDealRequest is the body of POST /deals.
type CreateDealRequest struct {
	Name               string     `json:"name"`
	Customer           string     `json:"customer"`
	Stage              string     `json:"stage"`
	Value              float64    `json:"value"`
	Currency           string     `json:"currency"`
	ChampionIdentified bool       `json:"championIdentified"`
	QuoteSent          bool       `json:"quoteSent"`
	CompetitorCount    int        `json:"competitorCount"`
	LastContactAt      *time.Time `json:"lastContactAt"`
	ExpectedCloseAt    *time.Time `json:"expectedCloseAt"`

	stage domain.DealStage
}

func (r *CreateDealRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Customer = strings.TrimSpace(r.Customer)
	r.Stage = strings.ToLower(strings.TrimSpace(r.Stage))
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

func (r *CreateDealRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if r.Value < 0 {
		return dErrors.New(dErrors.CodeValidation, "value cannot be negative")
	}
	if r.CompetitorCount < 0 {
		return dErrors.New(dErrors.CodeValidation, "competitorCount cannot be negative")
	}
	r.stage = domain.DealStageProspect
	if r.Stage != "" {
		stage, err := domain.ParseDealStage(r.Stage)
		if err != nil {
			return err
		}
		r.stage = stage
	}
	return nil
}

func (r *CreateDealRequest) ToDeal() *records.Deal {
	return &records.Deal{
		Name:               r.Name,
		Customer:           r.Customer,
		Stage:              r.stage,
		Value:              r.Value,
		Currency:           r.Currency,
		ChampionIdentified: r.ChampionIdentified,
		QuoteSent:          r.QuoteSent,
		CompetitorCount:    r.CompetitorCount,
		LastContactAt:      r.LastContactAt,
		ExpectedCloseAt:    r.ExpectedCloseAt,
	}
}

// CreateCommunicationRequest is the body of POST /communications.
type CreateCommunicationRequest struct {
	ShipmentID  string     `json:"shipmentId"`
	DealID      string     `json:"dealId"`
	Direction   string     `json:"direction"`
	Channel     string     `json:"channel"`
	From        string     `json:"from"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	SentAt      *time.Time `json:"sentAt"`
	RespondedAt *time.Time `json:"respondedAt"`

	shipmentID *domain.ShipmentID
	dealID     *domain.DealID
}

func (r *CreateCommunicationRequest) Normalize() {
	r.ShipmentID = strings.TrimSpace(r.ShipmentID)
	r.DealID = strings.TrimSpace(r.DealID)
	r.Direction = strings.ToLower(strings.TrimSpace(r.Direction))
	r.Channel = strings.ToLower(strings.TrimSpace(r.Channel))
	r.From = strings.TrimSpace(r.From)
}

func (r *CreateCommunicationRequest) Validate() error {
	if !records.Direction(r.Direction).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "direction must be inbound or outbound")
	}
	if !records.Channel(r.Channel).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "channel must be email, phone or chat")
	}
	if len(r.Subject) > maxTextLen {
		return dErrors.New(dErrors.CodeValidation, "subject is too long")
	}
	if r.ShipmentID != "" {
		id, err := domain.ParseShipmentID(r.ShipmentID)
		if err != nil {
			return err
		}
		r.shipmentID = &id
	}
	if r.DealID != "" {
		id, err := domain.ParseDealID(r.DealID)
		if err != nil {
			return err
		}
		r.dealID = &id
	}
	if r.SentAt != nil && r.RespondedAt != nil && r.RespondedAt.Before(*r.SentAt) {
		return dErrors.New(dErrors.CodeValidation, "respondedAt cannot precede sentAt")
	}
	return nil
}

func (r *CreateCommunicationRequest) ToCommunication() *records.Communication {
	c := &records.Communication{
		ShipmentID:  r.shipmentID,
		DealID:      r.dealID,
		Direction:   records.Direction(r.Direction),
		Channel:     records.Channel(r.Channel),
		From:        r.From,
		Subject:     r.Subject,
		Body:        r.Body,
		RespondedAt: r.RespondedAt,
	}
	if r.SentAt != nil {
		c.SentAt = r.SentAt.UTC()
	}
	return c
}
