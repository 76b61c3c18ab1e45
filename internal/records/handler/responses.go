package handler

import "opsdesk/internal/records"

type ShipmentList struct {
	Shipments []*records.Shipment `json:"shipments"`
}

type DealList struct {
	Deals []*records.Deal `json:"deals"`
}

type CommunicationList struct {
	Communications []*records.Communication `json:"communications"`
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
