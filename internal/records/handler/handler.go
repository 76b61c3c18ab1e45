package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	"opsdesk/pkg/platform/httputil"
	"opsdesk/pkg/requestcontext"
)

// Service is the records service as seen by the HTTP layer.
type Service interface {
	CreateShipment(ctx context.Context, s *records.Shipment) (*records.Shipment, error)
	GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error)
	ListShipments(ctx context.Context) ([]*records.Shipment, error)
	CreateDeal(ctx context.Context, d *records.Deal) (*records.Deal, error)
	GetDeal(ctx context.Context, id domain.DealID) (*records.Deal, error)
	ListDeals(ctx context.Context) ([]*records.Deal, error)
	CreateCommunication(ctx context.Context, c *records.Communication) (*records.Communication, error)
	ListCommunications(ctx context.Context, filter records.CommunicationFilter) ([]*records.Communication, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the record endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/shipments", h.HandleCreateShipment)
	r.Get("/shipments", h.HandleListShipments)
	r.Get("/shipments/{id}", h.HandleGetShipment)
	r.Post("/deals", h.HandleCreateDeal)
	r.Get("/deals", h.HandleListDeals)
	r.Get("/deals/{id}", h.HandleGetDeal)
	r.Post("/communications", h.HandleCreateCommunication)
	r.Get("/communications", h.HandleListCommunications)
}

func (h *Handler) HandleCreateShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateShipmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sh, err := h.service.CreateShipment(ctx, req.ToShipment())
	if err != nil {
		h.fail(ctx, w, "create shipment failed", err)
		return
	}
	h.logger.InfoContext(ctx, "shipment created",
		"request_id", requestID,
		"shipment_id", sh.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, sh)
}

func (h *Handler) HandleListShipments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListShipments(ctx)
	if err != nil {
		h.fail(ctx, w, "list shipments failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ShipmentList{Shipments: nonNil(list)})
}

func (h *Handler) HandleGetShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.service.GetShipment(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get shipment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

func (h *Handler) HandleCreateDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateDealRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	d, err := h.service.CreateDeal(ctx, req.ToDeal())
	if err != nil {
		h.fail(ctx, w, "create deal failed", err)
		return
	}
	h.logger.InfoContext(ctx, "deal created",
		"request_id", requestID,
		"deal_id", d.ID,
		"stage", d.Stage,
	)
	httputil.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) HandleListDeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListDeals(ctx)
	if err != nil {
		h.fail(ctx, w, "list deals failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DealList{Deals: nonNil(list)})
}

func (h *Handler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDealID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.service.GetDeal(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get deal failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleCreateCommunication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCommunicationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.CreateCommunication(ctx, req.ToCommunication())
	if err != nil {
		h.fail(ctx, w, "log communication failed", err)
		return
	}
	h.logger.InfoContext(ctx, "communication logged",
		"request_id", requestID,
		"communication_id", c.ID,
		"direction", c.Direction,
	)
	httputil.WriteJSON(w, http.StatusCreated, c)
}

// HandleListCommunications serves GET /communications, optionally filtered by
// the shipmentId and dealId query parameters.
func (h *Handler) HandleListCommunications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter records.CommunicationFilter
	if raw := r.URL.Query().Get("shipmentId"); raw != "" {
		id, err := domain.ParseShipmentID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.ShipmentID = &id
	}
	if raw := r.URL.Query().Get("dealId"); raw != "" {
		id, err := domain.ParseDealID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.DealID = &id
	}
	list, err := h.service.ListCommunications(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "list communications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CommunicationList{Communications: nonNil(list)})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
