package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsdesk/internal/compliance"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/platform/httputil"
	"opsdesk/pkg/requestcontext"
)

// Service defines the compliance operations exposed over HTTP.
type Service interface {
	Check(ctx context.Context, shipment compliance.Shipment) (compliance.Result, error)
	CheckBatch(ctx context.Context, shipments []compliance.Shipment) ([]compliance.Result, error)
	CheckStored(ctx context.Context, id domain.ShipmentID) (compliance.Result, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/check", h.HandleCheck)
	r.Post("/compliance/check/batch", h.HandleCheckBatch)
	r.Get("/shipments/{id}/compliance", h.HandleCheckStored)
}

// HandleCheck handles POST /compliance/check. The body is the shipment itself.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var raw json.RawMessage
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		httputil.WriteError(w, err)
		return
	}
	shipment, err := compliance.ToShipment(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Check(ctx, shipment)
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance check failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "compliance checked",
		"request_id", requestID,
		"status", result.Status,
		"findings", len(result.Findings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleCheckBatch handles POST /compliance/check/batch.
func (h *Handler) HandleCheckBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.CheckBatch(ctx, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "batch compliance check failed",
			"request_id", requestID,
			"size", len(req.Shipments),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch compliance checked",
		"request_id", requestID,
		"size", len(results),
	)
	httputil.WriteJSON(w, http.StatusOK, BatchCheckResponse{Results: results})
}

// HandleCheckStored handles GET /shipments/{id}/compliance.
func (h *Handler) HandleCheckStored(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.CheckStored(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "stored compliance check failed",
			"request_id", requestcontext.RequestID(ctx),
			"shipment_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// BatchCheckRequest is the body of POST /compliance/check/batch.
type BatchCheckRequest struct {
	Shipments []json.RawMessage `json:"shipments"`

	parsed []compliance.Shipment
}

// Validate converts every entry, naming the first one that is not a record.
func (r *BatchCheckRequest) Validate() error {
	if r.Shipments == nil {
		return dErrors.New(dErrors.CodeValidation, "shipments is required")
	}
	r.parsed = make([]compliance.Shipment, len(r.Shipments))
	for i, raw := range r.Shipments {
		sh, err := compliance.ToShipment(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("shipments[%d]: shipment must be a record", i))
		}
		r.parsed[i] = sh
	}
	return nil
}

func (r *BatchCheckRequest) Parsed() []compliance.Shipment {
	return r.parsed
}

type BatchCheckResponse struct {
	Results []compliance.Result `json:"results"`
}
