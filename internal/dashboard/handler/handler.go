package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"opsdesk/internal/briefs"
	"opsdesk/internal/heuristics"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/platform/httputil"
	"opsdesk/pkg/requestcontext"
)

// Service defines the dashboard read models exposed over HTTP.
type Service interface {
	ShipmentRisk(ctx context.Context, id domain.ShipmentID) (heuristics.RiskScore, error)
	DealScore(ctx context.Context, id domain.DealID) (heuristics.WinScore, error)
	Notifications(ctx context.Context, includeAcknowledged bool) ([]heuristics.Notification, error)
	Acknowledge(ctx context.Context, id domain.NotificationID) (heuristics.Notification, error)
	ShipmentBrief(ctx context.Context, id domain.ShipmentID) (briefs.Brief, error)
	DailyBrief(ctx context.Context) (briefs.Brief, error)
	Settings() heuristics.Settings
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/shipments/{id}/risk", h.HandleShipmentRisk)
	r.Get("/shipments/{id}/brief", h.HandleShipmentBrief)
	r.Get("/deals/{id}/score", h.HandleDealScore)
	r.Get("/notifications", h.HandleListNotifications)
	r.Post("/notifications/{id}/ack", h.HandleAcknowledge)
	r.Get("/briefs/daily", h.HandleDailyBrief)
	r.Get("/settings", h.HandleSettings)
}

func (h *Handler) HandleShipmentRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	risk, err := h.service.ShipmentRisk(ctx, id)
	if err != nil {
		h.fail(ctx, w, "shipment risk failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, risk)
}

func (h *Handler) HandleShipmentBrief(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	b, err := h.service.ShipmentBrief(ctx, id)
	if err != nil {
		h.fail(ctx, w, "shipment brief failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) HandleDealScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDealID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	score, err := h.service.DealScore(ctx, id)
	if err != nil {
		h.fail(ctx, w, "deal score failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, score)
}

// HandleListNotifications handles GET /notifications. Pass
// ?includeAcknowledged=true to see acknowledged ones too.
func (h *Handler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	include := false
	if raw := r.URL.Query().Get("includeAcknowledged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "includeAcknowledged must be a boolean"))
			return
		}
		include = v
	}
	list, err := h.service.Notifications(ctx, include)
	if err != nil {
		h.fail(ctx, w, "list notifications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NotificationList{Notifications: nonNil(list)})
}

func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.Acknowledge(ctx, id)
	if err != nil {
		h.fail(ctx, w, "acknowledge notification failed", err)
		return
	}
	h.logger.InfoContext(ctx, "notification acknowledged",
		"request_id", requestcontext.RequestID(ctx),
		"notification_id", id,
		"kind", n.Kind,
	)
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleDailyBrief(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := h.service.DailyBrief(ctx)
	if err != nil {
		h.fail(ctx, w, "daily brief failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) HandleSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Settings())
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

type NotificationList struct {
	Notifications []heuristics.Notification `json:"notifications"`
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
