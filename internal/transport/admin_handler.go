package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"rads-market/internal/middleware"
	"rads-market/internal/notify"
	"rads-market/internal/repository"
	"rads-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSubscriber feeds the admin live view with request workflow events
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan notify.Event, func())
}

// AdminHandler handles HTTP requests for admin operations. Every route is
// gated on the admin dashboard capability.
type AdminHandler struct {
	approvalService service.ApprovalService
	catalogService  service.CatalogService
	events          EventSubscriber
	logger          *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	approvalService service.ApprovalService,
	catalogService service.CatalogService,
	events EventSubscriber,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		approvalService: approvalService,
		catalogService:  catalogService,
		events:          events,
		logger:          logger,
	}
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(
	r chi.Router,
	authMiddleware func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireAdmin)

		r.Get("/seller-requests", h.ListSellerRequests)
		r.Post("/seller-requests/{id}/approve", h.ApproveSellerRequest)
		r.Post("/seller-requests/{id}/reject", h.RejectSellerRequest)

		r.Get("/product-requests", h.ListProductRequests)
		r.Post("/product-requests/{id}/approve", h.ApproveProductRequest)
		r.Post("/product-requests/{id}/reject", h.RejectProductRequest)

		r.Delete("/products/{id}", h.RemoveProduct)

		r.Get("/events", h.StreamEvents)
	})
}

// ListSellerRequests returns pending seller applications
func (h *AdminHandler) ListSellerRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.approvalService.ListPendingSellerRequests(r.Context())
	if err != nil {
		h.logger.Error("Failed to list seller requests", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list seller requests")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, requests)
}

// ApproveSellerRequest promotes the applicant
func (h *AdminHandler) ApproveSellerRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	request, err := h.approvalService.ApproveSellerRequest(r.Context(), id)
	if err != nil {
		h.respondDecisionError(w, err, "failed to approve seller request")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, request)
}

// RejectSellerRequest declines the applicant
func (h *AdminHandler) RejectSellerRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	request, err := h.approvalService.RejectSellerRequest(r.Context(), id)
	if err != nil {
		h.respondDecisionError(w, err, "failed to reject seller request")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, request)
}

// ListProductRequests returns pending candidate listings
func (h *AdminHandler) ListProductRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.approvalService.ListPendingProductRequests(r.Context())
	if err != nil {
		h.logger.Error("Failed to list product requests", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list product requests")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, requests)
}

// ApproveProductRequest promotes the candidate listing into the catalog
func (h *AdminHandler) ApproveProductRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	product, err := h.approvalService.ApproveProductRequest(r.Context(), id)
	if err != nil {
		h.respondDecisionError(w, err, "failed to approve product request")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// RejectProductRequest discards the candidate listing
func (h *AdminHandler) RejectProductRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request ID")
		return
	}

	request, err := h.approvalService.RejectProductRequest(r.Context(), id)
	if err != nil {
		h.respondDecisionError(w, err, "failed to reject product request")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, request)
}

// RemoveProduct takes a live listing off the storefront
func (h *AdminHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.RemoveProduct(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to remove product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}

// StreamEvents pushes request workflow events over server-sent events so
// the admin dashboard updates without polling.
func (h *AdminHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, stop := h.events.Subscribe(r.Context())
	defer stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("Failed to encode event", zap.Error(err))
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}

// respondDecisionError maps workflow decision errors to HTTP statuses. A
// request that is gone or already decided reports conflict-style errors so
// a racing admin sees what happened.
func (h *AdminHandler) respondDecisionError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case repository.ErrSellerRequestNotFound, repository.ErrProductRequestNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "request not found")
	case repository.ErrRequestNotPending:
		middleware.RespondWithError(w, http.StatusConflict, "request has already been decided")
	case repository.ErrAccountNotFound:
		middleware.RespondWithError(w, http.StatusConflict, "request refers to a missing account")
	default:
		h.logger.Error("Request decision failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
