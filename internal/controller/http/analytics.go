package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
	"github.com/vadim/contentpulse/internal/domain/analytics/policy"
	"github.com/vadim/contentpulse/internal/httpx/response"
)

// DashboardPolicy defines the interface for dashboard operations
// Interface is defined by consumer (handler), not provider (policy)
type DashboardPolicy interface {
	Dashboard(ctx context.Context, in policy.DashboardInput) (*policy.DashboardOutput, error)
	Refresh(ctx context.Context, in policy.DashboardInput) (*policy.DashboardOutput, error)
	ResolveAuthorName(ctx context.Context, id string) string
}

// AnalyticsHandler handles HTTP requests for the analytics dashboard
type AnalyticsHandler struct {
	policy DashboardPolicy
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(p DashboardPolicy) *AnalyticsHandler {
	return &AnalyticsHandler{policy: p}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.Dashboard())
		r.Post("/refresh", h.Refresh())
	})
	r.Get("/authors/{id}", h.ResolveAuthor())
}

// Dashboard handles GET /dashboard
func (h *AnalyticsHandler) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.policy.Dashboard(r.Context(), policy.DashboardInput{
			Range: r.URL.Query().Get("range"),
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, out)
	}
}

// Refresh handles POST /dashboard/refresh
func (h *AnalyticsHandler) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.policy.Refresh(r.Context(), policy.DashboardInput{
			Range: r.URL.Query().Get("range"),
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		response.OK(w, out)
	}
}

// AuthorResponse represents a resolved author name
type AuthorResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ResolveAuthor handles GET /authors/{id}
func (h *AnalyticsHandler) ResolveAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			response.BadRequest(w, "author id is required")
			return
		}

		name := h.policy.ResolveAuthorName(r.Context(), id)
		response.OK(w, AuthorResponse{ID: id, DisplayName: name})
	}
}

// handleDomainError maps domain errors to HTTP responses
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidTimeRange):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrRateLimited):
		response.Error(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, entity.ErrComputeDeadlineExceeded):
		response.Error(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, entity.ErrNoSnapshot), errors.Is(err, entity.ErrRepositoryUnavailable):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
