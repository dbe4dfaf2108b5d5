package transport

import (
	"net/http"
	"strconv"

	"moveis-catalog/internal/analytics"
	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventRequest is a storefront interaction reported by the front-end.
type EventRequest struct {
	Type        string `json:"type" validate:"required,oneof=page_view product_view image_view category_view whatsapp_click"`
	Path        string `json:"path" validate:"max=512"`
	ProductID   string `json:"product_id" validate:"required_if=Type product_view,max=255"`
	ProductName string `json:"product_name" validate:"max=255"`
	Category    string `json:"category" validate:"max=64"`
	ImageURL    string `json:"image_url" validate:"max=1024"`
}

// AnalyticsHandler ingests storefront events and serves the admin summary.
type AnalyticsHandler struct {
	tracker *analytics.Tracker
	logger  *zap.Logger
}

func NewAnalyticsHandler(tracker *analytics.Tracker, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker, logger: logger}
}

// RegisterRoutes mounts the public ingestion route behind limit and the
// admin routes behind protect.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, protect, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/api/analytics/events", h.RecordEvent)

	r.Route("/api/admin/analytics", func(r chi.Router) {
		r.Use(protect)
		r.Get("/stats", h.GetStats)
		r.Delete("/events", h.ClearEvents)
	})
}

func (h *AnalyticsHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	err := h.tracker.Record(domain.Event{
		Type:        domain.EventType(req.Type),
		Path:        req.Path,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// GetStats accepts top_products and top_pages to size the rankings.
func (h *AnalyticsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := analytics.Query{}
	for name, dst := range map[string]*int{"top_products": &q.TopProducts, "top_pages": &q.TopPages} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: name, Message: "Value must be a number between 1 and 100"},
			})
			return
		}
		*dst = n
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.tracker.Summarize(q))
}

func (h *AnalyticsHandler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Clear(r.Context()); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Analytics cleared")
	w.WriteHeader(http.StatusNoContent)
}
