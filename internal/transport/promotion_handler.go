package transport

import (
	"net/http"
	"strconv"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PromotionRequest is the admin payload for a promotion. Dates are RFC 3339.
type PromotionRequest struct {
	ProductID          string    `json:"product_id" validate:"required"`
	DiscountPercentage int       `json:"discount_percentage" validate:"gte=1,lte=99"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	IsActive           *bool     `json:"is_active"`
}

func (req PromotionRequest) toPromotion() *domain.Promotion {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &domain.Promotion{
		ProductID:          req.ProductID,
		DiscountPercentage: req.DiscountPercentage,
		StartDate:          req.StartDate.UTC(),
		EndDate:            req.EndDate.UTC(),
		IsActive:           active,
	}
}

// PromotionHandler is the back-office promotion CRUD.
type PromotionHandler struct {
	promotions service.PromotionService
	logger     *zap.Logger
	now        func() time.Time
}

func NewPromotionHandler(promotions service.PromotionService, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, logger: logger, now: time.Now}
}

func (h *PromotionHandler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Route("/api/admin/promotions", func(r chi.Router) {
		r.Use(protect)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns every promotion, or only those running now with ?active=true.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	var (
		promotions []domain.Promotion
		err        error
	)
	if activeOnly {
		promotions, err = h.promotions.ListActive(r.Context(), h.now())
	} else {
		promotions, err = h.promotions.List(r.Context())
	}
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"promotions": promotions})
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	promotion, err := h.promotions.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promotion)
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PromotionRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	promotion := req.toPromotion()
	if err := h.promotions.Create(r.Context(), promotion); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, promotion)
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PromotionRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	promotion := req.toPromotion()
	promotion.ID = pathParam(r, "id")
	if err := h.promotions.Update(r.Context(), promotion); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, promotion)
}

func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.promotions.Delete(r.Context(), pathParam(r, "id")); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
