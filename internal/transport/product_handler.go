package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the admin payload for creating or replacing a product.
type ProductRequest struct {
	ID                  string            `json:"id" validate:"omitempty,max=255"`
	Name                string            `json:"name" validate:"required,max=255"`
	Description         string            `json:"description"`
	DetailedDescription string            `json:"detailed_description"`
	Category            string            `json:"category" validate:"required,category"`
	Price               string            `json:"price" validate:"required,brl_amount"`
	Materials           []string          `json:"materials" validate:"dive,required"`
	Features            []string          `json:"features" validate:"dive,required"`
	Dimensions          domain.Dimensions `json:"dimensions"`
	Images              []string          `json:"images" validate:"dive,required"`
}

func (req ProductRequest) toProduct() *domain.Product {
	return &domain.Product{
		ID:                  strings.TrimSpace(req.ID),
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		Category:            req.Category,
		Price:               strings.TrimSpace(req.Price),
		Materials:           nonNil(req.Materials),
		Features:            nonNil(req.Features),
		Dimensions:          req.Dimensions,
		Images:              nonNil(req.Images),
	}
}

func nonNil(l []string) domain.StringList {
	if l == nil {
		return domain.StringList{}
	}
	return domain.StringList(l)
}

// ProductHandler is the back-office product CRUD.
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(protect)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/export", h.Export)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	product := req.toProduct()
	if err := h.products.Create(r.Context(), product); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update replaces the product named in the path; an id in the body is ignored.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	product := req.toProduct()
	product.ID = pathParam(r, "id")
	if err := h.products.Update(r.Context(), product); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), pathParam(r, "id")); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export streams the catalog as CSV.
func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.products.ExportCSV(r.Context(), &buf); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	filename := fmt.Sprintf("produtos-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
