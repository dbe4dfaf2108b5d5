package transport

import (
	"net/http"

	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/pricing"
	"moveis-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductDetailResponse is a resolved product with its WhatsApp link.
type ProductDetailResponse struct {
	Product     pricing.ResolvedProduct `json:"product"`
	WhatsAppURL string                  `json:"whatsapp_url"`
}

// ContactResponse carries the store phone and the general WhatsApp link.
type ContactResponse struct {
	Phone       string `json:"phone"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// CatalogHandler serves the public storefront.
type CatalogHandler struct {
	catalog service.CatalogService
	contact service.ContactLinks
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, contact service.ContactLinks, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, contact: contact, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{category}/products", h.ListCategoryProducts)
		r.Get("/contact", h.GetContact)
	})
}

// ListProducts returns every product with its current price, newest first.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), pathParam(r, "id"))
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		Product:     *product,
		WhatsAppURL: h.contact.ProductURL(*product),
	})
}

// ListCategories returns one section per category, empty ones included.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.ListByCategory(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"categories": sections})
}

func (h *CatalogHandler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	products, err := h.catalog.ProductsInCategory(r.Context(), category)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pricing.Section{Category: category, Products: products})
}

func (h *CatalogHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, ContactResponse{
		Phone:       h.contact.Phone(),
		WhatsAppURL: h.contact.GeneralURL(),
	})
}
