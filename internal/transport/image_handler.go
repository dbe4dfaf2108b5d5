package transport

import (
	"errors"
	"net/http"

	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const multipartMemory = 8 << 20

// ImageHandler manages product photos.
type ImageHandler struct {
	images   service.ImageService
	maxBytes int64
	logger   *zap.Logger
}

// NewImageHandler caps multipart bodies at maxUploadMB plus room for the
// form envelope; the exact image limit is enforced by the service.
func NewImageHandler(images service.ImageService, maxUploadMB int64, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, maxBytes: (maxUploadMB + 1) << 20, logger: logger}
}

func (h *ImageHandler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Route("/api/admin/images", func(r chi.Router) {
		r.Use(protect)
		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Delete("/*", h.Delete)
	})
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	objects, err := h.images.List(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"images": objects})
}

// Upload expects a multipart form with the image in the "file" field.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "file", Message: "This field is required"},
		})
		return
	}
	defer file.Close()

	obj, err := h.images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, obj)
}

// Delete removes the image whose path (or public URL) follows /api/admin/images/.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), pathParam(r, "*")); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
