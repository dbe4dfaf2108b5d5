package transport

import (
	"net/http"

	"moveis-catalog/internal/middleware"
	"moveis-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetupHandler exposes the installation check to the back-office.
type SetupHandler struct {
	setup  service.SetupService
	logger *zap.Logger
}

func NewSetupHandler(setup service.SetupService, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{setup: setup, logger: logger}
}

func (h *SetupHandler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.With(protect).Get("/api/admin/setup", h.Check)
}

// Check answers 200 when every check passed and 503 otherwise.
func (h *SetupHandler) Check(w http.ResponseWriter, r *http.Request) {
	report := h.setup.Check(r.Context())

	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	middleware.RespondWithJSON(w, status, report)
}
