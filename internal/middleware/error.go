package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"moveis-catalog/internal/analytics"
	"moveis-catalog/internal/domain"
	"moveis-catalog/internal/pricing"
	"moveis-catalog/internal/repository"
	"moveis-catalog/internal/service"
	"moveis-catalog/internal/storage"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends a structured error response with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	_ = json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// StatusForError maps a service error to its HTTP status and client message.
func StatusForError(err error) (int, string) {
	var fetchErr *pricing.FetchError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, analytics.ErrUnknownEventType),
		errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, repository.ErrPromotionProductMissing):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, repository.ErrPromotionNotFound):
		return http.StatusNotFound, "promotion not found"
	case errors.Is(err, repository.ErrAdminNotFound):
		return http.StatusNotFound, "admin not found"
	case errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, "image not found"
	case errors.Is(err, repository.ErrProductAlreadyExists):
		return http.StatusConflict, "product with this id already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.As(err, &fetchErr):
		return http.StatusServiceUnavailable, "catalog temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondWithServiceError writes the envelope for an error returned by a
// service. Validation errors carry their field in validation_errors.
func RespondWithServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, message := StatusForError(err)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		RespondWithValidationErrors(w, []ValidationError{{Field: verr.Field, Message: verr.Message}})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	RespondWithError(w, status, message)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
