package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boleia/internal/domain"
	"boleia/internal/repository"
	"boleia/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidOrigin),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidServiceType),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, service.ErrDispatchInProgress),
		errors.Is(err, service.ErrRideNotDispatchable),
		errors.Is(err, service.ErrRideNotInProgress),
		errors.Is(err, service.ErrRideClosed),
		errors.Is(err, service.ErrDriverBusy),
		errors.Is(err, service.ErrDriverStateConflict):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotAssignedDriver),
		errors.Is(err, service.ErrActorNotOnRide),
		errors.Is(err, service.ErrDriverOffline):
		return http.StatusForbidden

	// Payment required
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusPaymentRequired

	// Service unavailable
	case errors.Is(err, service.ErrNoDriverAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
