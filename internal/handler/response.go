package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/repository"
	"fuelmeter/internal/service"
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
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownSupplier):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidFuelType),
		errors.Is(err, service.ErrMissingBillQuantity),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidMileage),
		errors.Is(err, service.ErrNoPrice):
		return http.StatusBadRequest

	// Storage failures: the in-memory change may stand, but durability
	// could not be guaranteed.
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// fuelTypeParam parses the fuel_type query parameter, defaulting to petrol
// when absent.
func fuelTypeParam(c *gin.Context) (domain.FuelType, error) {
	raw := c.DefaultQuery("fuel_type", string(domain.FuelPetrol))
	fuel, ok := domain.ParseFuelType(raw)
	if !ok {
		return "", service.ErrInvalidFuelType
	}
	return fuel, nil
}
