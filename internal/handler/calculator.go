package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/service"
)

// CalculatorHandler handles HTTP requests for trip cost estimates.
type CalculatorHandler struct {
	cost    *service.CostService
	catalog *service.CatalogService
}

// NewCalculatorHandler creates a new CalculatorHandler.
func NewCalculatorHandler(cost *service.CostService, catalog *service.CatalogService) *CalculatorHandler {
	return &CalculatorHandler{cost: cost, catalog: catalog}
}

// CalculateRequest is the HTTP request body for a cost estimate. Price is
// optional; when omitted the current catalog price of the supplier (or the
// default supplier for the fuel type) is used.
type CalculateRequest struct {
	FuelType string  `json:"fuel_type"`
	Supplier string  `json:"supplier"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"`
	Mileage  float64 `json:"mileage"`
}

// CalculateResponse is the HTTP response for a cost estimate.
type CalculateResponse struct {
	FuelRequired float64 `json:"fuel_required"`
	TotalCost    float64 `json:"total_cost"`
	Unit         string  `json:"unit"`
	PriceUsed    float64 `json:"price_used"`
}

// Calculate handles POST /v1/calculations
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	fuel, ok := domain.ParseFuelType(req.FuelType)
	if !ok {
		respondError(c, service.ErrInvalidFuelType)
		return
	}
	if req.Distance < 0 {
		respondError(c, service.ErrInvalidDistance)
		return
	}
	if req.Mileage < 0 {
		respondError(c, service.ErrInvalidMileage)
		return
	}

	price := req.Price
	if price <= 0 {
		key := req.Supplier
		if key == "" {
			supplier, err := h.catalog.DefaultSupplier(fuel)
			if err != nil {
				respondError(c, err)
				return
			}
			key = supplier.Key
		} else if _, err := h.catalog.Supplier(key); err != nil {
			respondError(c, err)
			return
		}
		price = h.catalog.PriceOf(key, fuel)
	}

	result := h.cost.ComputeCost(domain.CalculationInput{
		Price:    price,
		Distance: req.Distance,
		Mileage:  req.Mileage,
	})

	respondJSON(c, http.StatusOK, CalculateResponse{
		FuelRequired: result.FuelRequired,
		TotalCost:    result.TotalCost,
		Unit:         fuel.Unit(),
		PriceUsed:    price,
	})
}

// DefaultsResponse is the HTTP response for suggested calculator inputs.
type DefaultsResponse struct {
	FuelType string  `json:"fuel_type"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"`
	Mileage  float64 `json:"mileage"`
}

// Defaults handles GET /v1/calculations/defaults?fuel_type=
func (h *CalculatorHandler) Defaults(c *gin.Context) {
	fuel, err := fuelTypeParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	in := h.cost.DefaultInput(fuel)
	respondJSON(c, http.StatusOK, DefaultsResponse{
		FuelType: string(fuel),
		Unit:     fuel.Unit(),
		Price:    in.Price,
		Distance: in.Distance,
		Mileage:  in.Mileage,
	})
}
