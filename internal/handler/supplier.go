package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/service"
)

// SupplierHandler handles HTTP requests for the supplier catalog.
type SupplierHandler struct {
	catalog *service.CatalogService
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(catalog *service.CatalogService) *SupplierHandler {
	return &SupplierHandler{catalog: catalog}
}

// SupplierResponse is the HTTP representation of a supplier.
type SupplierResponse struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	ShortName   string             `json:"short_name"`
	Category    string             `json:"category"`
	Icon        string             `json:"icon"`
	CNGEligible bool               `json:"cng_eligible"`
	Prices      map[string]float64 `json:"prices"`
}

func toSupplierResponse(s domain.Supplier) SupplierResponse {
	prices := make(map[string]float64, len(s.Prices))
	for fuel, price := range s.Prices {
		prices[string(fuel)] = price
	}
	return SupplierResponse{
		Key:         s.Key,
		Name:        s.Name,
		ShortName:   s.ShortName,
		Category:    string(s.Category),
		Icon:        s.Icon,
		CNGEligible: s.CNGEligible,
		Prices:      prices,
	}
}

func toSupplierResponses(suppliers []domain.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, toSupplierResponse(s))
	}
	return out
}

// List handles GET /v1/suppliers. Without a fuel_type query it returns the
// whole catalog in canonical order; with one it returns the eligible subset.
func (h *SupplierHandler) List(c *gin.Context) {
	raw := c.Query("fuel_type")
	if raw == "" {
		respondJSON(c, http.StatusOK, toSupplierResponses(h.catalog.ListSuppliers()))
		return
	}

	fuel, ok := domain.ParseFuelType(raw)
	if !ok {
		respondError(c, service.ErrInvalidFuelType)
		return
	}

	suppliers, err := h.catalog.SuppliersFor(fuel)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toSupplierResponses(suppliers))
}

// Default handles GET /v1/suppliers/default?fuel_type=
func (h *SupplierHandler) Default(c *gin.Context) {
	fuel, err := fuelTypeParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	supplier, err := h.catalog.DefaultSupplier(fuel)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toSupplierResponse(supplier))
}

// PriceResponse is the HTTP response for a single supplier price lookup.
type PriceResponse struct {
	Supplier string  `json:"supplier"`
	FuelType string  `json:"fuel_type"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}

// Price handles GET /v1/suppliers/:key/price?fuel_type=
// A zero price means the supplier does not sell that fuel type.
func (h *SupplierHandler) Price(c *gin.Context) {
	key := c.Param("key")
	if _, err := h.catalog.Supplier(key); err != nil {
		respondError(c, err)
		return
	}

	fuel, err := fuelTypeParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PriceResponse{
		Supplier: key,
		FuelType: string(fuel),
		Unit:     fuel.Unit(),
		Price:    h.catalog.PriceOf(key, fuel),
	})
}
