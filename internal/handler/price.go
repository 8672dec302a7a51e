package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fuelmeter/internal/repository"
	"fuelmeter/internal/service"
)

// PriceHandler handles HTTP requests for current prices and refresh history.
type PriceHandler struct {
	prices  *service.PriceService
	catalog *service.CatalogService
	archive repository.RefreshArchive
}

// NewPriceHandler creates a new PriceHandler. archive may be nil when the
// refresh archive is not configured.
func NewPriceHandler(prices *service.PriceService, catalog *service.CatalogService, archive repository.RefreshArchive) *PriceHandler {
	return &PriceHandler{prices: prices, catalog: catalog, archive: archive}
}

// PricesResponse is the HTTP response for the current price snapshot.
type PricesResponse struct {
	Provenance  string                        `json:"provenance"`
	LastUpdated time.Time                     `json:"last_updated"`
	Prices      map[string]map[string]float64 `json:"prices"`
	Suppliers   []SupplierResponse            `json:"suppliers"`
}

// Get handles GET /v1/prices. It serves the cached snapshot, refreshing it
// when empty or stale, applies it to the catalog and returns both the raw
// table and the updated supplier list.
func (h *PriceHandler) Get(c *gin.Context) {
	snapshot := h.prices.GetPrices(c.Request.Context())
	suppliers := h.catalog.ApplySnapshot(snapshot)

	prices := make(map[string]map[string]float64, len(snapshot.Prices))
	for key, fuels := range snapshot.Prices {
		entry := make(map[string]float64, len(fuels))
		for fuel, price := range fuels {
			entry[string(fuel)] = price
		}
		prices[key] = entry
	}

	respondJSON(c, http.StatusOK, PricesResponse{
		Provenance:  string(snapshot.Provenance),
		LastUpdated: snapshot.UpdatedAt,
		Prices:      prices,
		Suppliers:   toSupplierResponses(suppliers),
	})
}

// RefreshEventResponse is the HTTP representation of one archived refresh.
type RefreshEventResponse struct {
	ID         string    `json:"id"`
	Provenance string    `json:"provenance"`
	SnapshotAt time.Time `json:"snapshot_at"`
	Suppliers  int       `json:"suppliers"`
	ObservedAt time.Time `json:"observed_at"`
	Note       string    `json:"note,omitempty"`
}

// ListRefreshes handles GET /v1/prices/refreshes?limit=
func (h *PriceHandler) ListRefreshes(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "refresh archive not configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	events, err := h.archive.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]RefreshEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, RefreshEventResponse{
			ID:         event.ID,
			Provenance: string(event.Provenance),
			SnapshotAt: event.SnapshotAt,
			Suppliers:  event.Suppliers,
			ObservedAt: event.ObservedAt,
			Note:       event.Note,
		})
	}
	respondJSON(c, http.StatusOK, out)
}
