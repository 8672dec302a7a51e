package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/service"
)

// PurchaseHandler handles HTTP requests for bill verification and the
// purchase history.
type PurchaseHandler struct {
	verifier *service.VerifyService
	ledger   *service.LedgerService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(verifier *service.VerifyService, ledger *service.LedgerService) *PurchaseHandler {
	return &PurchaseHandler{verifier: verifier, ledger: ledger}
}

// VerifyRequest is the HTTP request body for a bill verification.
// bill_price, when positive, overrides the catalog price for this call only.
type VerifyRequest struct {
	FuelType   string  `json:"fuel_type"`
	Supplier   string  `json:"supplier"`
	BillPrice  float64 `json:"bill_price"`
	Quantity   float64 `json:"quantity"`
	AmountPaid float64 `json:"amount_paid"`
}

// VerifyResponse is the HTTP response for a bill verification.
type VerifyResponse struct {
	Verified       bool    `json:"verified"`
	PriceUsed      float64 `json:"price_used"`
	ExpectedAmount float64 `json:"expected_amount"`
}

// Verify handles POST /v1/purchases/verify
func (h *PurchaseHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), service.VerifyBillRequest{
		FuelType:    domain.FuelType(req.FuelType),
		SupplierKey: req.Supplier,
		BillPrice:   req.BillPrice,
		Quantity:    req.Quantity,
		AmountPaid:  req.AmountPaid,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, VerifyResponse{
		Verified:       result.Verified,
		PriceUsed:      result.PriceUsed,
		ExpectedAmount: result.ExpectedAmount,
	})
}

// ExtractRequest is the HTTP request body for the simulated bill scan.
type ExtractRequest struct {
	FuelType   string  `json:"fuel_type"`
	Supplier   string  `json:"supplier"`
	AmountPaid float64 `json:"amount_paid"`
}

// ExtractResponse is the HTTP response for the simulated bill scan.
type ExtractResponse struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Extract handles POST /v1/purchases/extract
func (h *PurchaseHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	fuel := domain.FuelType(req.FuelType)
	quantity, err := h.verifier.ExtractBillQuantity(c.Request.Context(), fuel, req.Supplier, req.AmountPaid)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ExtractResponse{Quantity: quantity, Unit: fuel.Unit()})
}

// PurchaseResponse is the HTTP representation of one ledger record.
type PurchaseResponse struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	AmountPaid   float64   `json:"amount_paid"`
	FuelQuantity float64   `json:"fuel_quantity"`
	FuelType     string    `json:"fuel_type"`
	Unit         string    `json:"unit"`
	Verified     bool      `json:"verified"`
}

func toPurchaseResponse(r domain.PurchaseRecord) PurchaseResponse {
	return PurchaseResponse{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		AmountPaid:   r.AmountPaid,
		FuelQuantity: r.FuelQuantity,
		FuelType:     string(r.FuelType),
		Unit:         r.FuelType.Unit(),
		Verified:     r.Verified,
	}
}

func toPurchaseResponses(records []domain.PurchaseRecord) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toPurchaseResponse(r))
	}
	return out
}

// RecordPurchaseResponse is the HTTP response for recording a purchase.
// Persisted is false when the record was accepted but could not be written
// to durable storage.
type RecordPurchaseResponse struct {
	Purchase  PurchaseResponse `json:"purchase"`
	Persisted bool             `json:"persisted"`
	Warning   string           `json:"warning,omitempty"`
}

// Record handles POST /v1/purchases: verify the bill, then append the
// outcome to the ledger.
func (h *PurchaseHandler) Record(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), service.VerifyBillRequest{
		FuelType:    domain.FuelType(req.FuelType),
		SupplierKey: req.Supplier,
		BillPrice:   req.BillPrice,
		Quantity:    req.Quantity,
		AmountPaid:  req.AmountPaid,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := h.ledger.Append(c.Request.Context(), domain.PurchaseRecord{
		AmountPaid:   req.AmountPaid,
		FuelQuantity: req.Quantity,
		FuelType:     domain.FuelType(req.FuelType),
		Verified:     result.Verified,
	})
	if err != nil {
		if !errors.Is(err, service.ErrPersistence) {
			respondError(c, err)
			return
		}
		// The record exists in memory; only durability failed.
		respondJSON(c, http.StatusCreated, RecordPurchaseResponse{
			Purchase:  toPurchaseResponse(record),
			Persisted: false,
			Warning:   "purchase saved in memory only; storage is unavailable",
		})
		return
	}

	respondJSON(c, http.StatusCreated, RecordPurchaseResponse{
		Purchase:  toPurchaseResponse(record),
		Persisted: true,
	})
}

// List handles GET /v1/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	respondJSON(c, http.StatusOK, toPurchaseResponses(h.ledger.List()))
}

// Delete handles DELETE /v1/purchases/:id. Removing an absent id is a
// no-op; the remaining list is returned either way.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	records, err := h.ledger.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPurchaseResponses(records))
}

// Clear handles DELETE /v1/purchases
func (h *PurchaseHandler) Clear(c *gin.Context) {
	if err := h.ledger.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
