package service

import (
	"context"
	"math"
	"math/rand"

	"fuelmeter/internal/domain"
)

// verificationTolerance is the maximum allowed absolute discrepancy between
// the expected amount and the amount paid. It is a fixed currency amount,
// independent of magnitude, sized to absorb rounding noise from upstream
// 2-decimal displays.
const verificationTolerance = 0.05

// VerifyService checks a claimed fuel quantity against the amount paid.
type VerifyService struct {
	catalog   *CatalogService
	randFloat func() float64
}

// NewVerifyService creates a verifier over the given catalog. A nil
// randFloat uses the global math/rand source; the randomness only drives
// the simulated bill extraction.
func NewVerifyService(catalog *CatalogService, randFloat func() float64) *VerifyService {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &VerifyService{catalog: catalog, randFloat: randFloat}
}

// VerifyBillRequest contains the parameters for one bill verification.
// BillPrice, when positive, overrides the catalog price for this single
// call; it does not change any stored state.
type VerifyBillRequest struct {
	FuelType    domain.FuelType
	SupplierKey string
	BillPrice   float64
	Quantity    float64
	AmountPaid  float64
}

// VerifyBillResult is the outcome of a bill verification.
type VerifyBillResult struct {
	Verified       bool
	PriceUsed      float64
	ExpectedAmount float64
}

// Verify compares the expected amount (claimed quantity times price) against
// the amount paid, both rounded to two decimals, within the fixed tolerance.
func (s *VerifyService) Verify(ctx context.Context, req VerifyBillRequest) (*VerifyBillResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrMissingBillQuantity
	}

	price, err := s.resolvePrice(req.FuelType, req.SupplierKey, req.BillPrice)
	if err != nil {
		return nil, err
	}

	expected := round2(req.Quantity * price)
	paid := round2(req.AmountPaid)

	return &VerifyBillResult{
		Verified:       math.Abs(expected-paid) <= verificationTolerance,
		PriceUsed:      price,
		ExpectedAmount: expected,
	}, nil
}

// ExtractBillQuantity simulates reading the fuel quantity off an uploaded
// bill. Half the time it returns the exact quantity the paid amount buys;
// otherwise it skews the value by up to a quarter unit, mimicking imperfect
// extraction. Real OCR happens upstream and is out of scope.
func (s *VerifyService) ExtractBillQuantity(ctx context.Context, fuel domain.FuelType, supplierKey string, amountPaid float64) (float64, error) {
	if amountPaid <= 0 {
		return 0, ErrInvalidAmount
	}

	price, err := s.resolvePrice(fuel, supplierKey, 0)
	if err != nil {
		return 0, err
	}

	offset := 0.0
	if s.randFloat() <= 0.5 {
		offset = s.randFloat()*0.5 - 0.25
	}

	quantity := round2(amountPaid/price + offset)
	if quantity < 0 {
		quantity = 0
	}
	return quantity, nil
}

// resolvePrice picks the price to verify against: an explicit bill-extracted
// price wins, otherwise the catalog price of the named supplier, defaulting
// to the canonical supplier for the fuel type.
func (s *VerifyService) resolvePrice(fuel domain.FuelType, supplierKey string, billPrice float64) (float64, error) {
	if billPrice > 0 {
		return billPrice, nil
	}

	if !fuel.Valid() {
		return 0, ErrInvalidFuelType
	}

	if supplierKey == "" {
		supplier, err := s.catalog.DefaultSupplier(fuel)
		if err != nil {
			return 0, err
		}
		supplierKey = supplier.Key
	} else if _, err := s.catalog.Supplier(supplierKey); err != nil {
		return 0, err
	}

	price := s.catalog.PriceOf(supplierKey, fuel)
	if price <= 0 {
		return 0, ErrNoPrice
	}
	return price, nil
}
