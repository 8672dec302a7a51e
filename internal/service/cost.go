package service

import (
	"math"

	"fuelmeter/internal/domain"
)

// round2 rounds to two decimal places, half away from zero. All displayed
// money and quantity values pass through this at the boundary.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CostService computes trip fuel cost estimates. It is pure: no state,
// no side effects, no failure modes.
type CostService struct{}

// NewCostService creates a new CostService.
func NewCostService() *CostService {
	return &CostService{}
}

// ComputeCost maps (price, distance, mileage) to (fuel required, total cost).
// Mileage of zero or less yields a zero result; this is the defined
// zero-division policy, not an error.
func (s *CostService) ComputeCost(in domain.CalculationInput) domain.CalculationResult {
	if in.Mileage <= 0 {
		return domain.CalculationResult{}
	}

	fuelRequired := in.Distance / in.Mileage
	totalCost := fuelRequired * in.Price

	return domain.CalculationResult{
		FuelRequired: round2(fuelRequired),
		TotalCost:    round2(totalCost),
	}
}

// DefaultInput returns suggested starting values for a fuel type.
// An unknown fuel type yields a zero input.
func (s *CostService) DefaultInput(fuel domain.FuelType) domain.CalculationInput {
	switch fuel {
	case domain.FuelPetrol:
		return domain.CalculationInput{Price: 95.41, Distance: 100, Mileage: 15}
	case domain.FuelDiesel:
		return domain.CalculationInput{Price: 88.67, Distance: 100, Mileage: 20}
	case domain.FuelCNG:
		return domain.CalculationInput{Price: 76.21, Distance: 100, Mileage: 25}
	default:
		return domain.CalculationInput{}
	}
}

// ExpectedQuantity derives the fuel quantity a paid amount should buy at the
// given price, rounded to two decimals. A non-positive price yields zero.
func (s *CostService) ExpectedQuantity(amountPaid, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return round2(amountPaid / price)
}
