package domain

// CalculationInput holds the parameters for a trip cost estimate.
// Mileage of zero means "unknown" and is a valid input, not an error.
type CalculationInput struct {
	Price    float64
	Distance float64
	Mileage  float64
}

// CalculationResult is the derived outcome of a cost estimate. Values are
// rounded to two decimal places and never persisted.
type CalculationResult struct {
	FuelRequired float64
	TotalCost    float64
}
