package domain

import "time"

// PurchaseRecord is one entry in the purchase-verification ledger.
// Records are never mutated after creation; corrections create a new record.
// JSON tags define the storage serialization, so changing them breaks
// previously persisted histories.
type PurchaseRecord struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	AmountPaid   float64   `json:"amount_paid"`
	FuelQuantity float64   `json:"fuel_quantity"`
	FuelType     FuelType  `json:"fuel_type"`
	Verified     bool      `json:"verified"`
}
