package service

import "errors"

var (
	// ErrInvalidFuelType is returned when a fuel type is not one of
	// petrol, diesel or cng.
	ErrInvalidFuelType = errors.New("invalid fuel type")

	// ErrUnknownSupplier is returned when a supplier key is not in the catalog.
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrMissingBillQuantity is returned when bill verification is attempted
	// without a positive fuel quantity.
	ErrMissingBillQuantity = errors.New("bill quantity is required")

	// ErrInvalidAmount is returned when a monetary amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDistance is returned when a trip distance is negative.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidMileage is returned when a vehicle mileage is negative.
	ErrInvalidMileage = errors.New("invalid mileage")

	// ErrNoPrice is returned when no usable price can be resolved for a
	// supplier and fuel type.
	ErrNoPrice = errors.New("no price available for supplier and fuel type")

	// ErrPersistence wraps storage failures. The in-memory state already
	// reflects the attempted change; only durability is in question.
	ErrPersistence = errors.New("purchase history could not be persisted")
)
