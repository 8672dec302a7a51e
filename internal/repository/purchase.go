package repository

import (
	"context"
	"errors"

	"fuelmeter/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// PurchaseStore persists the purchase history as a single serialized list.
// The backing store is a key-value store holding the whole list under one
// well-known key, so writes always replace the full list.
type PurchaseStore interface {
	// Load reads the persisted history. A missing key yields an empty
	// list, not an error.
	Load(ctx context.Context) ([]domain.PurchaseRecord, error)

	// Save replaces the persisted history with the given list.
	Save(ctx context.Context, records []domain.PurchaseRecord) error

	// Clear removes the persisted history entirely.
	Clear(ctx context.Context) error
}
