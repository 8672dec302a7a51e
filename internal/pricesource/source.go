// Package pricesource talks to the external fuel price source and
// synthesizes fallback prices when it is unavailable.
package pricesource

import (
	"context"

	"fuelmeter/internal/domain"
)

// Source fetches current fuel prices. Implementations return a snapshot
// with fetched provenance, or an error; the caller decides how to recover.
type Source interface {
	FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*domain.PriceSnapshot, error)

// FetchPrices calls f.
func (f SourceFunc) FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	return f(ctx)
}
