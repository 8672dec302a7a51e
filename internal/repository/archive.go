package repository

import (
	"context"

	"fuelmeter/internal/domain"
)

// RefreshArchive records the outcome of price cache refreshes for later
// inspection. Writes are best-effort; callers must tolerate failures.
type RefreshArchive interface {
	// RecordRefresh persists one refresh event.
	RecordRefresh(ctx context.Context, event domain.RefreshEvent) error

	// ListRecent returns up to limit events, most recent first.
	ListRecent(ctx context.Context, limit int) ([]domain.RefreshEvent, error)
}
