package postgres

import (
	"context"
	"database/sql"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// RefreshArchive is a PostgreSQL implementation of repository.RefreshArchive.
type RefreshArchive struct {
	q Querier
}

// NewRefreshArchive creates a new PostgreSQL refresh archive.
func NewRefreshArchive(db *sql.DB) *RefreshArchive {
	return &RefreshArchive{q: db}
}

var _ repository.RefreshArchive = (*RefreshArchive)(nil)

// RecordRefresh persists one refresh event.
func (r *RefreshArchive) RecordRefresh(ctx context.Context, event domain.RefreshEvent) error {
	query := `
		INSERT INTO price_refreshes (id, provenance, snapshot_at, suppliers, observed_at, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		event.ID,
		event.Provenance,
		event.SnapshotAt,
		event.Suppliers,
		event.ObservedAt,
		event.Note,
	)
	return err
}

// ListRecent returns up to limit refresh events, most recent first.
func (r *RefreshArchive) ListRecent(ctx context.Context, limit int) ([]domain.RefreshEvent, error) {
	query := `
		SELECT id, provenance, snapshot_at, suppliers, observed_at, note
		FROM price_refreshes
		ORDER BY observed_at DESC
		LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.RefreshEvent
	for rows.Next() {
		var event domain.RefreshEvent
		if err := rows.Scan(
			&event.ID,
			&event.Provenance,
			&event.SnapshotAt,
			&event.Suppliers,
			&event.ObservedAt,
			&event.Note,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
