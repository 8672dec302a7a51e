package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/pricesource"
	"fuelmeter/internal/repository"
)

// refreshKey coalesces all refresh work into a single flight.
const refreshKey = "refresh"

// PriceService is a time-bounded cache in front of the external price
// source. It holds one snapshot in three states: empty (never fetched),
// fresh (age < TTL) and stale (age >= TTL). A refresh that fails for any
// reason resolves to a synthetic fallback snapshot, so callers always get
// a usable price table.
type PriceService struct {
	source   pricesource.Source
	fallback *pricesource.FallbackGenerator
	archive  repository.RefreshArchive
	ttl      time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  *domain.PriceSnapshot
	fetchedAt time.Time
}

// NewPriceService creates a price cache. archive may be nil to disable
// refresh auditing; clock may be nil to use time.Now.
func NewPriceService(
	source pricesource.Source,
	fallback *pricesource.FallbackGenerator,
	archive repository.RefreshArchive,
	ttl time.Duration,
	clock func() time.Time,
) *PriceService {
	if clock == nil {
		clock = time.Now
	}
	return &PriceService{
		source:   source,
		fallback: fallback,
		archive:  archive,
		ttl:      ttl,
		now:      clock,
	}
}

// GetPrices returns the cached snapshot if it is fresh, otherwise performs a
// refresh. Concurrent callers arriving while the cache is empty or stale
// share a single in-flight refresh instead of each fetching independently.
func (s *PriceService) GetPrices(ctx context.Context) domain.PriceSnapshot {
	if snap, ok := s.fresh(); ok {
		return snap
	}

	v, _, _ := s.group.Do(refreshKey, func() (any, error) {
		// A caller queued behind a refresh that just completed reuses
		// its result rather than fetching again.
		if snap, ok := s.fresh(); ok {
			return snap, nil
		}
		return s.refresh(ctx), nil
	})
	// Coalesced callers share the flight result; each gets its own copy.
	return v.(domain.PriceSnapshot).Clone()
}

// Refresh forces a refresh regardless of freshness, still coalescing with
// any refresh already in flight. Used by the poller.
func (s *PriceService) Refresh(ctx context.Context) domain.PriceSnapshot {
	v, _, _ := s.group.Do(refreshKey, func() (any, error) {
		return s.refresh(ctx), nil
	})
	return v.(domain.PriceSnapshot).Clone()
}

// LastUpdated reports the timestamp of the cached snapshot, or the zero time
// when nothing has been fetched yet.
func (s *PriceService) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return time.Time{}
	}
	return s.snapshot.UpdatedAt
}

// fresh returns a copy of the cached snapshot when its age is below the TTL.
func (s *PriceService) fresh() (domain.PriceSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return domain.PriceSnapshot{}, false
	}
	if s.now().Sub(s.fetchedAt) >= s.ttl {
		return domain.PriceSnapshot{}, false
	}
	return s.snapshot.Clone(), true
}

// refresh runs the two-stage pipeline: attempt the fetch, then resolve the
// result into a snapshot. The resolver is total; a fetch error, a malformed
// payload or a payload missing required fuel types all end in fallback
// synthesis, never in a hard failure.
func (s *PriceService) refresh(ctx context.Context) domain.PriceSnapshot {
	note := ""
	snap, err := s.source.FetchPrices(ctx)
	if err == nil {
		err = validateSnapshot(snap)
	}
	if err != nil {
		note = err.Error()
		snap = s.fallback.Generate(s.now())
	}

	stored := s.store(*snap)
	s.recordRefresh(ctx, stored, note)
	return stored
}

// validateSnapshot rejects payloads that lack an entry for any fuel type the
// calculator requires.
func validateSnapshot(snap *domain.PriceSnapshot) error {
	for _, fuel := range domain.FuelTypes() {
		found := false
		for _, prices := range snap.Prices {
			if _, ok := prices[fuel]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("price payload missing %s prices", fuel)
		}
	}
	return nil
}

// store replaces the cached snapshot and returns a copy of what was stored.
// Snapshot timestamps are clamped so successive refreshes never move the
// observed UpdatedAt backwards.
func (s *PriceService) store(snap domain.PriceSnapshot) domain.PriceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = now
	}
	if s.snapshot != nil && snap.UpdatedAt.Before(s.snapshot.UpdatedAt) {
		snap.UpdatedAt = s.snapshot.UpdatedAt
	}

	s.snapshot = &snap
	s.fetchedAt = now
	return snap.Clone()
}

// recordRefresh archives the refresh outcome. Best-effort: an archive
// failure is logged and swallowed.
func (s *PriceService) recordRefresh(ctx context.Context, snap domain.PriceSnapshot, note string) {
	if s.archive == nil {
		return
	}

	event := domain.RefreshEvent{
		ID:         uuid.New().String(),
		Provenance: snap.Provenance,
		SnapshotAt: snap.UpdatedAt,
		Suppliers:  len(snap.Prices),
		ObservedAt: s.now(),
		Note:       note,
	}
	if err := s.archive.RecordRefresh(ctx, event); err != nil {
		log.Printf("failed to archive price refresh: %v", err)
	}
}
