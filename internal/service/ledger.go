package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/repository"
)

// LedgerService is the append-only log of purchase-verification outcomes.
// The in-memory list, kept most-recent-first, is the source of truth for
// reads; every mutation is pushed to the backing store before the next
// mutation may begin, so the store always converges on the latest state.
// Persistence is best-effort within a session: a store failure is reported
// via ErrPersistence but the in-memory change stands.
type LedgerService struct {
	store repository.PurchaseStore
	now   func() time.Time

	mu      sync.RWMutex
	records []domain.PurchaseRecord
}

// NewLedgerService creates an empty ledger over the given store. A nil
// clock uses time.Now.
func NewLedgerService(store repository.PurchaseStore, clock func() time.Time) *LedgerService {
	if clock == nil {
		clock = time.Now
	}
	return &LedgerService{store: store, now: clock}
}

// Load replaces the in-memory list with the persisted history. A load
// failure leaves the ledger empty and is recoverable; the caller decides
// whether to retry or continue without history.
func (s *LedgerService) Load(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// Append assigns a fresh id and creation timestamp to the record, prepends
// it to the list and persists the full list. The stored record is returned
// even when persistence fails. The lock is held across the save so
// concurrent mutations cannot persist out of order.
func (s *LedgerService) Append(ctx context.Context, record domain.PurchaseRecord) (domain.PurchaseRecord, error) {
	if !record.FuelType.Valid() {
		return domain.PurchaseRecord{}, ErrInvalidFuelType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record.CreatedAt = now
	record.ID = s.nextID(now)
	s.records = append([]domain.PurchaseRecord{record}, s.records...)

	if err := s.store.Save(ctx, s.copyRecords()); err != nil {
		return record, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return record, nil
}

// Remove deletes the record with the given id and returns the updated list.
// An absent id is a no-op, not an error.
func (s *LedgerService) Remove(ctx context.Context, id string) ([]domain.PurchaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	kept := s.records[:0:0]
	for _, record := range s.records {
		if record.ID == id {
			changed = true
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	snapshot := s.copyRecords()

	if !changed {
		return snapshot, nil
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return snapshot, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return snapshot, nil
}

// Clear removes all records.
func (s *LedgerService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// List returns the records most-recent-first, consistent with the last
// write from this process.
func (s *LedgerService) List() []domain.PurchaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyRecords()
}

// copyRecords returns a copy of the list. Callers must hold at least a
// read lock.
func (s *LedgerService) copyRecords() []domain.PurchaseRecord {
	out := make([]domain.PurchaseRecord, len(s.records))
	copy(out, s.records)
	return out
}

// nextID derives a unique id from the creation time, bumping the nanosecond
// count past any collision with records already in the ledger. Callers must
// hold the write lock.
func (s *LedgerService) nextID(now time.Time) string {
	nanos := now.UnixNano()
	id := strconv.FormatInt(nanos, 10)
	for s.hasID(id) {
		nanos++
		id = strconv.FormatInt(nanos, 10)
	}
	return id
}

func (s *LedgerService) hasID(id string) bool {
	for _, record := range s.records {
		if record.ID == id {
			return true
		}
	}
	return false
}
