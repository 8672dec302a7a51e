package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fuelmeter/internal/domain"
	"fuelmeter/internal/pricesource"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// countingSource wraps a Source and counts fetches.
type countingSource struct {
	calls int32
	delay time.Duration
	fetch func(ctx context.Context) (*domain.PriceSnapshot, error)
}

func (s *countingSource) FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.fetch(ctx)
}

func (s *countingSource) Calls() int32 {
	return atomic.LoadInt32(&s.calls)
}

// fixedJitter builds a fallback generator whose jitter is always zero.
func fixedFallback() *pricesource.FallbackGenerator {
	return pricesource.NewFallbackGenerator(func() float64 { return 0.5 })
}

// fullSnapshot returns a well-formed fetched snapshot.
func fullSnapshot(at time.Time) *domain.PriceSnapshot {
	return &domain.PriceSnapshot{
		Prices: domain.PriceTable{
			"iocl": {domain.FuelPetrol: 97.00, domain.FuelDiesel: 90.00},
			"igl":  {domain.FuelCNG: 77.00},
		},
		UpdatedAt:  at,
		Provenance: domain.ProvenanceFetched,
	}
}

func TestGetPrices_FreshSnapshotIsReusedWithoutFetching(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	first := svc.GetPrices(context.Background())
	clock.Advance(1 * time.Minute)
	second := svc.GetPrices(context.Background())

	if source.Calls() != 1 {
		t.Errorf("expected exactly 1 fetch within TTL, got %d", source.Calls())
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots within TTL differ:\n%+v\n%+v", first, second)
	}
}

func TestGetPrices_StaleSnapshotTriggersOneRefresh(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	svc.GetPrices(context.Background())
	clock.Advance(10 * time.Minute)
	refreshed := svc.GetPrices(context.Background())

	if source.Calls() != 2 {
		t.Errorf("expected a second fetch after TTL expiry, got %d", source.Calls())
	}
	if refreshed.Provenance != domain.ProvenanceFetched {
		t.Errorf("expected fetched provenance, got %s", refreshed.Provenance)
	}
}

func TestGetPrices_ConcurrentCallersShareOneRefresh(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{
		delay: 50 * time.Millisecond,
		fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
			return fullSnapshot(clock.Now()), nil
		},
	}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	const callers = 16
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			svc.GetPrices(context.Background())
		}()
	}
	wg.Wait()

	if source.Calls() != 1 {
		t.Errorf("expected a single coalesced fetch, got %d", source.Calls())
	}
}

func TestGetPrices_FetchFailureFallsBack(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return nil, errors.New("connection refused")
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	snap := svc.GetPrices(context.Background())

	if snap.Provenance != domain.ProvenanceFallback {
		t.Fatalf("expected fallback provenance, got %s", snap.Provenance)
	}
	if len(snap.Prices) != 9 {
		t.Errorf("expected a complete table for all 9 suppliers, got %d", len(snap.Prices))
	}
	if !snap.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("expected fallback stamped with clock time, got %v", snap.UpdatedAt)
	}
}

func TestGetPrices_PayloadMissingFuelTypeFallsBack(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		// No cng entries anywhere: the calculator needs all three.
		return &domain.PriceSnapshot{
			Prices:     domain.PriceTable{"iocl": {domain.FuelPetrol: 97, domain.FuelDiesel: 90}},
			UpdatedAt:  clock.Now(),
			Provenance: domain.ProvenanceFetched,
		}, nil
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	snap := svc.GetPrices(context.Background())
	if snap.Provenance != domain.ProvenanceFallback {
		t.Errorf("expected fallback for incomplete payload, got %s", snap.Provenance)
	}
}

func TestGetPrices_TimestampsNeverGoBackwards(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)

	// The source reports an UpdatedAt one hour in the past on the second
	// fetch; the cache must clamp it.
	var fetches int32
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		n := atomic.AddInt32(&fetches, 1)
		at := clock.Now()
		if n > 1 {
			at = at.Add(-1 * time.Hour)
		}
		return fullSnapshot(at), nil
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	first := svc.GetPrices(context.Background())
	clock.Advance(10 * time.Minute)
	second := svc.GetPrices(context.Background())

	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("snapshot timestamp went backwards: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestGetPrices_ReturnsValueNotLiveHandle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	snap := svc.GetPrices(context.Background())
	snap.Prices["iocl"][domain.FuelPetrol] = 1.0

	again := svc.GetPrices(context.Background())
	if got := again.Prices["iocl"][domain.FuelPetrol]; got != 97.00 {
		t.Errorf("cache mutated through returned snapshot: %v", got)
	}
}

func TestGetPrices_CoalescedCallersGetIndependentCopies(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{
		delay: 50 * time.Millisecond,
		fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
			return fullSnapshot(clock.Now()), nil
		},
	}

	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, clock.Now)

	const callers = 4
	snapshots := make(chan domain.PriceSnapshot, callers)
	for i := 0; i < callers; i++ {
		go func() {
			snapshots <- svc.GetPrices(context.Background())
		}()
	}

	first := <-snapshots
	first.Prices["iocl"][domain.FuelPetrol] = -1
	delete(first.Prices, "igl")

	for i := 1; i < callers; i++ {
		snap := <-snapshots
		if got := snap.Prices["iocl"][domain.FuelPetrol]; got != 97.00 {
			t.Fatalf("mutation leaked into a coalesced caller's snapshot: %v", got)
		}
		if _, ok := snap.Prices["igl"]; !ok {
			t.Fatal("deletion leaked into a coalesced caller's snapshot")
		}
	}
}

// recordingArchive captures refresh events, with optional error injection.
type recordingArchive struct {
	RecordError error

	mu     sync.Mutex
	events []domain.RefreshEvent
}

func (a *recordingArchive) RecordRefresh(ctx context.Context, event domain.RefreshEvent) error {
	if a.RecordError != nil {
		return a.RecordError
	}
	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()
	return nil
}

func (a *recordingArchive) ListRecent(ctx context.Context, limit int) ([]domain.RefreshEvent, error) {
	return a.Events(), nil
}

func (a *recordingArchive) Events() []domain.RefreshEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.RefreshEvent, len(a.events))
	copy(out, a.events)
	return out
}

func TestGetPrices_ArchivesOneEventPerRefresh(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}
	archive := &recordingArchive{}

	svc := NewPriceService(source, fixedFallback(), archive, 10*time.Minute, clock.Now)

	svc.GetPrices(context.Background())
	svc.GetPrices(context.Background())

	events := archive.Events()
	if len(events) != 1 {
		t.Fatalf("expected one archived event for one refresh, got %d", len(events))
	}
	event := events[0]
	if event.ID == "" {
		t.Error("expected event id to be assigned")
	}
	if event.Provenance != domain.ProvenanceFetched {
		t.Errorf("expected fetched provenance, got %s", event.Provenance)
	}
	if event.Suppliers != 2 {
		t.Errorf("expected supplier count 2, got %d", event.Suppliers)
	}
	if event.Note != "" {
		t.Errorf("expected empty note for a clean fetch, got %q", event.Note)
	}
	if !event.ObservedAt.Equal(clock.Now()) {
		t.Errorf("expected event observed at %v, got %v", clock.Now(), event.ObservedAt)
	}

	clock.Advance(10 * time.Minute)
	svc.GetPrices(context.Background())
	if got := len(archive.Events()); got != 2 {
		t.Errorf("expected a second event after TTL expiry, got %d", got)
	}
}

func TestGetPrices_FallbackRefreshArchivedWithNote(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return nil, errors.New("connection refused")
	}}
	archive := &recordingArchive{}

	svc := NewPriceService(source, fixedFallback(), archive, 10*time.Minute, clock.Now)

	svc.GetPrices(context.Background())

	events := archive.Events()
	if len(events) != 1 {
		t.Fatalf("expected one archived event, got %d", len(events))
	}
	if events[0].Provenance != domain.ProvenanceFallback {
		t.Errorf("expected fallback provenance, got %s", events[0].Provenance)
	}
	if events[0].Note == "" {
		t.Error("expected the fetch error noted on the event")
	}
	if events[0].Suppliers != 9 {
		t.Errorf("expected the full fallback table of 9 suppliers, got %d", events[0].Suppliers)
	}
}

func TestGetPrices_ArchiveFailureDoesNotAffectSnapshot(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}
	archive := &recordingArchive{RecordError: errors.New("database down")}

	svc := NewPriceService(source, fixedFallback(), archive, 10*time.Minute, clock.Now)

	snap := svc.GetPrices(context.Background())
	if snap.Provenance != domain.ProvenanceFetched {
		t.Errorf("expected fetched provenance despite archive failure, got %s", snap.Provenance)
	}
	if got := snap.Prices["iocl"][domain.FuelPetrol]; got != 97.00 {
		t.Errorf("expected snapshot unaffected by archive failure, got %v", got)
	}
}

func TestLastUpdated_EmptyCacheIsZero(t *testing.T) {
	t.Parallel()

	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(time.Now()), nil
	}}
	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, nil)

	if !svc.LastUpdated().IsZero() {
		t.Error("expected zero LastUpdated before first fetch")
	}

	svc.GetPrices(context.Background())
	if svc.LastUpdated().IsZero() {
		t.Error("expected non-zero LastUpdated after fetch")
	}
}

func TestPoller_StopCancelsTicks(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(clock.Now()), nil
	}}
	svc := NewPriceService(source, fixedFallback(), nil, time.Nanosecond, clock.Now)

	var ticks int32
	poller := NewPoller(svc, 5*time.Millisecond)
	poller.Start(func(domain.PriceSnapshot) {
		atomic.AddInt32(&ticks, 1)
	})

	time.Sleep(30 * time.Millisecond)
	poller.Stop()
	seen := atomic.LoadInt32(&ticks)

	if seen == 0 {
		t.Fatal("expected at least one poll tick")
	}

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&ticks); got != seen {
		t.Errorf("poller kept ticking after Stop: %d then %d", seen, got)
	}
}

func TestPoller_StopBeforeStartReturns(t *testing.T) {
	t.Parallel()

	source := &countingSource{fetch: func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return fullSnapshot(time.Now()), nil
	}}
	svc := NewPriceService(source, fixedFallback(), nil, 10*time.Minute, nil)

	poller := NewPoller(svc, time.Minute)

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop on an unstarted poller never returned")
	}
}
