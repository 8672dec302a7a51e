package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fuelmeter/internal/domain"
)

// Poller periodically refreshes the price cache and hands each new snapshot
// to a callback. Stopping the poller only stops the timer; a refresh already
// in flight completes and its result is discarded.
type Poller struct {
	prices   *PriceService
	interval time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewPoller creates a poller over the given price service.
func NewPoller(prices *PriceService, interval time.Duration) *Poller {
	return &Poller{
		prices:   prices,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling in a background goroutine. onSnapshot is invoked with
// every snapshot produced by a tick; it may be nil. Only the first call
// starts the loop.
func (p *Poller) Start(onSnapshot func(domain.PriceSnapshot)) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snap := p.prices.Refresh(context.Background())
				select {
				case <-p.stop:
					// Stopped while the refresh was in flight; drop it.
					return
				default:
				}
				if onSnapshot != nil {
					onSnapshot(snap)
				}
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop cancels the polling timer and waits for the loop to exit. Safe to
// call more than once, and a no-op on a poller that was never started.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	if !p.started.Load() {
		return
	}
	<-p.done
}
