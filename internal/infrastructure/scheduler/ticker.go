// Package scheduler drives recurring ingestion runs.
package scheduler

import (
	"context"
	"time"

	"newshub/internal/ports"
)

// TickerScheduler triggers the job immediately and then on a fixed
// interval. Runs are sequential by construction; a run that outlasts the
// interval simply delays the next tick's work.
type TickerScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler firing every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TickerScheduler{interval: interval}
}

// Start begins ticking until Stop or context cancellation.
func (t *TickerScheduler) Start(ctx context.Context, job func()) error {
	if job == nil {
		return nil
	}
	if t.stop != nil {
		return nil
	}

	t.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		job()
		for {
			select {
			case <-ticker.C:
				job()
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}
		}
	}()
	return nil
}

// Stop halts the ticker goroutine.
func (t *TickerScheduler) Stop(ctx context.Context) error {
	if t.stop == nil {
		return nil
	}
	close(t.stop)
	t.stop = nil
	return nil
}
