package usecase

import (
	"context"

	"newshub/internal/ports"
)

// Scheduler wires the interval driver with the ingestion use case.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	opts     Options
}

// NewScheduler returns a helper to start/stop recurring ingestion runs.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, opts Options) *Scheduler {
	return &Scheduler{driver: driver, ingestor: ingestor, opts: opts}
}

// Start registers the ingestion job with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func() {
		if _, err := s.ingestor.Ingest(ctx, s.opts); err != nil {
			s.ingestor.warn("scheduled ingestion failed", "error", err)
		}
	}
	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
