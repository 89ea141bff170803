// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicService runs a Task every interval until its context ends.
type PeriodicService struct {
	name        string
	interval    time.Duration
	task        Task
	runOnStart  bool
	taskTimeout time.Duration
	logger      zerolog.Logger
}

// PeriodicOption configures a PeriodicService.
type PeriodicOption func(*PeriodicService)

// RunOnStart runs the task once as soon as Serve starts.
func RunOnStart() PeriodicOption {
	return func(s *PeriodicService) { s.runOnStart = true }
}

// WithTaskTimeout bounds a single run. Default: the interval.
func WithTaskTimeout(d time.Duration) PeriodicOption {
	return func(s *PeriodicService) { s.taskTimeout = d }
}

// NewPeriodicService creates the service. A non-positive interval means
// one hour.
func NewPeriodicService(name string, interval time.Duration, task Task, opts ...PeriodicOption) *PeriodicService {
	if interval <= 0 {
		interval = time.Hour
	}
	s := &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logging.WithComponent(name),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.taskTimeout <= 0 {
		s.taskTimeout = s.interval
	}
	return s
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.interval).Msg("periodic service starting")

	if s.runOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		s.logger.Warn().Err(err).Msg("periodic task failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("periodic task complete")
}

// String names the service in supervisor events.
func (s *PeriodicService) String() string {
	return s.name
}
