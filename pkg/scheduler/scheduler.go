// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package scheduler owns the set of per-target probing loops. Every active
// target has at most one loop; loops are started and stopped dynamically
// without restarting the process. Loop start/stop transitions are written to
// the audit log, bulk shutdown is not.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/kestrel/internal/helper"
	"github.com/telekom/kestrel/internal/logger"
	"github.com/telekom/kestrel/pkg/probe"
	"github.com/telekom/kestrel/pkg/store"
)

// minInterval is the lower bound for a target's probing interval.
const minInterval = time.Second

// defaultRetry bounds the retries for audit-event writes.
var defaultRetry = helper.RetryConfig{
	Count: 3,
	Delay: 100 * time.Millisecond,
}

// ErrInvalidInterval is returned when a target's probing interval is below the minimum.
var ErrInvalidInterval = fmt.Errorf("probing interval must be at least %s", minInterval)

// loop is the handle of one running probing loop.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs one independent probing loop per active target.
type Scheduler struct {
	mu      sync.Mutex
	loops   map[string]*loop
	prober  probe.Prober
	store   store.Store
	metrics metrics
}

// New creates a scheduler writing samples and audit events to the given store.
func New(s store.Store, p probe.Prober) *Scheduler {
	return &Scheduler{
		loops:   map[string]*loop{},
		prober:  p,
		store:   s,
		metrics: newMetrics(),
	}
}

// Start spawns a probing loop for the target and records a start audit
// event. If a loop for the target is already registered, Start is a no-op:
// the idempotency check and the registration are atomic, so concurrent
// calls cannot race to create two loops.
func (s *Scheduler) Start(ctx context.Context, t store.Target) error {
	log := logger.FromContext(ctx)
	if t.Interval < minInterval {
		return fmt.Errorf("%w: target %s has %s", ErrInvalidInterval, t.ID, t.Interval)
	}

	// The loop must outlive the caller's (usually request-scoped) context.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.mu.Lock()
	if _, ok := s.loops[t.ID]; ok {
		s.mu.Unlock()
		cancel()
		log.DebugContext(ctx, "Loop already running", "target", t.ID)
		return nil
	}
	l := &loop{cancel: cancel, done: make(chan struct{})}
	s.loops[t.ID] = l
	s.mu.Unlock()

	go s.run(loopCtx, t, l.done)
	log.InfoContext(ctx, "Started probing loop", "target", t.ID, "address", t.Address, "interval", t.Interval.String())

	return s.appendEvent(ctx, store.Event{
		TargetID: t.ID,
		Kind:     store.EventStart,
		Message:  fmt.Sprintf("Tracking started for %s", t.Address),
	})
}

// Stop cancels the target's loop, if any, and records a stop audit event
// with the given message. Stopping a target without a registered loop is not
// an error; the event is written regardless so callers can record "already
// stopped" transitions uniformly.
func (s *Scheduler) Stop(ctx context.Context, targetID, message string) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	l, ok := s.loops[targetID]
	if ok {
		delete(s.loops, targetID)
	}
	s.mu.Unlock()

	if ok {
		l.cancel()
		// Wait for the loop to wind down so no sample lands after the
		// stop event's timestamp.
		<-l.done
		log.InfoContext(ctx, "Stopped probing loop", "target", targetID)
	} else {
		log.DebugContext(ctx, "No loop registered for target", "target", targetID)
	}

	return s.appendEvent(ctx, store.Event{
		TargetID: targetID,
		Kind:     store.EventStop,
		Message:  message,
	})
}

// Reconcile starts a loop for every target marked active in the store.
// Called on process start to repair the active-flag/loop invariant, since
// loop state is not persisted across restarts.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	targets, err := s.store.ListActiveTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active targets: %w", err)
	}

	var errs error
	for _, t := range targets {
		errs = errors.Join(errs, s.Start(ctx, t))
	}
	return errs
}

// Shutdown cancels every registered loop and clears the registry. Unlike
// Stop, it deliberately writes no audit events: this is a process-lifecycle
// action, not a per-target operational transition, so a restart shows start
// events with no matching stop.
func (s *Scheduler) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	loops := s.loops
	s.loops = map[string]*loop{}
	s.mu.Unlock()

	for _, l := range loops {
		l.cancel()
	}
	for _, l := range loops {
		<-l.done
	}
	log.InfoContext(ctx, "Scheduler shut down", "loops", len(loops))
}

// Running reports whether the target currently has a registered loop.
func (s *Scheduler) Running(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[targetID]
	return ok
}

// run is the body of one probing loop. Each iteration records the current
// timestamp, probes the target once and appends the resulting sample. Since
// the loop is sequential, samples for one target are written in strictly
// increasing timestamp order. Cancellation takes effect immediately while
// suspended and after the in-flight probe otherwise; no sample is written
// once cancellation is observed.
func (s *Scheduler) run(ctx context.Context, t store.Target, done chan<- struct{}) {
	defer close(done)
	log := logger.FromContext(ctx).With("target", t.ID, "address", t.Address)

	for {
		timestamp := time.Now().UTC()
		res := s.prober.Probe(ctx, t.Address)
		if ctx.Err() != nil {
			log.DebugContext(ctx, "Loop canceled mid-probe, discarding result")
			return
		}

		sample := store.Sample{
			Timestamp: timestamp,
			TargetID:  t.ID,
			Latency:   res.Latency,
			Hops:      res.Hops,
			Loss:      res.Loss,
		}
		if err := s.store.AppendSample(ctx, sample); err != nil {
			log.ErrorContext(ctx, "Failed to persist sample", "error", err)
		}
		s.metrics.Record(t.Address, res)

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.Interval):
		}
	}
}

// appendEvent writes an audit event, retrying transient store failures.
func (s *Scheduler) appendEvent(ctx context.Context, e store.Event) error {
	err := helper.Retry(func(ctx context.Context) error {
		return s.store.AppendEvent(ctx, e)
	}, defaultRetry)(ctx)
	if err != nil {
		return fmt.Errorf("failed to append %s event for target %s: %w", e.Kind, e.TargetID, err)
	}
	return nil
}

// MetricCollectors returns the prometheus collectors of the scheduler.
func (s *Scheduler) MetricCollectors() []prometheus.Collector {
	return s.metrics.List()
}

// RemoveMetrics drops the metric series labelled with the given address.
// Called when a target is deleted.
func (s *Scheduler) RemoveMetrics(address string) {
	s.metrics.Remove(address)
}
