// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package kestrel wires the monitoring engine together: store, probe engine,
// scheduler, insights engine, path tracer and the HTTP boundary.
package kestrel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/kestrel/internal/logger"
	"github.com/telekom/kestrel/internal/traceroute"
	"github.com/telekom/kestrel/pkg/api"
	"github.com/telekom/kestrel/pkg/config"
	"github.com/telekom/kestrel/pkg/insights"
	"github.com/telekom/kestrel/pkg/kestrel/metrics"
	"github.com/telekom/kestrel/pkg/probe"
	"github.com/telekom/kestrel/pkg/scheduler"
	"github.com/telekom/kestrel/pkg/store"
)

const shutdownTimeout = time.Second * 90

// Kestrel is the main struct of the kestrel application
type Kestrel struct {
	// config is the startup configuration of kestrel
	config *config.Config
	// store holds targets, samples and audit events
	store store.Store
	// api is kestrel's API
	api api.API
	// scheduler manages the per-target probing loops
	scheduler *scheduler.Scheduler
	// insights computes windowed reports from stored samples
	insights *insights.Engine
	// tracer runs on-demand path traces
	tracer traceroute.Client
	// prober runs one-off reachability checks for the boundary
	prober probe.Prober
	// metrics is used to collect metrics
	metrics metrics.Provider
	// cErr is used to handle non-recoverable errors of the kestrel components
	cErr chan error
	// cDone is used to signal that kestrel was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates a new kestrel from a given config
func New(cfg *config.Config) *Kestrel {
	m := metrics.New(cfg.Telemetry)
	st := store.NewInMemory()
	p := probe.New(cfg.Probe)

	return &Kestrel{
		config:    cfg,
		store:     st,
		api:       api.New(cfg.Api),
		scheduler: scheduler.New(st, p),
		insights:  insights.NewEngine(st),
		tracer:    traceroute.NewClient(),
		prober:    p,
		metrics:   m,
		cErr:      make(chan error, 1),
		cDone:     make(chan struct{}, 1),
		shutOnce:  sync.Once{},
	}
}

// Run starts kestrel
func (k *Kestrel) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	if err := k.config.Validate(ctx); err != nil {
		return err
	}

	if err := k.metrics.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	k.metrics.GetRegistry().MustRegister(k.scheduler.MetricCollectors()...)
	if err := metrics.RegisterInstanceInfo(k.metrics.GetRegistry(), k.config.InstanceName(), k.config.Labels); err != nil {
		return fmt.Errorf("failed to register instance info: %w", err)
	}

	if k.config.HasTargetsFile() {
		if err := k.seedTargets(ctx); err != nil {
			return fmt.Errorf("failed to seed targets: %w", err)
		}
	}

	go func() {
		k.cErr <- k.scheduler.Reconcile(ctx)
	}()

	go func() {
		k.cErr <- k.startupAPI(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			k.shutdown(ctx)
		case err := <-k.cErr:
			if err != nil {
				log.Error("Non-recoverable error in kestrel component", "error", err)
				k.shutdown(ctx)
			}
		case <-k.cDone:
			log.InfoContext(ctx, "Kestrel was shut down")
			return ErrFinalShutdown
		}
	}
}

// seedTargets loads the configured targets file and creates its entries in
// the store. Addresses that already exist are skipped, so the file can stay
// in place across restarts.
func (k *Kestrel) seedTargets(ctx context.Context) error {
	log := logger.FromContext(ctx)

	f, err := config.LoadTargetFile(k.config.TargetsFile)
	if err != nil {
		return err
	}

	for _, seed := range f.Targets {
		t := seed.ToTarget()
		if err := k.store.CreateTarget(ctx, &t); err != nil {
			if errors.Is(err, store.ErrDuplicateAddress) {
				log.DebugContext(ctx, "Seed target already exists", "address", t.Address)
				continue
			}
			return err
		}
		log.InfoContext(ctx, "Created seed target", "address", t.Address, "active", t.Active)
	}
	return nil
}

// startupAPI registers the boundary routes and serves the API
func (k *Kestrel) startupAPI(ctx context.Context) error {
	if err := k.api.RegisterRoutes(k.routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return k.api.Run(ctx)
}

// shutdown shuts down kestrel and all managed components gracefully.
func (k *Kestrel) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	k.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down kestrel")
		var sErrs ErrShutdown
		k.scheduler.Shutdown(ctx)
		sErrs.errAPI = k.api.Shutdown(ctx)
		sErrs.errMetrics = k.metrics.Shutdown(ctx)

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		k.cDone <- struct{}{}
	})
}
