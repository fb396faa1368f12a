// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package probe implements the single-shot reachability check the scheduler
// drives. A prober makes exactly one attempt per call, bounded by a per-call
// timeout and a process-wide concurrency limiter, and reports every kind of
// failure uniformly as loss. Retry policy belongs to the caller.
package probe

import (
	"context"
)

// Result is the outcome of one reachability check.
type Result struct {
	// Latency is the round-trip time in milliseconds. Present only when a
	// reply was received and a latency token could be parsed.
	Latency *float64 `json:"latencyMs,omitempty"`
	// Hops is the hop-count estimate derived from the reply TTL.
	// Present only when a reply was received.
	Hops *int `json:"hops,omitempty"`
	// Loss is set when the target did not reply within bounds, the tool
	// failed, or the probe could not be launched at all.
	Loss bool `json:"loss"`
}

// lost is the uniform failure result. Callers never see the underlying error.
func lost() Result {
	return Result{Loss: true}
}

// Prober runs a single reachability check against one address.
//
// Probe never returns an error: every failure mode (timeout, unreachable
// target, tool error) collapses into Result.Loss. Slot acquisition on the
// shared concurrency limiter and the check itself share one clock, so under
// a saturated limiter the wait alone can exhaust the per-call timeout, in
// which case the probe reports loss without ever reaching the network.
type Prober interface {
	Probe(ctx context.Context, address string) Result
}

// New creates a Prober for the configured mode.
func New(cfg Config) Prober {
	cfg = cfg.withDefaults()
	if cfg.Mode == ModeNative {
		return newNativeProber(cfg)
	}
	return newSystemProber(cfg)
}
