// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package store defines the persistence contract the monitoring engine is
// written against, together with an in-memory implementation. Samples and
// audit events are append-only; targets are the only mutable rows.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a target does not exist.
	ErrNotFound = errors.New("target not found")
	// ErrDuplicateAddress is returned when a target with the same address already exists.
	ErrDuplicateAddress = errors.New("a target with this address already exists")
)

// Target is a network address under continuous monitoring.
type Target struct {
	// ID is an opaque identifier, assigned on creation.
	ID string `json:"id" yaml:"id"`
	// Address is the target's IP address, unique across all targets.
	Address string `json:"address" yaml:"address"`
	// Interval is the probing interval, at least one second.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// Active indicates whether the target should have a running probe loop.
	Active bool `json:"active" yaml:"active"`
	// URL is an optional display URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Note is an optional free-text note.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Sample is one reachability measurement for a target at a point in time.
// The composite key is (Timestamp, TargetID).
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	TargetID  string    `json:"targetId"`
	// Latency is the round-trip time in milliseconds, present only when
	// the target replied and a latency could be parsed.
	Latency *float64 `json:"latencyMs,omitempty"`
	// Hops is the estimated hop count, present only when the target replied.
	Hops *int `json:"hops,omitempty"`
	// Loss is set when the target was unreachable or the probe errored.
	Loss bool `json:"loss"`
}

// EventKind is the kind of an audit event.
type EventKind string

const (
	// EventStart records that a target's probe loop was started.
	EventStart EventKind = "start"
	// EventStop records that a target's probe loop was stopped.
	EventStop EventKind = "stop"
)

// Event is an append-only audit record of a loop transition.
type Event struct {
	// TargetID is the affected target, empty for global events.
	TargetID  string    `json:"targetId,omitempty"`
	Kind      EventKind `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence collaborator of the monitoring engine.
type Store interface {
	// CreateTarget persists a new target, assigning its ID and creation
	// timestamp. Returns ErrDuplicateAddress if the address is taken.
	CreateTarget(ctx context.Context, t *Target) error
	// GetTarget returns the target with the given id, or ErrNotFound.
	GetTarget(ctx context.Context, id string) (*Target, error)
	// UpdateTarget replaces the stored target with the same ID.
	UpdateTarget(ctx context.Context, t *Target) error
	// DeleteTarget removes a target along with its samples and events.
	DeleteTarget(ctx context.Context, id string) error
	// ListTargets returns all targets ordered by creation time.
	ListTargets(ctx context.Context) ([]Target, error)
	// ListActiveTargets returns all targets marked active.
	ListActiveTargets(ctx context.Context) ([]Target, error)

	// AppendSample appends one probe sample.
	AppendSample(ctx context.Context, s Sample) error
	// QuerySamples returns up to limit samples for the target taken at or
	// after since, newest first. A limit <= 0 means no limit.
	QuerySamples(ctx context.Context, targetID string, since time.Time, limit int) ([]Sample, error)

	// AppendEvent appends one audit event.
	AppendEvent(ctx context.Context, e Event) error
	// ListEvents returns up to limit events for the target, newest first.
	// An empty targetID returns events for all targets.
	ListEvents(ctx context.Context, targetID string, limit int) ([]Event, error)
}
