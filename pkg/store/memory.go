// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*InMemory)(nil)

// InMemory is a mutex-guarded in-process Store.
type InMemory struct {
	mu      sync.RWMutex
	targets map[string]Target
	samples map[string][]Sample
	events  []Event
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		targets: map[string]Target{},
		samples: map[string][]Sample{},
	}
}

func (s *InMemory) CreateTarget(_ context.Context, t *Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.targets {
		if existing.Address == t.Address {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, t.Address)
		}
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.targets[t.ID] = *t
	return nil
}

func (s *InMemory) GetTarget(_ context.Context, id string) (*Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &t, nil
}

func (s *InMemory) UpdateTarget(_ context.Context, t *Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[t.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	for id, existing := range s.targets {
		if id != t.ID && existing.Address == t.Address {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, t.Address)
		}
	}
	s.targets[t.ID] = *t
	return nil
}

func (s *InMemory) DeleteTarget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.targets, id)
	delete(s.samples, id)
	s.events = slices.DeleteFunc(s.events, func(e Event) bool {
		return e.TargetID == id
	})
	return nil
}

func (s *InMemory) ListTargets(_ context.Context) ([]Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make([]Target, 0, len(s.targets))
	for _, t := range s.targets {
		targets = append(targets, t)
	}
	slices.SortFunc(targets, func(a, b Target) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return targets, nil
}

func (s *InMemory) ListActiveTargets(ctx context.Context) ([]Target, error) {
	targets, err := s.ListTargets(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(targets, func(t Target) bool {
		return !t.Active
	}), nil
}

func (s *InMemory) AppendSample(_ context.Context, sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[sample.TargetID] = append(s.samples[sample.TargetID], sample)
	return nil
}

func (s *InMemory) QuerySamples(_ context.Context, targetID string, since time.Time, limit int) ([]Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Sample
	stored := s.samples[targetID]
	// Samples are appended in time order, so walk backwards for newest first.
	for i := len(stored) - 1; i >= 0; i-- {
		if stored[i].Timestamp.Before(since) {
			continue
		}
		out = append(out, stored[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) AppendEvent(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, e)
	return nil
}

func (s *InMemory) ListEvents(_ context.Context, targetID string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if targetID != "" && s.events[i].TargetID != targetID {
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
