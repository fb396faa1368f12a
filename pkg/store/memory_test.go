// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_Targets(t *testing.T) {
	s := NewInMemory()
	ctx := t.Context()

	target := &Target{Address: "192.0.2.1", Interval: time.Second, Active: true}
	require.NoError(t, s.CreateTarget(ctx, target))
	assert.NotEmpty(t, target.ID)
	assert.False(t, target.CreatedAt.IsZero())

	got, err := s.GetTarget(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", got.Address)

	_, err = s.GetTarget(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)

	err = s.CreateTarget(ctx, &Target{Address: "192.0.2.1", Interval: time.Second})
	require.ErrorIs(t, err, ErrDuplicateAddress)

	got.Note = "updated"
	got.Active = false
	require.NoError(t, s.UpdateTarget(ctx, got))

	active, err := s.ListActiveTargets(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := s.ListTargets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "updated", all[0].Note)
}

func TestInMemory_UpdateTarget_DuplicateAddress(t *testing.T) {
	s := NewInMemory()
	ctx := t.Context()

	first := &Target{Address: "192.0.2.1", Interval: time.Second}
	second := &Target{Address: "192.0.2.2", Interval: time.Second}
	require.NoError(t, s.CreateTarget(ctx, first))
	require.NoError(t, s.CreateTarget(ctx, second))

	second.Address = first.Address
	require.ErrorIs(t, s.UpdateTarget(ctx, second), ErrDuplicateAddress)
}

func TestInMemory_QuerySamples(t *testing.T) {
	s := NewInMemory()
	ctx := t.Context()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 10 {
		require.NoError(t, s.AppendSample(ctx, Sample{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			TargetID:  "t1",
			Loss:      i%2 == 0,
		}))
	}

	samples, err := s.QuerySamples(ctx, "t1", base.Add(5*time.Second), 0)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	// Newest first.
	assert.Equal(t, base.Add(9*time.Second), samples[0].Timestamp)
	assert.Equal(t, base.Add(5*time.Second), samples[4].Timestamp)

	limited, err := s.QuerySamples(ctx, "t1", base, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, base.Add(9*time.Second), limited[0].Timestamp)

	none, err := s.QuerySamples(ctx, "unknown", base, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemory_Events(t *testing.T) {
	s := NewInMemory()
	ctx := t.Context()

	require.NoError(t, s.AppendEvent(ctx, Event{TargetID: "t1", Kind: EventStart, Message: "started"}))
	require.NoError(t, s.AppendEvent(ctx, Event{TargetID: "t2", Kind: EventStart, Message: "started"}))
	require.NoError(t, s.AppendEvent(ctx, Event{TargetID: "t1", Kind: EventStop, Message: "stopped"}))

	events, err := s.ListEvents(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventStop, events[0].Kind)
	assert.Equal(t, EventStart, events[1].Kind)

	all, err := s.ListEvents(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemory_DeleteTarget_Cascades(t *testing.T) {
	s := NewInMemory()
	ctx := t.Context()

	target := &Target{Address: "192.0.2.1", Interval: time.Second}
	require.NoError(t, s.CreateTarget(ctx, target))
	require.NoError(t, s.AppendSample(ctx, Sample{Timestamp: time.Now().UTC(), TargetID: target.ID}))
	require.NoError(t, s.AppendEvent(ctx, Event{TargetID: target.ID, Kind: EventStart, Message: "started"}))

	require.NoError(t, s.DeleteTarget(ctx, target.ID))
	require.ErrorIs(t, s.DeleteTarget(ctx, target.ID), ErrNotFound)

	samples, err := s.QuerySamples(ctx, target.ID, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, samples)

	events, err := s.ListEvents(ctx, target.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}
