// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package kestrel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/kestrel/pkg/api"
	"github.com/telekom/kestrel/pkg/config"
	"github.com/telekom/kestrel/pkg/store"
)

// TestKestrel_Run_FullComponentStart tests that the Run method brings up the
// API and the scheduler.
func TestKestrel_Run_FullComponentStart(t *testing.T) {
	c := &config.Config{
		Api: api.Config{ListeningAddress: ":9191"},
	}

	k := New(c)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { require.ErrorIs(t, k.Run(ctx), ErrFinalShutdown) }()

	t.Log("Running kestrel for 100ms")
	<-time.After(100 * time.Millisecond)
}

// TestKestrel_Run_ContextCancel tests that after a context cancels the Run
// method returns and all started components are shut down.
func TestKestrel_Run_ContextCancel(t *testing.T) {
	c := &config.Config{
		Api: api.Config{ListeningAddress: ":9192"},
	}

	k := New(c)
	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() { cErr <- k.Run(ctx) }()

	t.Log("Running kestrel for 50ms")
	time.Sleep(50 * time.Millisecond)

	t.Log("Canceling context and waiting for shutdown")
	cancel()
	select {
	case err := <-cErr:
		require.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("kestrel did not shut down in time")
	}
}

// TestKestrel_Run_InvalidConfig tests that an invalid startup configuration
// fails Run before any component starts.
func TestKestrel_Run_InvalidConfig(t *testing.T) {
	k := New(&config.Config{})
	err := k.Run(t.Context())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFinalShutdown)
}

func TestKestrel_seedTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  - address: 192.0.2.1
    intervalSeconds: 30
  - address: 192.0.2.2
    active: false
`), 0o600))

	c := &config.Config{TargetsFile: path}
	k := New(c)

	require.NoError(t, k.seedTargets(t.Context()))

	targets, err := k.store.ListTargets(t.Context())
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "192.0.2.1", targets[0].Address)
	assert.Equal(t, 30*time.Second, targets[0].Interval)
	assert.False(t, targets[1].Active)

	t.Run("seeding twice is idempotent", func(t *testing.T) {
		require.NoError(t, k.seedTargets(t.Context()))
		targets, err := k.store.ListTargets(t.Context())
		require.NoError(t, err)
		assert.Len(t, targets, 2)
	})

	t.Run("invalid file fails", func(t *testing.T) {
		k.config.TargetsFile = filepath.Join(t.TempDir(), "missing.yaml")
		require.Error(t, k.seedTargets(t.Context()))
	})
}

// TestKestrel_Run_SeedsAndReconciles tests that active targets from the seed
// file end up with running loops after Reconcile.
func TestKestrel_Run_SeedsAndReconciles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  - address: 127.0.0.1
    intervalSeconds: 1
`), 0o600))

	c := &config.Config{
		Api:         api.Config{ListeningAddress: ":9193"},
		TargetsFile: path,
	}

	k := New(c)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	cErr := make(chan error, 1)
	go func() { cErr <- k.Run(ctx) }()

	require.Eventually(t, func() bool {
		targets, err := k.store.ListTargets(context.Background())
		if err != nil || len(targets) != 1 {
			return false
		}
		return k.scheduler.Running(targets[0].ID)
	}, 2*time.Second, 20*time.Millisecond, "seeded target should have a running loop")

	events, err := k.store.ListEvents(context.Background(), "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, store.EventStart, events[len(events)-1].Kind)

	cancel()
	select {
	case err := <-cErr:
		require.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("kestrel did not shut down in time")
	}
}
