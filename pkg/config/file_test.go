// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTargetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTargetFile(t *testing.T) {
	path := writeTargetFile(t, `
targets:
  - address: 192.0.2.1
    intervalSeconds: 5
    url: https://example.com
    note: edge router
  - address: 2001:db8::1
    active: false
`)

	f, err := LoadTargetFile(path)
	require.NoError(t, err)
	require.Len(t, f.Targets, 2)

	first := f.Targets[0].ToTarget()
	assert.Equal(t, "192.0.2.1", first.Address)
	assert.Equal(t, 5*time.Second, first.Interval)
	assert.Equal(t, "https://example.com", first.URL)
	assert.Equal(t, "edge router", first.Note)
	assert.True(t, first.Active)

	second := f.Targets[1].ToTarget()
	assert.Equal(t, defaultSeedInterval, second.Interval, "missing interval uses the default")
	assert.False(t, second.Active)
}

func TestLoadTargetFile_InvalidAddress(t *testing.T) {
	path := writeTargetFile(t, `
targets:
  - address: not-an-ip
`)

	_, err := LoadTargetFile(path)
	require.ErrorIs(t, err, ErrInvalidSeedTarget)
}

func TestLoadTargetFile_Missing(t *testing.T) {
	_, err := LoadTargetFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadTargetFile_Malformed(t *testing.T) {
	path := writeTargetFile(t, "targets: [ {")
	_, err := LoadTargetFile(path)
	require.Error(t, err)
}
