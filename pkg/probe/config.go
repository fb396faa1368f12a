// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"time"
)

// Mode selects the probing backend.
type Mode string

const (
	// ModeSystem invokes the platform's ping tool and parses its output.
	ModeSystem Mode = "system"
	// ModeNative sends ICMP echo requests in-process via pro-bing.
	ModeNative Mode = "native"
)

const (
	// DefaultTimeout bounds one probe call, slot wait included.
	DefaultTimeout = time.Second
	// DefaultConcurrencyLimit bounds in-flight probes across all targets.
	DefaultConcurrencyLimit = 200
)

// Config holds the probe engine configuration.
type Config struct {
	// Mode selects the probing backend, system ping by default.
	Mode Mode `yaml:"mode" mapstructure:"mode"`
	// Timeout is the per-call budget covering limiter wait and check.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ConcurrencyLimit caps concurrent in-flight probes process-wide,
	// protecting the host from unbounded subprocess fan-out when many
	// targets share a short interval.
	ConcurrencyLimit int64 `yaml:"concurrencyLimit" mapstructure:"concurrencyLimit"`
	// Binary overrides the ping tool for the system mode. Empty selects
	// the platform default.
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`
}

// ErrInvalidConfig is returned when a probe configuration field is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid probe configuration field %q: %s", e.Field, e.Reason)
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	switch c.Mode {
	case "", ModeSystem, ModeNative:
	default:
		return ErrInvalidConfig{Field: "mode", Reason: fmt.Sprintf("must be %q or %q", ModeSystem, ModeNative)}
	}
	if c.Timeout < 0 {
		return ErrInvalidConfig{Field: "timeout", Reason: "cannot be negative"}
	}
	if c.ConcurrencyLimit < 0 {
		return ErrInvalidConfig{Field: "concurrencyLimit", Reason: "cannot be negative"}
	}
	return nil
}

// withDefaults fills unset fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeSystem
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	return c
}
