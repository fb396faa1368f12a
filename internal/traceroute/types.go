// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"net"
	"time"
)

const (
	// DefaultMaxHops is the default TTL limit for a trace.
	DefaultMaxHops = 20
	// DefaultQueries is the default number of probes sent per hop.
	DefaultQueries = 1
	// DefaultTimeout is the default wall-clock bound for a whole trace run.
	DefaultTimeout = 25 * time.Second
)

// Options contains the optional configuration for a trace run.
type Options struct {
	// MaxHops is the maximum number of hops to probe.
	MaxHops int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Queries is the number of probes sent per hop.
	Queries int `json:"queries" yaml:"queries" mapstructure:"queries"`
	// Timeout is the wall-clock bound for the whole trace run.
	// On expiry the underlying process is killed.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Binary overrides the trace tool to invoke. Empty selects the
	// platform default.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty" mapstructure:"binary"`
}

// withDefaults fills unset fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.MaxHops <= 0 {
		o.MaxHops = DefaultMaxHops
	}
	if o.Queries <= 0 {
		o.Queries = DefaultQueries
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Validate checks that the options are usable for a trace run.
func (o Options) Validate() error {
	if o.MaxHops < 0 {
		return errors.New("max hops cannot be negative")
	}
	if o.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

// Hop is one parsed line of trace output.
type Hop struct {
	// Index is the hop position, starting at 1.
	Index int `json:"hop" yaml:"hop"`
	// Host is the first token of the line, usually the resolved name.
	// Empty if the hop timed out.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// IP is the address literal found in parentheses, if any.
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`
	// RTT is the first round-trip time found on the line, if any.
	RTT *float64 `json:"rttMs,omitempty" yaml:"rttMs,omitempty"`
	// Timeout is set when the line contains the wildcard marker.
	Timeout bool `json:"isTimeout" yaml:"isTimeout"`
	// Raw is the original line, kept for diagnostics.
	Raw string `json:"raw" yaml:"raw"`
}

// Result is the outcome of one trace run.
type Result struct {
	Address    string    `json:"address" yaml:"address"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
	DurationMs float64   `json:"durationMs" yaml:"durationMs"`
	Hops       []Hop     `json:"hops" yaml:"hops"`
}

// validAddress reports whether the address can be handed to the trace tool.
func validAddress(addr string) bool {
	if addr == "" {
		return false
	}
	return net.ParseIP(addr) != nil
}
