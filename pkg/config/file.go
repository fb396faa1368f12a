// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/telekom/kestrel/pkg/store"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSeedTarget is returned when a seed file entry is unusable.
var ErrInvalidSeedTarget = errors.New("invalid seed target")

// defaultSeedInterval is used for seed entries without an interval.
const defaultSeedInterval = 60 * time.Second

// TargetSeed is one entry of the optional startup targets file.
type TargetSeed struct {
	// Address is the IP address to monitor.
	Address string `yaml:"address"`
	// IntervalSeconds is the probing interval, defaulting to 60.
	IntervalSeconds int `yaml:"intervalSeconds"`
	// Url is an optional display URL.
	Url string `yaml:"url"`
	// Note is an optional free-text note.
	Note string `yaml:"note"`
	// Active controls whether the target starts probing immediately.
	// Defaults to true.
	Active *bool `yaml:"active"`
}

// TargetFile is the yaml layout of the startup targets file.
type TargetFile struct {
	Targets []TargetSeed `yaml:"targets"`
}

// LoadTargetFile reads and parses the startup targets file.
func LoadTargetFile(path string) (*TargetFile, error) {
	b, err := os.ReadFile(path) // #nosec G304 // the path is operator-provided configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var f TargetFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}

	for i, seed := range f.Targets {
		if err := seed.Validate(); err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
	}
	return &f, nil
}

// Validate checks if the seed entry is usable.
func (s TargetSeed) Validate() error {
	if net.ParseIP(s.Address) == nil {
		return fmt.Errorf("%w: address %q is not an IP", ErrInvalidSeedTarget, s.Address)
	}
	if s.IntervalSeconds < 0 {
		return fmt.Errorf("%w: interval cannot be negative", ErrInvalidSeedTarget)
	}
	return nil
}

// ToTarget converts the seed entry into a store target.
func (s TargetSeed) ToTarget() store.Target {
	interval := defaultSeedInterval
	if s.IntervalSeconds > 0 {
		interval = time.Duration(s.IntervalSeconds) * time.Second
	}

	active := true
	if s.Active != nil {
		active = *s.Active
	}

	return store.Target{
		Address:  s.Address,
		Interval: interval,
		Active:   active,
		URL:      s.Url,
		Note:     s.Note,
	}
}
