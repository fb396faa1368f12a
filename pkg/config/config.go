// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/kestrel/internal/traceroute"
	"github.com/telekom/kestrel/pkg/api"
	"github.com/telekom/kestrel/pkg/kestrel/metrics"
	"github.com/telekom/kestrel/pkg/probe"
)

// Config is the startup configuration of kestrel
type Config struct {
	// Name is the instance name exposed in telemetry, "kestrel" by default
	Name string `yaml:"name" mapstructure:"name"`
	// Labels is optional ownership metadata attached to the instance info metric
	Labels map[string]string `yaml:"labels" mapstructure:"labels"`
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Probe is the configuration for the probe engine
	Probe probe.Config `yaml:"probe" mapstructure:"probe"`
	// Traceroute holds the defaults for on-demand path traces
	Traceroute traceroute.Options `yaml:"traceroute" mapstructure:"traceroute"`
	// Telemetry is the configuration for the telemetry
	Telemetry metrics.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// TargetsFile is an optional path to a yaml file with targets to
	// create at startup
	TargetsFile string `yaml:"targetsFile" mapstructure:"targetsFile"`
}

// InstanceName returns the configured instance name or the default
func (c *Config) InstanceName() string {
	if c.Name == "" {
		return "kestrel"
	}
	return c.Name
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasTargetsFile returns true if a seed targets file is configured
func (c *Config) HasTargetsFile() bool {
	return c.TargetsFile != ""
}
