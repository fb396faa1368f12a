// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	instanceInfoMetricName = "kestrel_instance_info"
	instanceInfoHelp       = "Ownership and platform metadata for this kestrel instance. Emitted once per instance for alert routing and multi-team correlation."
)

// RegisterInstanceInfo registers the kestrel_instance_info info-style metric
// on the given registry. It sets the gauge to 1 with the labels team_name,
// team_email and platform taken from the metadata map, plus instance_name.
// Missing metadata keys become empty label values.
func RegisterInstanceInfo(registry *prometheus.Registry, instanceName string, metadata map[string]string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: instanceInfoMetricName,
			Help: instanceInfoHelp,
		},
		[]string{"team_name", "team_email", "platform", "instance_name"},
	)
	info.WithLabelValues(
		metadata["team_name"],
		metadata["team_email"],
		metadata["platform"],
		instanceName,
	).Set(1)
	return registry.Register(info)
}
