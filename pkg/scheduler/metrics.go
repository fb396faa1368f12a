// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/kestrel/pkg/probe"
)

// metrics defines the metric collectors of the probing loops
type metrics struct {
	latency   *prometheus.GaugeVec
	histogram *prometheus.HistogramVec
	count     *prometheus.CounterVec
	lost      *prometheus.CounterVec
}

// newMetrics initializes the metric collectors of the probing loops
func newMetrics() metrics {
	return metrics{
		latency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kestrel_probe_latency_ms",
				Help: "Last observed round-trip time to the target in milliseconds.",
			},
			[]string{"target"},
		),
		histogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "kestrel_probe_latency",
				Help: "Histogram of round-trip times to the target in milliseconds.",
			},
			[]string{"target"},
		),
		count: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kestrel_probe_count",
				Help: "Total number of probes sent to the target.",
			},
			[]string{"target"},
		),
		lost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kestrel_probe_lost_count",
				Help: "Total number of probes to the target that were lost.",
			},
			[]string{"target"},
		),
	}
}

// List returns all metric collectors
func (m *metrics) List() []prometheus.Collector {
	return []prometheus.Collector{
		m.latency,
		m.histogram,
		m.count,
		m.lost,
	}
}

// Record sets the metrics for one probe result
func (m *metrics) Record(target string, res probe.Result) {
	m.count.WithLabelValues(target).Inc()
	if res.Loss {
		m.lost.WithLabelValues(target).Inc()
		return
	}
	if res.Latency != nil {
		m.latency.WithLabelValues(target).Set(*res.Latency)
		m.histogram.WithLabelValues(target).Observe(*res.Latency)
	}
}

// Remove removes the metrics of one target
func (m *metrics) Remove(target string) {
	m.latency.DeleteLabelValues(target)
	m.histogram.DeleteLabelValues(target)
	m.count.DeleteLabelValues(target)
	m.lost.DeleteLabelValues(target)
}
