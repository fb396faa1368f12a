// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package insights turns a target's raw sample stream into windowed
// statistics: loss/uptime counts, latency extrema and percentiles, and a
// time-bucketed timeline. The computation is a pure function over a bounded
// read from the store; inputs are expected to be pre-validated by the caller.
package insights

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/telekom/kestrel/pkg/store"
)

const (
	// DefaultWindow is the default lookback span.
	DefaultWindow = time.Hour
	// DefaultBucketSize is the default timeline bucket width.
	DefaultBucketSize = time.Minute
	// DefaultMaxSamples bounds the number of samples read per computation.
	DefaultMaxSamples = 5000
)

// Options bound one insights computation.
type Options struct {
	// Window is the lookback span [now - window, now].
	Window time.Duration
	// BucketSize is the timeline bucket width.
	BucketSize time.Duration
	// MaxSamples caps how many of the most recent samples are read.
	MaxSamples int
}

// withDefaults fills unset fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.BucketSize <= 0 {
		o.BucketSize = DefaultBucketSize
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	return o
}

// Bucket is one fixed-width interval of the timeline. The latency fields are
// absent for a bucket whose samples were all lost.
type Bucket struct {
	Start       time.Time `json:"bucket"`
	AvgLatency  *float64  `json:"avgLatencyMs,omitempty"`
	MinLatency  *float64  `json:"minLatencyMs,omitempty"`
	MaxLatency  *float64  `json:"maxLatencyMs,omitempty"`
	LossRate    float64   `json:"lossRate"`
	SampleCount int       `json:"sampleCount"`
}

// Report is the outcome of one insights computation.
type Report struct {
	TargetID      string    `json:"targetId"`
	TargetAddress string    `json:"targetAddress"`
	CreatedAt     time.Time `json:"createdAt"`
	WindowStart   time.Time `json:"windowStart"`
	WindowEnd     time.Time `json:"windowEnd"`
	TotalSamples  int       `json:"sampleCount"`
	LossCount     int       `json:"lossCount"`
	// UptimePercent is absent when the window holds no samples: "no data"
	// is distinct from "0% uptime".
	UptimePercent *float64 `json:"uptimePercent,omitempty"`
	LatencyAvg    *float64 `json:"latencyAvgMs,omitempty"`
	LatencyMin    *float64 `json:"latencyMinMs,omitempty"`
	LatencyMax    *float64 `json:"latencyMaxMs,omitempty"`
	LatencyP50    *float64 `json:"latencyP50Ms,omitempty"`
	LatencyP95    *float64 `json:"latencyP95Ms,omitempty"`
	LatencyP99    *float64 `json:"latencyP99Ms,omitempty"`
	Timeline      []Bucket `json:"timeline"`
}

// Engine computes insight reports from stored samples.
type Engine struct {
	store store.Store
}

// NewEngine creates an insights engine reading from the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Compute builds the insights report for one target. It returns an error
// wrapping [store.ErrNotFound] if the target does not exist. Samples are
// read newest first and processed in time order.
func (e *Engine) Compute(ctx context.Context, targetID string, opts Options) (*Report, error) {
	target, err := e.store.GetTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	windowEnd := time.Now().UTC()
	windowStart := windowEnd.Add(-opts.Window)

	samples, err := e.store.QuerySamples(ctx, targetID, windowStart, opts.MaxSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	// Newest first from the store; the timeline and the ordering-sensitive
	// aggregation below want time order.
	slices.Reverse(samples)

	report := &Report{
		TargetID:      target.ID,
		TargetAddress: target.Address,
		CreatedAt:     target.CreatedAt,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		TotalSamples:  len(samples),
	}

	var latencies []float64
	for _, sample := range samples {
		if sample.Loss {
			report.LossCount++
			continue
		}
		// A reply without a parsed latency counts as reachable but
		// contributes nothing to the latency population.
		if sample.Latency != nil {
			latencies = append(latencies, *sample.Latency)
		}
	}

	if report.TotalSamples > 0 {
		uptime := (1 - float64(report.LossCount)/float64(report.TotalSamples)) * 100
		report.UptimePercent = &uptime
	}

	if len(latencies) > 0 {
		slices.Sort(latencies)
		report.LatencyMin = ptr(latencies[0])
		report.LatencyMax = ptr(latencies[len(latencies)-1])
		report.LatencyAvg = ptr(mean(latencies))
		report.LatencyP50 = ptr(percentile(latencies, 0.50))
		report.LatencyP95 = ptr(percentile(latencies, 0.95))
		report.LatencyP99 = ptr(percentile(latencies, 0.99))
	}

	report.Timeline = buildTimeline(samples, opts.BucketSize)
	return report, nil
}

// percentile interpolates linearly on a sorted, non-empty population.
// p <= 0 returns the minimum, p >= 1 the maximum.
func percentile(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	k := float64(len(sorted)-1) * p
	lo := int(k)
	hi := min(lo+1, len(sorted)-1)
	weight := k - float64(lo)
	return sorted[lo] + weight*(sorted[hi]-sorted[lo])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// buildTimeline groups samples into fixed-width buckets by flooring each
// timestamp to a multiple of the bucket size in UTC epoch seconds. Buckets
// exist only where samples were observed and are emitted in ascending time
// order.
func buildTimeline(samples []store.Sample, bucketSize time.Duration) []Bucket {
	type acc struct {
		latencies []float64
		lossCount int
		count     int
	}

	buckets := map[int64]*acc{}
	for _, sample := range samples {
		key := floorToBucket(sample.Timestamp, bucketSize)
		b := buckets[key]
		if b == nil {
			b = &acc{}
			buckets[key] = b
		}
		b.count++
		if sample.Loss || sample.Latency == nil {
			b.lossCount++
		} else {
			b.latencies = append(b.latencies, *sample.Latency)
		}
	}

	keys := make([]int64, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	timeline := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		out := Bucket{
			Start:       time.Unix(key, 0).UTC(),
			SampleCount: b.count,
		}
		if b.count > 0 {
			out.LossRate = float64(b.lossCount) / float64(b.count)
		}
		if len(b.latencies) > 0 {
			slices.Sort(b.latencies)
			out.MinLatency = ptr(b.latencies[0])
			out.MaxLatency = ptr(b.latencies[len(b.latencies)-1])
			out.AvgLatency = ptr(mean(b.latencies))
		}
		timeline = append(timeline, out)
	}
	return timeline
}

// floorToBucket floors a timestamp to the nearest multiple of the bucket
// size in epoch seconds.
func floorToBucket(ts time.Time, bucketSize time.Duration) int64 {
	seconds := ts.Unix()
	width := int64(bucketSize / time.Second)
	return seconds - seconds%width
}

func ptr(v float64) *float64 {
	return &v
}
