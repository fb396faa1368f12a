// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/telekom/kestrel/internal/logger"
	"golang.org/x/sync/semaphore"
)

var _ Prober = (*nativeProber)(nil)

// nativeProber sends ICMP echo requests in-process instead of shelling out.
// Useful on hosts without a ping binary; requires the unprivileged ICMP
// socket to be allowed (net.ipv4.ping_group_range on linux).
type nativeProber struct {
	cfg Config
	sem *semaphore.Weighted
}

func newNativeProber(cfg Config) *nativeProber {
	return &nativeProber{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.ConcurrencyLimit),
	}
}

func (p *nativeProber) Probe(ctx context.Context, address string) Result {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	// Same discipline as the system prober: the slot wait burns the
	// per-call budget.
	if err := p.sem.Acquire(ctx, 1); err != nil {
		log.DebugContext(ctx, "Probe slot not acquired in time", "address", address, "error", err)
		return lost()
	}
	defer p.sem.Release(1)

	pinger, err := probing.NewPinger(address)
	if err != nil {
		log.DebugContext(ctx, "Failed to create pinger", "address", address, "error", err)
		return lost()
	}
	pinger.Count = 1
	pinger.Timeout = p.cfg.Timeout

	var ttl int
	pinger.OnRecv = func(pkt *probing.Packet) {
		ttl = pkt.TTL
	}

	if err := pinger.RunWithContext(ctx); err != nil {
		log.DebugContext(ctx, "Probe failed", "address", address, "error", err)
		return lost()
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return lost()
	}

	latency := float64(stats.AvgRtt) / float64(time.Millisecond)
	hops := assumedInitialTTL(ttl) - ttl
	return Result{Latency: &latency, Hops: &hops}
}
