// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"

	"github.com/telekom/kestrel/internal/logger"
	"golang.org/x/sync/semaphore"
)

var _ Prober = (*systemProber)(nil)

// systemProber shells out to the platform's ping tool once per call.
type systemProber struct {
	cfg Config
	sem *semaphore.Weighted
}

func newSystemProber(cfg Config) *systemProber {
	return &systemProber{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.ConcurrencyLimit),
	}
}

func (p *systemProber) Probe(ctx context.Context, address string) Result {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	// The semaphore wait runs under the per-call deadline, so a saturated
	// limiter surfaces as loss rather than as unbounded queueing.
	if err := p.sem.Acquire(ctx, 1); err != nil {
		log.DebugContext(ctx, "Probe slot not acquired in time", "address", address, "error", err)
		return lost()
	}
	defer p.sem.Release(1)

	name, args := p.command(address)
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		// Timeout, non-zero exit and launch failures all collapse into loss.
		log.DebugContext(ctx, "Probe failed", "address", address, "error", err)
		return lost()
	}

	return parsePingOutput(stdout.String())
}

// command assembles the platform-appropriate single-packet ping invocation.
func (p *systemProber) command(address string) (name string, args []string) {
	name = p.cfg.Binary
	if name == "" {
		name = "ping"
	}

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}
	return name, []string{countFlag, "1", address}
}
