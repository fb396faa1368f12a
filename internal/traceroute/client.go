// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/telekom/kestrel/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*execClient)(nil)

// Client is able to run a one-off trace against a single address.
type Client interface {
	// Run executes one trace for the given address with the specified options.
	// It returns [ErrUnavailable] if the trace tool is missing on the host and
	// [ErrTimeout] if the run exceeds opts.Timeout.
	Run(ctx context.Context, address string, opts Options) (*Result, error)
}

type execClient struct {
	tracer trace.Tracer
}

// NewClient returns a Client backed by the platform's trace tool.
func NewClient() Client {
	return &execClient{
		tracer: otel.Tracer("traceroute"),
	}
}

// partialSuccessCode is the exit code the tool uses when some probes were
// answered but the target was not fully reached. Output is still parsed.
const partialSuccessCode = 1

func (c *execClient) Run(ctx context.Context, address string, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)
	ctx, span := c.tracer.Start(ctx, "traceroute.run", trace.WithAttributes(
		attribute.String("traceroute.target", address),
	))
	defer span.End()

	if !validAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	name, args := buildCommand(address, opts)
	log.DebugContext(ctx, "Starting trace", "binary", name, "args", args)

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startedAt := time.Now().UTC()
	err := cmd.Run()
	finishedAt := time.Now().UTC()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.WarnContext(ctx, "Trace exceeded its timeout", "timeout", opts.Timeout.String())
		span.SetStatus(codes.Error, "trace timed out")
		return nil, fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
	}

	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			span.SetStatus(codes.Error, "trace tool unavailable")
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, name)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() != partialSuccessCode {
			span.SetStatus(codes.Error, "trace tool failed")
			span.RecordError(err)
			return nil, ErrExit{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		if exitErr == nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to run trace tool: %w", err)
		}
		// Partial success, whatever hops were printed are still usable.
		log.DebugContext(ctx, "Trace finished with partial success", "code", exitErr.ExitCode())
	}

	res := &Result{
		Address:    address,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		DurationMs: float64(finishedAt.Sub(startedAt)) / float64(time.Millisecond),
		Hops:       parseOutput(stdout.String()),
	}
	span.SetAttributes(attribute.Int("traceroute.hops", len(res.Hops)))
	log.DebugContext(ctx, "Trace finished", "hops", len(res.Hops), "durationMs", res.DurationMs)
	return res, nil
}

// buildCommand assembles the platform-appropriate trace invocation.
func buildCommand(address string, opts Options) (name string, args []string) {
	if runtime.GOOS == "windows" {
		name = "tracert"
		if opts.Binary != "" {
			name = opts.Binary
		}
		return name, []string{"-h", strconv.Itoa(opts.MaxHops), address}
	}

	name = "traceroute"
	if opts.Binary != "" {
		name = opts.Binary
	}
	return name, []string{"-q", strconv.Itoa(opts.Queries), "-m", strconv.Itoa(opts.MaxHops), address}
}
