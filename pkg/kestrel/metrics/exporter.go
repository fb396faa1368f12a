// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the type of the span exporter
type Exporter string

const (
	// HTTP sends the traces to an otlp collector via HTTP
	HTTP Exporter = "http"
	// GRPC sends the traces to an otlp collector via gRPC
	GRPC Exporter = "grpc"
	// STDOUT prints the traces to the stdout
	STDOUT Exporter = "stdout"
	// NOOP does not send the traces anywhere
	NOOP Exporter = "noop"
)

// Validate checks if the exporter is valid
func (e Exporter) Validate() error {
	switch e {
	case HTTP, GRPC, STDOUT, NOOP, "":
		return nil
	default:
		return fmt.Errorf("unknown exporter type %q", string(e))
	}
}

// IsExporting returns true if the exporter sends traces to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create creates the span exporter for the configured type
func (e Exporter) Create(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	switch e {
	case HTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Url)}
		if cfg.Token != "" {
			opts = append(opts, otlptracehttp.WithHeaders(map[string]string{
				"Authorization": fmt.Sprintf("Bearer %s", cfg.Token),
			}))
		}
		return otlptracehttp.New(ctx, opts...)
	case GRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpointURL(cfg.Url),
			otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")),
		}
		if cfg.Token != "" {
			opts = append(opts, otlptracegrpc.WithHeaders(map[string]string{
				"Authorization": fmt.Sprintf("Bearer %s", cfg.Token),
			}))
		}
		return otlptracegrpc.New(ctx, opts...)
	case STDOUT:
		return stdouttrace.New()
	case NOOP, "":
		return noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type %q", string(e))
	}
}

// noopExporter discards all spans
type noopExporter struct{}

func (noopExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error { return nil }

func (noopExporter) Shutdown(_ context.Context) error { return nil }
