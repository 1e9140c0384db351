// Package tracing wires OpenTelemetry spans around component resolution.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultServiceName = "esencia"

// Config configures the tracing subsystem.
type Config struct {
	// Enabled controls whether tracing is active. When false a no-op tracer
	// is returned.
	Enabled bool

	// Exporter is one of "none", "file", "stdout", "otlp".
	Exporter string

	// FilePath receives one JSON span per line for the "file" exporter.
	FilePath string

	// OTLPEndpoint is the collector address for the "otlp" exporter.
	OTLPEndpoint string

	// SampleRate is the fraction of traces sampled. Non-positive means 1.0.
	SampleRate float64

	ServiceName string
}

// DefaultConfig returns tracing disabled with file export prepared.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Exporter:     "file",
		OTLPEndpoint: "localhost:4317",
		SampleRate:   1.0,
		ServiceName:  defaultServiceName,
	}
}

// Provider owns the tracer provider and any file the exporter writes to.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	closer   io.Closer
	enabled  bool
}

// NewProvider builds a provider for cfg. Disabled configs get a no-op tracer.
func NewProvider(cfg Config) (*Provider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(serviceName)}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		closer   io.Closer
		err      error
	)
	switch cfg.Exporter {
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("tracing: file path required for file exporter")
		}
		var file *os.File
		file, err = openTraceFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(file))
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("tracing: create file exporter: %w", err)
		}
		closer = file
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("tracing: create stdout exporter: %w", err)
		}
	case "otlp":
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exporter, err = otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("tracing: create otlp exporter: %w", err)
		}
	case "none", "":
	default:
		return nil, fmt.Errorf("tracing: unsupported exporter type: %s", cfg.Exporter)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)

	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(serviceName),
		closer:   closer,
		enabled:  true,
	}, nil
}

func openTraceFile(path string) (*os.File, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		return nil, fmt.Errorf("tracing: create trace directory: %w", err)
	}
	file, err := os.OpenFile(clean, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("tracing: open trace file: %w", err)
	}
	return file, nil
}

// Tracer returns the configured tracer. It is a no-op tracer when disabled.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(defaultServiceName)
	}
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// Shutdown flushes pending spans and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.provider != nil {
		errs = append(errs, p.provider.Shutdown(ctx))
	}
	if p.closer != nil {
		errs = append(errs, p.closer.Close())
		p.closer = nil
	}
	return errors.Join(errs...)
}
