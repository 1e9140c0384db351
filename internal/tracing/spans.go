package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

// Span attribute keys.
const (
	AttrRequestNames = "resolve.request.names"
	AttrRequestSize  = "resolve.request.size"
	AttrForestRoots  = "resolve.forest.roots"
	AttrForestNodes  = "resolve.forest.nodes"
	AttrRegistryID   = "registry.id"
	AttrErrorKind    = "error.kind"
	AttrHTTPPath     = "http.path"
	AttrRequestID    = "http.request_id"
)

// Span names.
const (
	SpanResolve = "component.resolve"
	SpanHTTP    = "http."
)

// StartResolveSpan opens a span for resolving names.
func StartResolveSpan(ctx context.Context, tracer trace.Tracer, registryID string, names []string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanResolve,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.StringSlice(AttrRequestNames, names),
			attribute.Int(AttrRequestSize, len(names)),
			attribute.String(AttrRegistryID, registryID),
		),
	)
}

// EndResolveSpan records the outcome of a resolve and ends the span.
func EndResolveSpan(span trace.Span, forest component.Forest, err error) {
	defer span.End()
	if err != nil {
		span.SetAttributes(attribute.String(AttrErrorKind, string(component.KindOf(err))))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int(AttrForestRoots, len(forest)),
		attribute.Int(AttrForestNodes, len(forest.Flatten())),
	)
	span.SetStatus(codes.Ok, "")
}
