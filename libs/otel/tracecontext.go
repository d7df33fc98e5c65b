package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StoredTrace is a span context flattened to its W3C header values so it can
// wait in a table row until a background worker carries it on.
type StoredTrace struct {
	Traceparent string
	Tracestate  string
}

// CaptureTrace records the span context of ctx. It is empty when ctx carries
// no span or no propagator is installed.
func CaptureTrace(ctx context.Context) StoredTrace {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return StoredTrace{Traceparent: carrier["traceparent"], Tracestate: carrier["tracestate"]}
}

// Resume returns ctx with s as its remote parent. An empty or unparsable s
// leaves ctx as it is.
func (s StoredTrace) Resume(ctx context.Context) context.Context {
	if s.Traceparent == "" {
		return ctx
	}
	out := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
		"traceparent": s.Traceparent,
		"tracestate":  s.Tracestate,
	})
	if !trace.SpanContextFromContext(out).IsValid() {
		return ctx
	}
	return out
}
