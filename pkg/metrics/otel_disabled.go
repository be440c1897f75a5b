//go:build !otel

package metrics

import "context"

// OTelTracer is a stub when built without the otel tag.
type OTelTracer struct{}

// NewOTelTracer returns a no-op tracer in builds without OpenTelemetry.
func NewOTelTracer(serviceName string) *OTelTracer {
	return &OTelTracer{}
}

// StartSpan implements Tracer as a no-op.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, attrs ...Attr) (context.Context, SpanEnder) {
	return ctx, func(error) {}
}

// OTelEnabled reports whether OpenTelemetry support is compiled in.
func OTelEnabled() bool { return false }
