package metrics

import (
	"context"
	"sync"
	"time"
)

// Tracer starts spans around scanner operations. The
// interface keeps the core independent of any tracing backend; the otel
// build tag supplies an OpenTelemetry implementation.
type Tracer interface {
	// StartSpan opens a span. The returned SpanEnder must be called once,
	// with nil on success or the failing error.
	StartSpan(ctx context.Context, name string, attrs ...Attr) (context.Context, SpanEnder)
}

// SpanEnder closes a span, recording an error when non-nil.
type SpanEnder func(err error)

// Attr is one span attribute.
type Attr struct {
	Key   string
	Value interface{}
}

// Attribute builds an Attr.
func Attribute(key string, value interface{}) Attr {
	return Attr{Key: key, Value: value}
}

// NoopTracer drops all spans. The default everywhere.
type NoopTracer struct{}

// StartSpan implements Tracer.
func (NoopTracer) StartSpan(ctx context.Context, name string, attrs ...Attr) (context.Context, SpanEnder) {
	return ctx, func(error) {}
}

// RecordingTracer keeps finished spans in memory, for tests and debugging.
type RecordingTracer struct {
	mu    sync.Mutex
	spans []RecordedSpan
}

// RecordedSpan is one finished span.
type RecordedSpan struct {
	Name     string
	Start    time.Time
	Duration time.Duration
	Err      error
	Attrs    []Attr
}

// StartSpan implements Tracer.
func (t *RecordingTracer) StartSpan(ctx context.Context, name string, attrs ...Attr) (context.Context, SpanEnder) {
	start := time.Now()
	return ctx, func(err error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.spans = append(t.spans, RecordedSpan{
			Name:     name,
			Start:    start,
			Duration: time.Since(start),
			Err:      err,
			Attrs:    attrs,
		})
	}
}

// Spans returns a copy of the recorded spans.
func (t *RecordingTracer) Spans() []RecordedSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Reset discards recorded spans.
func (t *RecordingTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
}
