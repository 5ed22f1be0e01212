package telemetry

import (
	"context"
	"fmt"

	"github.com/vango-dev/snapfx/pkg/snapfx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "snapfx"

// TracingConfig configures the tracing observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "snapfx").
	TracerName string

	// Provider is the tracer provider. If nil, the global provider is used.
	Provider trace.TracerProvider

	// IncludeValues adds committed values to commit span events.
	// Values are formatted with %v and may be large. Disabled by default.
	IncludeValues bool

	// Filter determines which events are traced.
	// If nil, all events are traced.
	Filter func(ev snapfx.Event) bool
}

// TracingOption configures the tracing observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithIncludeValues enables committed values on commit events.
func WithIncludeValues(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeValues = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev snapfx.Event) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// Tracer is a snapfx.Observer that records a span per flush. Renders,
// commits, effect runs and cleanups inside the flush become span events;
// effect failures are recorded as span errors.
//
// Events outside a flush (the first render of a Mount, a direct Unmount)
// each get a span of their own.
//
// Like every observer, Tracer is called on the runtime's execution stream
// and is not safe for use by several runtimes at once.
type Tracer struct {
	config TracingConfig
	tracer trace.Tracer

	flush trace.Span
}

// Tracing creates the tracing observer.
//
// Configure the global provider in main() before mounting anything:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Tracing(opts ...TracingOption) *Tracer {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		config: config,
		tracer: provider.Tracer(config.TracerName),
	}
}

// Observe implements snapfx.Observer.
func (t *Tracer) Observe(ev snapfx.Event) {
	switch ev.Kind {
	case snapfx.EventFlushStart:
		_, t.flush = t.tracer.Start(context.Background(), "snapfx.flush",
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		return
	case snapfx.EventFlushEnd:
		if t.flush == nil {
			return
		}
		span := t.flush
		t.flush = nil
		span.SetAttributes(attribute.Int("snapfx.batches", ev.Batch))
		finish(span, ev.Err)
		span.End()
		return
	}

	if t.config.Filter != nil && !t.config.Filter(ev) {
		return
	}

	attrs := t.attributes(ev)
	if t.flush != nil {
		t.flush.AddEvent(ev.Kind.String(), trace.WithAttributes(attrs...))
		if ev.Err != nil {
			t.flush.RecordError(ev.Err, trace.WithAttributes(attrs...))
		}
		return
	}

	_, span := t.tracer.Start(context.Background(), "snapfx."+ev.Kind.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err)
	}
	finish(span, ev.Err)
	span.End()
}

func (t *Tracer) attributes(ev snapfx.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int64("snapfx.instance", int64(ev.Instance)),
		attribute.String("snapfx.component", ev.Name),
	}
	if ev.Slot >= 0 {
		attrs = append(attrs, attribute.Int("snapfx.slot", ev.Slot))
	}
	if ev.Duration > 0 {
		attrs = append(attrs, attribute.Int64("snapfx.duration_us", ev.Duration.Microseconds()))
	}
	if t.config.IncludeValues && ev.Kind == snapfx.EventCommit {
		attrs = append(attrs, attribute.String("snapfx.value", fmt.Sprintf("%v", ev.Value)))
	}
	return attrs
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
