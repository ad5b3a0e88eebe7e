package extensions

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/reactivestate/atoms"
)

// TracingExtension wraps every atom evaluation in an OpenTelemetry span and
// records counters for wrapped operations, failures, and releases. Grounded on
// jinterlante1206-AleutianLocal's go.mod, which wires the full otel stack
// (otelgin/otelgrpc/otlptrace/stdoutmetric) around its HTTP/gRPC surface —
// here the otel stack wraps kernel transactions instead, since this library
// has no network surface of its own for otelgin/otelgrpc to attach to; a
// kernel operation is this library's "request".
type TracingExtension struct {
	atoms.BaseExtension

	tracer         trace.Tracer
	operations     metric.Int64Counter
	failures       metric.Int64Counter
	releases       metric.Int64Counter
}

// NewTracingExtension builds a TracingExtension using the given
// TracerProvider/MeterProvider (a no-op pair is fine for tests — see
// go.opentelemetry.io/otel/trace/noop and otel/metric/noop).
func NewTracingExtension(tp trace.TracerProvider, mp metric.MeterProvider) (*TracingExtension, error) {
	tracer := tp.Tracer("github.com/reactivestate/atoms")
	meter := mp.Meter("github.com/reactivestate/atoms")

	operations, err := meter.Int64Counter("atoms.operations",
		metric.WithDescription("kernel operations performed"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("atoms.failures",
		metric.WithDescription("kernel operations that returned an error"))
	if err != nil {
		return nil, err
	}
	releases, err := meter.Int64Counter("atoms.releases",
		metric.WithDescription("atom keys released by checkAndRelease"))
	if err != nil {
		return nil, err
	}

	return &TracingExtension{
		tracer:     tracer,
		operations: operations,
		failures:   failures,
		releases:   releases,
	}, nil
}

func (TracingExtension) Name() string { return "tracing" }
func (TracingExtension) Order() int   { return 10 }

func (e *TracingExtension) Wrap(op atoms.Operation, next func() (any, error)) (any, error) {
	ctx, span := e.tracer.Start(context.Background(), "atoms."+op.Kind.String(),
		trace.WithAttributes(attribute.String("atoms.key", op.Key)))
	defer span.End()

	e.operations.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", op.Kind.String())))

	result, err := next()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", op.Kind.String())))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}

func (e *TracingExtension) OnRelease(key string) {
	e.releases.Add(context.Background(), 1, metric.WithAttributes(attribute.String("atoms.key", key)))
}
