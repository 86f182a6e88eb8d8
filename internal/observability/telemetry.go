package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Telemetry is the logger/metrics/tracer triple a service wraps its
// operations with.
type Telemetry struct {
	Service string
	Logger  *slog.Logger
	Metrics metrics.OperationMetrics
	Tracer  trace.Tracer
}

// NewTelemetry fills nil dependencies with no-op defaults.
func NewTelemetry(service string, logger *slog.Logger, m metrics.OperationMetrics, tracer trace.Tracer) Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NoOp{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(service)
	}
	return Telemetry{Service: service, Logger: logger, Metrics: m, Tracer: tracer}
}

// OperationFunc is the signature of a wrapped service operation.
type OperationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// WithTelemetry wraps an operation with a span, attempt/duration/outcome
// metrics, structured logs and panic recovery. Infrastructure errors are
// wrapped with the operation name; domain failures are logged as warnings.
func WithTelemetry[S any, F any](
	t Telemetry,
	ctx context.Context,
	operationName string,
	identifier string,
	op OperationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if t.Tracer != nil {
		ctx, span = t.Tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	t.Metrics.RecordOperationAttempt(ctx, operationName, t.Service)

	startTime := time.Now()
	defer func() {
		t.Metrics.RecordOperationDuration(ctx, operationName, t.Service, time.Since(startTime))
	}()

	t.Logger.DebugContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			t.Logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		t.Logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		t.Logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		t.Logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	t.Metrics.RecordOperationSuccess(ctx, operationName, t.Service)
	return result, nil
}

// Unwrap converts a result into the (value, error) pair returned by public
// service methods: domain failures become the returned error.
func Unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
