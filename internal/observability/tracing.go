package observability

import (
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceHandler wraps every message in a span named after the handler and
// carries the correlation id into the handler context.
func TraceHandler(tracer trace.Tracer) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx := msg.Context()
			name := message.HandlerNameFromCtx(ctx)
			if name == "" {
				name = "message"
			}
			correlationID := middleware.MessageCorrelationID(msg)
			ctx = attr.WithCorrelationID(ctx, correlationID)

			ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("message.topic", message.SubscribeTopicFromCtx(ctx)),
				attribute.String("correlation_id", correlationID),
			))
			defer span.End()

			msg.SetContext(ctx)
			out, err := h(msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}
