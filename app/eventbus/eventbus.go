// Package eventbus carries ledger change events between modules over an
// in-process watermill pub/sub.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventBus is the publish/subscribe surface the modules depend on.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// GoChannelBus is the in-process EventBus.
type GoChannelBus struct {
	*gochannel.GoChannel
	logger *slog.Logger
}

// New returns an in-process bus. Messages published before any subscriber
// exists are dropped.
func New(logger *slog.Logger) *GoChannelBus {
	return &GoChannelBus{
		GoChannel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 128},
			watermill.NewSlogLogger(logger),
		),
		logger: logger,
	}
}

// NewMessage marshals payload into a watermill message carrying the
// context's correlation id.
func NewMessage(ctx context.Context, topic string, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	correlationID := attr.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(attr.WithCorrelationID(ctx, correlationID))
	return msg, nil
}

// Publish builds and publishes one event. Failures are logged and returned;
// callers treat them as non-fatal because the store already holds the write.
func Publish(ctx context.Context, bus message.Publisher, logger *slog.Logger, topic string, payload any) error {
	if bus == nil {
		return nil
	}
	msg, err := NewMessage(ctx, topic, payload)
	if err != nil {
		return err
	}
	if err := bus.Publish(topic, msg); err != nil {
		logger.WarnContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// Decode unmarshals a message payload.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal message %s: %w", msg.UUID, err)
	}
	return v, nil
}
