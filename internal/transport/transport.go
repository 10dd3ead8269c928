package transport

import (
	"context"
	"fmt"

	"github.com/vaxtrack/reminder-api/internal/model"
	"github.com/vaxtrack/reminder-api/pkg/errors"
	"github.com/vaxtrack/reminder-api/pkg/messaging"
)

// Known dispatch channels. Channel identifiers are otherwise opaque to the
// engine; the gateways consuming the topics own their meaning.
const (
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Transport is the hand-off boundary to the external notification gateways.
// Errors are classified through pkg/errors: transient failures may be retried
// by the caller, permanent ones must not be retried for that instant.
type Transport interface {
	Send(ctx context.Context, dispatch model.Dispatch) error
}

// BrokerTransport publishes each dispatch to a per-channel topic consumed by
// the external gateway for that channel.
type BrokerTransport struct {
	broker messaging.Broker
}

func NewBrokerTransport(broker messaging.Broker) *BrokerTransport {
	return &BrokerTransport{broker: broker}
}

func (t *BrokerTransport) Send(ctx context.Context, dispatch model.Dispatch) error {
	switch dispatch.Channel {
	case ChannelPush, ChannelSMS, ChannelEmail:
	default:
		return errors.TransportPermanent(fmt.Errorf("unknown channel %q", dispatch.Channel))
	}

	topic := "dispatch." + dispatch.Channel
	msg := messaging.Message{Type: "notification_dispatch", Payload: dispatch}
	if err := t.broker.Publish(ctx, topic, msg); err != nil {
		return errors.TransportTransient(fmt.Errorf("failed to publish to %s: %w", topic, err))
	}
	return nil
}
