package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

// LoginTopic is the topic login events are published to.
const LoginTopic = "pearrelay.login"

// WatermillPublisher sends login events to any Watermill publisher, the
// in-process gochannel or a Redis stream.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher publishes to LoginTopic.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     LoginTopic,
	}
}

// PublishLogin publishes a login event. Token material is never included.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, event core.LoginEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("address", event.Address)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
