package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// LogLoginEvents subscribes to LoginTopic and writes one log line per login
// event until ctx is done or the subscriber is closed.
func LogLoginEvents(ctx context.Context, sub message.Subscriber, log *logrus.Entry) error {
	messages, err := sub.Subscribe(ctx, LoginTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", LoginTopic, err)
	}

	go func() {
		for msg := range messages {
			var event core.LoginEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				log.WithError(err).WithField("message_id", msg.UUID).Warn("dropping malformed login event")
				msg.Ack()
				continue
			}

			log.WithFields(logrus.Fields{
				"address":           event.Address,
				"has_access_token":  event.HasAccessToken,
				"has_refresh_token": event.HasRefreshToken,
				"logged_in_at":      event.LoggedInAt,
			}).Info("login event")
			msg.Ack()
		}
	}()

	return nil
}
