package ports

import (
	"context"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, event core.LoginEvent) error
}
