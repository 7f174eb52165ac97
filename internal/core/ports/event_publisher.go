package ports

import (
	"context"

	"github.com/jinlabs/users-management/internal/core/domain"
)

// EventPublisher hands a lifecycle event off for asynchronous delivery.
// Publish never blocks on the broker and never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.UserEvent)
}

// EventSink delivers one event to the broker.
type EventSink interface {
	Write(ctx context.Context, event domain.UserEvent) error
}
