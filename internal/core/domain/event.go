package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserEventType names a user lifecycle change.
type UserEventType string

const (
	UserRegistered UserEventType = "user.registered"
	UserUpdated    UserEventType = "user.updated"
	UserDeleted    UserEventType = "user.deleted"
)

// UserEvent is emitted after a successful directory mutation.
type UserEvent struct {
	ID         string        `json:"id"`
	Type       UserEventType `json:"type"`
	UserID     int64         `json:"user_id"`
	Email      string        `json:"email"`
	Role       Role          `json:"role,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewUserEvent stamps an event for u with a fresh id and the current time.
func NewUserEvent(t UserEventType, u *User) UserEvent {
	return UserEvent{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		OccurredAt: time.Now().UTC(),
	}
}
