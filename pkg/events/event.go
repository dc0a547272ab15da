package events

import "time"

// Event codes published on the in-process bus.
const (
	TypeUserRegistered         = "USER_REGISTERED"
	TypePasswordResetRequested = "PASSWORD_RESET_REQUESTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_REGISTERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewUserRegistered is emitted after a new account is persisted.
func NewUserRegistered(userID, username, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"email":    email,
		},
		OccurredAt: time.Now(),
	}
}

// NewPasswordResetRequested carries the signed reset token to the mail consumer.
func NewPasswordResetRequested(userID, username, email, token string) Event {
	return BaseEvent{
		Type: TypePasswordResetRequested,
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": username,
			"email":    email,
			"token":    token,
		},
		OccurredAt: time.Now(),
	}
}
