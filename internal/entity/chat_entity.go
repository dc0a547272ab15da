package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id      uuid.UUID
	Name    string
	Private bool
	Active  bool
}

// Membership links one user to one chat. At most one row may exist per
// (chat, user) pair; the chat directory enforces this on insert.
type Membership struct {
	Id     uuid.UUID
	ChatId uuid.UUID
	UserId uuid.UUID
}

// Message is immutable once stored.
type Message struct {
	Id         uuid.UUID
	CreatedAt  time.Time
	FromUserId uuid.UUID
	ChatId     uuid.UUID
	Content    string
}

// ReadStatus tracks per-recipient delivery and read state for one message.
// DeliveredAt is set by the fan-out engine on a confirmed push; ReadAt stays
// nil until the recipient explicitly marks the message as read.
type ReadStatus struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	MessageId   uuid.UUID
	DeliveredAt time.Time
	ReadAt      *time.Time
}
