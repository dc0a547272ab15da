package model

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"type:varchar(255)"`
	Private bool      `gorm:"not null;default:true"`
	Active  bool      `gorm:"not null;default:true"`
}

func (Chat) TableName() string {
	return "chats"
}

// Membership carries a composite unique index as a backstop for the
// application-level dedup done by the chat directory.
type Membership struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_user;index"`
	UserId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_user;index"`
}

func (Membership) TableName() string {
	return "chat_members"
}

type Message struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	FromUserId uuid.UUID `gorm:"type:uuid;not null;index"`
	ChatId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Content    string    `gorm:"type:text;not null"`
}

func (Message) TableName() string {
	return "messages"
}

type ReadStatus struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_message"`
	MessageId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_message;index"`
	DeliveredAt time.Time `gorm:"not null"`
	ReadAt      *time.Time
}

func (ReadStatus) TableName() string {
	return "read_statuses"
}
