package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Private bool   `json:"private"`
}

type ChatDTO struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Private bool      `json:"private"`
	Active  bool      `json:"active"`
}

type AddMemberRequest struct {
	UserId uuid.UUID `json:"user_id" validate:"required"`
}

type MemberDTO struct {
	UserId   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4096"`
}

type MessageDTO struct {
	Id         uuid.UUID `json:"id"`
	ChatId     uuid.UUID `json:"chat_id"`
	FromUserId uuid.UUID `json:"from_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type HistoryRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

type MarkReadRequest struct {
	MessageId uuid.UUID `json:"message_id" validate:"required"`
}

type ReadStatusDTO struct {
	MessageId   uuid.UUID  `json:"message_id"`
	UserId      uuid.UUID  `json:"user_id"`
	DeliveredAt time.Time  `json:"delivered_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// WireMessage is the envelope pushed to live websocket connections.
type WireMessage struct {
	Type string     `json:"type"`
	Data MessageDTO `json:"data"`
}

// InboundCommand is what a connected client may send over the socket.
type InboundCommand struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	MessageId uuid.UUID `json:"message_id,omitempty"`
}
