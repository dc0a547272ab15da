package unitofwork

import (
	"context"

	"realtime-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatRepository() contract.ChatRepository
	MembershipRepository() contract.MembershipRepository
	MessageRepository() contract.MessageRepository
	ReadStatusRepository() contract.ReadStatusRepository
}
