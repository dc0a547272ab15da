package service

import (
	"context"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IAuthorizer answers whether a user may act inside a chat. Membership is
// the only grant: no roles, no owner privileges.
type IAuthorizer interface {
	Authorize(ctx context.Context, userID, chatID uuid.UUID) error
}

type membershipAuthorizer struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMembershipAuthorizer(uowFactory unitofwork.RepositoryFactory) IAuthorizer {
	return &membershipAuthorizer{
		uowFactory: uowFactory,
	}
}

func (a *membershipAuthorizer) Authorize(ctx context.Context, userID, chatID uuid.UUID) error {
	uow := a.uowFactory.NewUnitOfWork(ctx)

	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.ByUserID{UserID: userID},
	)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.ErrNotAuthorized
	}

	return nil
}
