package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// MessagePusher queues a frame on a user's live connection. Implemented by
// the websocket registry.
type MessagePusher interface {
	Push(ctx context.Context, userID uuid.UUID, data []byte) error
}

type IDeliveryService interface {
	// Dispatch fans a persisted message out to the given recipients. Offline
	// recipients are skipped; they catch up through history. The returned
	// error, if any, is a *apperr.PartialDeliveryError.
	Dispatch(ctx context.Context, msg *entity.Message, recipients []uuid.UUID) error
}

type deliveryService struct {
	pusher      MessagePusher
	uowFactory  unitofwork.RepositoryFactory
	pushTimeout time.Duration
	logger      logger.ILogger
}

func NewDeliveryService(
	pusher MessagePusher,
	uowFactory unitofwork.RepositoryFactory,
	pushTimeout time.Duration,
	log logger.ILogger,
) IDeliveryService {
	return &deliveryService{
		pusher:      pusher,
		uowFactory:  uowFactory,
		pushTimeout: pushTimeout,
		logger:      log,
	}
}

func (s *deliveryService) Dispatch(ctx context.Context, msg *entity.Message, recipients []uuid.UUID) error {
	data, err := json.Marshal(dto.WireMessage{
		Type: "message",
		Data: dto.MessageDTO{
			Id:         msg.Id,
			ChatId:     msg.ChatId,
			FromUserId: msg.FromUserId,
			Content:    msg.Content,
			CreatedAt:  msg.CreatedAt,
		},
	})
	if err != nil {
		return err
	}

	var failures []apperr.DeliveryFailure

	for _, rid := range recipients {
		if rid == msg.FromUserId {
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, s.pushTimeout)
		err := s.pusher.Push(pushCtx, rid, data)
		cancel()

		switch {
		case err == nil:
			s.recordDelivered(ctx, rid, msg.Id)
		case errors.Is(err, apperr.ErrRecipientOffline):
			// Not a failure. The recipient reads it from history later.
		case errors.Is(err, apperr.ErrChannelClosed):
			// Connection raced away between lookup and push. Same as offline.
			s.logger.Debug("Delivery", "Push lost race with disconnect", map[string]interface{}{"user_id": rid, "message_id": msg.Id})
		case errors.Is(err, context.DeadlineExceeded):
			s.logger.Warn("Delivery", "Push timed out, recipient send buffer full", map[string]interface{}{"user_id": rid, "message_id": msg.Id})
		default:
			failures = append(failures, apperr.DeliveryFailure{UserID: rid, Err: err})
		}
	}

	if len(failures) > 0 {
		return &apperr.PartialDeliveryError{Failures: failures}
	}
	return nil
}

// recordDelivered upserts the recipient's read-status row with a delivery
// timestamp. Failures here are logged, not surfaced: the message itself is
// already persisted and pushed.
func (s *deliveryService) recordDelivered(ctx context.Context, userID, messageID uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ReadStatusRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.ByMessageID{MessageID: messageID},
	)
	if err != nil {
		s.logger.Warn("Delivery", "Read status lookup failed", map[string]interface{}{"user_id": userID, "message_id": messageID, "error": err.Error()})
		return
	}
	if existing != nil {
		return
	}

	status := &entity.ReadStatus{
		Id:          uuid.New(),
		UserId:      userID,
		MessageId:   messageID,
		DeliveredAt: time.Now(),
	}
	if err := uow.ReadStatusRepository().Create(ctx, status); err != nil {
		s.logger.Warn("Delivery", "Read status create failed", map[string]interface{}{"user_id": userID, "message_id": messageID, "error": err.Error()})
	}
}
