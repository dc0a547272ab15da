package service

import (
	"context"
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

type IChatService interface {
	CreateChat(ctx context.Context, creatorID uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatDTO, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]dto.ChatDTO, error)
	GetChat(ctx context.Context, userID, chatID uuid.UUID) (*dto.ChatDTO, error)
	ListMembers(ctx context.Context, userID, chatID uuid.UUID) ([]dto.MemberDTO, error)
	AddMember(ctx context.Context, actorID, chatID, newMemberID uuid.UUID) error
	RemoveMember(ctx context.Context, actorID, chatID, memberID uuid.UUID) error
	SendMessage(ctx context.Context, fromUserID, chatID uuid.UUID, content string) (*dto.MessageDTO, error)
	History(ctx context.Context, userID, chatID uuid.UUID, limit, offset int) ([]dto.MessageDTO, error)
	MarkRead(ctx context.Context, userID, messageID uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	authorizer IAuthorizer
	delivery   IDeliveryService
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	authorizer IAuthorizer,
	delivery IDeliveryService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		authorizer: authorizer,
		delivery:   delivery,
		logger:     log,
	}
}

// CreateChat persists the chat and the creator's membership in one
// transaction so a crash cannot leave an ownerless chat behind.
func (s *chatService) CreateChat(ctx context.Context, creatorID uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat := &entity.Chat{
		Id:      uuid.New(),
		Name:    req.Name,
		Private: req.Private,
		Active:  true,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, err
	}

	membership := &entity.Membership{
		Id:     uuid.New(),
		ChatId: chat.Id,
		UserId: creatorID,
	}
	if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ChatService", "Chat created", map[string]interface{}{"chat_id": chat.Id, "creator_id": creatorID})

	return &dto.ChatDTO{
		Id:      chat.Id,
		Name:    chat.Name,
		Private: chat.Private,
		Active:  chat.Active,
	}, nil
}

func (s *chatService) ListChats(ctx context.Context, userID uuid.UUID) ([]dto.ChatDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	memberships, err := uow.MembershipRepository().FindAll(ctx, specification.ByUserID{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []dto.ChatDTO{}, nil
	}

	chatIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		chatIDs = append(chatIDs, m.ChatId)
	}

	chats, err := uow.ChatRepository().FindAll(ctx, specification.ByIDs{IDs: chatIDs})
	if err != nil {
		return nil, err
	}

	result := make([]dto.ChatDTO, 0, len(chats))
	for _, c := range chats {
		result = append(result, dto.ChatDTO{
			Id:      c.Id,
			Name:    c.Name,
			Private: c.Private,
			Active:  c.Active,
		})
	}
	return result, nil
}

func (s *chatService) GetChat(ctx context.Context, userID, chatID uuid.UUID) (*dto.ChatDTO, error) {
	if err := s.authorizer.Authorize(ctx, userID, chatID); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: chatID})
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.ErrNotFound
	}

	return &dto.ChatDTO{
		Id:      chat.Id,
		Name:    chat.Name,
		Private: chat.Private,
		Active:  chat.Active,
	}, nil
}

func (s *chatService) ListMembers(ctx context.Context, userID, chatID uuid.UUID) ([]dto.MemberDTO, error) {
	if err := s.authorizer.Authorize(ctx, userID, chatID); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	memberships, err := uow.MembershipRepository().FindAll(ctx, specification.ByChatID{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []dto.MemberDTO{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserId)
	}

	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIDs})
	if err != nil {
		return nil, err
	}

	result := make([]dto.MemberDTO, 0, len(users))
	for _, u := range users {
		result = append(result, dto.MemberDTO{
			UserId:   u.Id,
			Username: u.Username,
			FullName: u.FullName,
		})
	}
	return result, nil
}

func (s *chatService) AddMember(ctx context.Context, actorID, chatID, newMemberID uuid.UUID) error {
	if err := s.authorizer.Authorize(ctx, actorID, chatID); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: newMemberID})
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.ErrNotFound
	}

	existing, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.ByUserID{UserID: newMemberID},
	)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.ErrAlreadyMember
	}

	// The unique index on (chat_id, user_id) backstops concurrent adds.
	membership := &entity.Membership{
		Id:     uuid.New(),
		ChatId: chatID,
		UserId: newMemberID,
	}
	if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
		return err
	}

	s.logger.Info("ChatService", "Member added", map[string]interface{}{"chat_id": chatID, "user_id": newMemberID, "actor_id": actorID})
	return nil
}

func (s *chatService) RemoveMember(ctx context.Context, actorID, chatID, memberID uuid.UUID) error {
	if err := s.authorizer.Authorize(ctx, actorID, chatID); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	membership, err := uow.MembershipRepository().FindOne(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.ByUserID{UserID: memberID},
	)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.ErrNotFound
	}

	if err := uow.MembershipRepository().Delete(ctx, membership.Id); err != nil {
		return err
	}

	s.logger.Info("ChatService", "Member removed", map[string]interface{}{"chat_id": chatID, "user_id": memberID, "actor_id": actorID})
	return nil
}

// SendMessage appends the message and fans it out to the other members'
// live connections. The append is authoritative: a delivery hiccup never
// rolls the message back.
func (s *chatService) SendMessage(ctx context.Context, fromUserID, chatID uuid.UUID, content string) (*dto.MessageDTO, error) {
	if err := s.authorizer.Authorize(ctx, fromUserID, chatID); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx, specification.ByID{ID: chatID})
	if err != nil {
		return nil, err
	}
	if chat == nil || !chat.Active {
		return nil, apperr.ErrNotFound
	}

	msg := &entity.Message{
		Id:         uuid.New(),
		CreatedAt:  time.Now(),
		FromUserId: fromUserID,
		ChatId:     chatID,
		Content:    content,
	}
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	memberships, err := uow.MembershipRepository().FindAll(ctx, specification.ByChatID{ChatID: chatID})
	if err != nil {
		return nil, err
	}

	recipients := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		recipients = append(recipients, m.UserId)
	}

	if err := s.delivery.Dispatch(ctx, msg, recipients); err != nil {
		var partial *apperr.PartialDeliveryError
		if errors.As(err, &partial) {
			s.logger.Warn("ChatService", "Partial delivery", map[string]interface{}{"message_id": msg.Id, "failed": len(partial.Failures)})
		} else {
			return nil, err
		}
	}

	return &dto.MessageDTO{
		Id:         msg.Id,
		ChatId:     msg.ChatId,
		FromUserId: msg.FromUserId,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}, nil
}

func (s *chatService) History(ctx context.Context, userID, chatID uuid.UUID, limit, offset int) ([]dto.MessageDTO, error) {
	if err := s.authorizer.Authorize(ctx, userID, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatID},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	result := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		result = append(result, dto.MessageDTO{
			Id:         m.Id,
			ChatId:     m.ChatId,
			FromUserId: m.FromUserId,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
		})
	}
	return result, nil
}

// MarkRead is idempotent: reading an already read message keeps the first
// read timestamp.
func (s *chatService) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageID})
	if err != nil {
		return err
	}
	if msg == nil {
		return apperr.ErrNotFound
	}

	if err := s.authorizer.Authorize(ctx, userID, msg.ChatId); err != nil {
		return err
	}

	existing, err := uow.ReadStatusRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.ByMessageID{MessageID: messageID},
	)
	if err != nil {
		return err
	}

	now := time.Now()

	if existing == nil {
		status := &entity.ReadStatus{
			Id:          uuid.New(),
			UserId:      userID,
			MessageId:   messageID,
			DeliveredAt: now,
			ReadAt:      &now,
		}
		return uow.ReadStatusRepository().Create(ctx, status)
	}

	if existing.ReadAt != nil {
		return nil
	}

	existing.ReadAt = &now
	return uow.ReadStatusRepository().Update(ctx, existing)
}
