package mapper

import (
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}
	return &entity.Chat{
		Id:      c.Id,
		Name:    c.Name,
		Private: c.Private,
		Active:  c.Active,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}
	return &model.Chat{
		Id:      c.Id,
		Name:    c.Name,
		Private: c.Private,
		Active:  c.Active,
	}
}

func (m *ChatMapper) ChatsToEntities(chats []*model.Chat) []*entity.Chat {
	entities := make([]*entity.Chat, len(chats))
	for i, c := range chats {
		entities[i] = m.ChatToEntity(c)
	}
	return entities
}

func (m *ChatMapper) MembershipToEntity(mm *model.Membership) *entity.Membership {
	if mm == nil {
		return nil
	}
	return &entity.Membership{
		Id:     mm.Id,
		ChatId: mm.ChatId,
		UserId: mm.UserId,
	}
}

func (m *ChatMapper) MembershipToModel(mm *entity.Membership) *model.Membership {
	if mm == nil {
		return nil
	}
	return &model.Membership{
		Id:     mm.Id,
		ChatId: mm.ChatId,
		UserId: mm.UserId,
	}
}

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:         msg.Id,
		CreatedAt:  msg.CreatedAt,
		FromUserId: msg.FromUserId,
		ChatId:     msg.ChatId,
		Content:    msg.Content,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:         msg.Id,
		CreatedAt:  msg.CreatedAt,
		FromUserId: msg.FromUserId,
		ChatId:     msg.ChatId,
		Content:    msg.Content,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}

func (m *ChatMapper) ReadStatusToEntity(rs *model.ReadStatus) *entity.ReadStatus {
	if rs == nil {
		return nil
	}
	return &entity.ReadStatus{
		Id:          rs.Id,
		UserId:      rs.UserId,
		MessageId:   rs.MessageId,
		DeliveredAt: rs.DeliveredAt,
		ReadAt:      rs.ReadAt,
	}
}

func (m *ChatMapper) ReadStatusToModel(rs *entity.ReadStatus) *model.ReadStatus {
	if rs == nil {
		return nil
	}
	return &model.ReadStatus{
		Id:          rs.Id,
		UserId:      rs.UserId,
		MessageId:   rs.MessageId,
		DeliveredAt: rs.DeliveredAt,
		ReadAt:      rs.ReadAt,
	}
}
