package service

import (
	"context"
	"encoding/json"

	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/mailer"
	"realtime-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IMailConsumerService interface {
	Consume(ctx context.Context) error
}

// mailConsumerService drains auth events off the bus and turns them into
// outbound mail, keeping SMTP latency out of the request path.
type mailConsumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewMailConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IMailConsumerService {
	return &mailConsumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		emailService: emailService,
		logger:       log,
	}
}

func (s *mailConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

type busEnvelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func (s *mailConsumerService) processMessage(msg *message.Message) {
	var envelope busEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.logger.Error("MailConsumer", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	email, _ := envelope.Data["email"].(string)
	username, _ := envelope.Data["username"].(string)
	if email == "" {
		msg.Ack()
		return
	}

	switch envelope.Type {
	case events.TypeUserRegistered:
		if err := s.emailService.SendWelcome(email, username); err != nil {
			s.logger.Error("MailConsumer", "Failed to send welcome mail", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	case events.TypePasswordResetRequested:
		token, _ := envelope.Data["token"].(string)
		if token == "" {
			s.logger.Warn("MailConsumer", "Reset event without token", nil)
			msg.Ack()
			return
		}
		if err := s.emailService.SendResetToken(email, token); err != nil {
			s.logger.Error("MailConsumer", "Failed to send reset mail", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	default:
		s.logger.Debug("MailConsumer", "Ignoring event", map[string]interface{}{"type": envelope.Type})
	}

	msg.Ack()
}
