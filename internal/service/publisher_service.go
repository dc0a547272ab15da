package service

import (
	"context"
	"encoding/json"

	"realtime-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type eventPublisher struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewEventPublisher(pubSub *gochannel.GoChannel, topic string) IEventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		topic:  topic,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"data":        event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	return p.pubSub.Publish(p.topic, msg)
}
