package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"bookstay/internal/app/events"
)

// EventPublisher emits this service's bus notifications through the
// sarama producer. Messages are keyed by username so deletions for one
// user stay ordered.
type EventPublisher struct {
	Producer *Producer
}

func (p *EventPublisher) PublishUserDeleted(ctx context.Context, username string) error {
	payload, err := json.Marshal(events.UserDeleted{Username: username})
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, events.TopicUserDeleted, username, payload, nil)
}

// HandlerAdapter narrows a consumed sarama message to the topic/payload
// pair the application handler works with.
type HandlerAdapter struct {
	Handler events.Handler
}

func (a HandlerAdapter) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return a.Handler.Handle(ctx, msg.Topic, msg.Value)
}
