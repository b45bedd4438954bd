package service

import (
	"context"
	"encoding/json"

	"heystack-be/internal/pkg/logger"
	"heystack-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	Done() <-chan struct{}
}

// consumerService appends every processed turn to the transcript log
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	transcript logger.ILogger
	logger     logger.ILogger
	done       chan struct{}
}

func NewConsumerService(
	subscriber message.Subscriber,
	transcript logger.ILogger,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  events.TypeChatTurnProcessed,
		transcript: transcript,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Consume subscribes and returns; messages are handled in the background
// until ctx is cancelled or the subscriber is closed.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		defer close(cs.done)
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

// Done is closed once the message channel is drained
func (cs *consumerService) Done() <-chan struct{} {
	return cs.done
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Warn(logger.ModuleEvents, "Dropping unreadable turn event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.transcript.Info(logger.ModuleChat, "turn", payload)
	cs.logger.Debug(logger.ModuleEvents, "Turn recorded", map[string]interface{}{
		"turn_id": payload["turn_id"],
		"sender":  payload["sender"],
	})
	msg.Ack()
}
