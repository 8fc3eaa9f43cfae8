package service

import (
	"context"
	"encoding/json"

	"multichat-be/internal/dto"
	"multichat-be/internal/model"
	"multichat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// StreamDelivery pushes a stream event to a user's live connections.
// Implemented by the WebSocket Hub.
type StreamDelivery interface {
	Send(userID uuid.UUID, event model.StreamEvent)
}

type IStreamConsumerService interface {
	Consume(ctx context.Context) error
}

type streamConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  StreamDelivery
	logger    logger.ILogger
}

func NewStreamConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery StreamDelivery,
	log logger.ILogger,
) IStreamConsumerService {
	return &streamConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (cs *streamConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *streamConsumerService) processMessage(msg *message.Message) {
	var envelope dto.StreamEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("StreamConsumer", "Failed to unmarshal stream envelope", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.delivery != nil {
		cs.delivery.Send(envelope.UserId, envelope.Event)
	}
	msg.Ack()
}
