package service

import (
	"context"

	"multichat-be/internal/model"
	"multichat-be/internal/pkg/logger"
	"multichat-be/pkg/events"
	pktNats "multichat-be/pkg/nats"

	"github.com/google/uuid"
)

// SyncService turns cross-instance domain events into websocket refresh
// hints so every device a user has open converges on the same state.
type SyncService struct {
	subscriber *pktNats.Subscriber
	delivery   StreamDelivery
	logger     logger.ILogger
}

func NewSyncService(sub *pktNats.Subscriber, delivery StreamDelivery, log logger.ILogger) *SyncService {
	return &SyncService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *SyncService) Start() {
	err := s.subscriber.Subscribe("chat.>", "sync-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("SyncService", "Failed to start sync subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("SyncService", "Sync service started, listening to chat.>", nil)
}

func (s *SyncService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	uidStr, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("SyncService", "Event without user_id, dropping", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	userId, err := uuid.Parse(uidStr)
	if err != nil {
		return nil
	}

	hint := model.StreamEvent{Type: model.StreamEventSync}
	if cidStr, ok := payload["conversation_id"].(string); ok {
		if cid, err := uuid.Parse(cidStr); err == nil {
			hint.ConversationId = cid
		}
	}
	// The event type tells the client what to refetch.
	hint.Content = event.EventType()

	if s.delivery != nil {
		s.delivery.Send(userId, hint)
	}
	return nil
}
