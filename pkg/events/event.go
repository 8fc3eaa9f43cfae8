package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "CONVERSATION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event codes published by the chat services. The sync worker turns
// these into websocket refresh hints for the owning user's other devices.
const (
	TypeConversationCreated = "CONVERSATION_CREATED"
	TypeConversationRenamed = "CONVERSATION_RENAMED"
	TypeConversationDeleted = "CONVERSATION_DELETED"
	TypeConversationsPurged = "CONVERSATIONS_PURGED"
	TypeGenerationCompleted = "GENERATION_COMPLETED"
	TypeUserRegistered      = "USER_REGISTERED"
)

// NewConversationEvent builds an event scoped to one user's conversation.
func NewConversationEvent(eventType, userID, conversationID string) Event {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
		},
		OccurredAt: time.Now(),
	}
}

// NewUserEvent builds an event carrying only the user id.
func NewUserEvent(eventType, userID string) Event {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}
