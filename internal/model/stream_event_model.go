package model

import (
	"github.com/google/uuid"
)

// Stream event type vocabulary pushed over the websocket.
const (
	StreamEventChunk  = "chunk"
	StreamEventDone   = "done"
	StreamEventError  = "error"
	StreamEventSync   = "sync"
	StreamEventSystem = "system"
)

// StreamEvent is the websocket payload for live generation updates and
// cross-device sync hints. Not a database table.
type StreamEvent struct {
	Type           string    `json:"type"`
	ConversationId uuid.UUID `json:"conversation_id,omitempty"`
	MessageId      uuid.UUID `json:"message_id,omitempty"`
	Chunk          string    `json:"chunk,omitempty"`
	Content        string    `json:"content,omitempty"`
	Done           bool      `json:"done,omitempty"`
	Error          string    `json:"error,omitempty"`
}
