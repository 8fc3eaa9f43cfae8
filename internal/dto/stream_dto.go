package dto

import (
	"multichat-be/internal/model"

	"github.com/google/uuid"
)

// StreamEnvelope is the in-process bus payload carrying one stream
// event on its way to the owning user's websocket connections.
type StreamEnvelope struct {
	UserId uuid.UUID         `json:"user_id"`
	Event  model.StreamEvent `json:"event"`
}
