package dto

import (
	"time"

	"github.com/google/uuid"
)

// ExportedMessage is the wire shape of a message in an export file.
type ExportedMessage struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Model     *string   `json:"model,omitempty"`
	Tokens    *int      `json:"tokens,omitempty"`
}

// ExportedConversation is the wire shape of a conversation in an
// export file. The same shape is accepted back on import.
type ExportedConversation struct {
	Id        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []ExportedMessage `json:"messages"`
}

type ExportRequest struct {
	ConversationIds []uuid.UUID `json:"conversation_ids" validate:"required,min=1"`
}

type ExportResponse struct {
	Conversations []ExportedConversation `json:"conversations"`
	Skipped       []BatchEntryResult     `json:"skipped,omitempty"`
}

type DeleteBatchRequest struct {
	ConversationIds []uuid.UUID `json:"conversation_ids" validate:"required,min=1"`
}

type DeleteBatchResponse struct {
	Results []BatchEntryResult `json:"results"`
}

// BatchEntryResult reports the outcome for one id in a bulk operation.
type BatchEntryResult struct {
	Id      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Reason  string    `json:"reason,omitempty"`
}

type ImportResponse struct {
	Imported []CreateConversationResponse `json:"imported"`
}
