package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetAllConversationsResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id             uuid.UUID `json:"id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content"`
	Sender         string    `json:"sender"`
	Timestamp      time.Time `json:"timestamp"`
	Model          *string   `json:"model,omitempty"`
	Tokens         *int      `json:"tokens,omitempty"`
}

type SendMessageRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Content        string    `json:"content" validate:"required"`
	ModelId        string    `json:"model_id" validate:"required"`
}

type SendMessageResponse struct {
	ConversationId    uuid.UUID        `json:"conversation_id"`
	ConversationTitle string           `json:"title"`
	Sent              *MessageResponse `json:"sent"`
	Reply             *MessageResponse `json:"reply"`
}

type RenameConversationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type StopGenerationResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Stopped        bool      `json:"stopped"`
}

type ModelResponse struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
	APIModel    string `json:"api_model"`
	Default     bool   `json:"default"`
}
