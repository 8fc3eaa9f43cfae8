package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Content        string
	Sender         string
	Timestamp      time.Time
	Model          *string
	Tokens         *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
