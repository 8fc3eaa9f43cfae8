package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_ts,priority:1"`
	Content        string    `gorm:"type:text;not null"`
	Sender         string    `gorm:"type:varchar(50);not null"`
	// Timestamp is the creation time and is immutable; Content is the only
	// field mutated after insert (streaming patches).
	Timestamp time.Time `gorm:"not null;index:idx_messages_conversation_ts,priority:2"`
	Model     *string   `gorm:"type:varchar(100)"`
	Tokens    *int
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
