package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserPreference struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Username              string         `gorm:"type:varchar(255)"`
	Occupation            string         `gorm:"type:varchar(255)"`
	Traits                datatypes.JSON `gorm:"type:jsonb"`
	AboutText             string         `gorm:"type:text"`
	HidePersonalInfo      bool           `gorm:"default:false"`
	DisableThematicBreaks bool           `gorm:"default:false"`
	StatsForNerds         bool           `gorm:"default:false"`
	MainFont              string         `gorm:"type:varchar(100)"`
	CodeFont              string         `gorm:"type:varchar(100)"`
	BoringMode            bool           `gorm:"default:false"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
