package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserPreference struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	Username              string
	Occupation            string
	Traits                []string
	AboutText             string
	HidePersonalInfo      bool
	DisableThematicBreaks bool
	StatsForNerds         bool
	MainFont              string
	CodeFont              string
	BoringMode            bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// DefaultPreferences are the values a fresh record is created with.
func DefaultPreferences(userId uuid.UUID) *UserPreference {
	return &UserPreference{
		Id:       uuid.New(),
		UserId:   userId,
		Traits:   []string{},
		MainFont: "Proxima Vara",
		CodeFont: "Berkeley Mono",
	}
}
