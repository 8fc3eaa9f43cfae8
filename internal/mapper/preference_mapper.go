package mapper

import (
	"encoding/json"

	"multichat-be/internal/entity"
	"multichat-be/internal/model"

	"gorm.io/datatypes"
)

type PreferenceMapper struct{}

func NewPreferenceMapper() *PreferenceMapper {
	return &PreferenceMapper{}
}

func (m *PreferenceMapper) ToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}

	traits := []string{}
	if len(p.Traits) > 0 {
		// A corrupt column falls back to an empty list rather than failing
		// the whole read.
		_ = json.Unmarshal(p.Traits, &traits)
	}

	return &entity.UserPreference{
		Id:                    p.Id,
		UserId:                p.UserId,
		Username:              p.Username,
		Occupation:            p.Occupation,
		Traits:                traits,
		AboutText:             p.AboutText,
		HidePersonalInfo:      p.HidePersonalInfo,
		DisableThematicBreaks: p.DisableThematicBreaks,
		StatsForNerds:         p.StatsForNerds,
		MainFont:              p.MainFont,
		CodeFont:              p.CodeFont,
		BoringMode:            p.BoringMode,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (m *PreferenceMapper) ToModel(p *entity.UserPreference) *model.UserPreference {
	if p == nil {
		return nil
	}

	traits := p.Traits
	if traits == nil {
		traits = []string{}
	}
	traitsJSON, _ := json.Marshal(traits)

	return &model.UserPreference{
		Id:                    p.Id,
		UserId:                p.UserId,
		Username:              p.Username,
		Occupation:            p.Occupation,
		Traits:                datatypes.JSON(traitsJSON),
		AboutText:             p.AboutText,
		HidePersonalInfo:      p.HidePersonalInfo,
		DisableThematicBreaks: p.DisableThematicBreaks,
		StatsForNerds:         p.StatsForNerds,
		MainFont:              p.MainFont,
		CodeFont:              p.CodeFont,
		BoringMode:            p.BoringMode,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
