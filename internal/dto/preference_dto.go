package dto

type PreferenceResponse struct {
	Username              string   `json:"username"`
	Occupation            string   `json:"occupation"`
	Traits                []string `json:"traits"`
	AboutText             string   `json:"about_text"`
	HidePersonalInfo      bool     `json:"hide_personal_info"`
	DisableThematicBreaks bool     `json:"disable_thematic_breaks"`
	StatsForNerds         bool     `json:"stats_for_nerds"`
	MainFont              string   `json:"main_font"`
	CodeFont              string   `json:"code_font"`
	BoringMode            bool     `json:"boring_mode"`
}

type SavePreferenceRequest struct {
	Username              *string  `json:"username,omitempty" validate:"omitempty,max=100"`
	Occupation            *string  `json:"occupation,omitempty" validate:"omitempty,max=100"`
	Traits                []string `json:"traits,omitempty" validate:"omitempty,max=50,dive,max=100"`
	AboutText             *string  `json:"about_text,omitempty" validate:"omitempty,max=3000"`
	HidePersonalInfo      *bool    `json:"hide_personal_info,omitempty"`
	DisableThematicBreaks *bool    `json:"disable_thematic_breaks,omitempty"`
	StatsForNerds         *bool    `json:"stats_for_nerds,omitempty"`
	MainFont              *string  `json:"main_font,omitempty" validate:"omitempty,max=100"`
	CodeFont              *string  `json:"code_font,omitempty" validate:"omitempty,max=100"`
	BoringMode            *bool    `json:"boring_mode,omitempty"`
}
