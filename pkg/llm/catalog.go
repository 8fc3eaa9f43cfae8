package llm

const (
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
)

// ModelDescriptor identifies which provider and which provider-specific
// model to invoke for a generation.
type ModelDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
	APIModel    string `json:"api_model"`
}

// Catalog lists the models exposed to clients. The active selection is a
// session-level setting; it is not persisted.
var Catalog = []ModelDescriptor{
	{
		ID:          "gpt-4o",
		DisplayName: "GPT-4o",
		Provider:    ProviderOpenAI,
		APIModel:    "gpt-4o",
	},
	{
		ID:          "gpt-4o-mini",
		DisplayName: "GPT-4o Mini",
		Provider:    ProviderOpenAI,
		APIModel:    "gpt-4o-mini",
	},
	{
		ID:          "gemini-pro",
		DisplayName: "Gemini 2.0 Flash",
		Provider:    ProviderGoogle,
		APIModel:    "gemini-2.0-flash-exp",
	},
	{
		ID:          "gemini-flash",
		DisplayName: "Gemini 1.5 Flash",
		Provider:    ProviderGoogle,
		APIModel:    "gemini-1.5-flash",
	},
}

// defaultModelIndex points at Gemini 2.0 Flash.
const defaultModelIndex = 2

// DefaultModel returns the descriptor used when a request names no model.
func DefaultModel() ModelDescriptor {
	return Catalog[defaultModelIndex]
}

// Lookup resolves a catalog entry by its public id.
func Lookup(id string) (ModelDescriptor, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}
