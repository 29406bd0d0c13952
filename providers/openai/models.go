package openai

import "github.com/rill-labs/rill/core"

// Model constants for common OpenAI models.
const (
	ModelGPT4o     core.ModelID = "gpt-4o"
	ModelGPT4oMini core.ModelID = "gpt-4o-mini"
	ModelGPT41     core.ModelID = "gpt-4.1"
	ModelGPT41Mini core.ModelID = "gpt-4.1-mini"
	ModelGPT4Turbo core.ModelID = "gpt-4-turbo"
	ModelGPT35     core.ModelID = "gpt-3.5-turbo"
)

// models lists the models this provider advertises.
var models = []core.ModelInfo{
	{
		ID:           ModelGPT4o,
		DisplayName:  "GPT-4o",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
	},
	{
		ID:           ModelGPT4oMini,
		DisplayName:  "GPT-4o mini",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
	},
	{
		ID:           ModelGPT41,
		DisplayName:  "GPT-4.1",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
	},
	{
		ID:           ModelGPT41Mini,
		DisplayName:  "GPT-4.1 mini",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
	},
	{
		ID:           ModelGPT4Turbo,
		DisplayName:  "GPT-4 Turbo",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming, core.FeatureToolCalling},
	},
	{
		ID:           ModelGPT35,
		DisplayName:  "GPT-3.5 Turbo",
		Capabilities: []core.Feature{core.FeatureChat, core.FeatureChatStreaming},
	},
}

// GetModelInfo returns info for a model ID, or nil if unknown.
func GetModelInfo(id core.ModelID) *core.ModelInfo {
	for i := range models {
		if models[i].ID == id {
			return &models[i]
		}
	}
	return nil
}
