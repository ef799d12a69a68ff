package llm

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider targets OpenRouter's OpenAI-compatible API.
func NewOpenRouterProvider(apiKey, model string) (*OpenAIProvider, error) {
	if model == "" {
		model = "google/gemini-2.0-flash-001"
	}
	return newOpenAICompatible("openrouter", apiKey, openRouterBaseURL, model)
}
