package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider Provider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Default chat models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaModel    = "llama3.2"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// DefaultOllamaURL is the default URL for the Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultModelForProvider returns the default chat model for a provider.
func DefaultModelForProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}
