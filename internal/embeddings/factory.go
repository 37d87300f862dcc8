package embeddings

import (
	"fmt"

	"mnemo/internal/config"
)

// geminiBaseURL is Gemini's OpenAI-compatible endpoint.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// NewProvider creates a new embedding provider. The model name is resolved
// per sector by the caller (see internal/modelmap); the config only selects
// the backend and its credentials.
func NewProvider(cfg config.EmbeddingConfig, model string) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := "http://localhost:11434"
		if cfg.BaseURL != nil {
			baseURL = *cfg.BaseURL
		}
		return NewOllamaProvider(model, baseURL), nil

	case "openai":
		if cfg.APIKey == nil || *cfg.APIKey == "" {
			return nil, fmt.Errorf("API key required for OpenAI provider")
		}
		baseURL := ""
		if cfg.BaseURL != nil {
			baseURL = *cfg.BaseURL
		}
		return NewOpenAIProvider(model, *cfg.APIKey, baseURL), nil

	case "gemini":
		// Gemini speaks the OpenAI embeddings API on a dedicated base URL.
		if cfg.APIKey == nil || *cfg.APIKey == "" {
			return nil, fmt.Errorf("API key required for Gemini provider")
		}
		baseURL := geminiBaseURL
		if cfg.BaseURL != nil {
			baseURL = *cfg.BaseURL
		}
		return NewOpenAIProvider(model, *cfg.APIKey, baseURL), nil

	case "local":
		return NewLocalProvider(model), nil

	case "aws":
		// Recognized by the model resolver but no compute backend is bundled.
		return nil, fmt.Errorf("provider aws (Bedrock) has no embedding backend in this build")

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
