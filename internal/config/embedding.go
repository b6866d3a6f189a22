package config

import (
	"fmt"
	"time"
)

const (
	DefaultEmbeddingModel      = "all-MiniLM-L6-v2"
	DefaultEmbeddingDimensions = 384
	DefaultIndexName           = "youtube-videos"
	MetricCosine               = "cosine"
)

// Embedding providers.
const (
	ProviderTEI              = "tei"
	ProviderOllama           = "ollama"
	ProviderJina             = "jina"
	ProviderOpenAICompatible = "openai-compatible"
)

// EmbeddingConfig selects the external embedding model.
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"`   // tei, ollama, jina, openai-compatible
	Model      string        `mapstructure:"model"`      // Model name/ID
	APIKey     string        `mapstructure:"api_key"`    // Not needed for self-hosted tei/ollama
	BaseURL    string        `mapstructure:"base_url"`   // Server or API base URL
	Dimensions int           `mapstructure:"dimensions"` // Vector size of the model
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Validate checks that the embedding configuration has all required fields.
// Returns an error describing the first validation failure, or nil if valid.
func (c *EmbeddingConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("embedding: model is required")
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("embedding: dimensions must be positive")
	}

	switch c.Provider {
	case ProviderTEI, ProviderOllama:
		if c.BaseURL == "" {
			return fmt.Errorf("embedding: base_url is required for provider %q", c.Provider)
		}
	case ProviderJina, ProviderOpenAICompatible:
		if c.APIKey == "" {
			return fmt.Errorf("embedding: api_key is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("embedding: unknown provider %q", c.Provider)
	}

	return nil
}
