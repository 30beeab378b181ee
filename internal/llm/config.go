package llm

import "fmt"

// holds configuration for LLM initialization
type Config struct {
	// generator configuration
	GeneratorProvider    Provider
	GeneratorAPIKey      string
	GeneratorModel       string // e.g., "claude-sonnet-4-20250514"
	GeneratorMaxTokens   int
	GeneratorTemperature float32

	// embedder configuration
	EmbedderProvider Provider
	EmbedderAPIKey   string
	EmbedderModel    string // e.g., "text-embedding-3-small"

	// overrides for tests and compatible gateways
	OpenAIBaseURL    string
	AnthropicBaseURL string
}

func (c *Config) Validate() error {
	if c.GeneratorProvider != ProviderDatabend && c.GeneratorAPIKey == "" {
		return fmt.Errorf("api key for generator provider %s is required", c.GeneratorProvider)
	}

	if c.EmbedderProvider != ProviderDatabend && c.EmbedderAPIKey == "" {
		return fmt.Errorf("api key for embedder provider %s is required", c.EmbedderProvider)
	}

	return nil
}
