package llm

import (
	"fmt"
)

// one value answering both halves of the pipeline
type CompositeLLM struct {
	Embedder
	TextGenerator
}

// a backend that exposes embedding and completion as SQL functions
type SQLFunctions interface {
	Embedder
	TextGenerator
}

// builds the provider pair named by config. sqlFuncs backs the databend
// provider and may be nil when neither side uses it.
func NewLLMWithConfig(config *Config, sqlFuncs SQLFunctions) (*CompositeLLM, error) {
	if config == nil {
		return nil, fmt.Errorf("llm config is nil")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	generator, err := newGenerator(config, sqlFuncs)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config, sqlFuncs)
	if err != nil {
		return nil, err
	}

	return &CompositeLLM{Embedder: embedder, TextGenerator: generator}, nil
}

func newGenerator(config *Config, sqlFuncs SQLFunctions) (TextGenerator, error) {
	switch config.GeneratorProvider {
	case ProviderAnthropic:
		return NewAnthropicGenerator(AnthropicConfig{
			APIKey:      config.GeneratorAPIKey,
			Model:       config.GeneratorModel,
			MaxTokens:   config.GeneratorMaxTokens,
			Temperature: config.GeneratorTemperature,
			BaseURL:     config.AnthropicBaseURL,
		}), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:      config.GeneratorAPIKey,
			Model:       config.GeneratorModel,
			MaxTokens:   config.GeneratorMaxTokens,
			Temperature: config.GeneratorTemperature,
			BaseURL:     config.OpenAIBaseURL,
		}), nil
	case ProviderDatabend:
		if sqlFuncs == nil {
			return nil, fmt.Errorf("generator provider %s requires the databend store", config.GeneratorProvider)
		}
		return sqlFuncs, nil
	}

	return nil, fmt.Errorf("unsupported generator provider: %s", config.GeneratorProvider)
}

func newEmbedder(config *Config, sqlFuncs SQLFunctions) (Embedder, error) {
	switch config.EmbedderProvider {
	case ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:  config.EmbedderAPIKey,
			Model:   config.EmbedderModel,
			BaseURL: config.OpenAIBaseURL,
		}), nil
	case ProviderDatabend:
		if sqlFuncs == nil {
			return nil, fmt.Errorf("embedder provider %s requires the databend store", config.EmbedderProvider)
		}
		return sqlFuncs, nil
	}

	return nil, fmt.Errorf("unsupported embedder provider: %s", config.EmbedderProvider)
}
