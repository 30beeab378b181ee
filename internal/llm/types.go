package llm

import (
	"context"
	"errors"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	// embedding and completion through the store's SQL functions
	ProviderDatabend Provider = "databend"
)

// returned when a provider answers with no vector
var ErrEmptyEmbedding = errors.New("empty embedding returned")

// generates embeddings from text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type TextGenerator interface {
	GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error)
}

// everything the pipeline needs from a model provider
type LLM interface {
	Embedder
	TextGenerator
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TextGenerationRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type TextGenerationResponse struct {
	Text  string
	Usage Usage
}

// single user turn
func UserPrompt(prompt string) TextGenerationRequest {
	return TextGenerationRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}
