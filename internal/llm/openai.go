package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	openaiBaseURL          = "https://api.openai.com/v1"
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIChatModel = "gpt-4o-mini"
)

// provider-wide, embedder and generator share it
var (
	openaiHTTPClient  = newHTTPClient()
	openaiRateLimiter = rate.NewLimiter(50, 10)
)

type embeddingRequest struct {
	Input    []string `json:"input"`
	Model    string   `json:"model"`
	Encoding string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type OpenAIConfig struct {
	APIKey      string
	Model       string // e.g., "text-embedding-3-small"
	MaxTokens   int
	Temperature float32
	BaseURL     string
}

type OpenAIEmbedder struct {
	config OpenAIConfig
	api    *apiClient
}

func NewOpenAIEmbedder(config OpenAIConfig) *OpenAIEmbedder {
	config.Model = orDefault(config.Model, defaultOpenAIModel)

	return &OpenAIEmbedder{config: config, api: newOpenAIClient(config)}
}

func newOpenAIClient(config OpenAIConfig) *apiClient {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+config.APIKey)

	return &apiClient{
		provider: ProviderOpenAI,
		baseURL:  orDefault(config.BaseURL, openaiBaseURL),
		header:   header,
		http:     openaiHTTPClient,
		limiter:  openaiRateLimiter,
	}
}

func (e *OpenAIEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return embeddings[0], nil
}

func (e *OpenAIEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	var embResp embeddingResponse
	err := e.api.post(ctx, "/embeddings", embeddingRequest{
		Input:    texts,
		Model:    e.config.Model,
		Encoding: "float",
	}, &embResp)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// chat completions generator
type OpenAIGenerator struct {
	config OpenAIConfig
	api    *apiClient
}

func NewOpenAIGenerator(config OpenAIConfig) *OpenAIGenerator {
	config.Model = orDefault(config.Model, defaultOpenAIChatModel)

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	return &OpenAIGenerator{config: config, api: newOpenAIClient(config)}
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error) {
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	var resp chatResponse
	err := g.api.post(ctx, "/chat/completions", chatRequest{
		Model:       g.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: g.config.Temperature,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion returned no choices")
	}

	return &TextGenerationResponse{
		Text: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
