package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultMaxTokens      = 1024
	defaultTemperature    = 0.3
)

// provider-wide, every generator shares it
var (
	anthropicHTTPClient  = newHTTPClient()
	anthropicRateLimiter = rate.NewLimiter(50, 10)
)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Content []contentBlock `json:"content"`
	Model   string         `json:"model"`
	Usage   Usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// defaults to the public API
	BaseURL string
}

// messages API generator
type AnthropicGenerator struct {
	config AnthropicConfig
	api    *apiClient
}

func NewAnthropicGenerator(config AnthropicConfig) *AnthropicGenerator {
	config.Model = orDefault(config.Model, defaultAnthropicModel)

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicGenerator{
		config: config,
		api: &apiClient{
			provider: ProviderAnthropic,
			baseURL:  orDefault(config.BaseURL, anthropicBaseURL),
			header:   header,
			http:     anthropicHTTPClient,
			limiter:  anthropicRateLimiter,
		},
	}
}

// text blocks of the reply are concatenated; a reply with none is an error
func (g *AnthropicGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	var resp messagesResponse
	err := g.api.post(ctx, "/messages", messagesRequest{
		Model:       g.config.Model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: g.config.Temperature,
		Messages:    req.Messages,
	}, &resp)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic completion returned no text")
	}

	return &TextGenerationResponse{
		Text:  strings.TrimSpace(text.String()),
		Usage: resp.Usage,
	}, nil
}
