package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// answers wait on the completion endpoint
const requestTimeout = 2 * time.Minute

// creates a new REST client for the server at endpoint
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// asks a question and returns the markdown answer
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	var resp answerResponse
	if err := c.post(ctx, "/api/v1/query", query, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

// returns the sections most similar to query
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	var resp searchResponse
	if err := c.post(ctx, "/api/v1/search", query, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// returns the corpus identity the server answers from
func (c *Client) Status(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/v1/status", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	var resp statusResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

func (c *Client) post(ctx context.Context, path, query string, out any) error {
	payload, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that asks a question
func (c *Client) AskCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		answer, err := c.Ask(ctx, query)
		if err != nil {
			return AnswerErrorMsg{question: query, err: err}
		}

		return AnswerMsg{question: query, answer: answer}
	}
}

// returns a tea.Cmd that probes the server status
func (c *Client) StatusCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		identity, err := c.Status(ctx)
		if err != nil {
			return ErrorMsg{err: fmt.Errorf("server at %s is not reachable: %w", c.endpoint, err)}
		}

		return StatusMsg{identity: identity}
	}
}

// returns a tea.Cmd that runs a similarity search and shows the sections
// as the answer
func (c *Client) SearchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sections, err := c.Search(ctx, query)
		if err != nil {
			return AnswerErrorMsg{question: query, err: err}
		}

		return AnswerMsg{question: query, answer: formatSections(sections)}
	}
}

func formatSections(sections []string) string {
	if len(sections) == 0 {
		return "_no matching sections_"
	}
	return strings.Join(sections, "\n\n---\n\n")
}
