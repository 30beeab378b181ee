package query

import (
	"context"

	"codeberg.org/askdocs/server/internal/agent"
)

// answers and searches questions against the corpus
type Answerer interface {
	Answer(ctx context.Context, query string) (*agent.Answer, error)
	Search(ctx context.Context, query string) ([]string, error)
}

// request payload for /query and /search
type Request struct {
	Query string `json:"query" binding:"required,max=2000"`
}

// response payload for /query
type AnswerResponse struct {
	Result string `json:"result"`
}

// response payload for /search
type SearchResponse struct {
	Result []string `json:"result"`
}
