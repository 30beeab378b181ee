package agent

import (
	"context"
	"sync"
	"time"

	"codeberg.org/askdocs/server/internal/cache"
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/storage"
)

// interface for document retrieval
type Retriever interface {
	Search(ctx context.Context, query string) ([]storage.QueryResult, error)
}

// optional answer cache, a nil entry means a miss
type Cache interface {
	Get(ctx context.Context, query string) (*cache.Entry, error)
	Set(ctx context.Context, query string, entry cache.Entry) error
}

type Agent struct {
	retriever    Retriever
	generator    llm.TextGenerator
	audit        storage.AnswerWriter
	cache        Cache
	template     string
	budget       int
	auditTimeout time.Duration
	audits       sync.WaitGroup
}

type Answer struct {
	Text      string
	Sections  []string
	Distances []float32
	// true when served from the answer cache
	Cached bool
	// true when nothing was retrieved and the canned reply was returned
	Fallback bool
}

type Option func(*Agent)

// records every answered query; nil disables auditing
func WithAudit(w storage.AnswerWriter) Option {
	return func(a *Agent) {
		a.audit = w
	}
}

func WithCache(c Cache) Option {
	return func(a *Agent) {
		a.cache = c
	}
}

func WithTemplate(template string) Option {
	return func(a *Agent) {
		if template != "" {
			a.template = template
		}
	}
}

// hard character budget for composed prompts
func WithPromptBudget(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.budget = n
		}
	}
}
