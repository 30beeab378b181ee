package retriever

import (
	"context"
	"fmt"

	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/storage"
)

func New(store storage.RecordReader, embedder llm.Embedder, opts Options) *Client {
	return &Client{
		store:    store,
		embedder: embedder,
		opts:     opts,
	}
}

func (c *Client) Options() Options {
	return c.opts
}

// retrieves with the client's configured options
func (c *Client) Search(ctx context.Context, query string) ([]storage.QueryResult, error) {
	return c.Retrieve(ctx, query, c.opts)
}

// ranks stored records against the query, closest first. a failed or empty
// query embedding yields no results rather than an error; storage errors
// propagate.
func (c *Client) Retrieve(ctx context.Context, query string, opts Options) ([]storage.QueryResult, error) {
	embedding, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		logger.Warn("failed to embed query, returning no results", "error", err)
		return nil, nil
	}

	if len(embedding) == 0 {
		return nil, nil
	}

	if opts.TopK <= 0 {
		return nil, nil
	}

	results, err := c.store.Nearest(ctx, embedding, opts.MinContentChars, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}

	// the ceiling applies after ranking so the top-k is taken over every candidate
	if opts.MaxDistance != nil {
		results = withinDistance(results, *opts.MaxDistance)
	}

	return results, nil
}

func withinDistance(results []storage.QueryResult, ceiling float32) []storage.QueryResult {
	kept := results[:0]

	for _, r := range results {
		if r.Distance <= ceiling {
			kept = append(kept, r)
		}
	}

	return kept
}
