package retriever

import (
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/storage"
)

const (
	DefaultTopK            = 2
	DefaultMinContentChars = 50
)

// read-only search over stored records
type Client struct {
	store    storage.RecordReader
	embedder llm.Embedder
	opts     Options
}

type Options struct {
	TopK            int
	MinContentChars int
	// nil disables the ceiling
	MaxDistance *float32
}

func DefaultOptions() Options {
	return Options{
		TopK:            DefaultTopK,
		MinContentChars: DefaultMinContentChars,
	}
}
