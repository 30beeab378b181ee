package indexer

import (
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/storage"
)

const (
	defaultBatchSize   = 200
	defaultConcurrency = 4
)

// reports fill progress. Start receives -1 when the total is unknown.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

type FillStats struct {
	Embedded int
	Failed   int
}

// owns record creation and embedding fill
type Indexer struct {
	store       storage.RecordWriter
	embedder    llm.Embedder
	batchSize   int
	concurrency int
	progress    Progress
}

type Option func(*Indexer)

// records per insert statement and per pending-records page
func WithBatchSize(n int) Option {
	return func(i *Indexer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// embedding calls in flight during a fill pass
func WithConcurrency(n int) Option {
	return func(i *Indexer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

func WithProgress(p Progress) Option {
	return func(i *Indexer) {
		i.progress = p
	}
}
