package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/storage"
	"codeberg.org/askdocs/server/internal/text"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func New(store storage.RecordWriter, embedder llm.Embedder, opts ...Option) *Indexer {
	i := &Indexer{
		store:       store,
		embedder:    embedder,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// writes one record per chunk with an empty embedding. each batch is one
// write call; a failed batch stops the run and returns what was inserted.
func (i *Indexer) Ingest(ctx context.Context, chunks []chunker.Chunk) (int, error) {
	inserted := 0

	for start := 0; start < len(chunks); start += i.batchSize {
		end := min(start+i.batchSize, len(chunks))

		records := make([]storage.Record, 0, end-start)
		for _, c := range chunks[start:end] {
			records = append(records, storage.Record{
				ID:      uuid.NewString(),
				Path:    c.SourcePath,
				Content: c.Text,
			})
		}

		n, err := i.store.InsertRecords(ctx, records)
		if err != nil {
			return inserted, fmt.Errorf("failed to ingest batch at chunk %d: %w", start, err)
		}

		inserted += n
	}

	return inserted, nil
}

// embeds every record that has no embedding yet. records that already have
// one are never touched. a failed embedding is logged and left for the next
// pass; storage errors abort the pass.
func (i *Indexer) FillEmbeddings(ctx context.Context, maxContentChars int) (FillStats, error) {
	var embedded, failed atomic.Int64
	var after int64

	if i.progress != nil {
		i.progress.Start(-1)
		defer i.progress.Finish()
	}

	for {
		if err := ctx.Err(); err != nil {
			return i.stats(&embedded, &failed), err
		}

		batch, err := i.store.PendingRecords(ctx, after, i.batchSize)
		if err != nil {
			return i.stats(&embedded, &failed), fmt.Errorf("failed to load pending records: %w", err)
		}

		if len(batch) == 0 {
			break
		}

		after = batch[len(batch)-1].Seq

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(i.concurrency)

		for _, r := range batch {
			g.Go(func() error {
				if i.progress != nil {
					defer i.progress.Increment()
				}

				input := text.Left(r.Path+r.Content, maxContentChars)

				embedding, err := i.embedder.GenerateEmbedding(gctx, input)
				if err == nil && len(embedding) == 0 {
					err = llm.ErrEmptyEmbedding
				}

				if err != nil {
					failed.Add(1)
					logger.Warn("failed to embed record",
						"id", r.ID,
						"path", r.Path,
						"error", err,
					)
					return nil
				}

				if err := i.store.SetEmbedding(gctx, r.ID, embedding); err != nil {
					return fmt.Errorf("failed to store embedding for %s: %w", r.ID, err)
				}

				embedded.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return i.stats(&embedded, &failed), err
		}
	}

	stats := i.stats(&embedded, &failed)

	if stats.Embedded > 0 || stats.Failed > 0 {
		logger.Info("embedding fill complete",
			"embedded", stats.Embedded,
			"failed", stats.Failed,
		)
	}

	return stats, nil
}

func (i *Indexer) stats(embedded, failed *atomic.Int64) FillStats {
	return FillStats{
		Embedded: int(embedded.Load()),
		Failed:   int(failed.Load()),
	}
}

// true when err came from a cancelled or expired context
func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
