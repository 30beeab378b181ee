package indexer

import (
	"context"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/logger"
)

type IngestStats struct {
	Documents int
	// documents skipped because they failed to chunk
	Skipped int
	Records int
}

// chunks documents and ingests the result. documents that fail to chunk are
// skipped and counted, a storage failure aborts the run.
func (i *Indexer) IngestDocuments(ctx context.Context, docs []chunker.Document, opts chunker.Options) (IngestStats, error) {
	chunks, errs := chunker.ChunkDocuments(docs, opts)

	stats := IngestStats{
		Documents: len(docs),
		Skipped:   len(errs),
	}

	n, err := i.Ingest(ctx, chunks)
	stats.Records = n
	if err != nil {
		return stats, err
	}

	logger.Info("ingested documents",
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"records", stats.Records,
	)

	return stats, nil
}
