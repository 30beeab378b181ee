package main

import (
	"context"
	"fmt"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/files"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/services"
)

var (
	docExtensions  = []string{"md", "markdown", "mdx"}
	codeExtensions = []string{"go"}
)

// chunks the documentation (or source) files under flags.Path, ingests them
// and embeds the new records
func IngestFiles(ctx context.Context, cfg *config.Config, svc *services.Services, command string, flags config.IngestFlags) error {
	extensions := docExtensions
	if command == "code" {
		extensions = codeExtensions
	}

	logger.Info("starting "+command+" ingestion", "path", flags.Path, "clear", flags.Clear)

	walker := files.NewWalker(flags.Path, files.Options{
		Extensions: extensions,
		IgnoreDirs: cfg.Ingest.IgnoreDirs,
	})

	docs, errs := walker.Documents()
	if len(errs) > 0 {
		logger.Warn("encountered errors while reading files", "error_count", len(errs))

		for _, err := range errs {
			logger.Warn("read error", "error", err)
		}
	}

	if len(docs) == 0 {
		return fmt.Errorf("no %s files found under %s", command, flags.Path)
	}

	return ingest(ctx, cfg, svc, docs, flags.Clear)
}

// shared tail of every ingest command: optional clear, chunk and insert, fill
func ingest(ctx context.Context, cfg *config.Config, svc *services.Services, docs []chunker.Document, clearFirst bool) error {
	if clearFirst {
		logger.Info("clearing existing records")

		if err := svc.Store.ClearRecords(ctx); err != nil {
			return fmt.Errorf("failed to clear existing records: %w", err)
		}
	}

	stats, err := svc.Indexer.IngestDocuments(ctx, docs, chunker.Options{
		HeadingBoundaries: true,
		MinChunkChars:     cfg.Ingest.MinChunkChars,
	})
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %w", err)
	}

	if stats.Records == 0 {
		return fmt.Errorf("no chunks generated from %d documents", stats.Documents)
	}

	return fill(ctx, cfg, svc)
}

// embeds every record that has no embedding yet
func fill(ctx context.Context, cfg *config.Config, svc *services.Services) error {
	fillStats, err := svc.Indexer.FillEmbeddings(ctx, cfg.Ingest.MaxContentLength)
	if err != nil {
		return fmt.Errorf("failed to fill embeddings: %w", err)
	}

	count, err := svc.Store.CountRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify record count: %w", err)
	}

	logger.Info("embedding fill complete",
		"embedded", fillStats.Embedded,
		"failed", fillStats.Failed,
		"total_records", count,
	)

	return nil
}
