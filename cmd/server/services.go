package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/askdocs/server/internal/agent"
	"codeberg.org/askdocs/server/internal/cache"
	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/files"
	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/prbot"
	"codeberg.org/askdocs/server/internal/services"
)

// builds the answer service on top of the retriever and generator
func newAgent(cfg *config.Config, svc *services.Services, answerCache *cache.AnswerCache) (*agent.Agent, error) {
	opts := []agent.Option{
		agent.WithPromptBudget(cfg.Query.PromptBudget),
	}

	// an empty answer table disables audit
	if cfg.Store.AnswerTable != "" {
		opts = append(opts, agent.WithAudit(svc.Store))
	}

	if answerCache != nil {
		opts = append(opts, agent.WithCache(answerCache))
	}

	if path := cfg.Query.PromptTemplateFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template: %w", err)
		}

		template := string(data)
		if err := agent.ValidateTemplate(template); err != nil {
			return nil, fmt.Errorf("invalid prompt template %s: %w", path, err)
		}

		opts = append(opts, agent.WithTemplate(template))
	}

	return agent.New(svc.Retriever, svc.LLM, opts...), nil
}

// connects the answer cache, namespaced by the store so answers from
// different corpora never mix. returns nil when no redis is configured.
func newCache(ctx context.Context, cfg *config.Config, identity string) (*cache.AnswerCache, error) {
	if cfg.Cache.RedisURL == "" {
		return nil, nil
	}

	answerCache, err := cache.Connect(ctx, cfg.Cache.RedisURL, cache.Options{
		TTL:       cfg.Cache.TTL.Duration,
		Namespace: identity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect answer cache: %w", err)
	}

	return answerCache, nil
}

// returns nil when no repositories are configured
func newBot(ctx context.Context, cfg *config.Config, svc *services.Services) *prbot.Bot {
	if len(cfg.GitHub.Repos) == 0 {
		return nil
	}

	client := github.NewClient(ctx, cfg.GitHub.Token)

	return prbot.New(client, svc.LLM, prbot.Options{
		Repos:     cfg.GitHub.Repos,
		Keyword:   cfg.GitHub.Keyword,
		Interval:  cfg.GitHub.PollInterval.Duration,
		MaxTokens: cfg.GitHub.MaxTokens,
	})
}

// adds the documents under the data path to the corpus and embeds them.
// existing records are kept. cached answers are dropped so new sections can
// answer questions that previously fell back.
func rebuildCorpus(ctx context.Context, cfg *config.Config, svc *services.Services, answerCache *cache.AnswerCache) error {
	logger.Info("rebuilding corpus", "data_path", cfg.Ingest.DataPath)

	walker := files.NewWalker(cfg.Ingest.DataPath, files.Options{
		Extensions: cfg.Ingest.Extensions,
		IgnoreDirs: cfg.Ingest.IgnoreDirs,
	})

	docs, errs := walker.Documents()
	for _, err := range errs {
		logger.Warn("skipping unreadable document", "error", err)
	}

	if len(docs) == 0 {
		return fmt.Errorf("no documents found under %s", cfg.Ingest.DataPath)
	}

	stats, err := svc.Indexer.IngestDocuments(ctx, docs, chunker.Options{
		HeadingBoundaries: true,
		MinChunkChars:     cfg.Ingest.MinChunkChars,
	})
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %w", err)
	}

	fill, err := svc.Indexer.FillEmbeddings(ctx, cfg.Ingest.MaxContentLength)
	if err != nil {
		return fmt.Errorf("failed to fill embeddings: %w", err)
	}

	if answerCache != nil {
		cleared, err := answerCache.Clear(ctx)
		if err != nil {
			logger.Warn("failed to clear answer cache", "error", err)
		} else {
			logger.Debug("answer cache cleared", "entries", cleared)
		}
	}

	logger.Info("corpus rebuilt",
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"records", stats.Records,
		"embedded", fill.Embedded,
		"embed_failures", fill.Failed,
	)

	return nil
}
