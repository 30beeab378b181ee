package services

import (
	"context"
	"fmt"

	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/indexer"
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/retriever"
	"codeberg.org/askdocs/server/internal/storage"
	"codeberg.org/askdocs/server/internal/storage/databend"
	"codeberg.org/askdocs/server/internal/storage/sqlite"
)

// holds the store and the clients built on top of it
type Services struct {
	Store     storage.Store
	LLM       *llm.CompositeLLM
	Retriever *retriever.Client
	Indexer   *indexer.Indexer
}

// opens the configured store, creates its tables and wires the model
// providers, retriever and indexer around it
func Initialize(ctx context.Context, cfg *config.Config, opts ...indexer.Option) (*Services, error) {
	store, sqlFuncs, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	llmClient, err := llm.NewLLMWithConfig(LLMConfig(cfg), sqlFuncs)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retrieverClient := retriever.New(store, llmClient, retriever.Options{
		TopK:            cfg.Query.TopK,
		MinContentChars: cfg.Query.MinContentLength,
		MaxDistance:     cfg.Query.MaxDistance,
	})

	opts = append([]indexer.Option{
		indexer.WithBatchSize(cfg.Ingest.BatchSize),
		indexer.WithConcurrency(cfg.Ingest.Concurrency),
	}, opts...)

	logger.Info("services initialized",
		"store", store.Identity(),
		"embedder", cfg.LLM.EmbedderProvider,
		"generator", cfg.LLM.GeneratorProvider,
	)

	return &Services{
		Store:     store,
		LLM:       llmClient,
		Retriever: retrieverClient,
		Indexer:   indexer.New(store, llmClient, opts...),
	}, nil
}

func (s *Services) Close() {
	s.Store.Close()
}

// opens the store for the configured driver. the databend store also
// serves embeddings and completions, for every other driver sqlFuncs is nil.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (storage.Store, llm.SQLFunctions, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		client, err := storage.NewClient(ctx, storage.ClientConfig{
			ConnString:  cfg.DSN,
			Table:       cfg.Table,
			AnswerTable: cfg.AnswerTable,
			MaxConns:    cfg.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.DSN, cfg.Table, cfg.AnswerTable)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	case config.DriverDatabend:
		store, err := databend.Open(cfg.DSN, cfg.Table, cfg.AnswerTable)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// maps the llm section of the config onto the provider config
func LLMConfig(cfg *config.Config) *llm.Config {
	return &llm.Config{
		GeneratorProvider:  llm.Provider(cfg.LLM.GeneratorProvider),
		GeneratorAPIKey:    cfg.APIKey(cfg.LLM.GeneratorProvider),
		GeneratorModel:     cfg.LLM.GeneratorModel,
		GeneratorMaxTokens: cfg.LLM.GeneratorMaxTokens,
		EmbedderProvider:   llm.Provider(cfg.LLM.EmbedderProvider),
		EmbedderAPIKey:     cfg.APIKey(cfg.LLM.EmbedderProvider),
		EmbedderModel:      cfg.LLM.EmbedderModel,
		OpenAIBaseURL:      cfg.LLM.OpenAIBaseURL,
		AnthropicBaseURL:   cfg.LLM.AnthropicBaseURL,
	}
}
