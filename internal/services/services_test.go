package services

import (
	"context"
	"path/filepath"
	"testing"

	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Defaults()
	cfg.Store.Driver = config.DriverSQLite
	cfg.Store.DSN = filepath.Join(t.TempDir(), "askdocs.db")
	cfg.LLM.OpenAIKey = "sk-test"
	cfg.LLM.AnthropicKey = "sk-ant-test"
	return cfg
}

func TestInitializeSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	svc, err := Initialize(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()

	n, err := svc.Store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.NotNil(t, svc.Retriever)
	assert.NotNil(t, svc.Indexer)
	assert.Equal(t, cfg.Query.TopK, svc.Retriever.Options().TopK)
}

func TestInitializeMissingKey(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.LLM.AnthropicKey = ""

	_, err := Initialize(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create LLM client")
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestLLMConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.OpenAIKey = "sk-openai"
	cfg.LLM.AnthropicKey = "sk-anthropic"
	cfg.LLM.GeneratorMaxTokens = 512

	got := LLMConfig(cfg)

	assert.Equal(t, llm.ProviderAnthropic, got.GeneratorProvider)
	assert.Equal(t, "sk-anthropic", got.GeneratorAPIKey)
	assert.Equal(t, 512, got.GeneratorMaxTokens)
	assert.Equal(t, llm.ProviderOpenAI, got.EmbedderProvider)
	assert.Equal(t, "sk-openai", got.EmbedderAPIKey)
	assert.Equal(t, "text-embedding-3-small", got.EmbedderModel)
}
