package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/ulule/limiter/v3"
)

// returns the built-in defaults
func Defaults() *Config {
	return &Config{
		Environment: "development",
		Store: StoreConfig{
			Driver:      DriverPostgres,
			Table:       "records",
			AnswerTable: "answers",
		},
		LLM: LLMConfig{
			EmbedderProvider:  "openai",
			EmbedderModel:     "text-embedding-3-small",
			GeneratorProvider: "anthropic",
			GeneratorModel:    "claude-sonnet-4-20250514",
		},
		Query: QueryConfig{
			TopK:             2,
			MinContentLength: 50,
			PromptBudget:     8192,
			RateLimit:        "30-M",
		},
		Ingest: IngestConfig{
			DataPath:         "data",
			Extensions:       []string{"md", "go"},
			IgnoreDirs:       []string{".git", "node_modules", "vendor"},
			MaxContentLength: 8000,
			MinChunkChars:    1024,
			FillInterval:     Duration{5 * time.Minute},
			BatchSize:        200,
			Concurrency:      4,
		},
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Cache: CacheConfig{
			TTL: Duration{time.Hour},
		},
		GitHub: GitHubConfig{
			PollInterval: Duration{20 * time.Second},
			MaxTokens:    100000,
			Keyword:      "askdocs:summary",
		},
	}
}

// loads defaults, the CONFIG_FILE toml file, .env and the environment, in
// that order. flags are applied by the commands afterwards.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// merges a toml file over the current values
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return &ConfigError{Setting: path, Reason: fmt.Sprintf("line %d column %d: %s", row, col, decodeErr.Error())}
		}
		return &ConfigError{Setting: path, Reason: err.Error()}
	}

	return nil
}

// checks the settings every command needs
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite, DriverDatabend:
	default:
		return &ConfigError{Setting: "STORE_DRIVER", Reason: fmt.Sprintf("unsupported driver %q", c.Store.Driver)}
	}

	if c.Store.DSN == "" {
		return &ConfigError{Setting: "DATABASE_URL", Reason: "required"}
	}

	if c.Store.Table == "" {
		return &ConfigError{Setting: "DATABASE_TABLE", Reason: "required"}
	}

	if c.Query.TopK < 0 {
		return &ConfigError{Setting: "TOP_K", Reason: "must not be negative"}
	}

	if c.Query.MinContentLength < 0 {
		return &ConfigError{Setting: "MIN_CONTENT_LENGTH", Reason: "must not be negative"}
	}

	if c.Query.MaxDistance != nil && *c.Query.MaxDistance < 0 {
		return &ConfigError{Setting: "MAX_DISTANCE", Reason: "must not be negative"}
	}

	if c.Query.PromptBudget <= 0 {
		return &ConfigError{Setting: "PROMPT_BUDGET", Reason: "must be positive"}
	}

	if c.Query.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.Query.RateLimit); err != nil {
			return &ConfigError{Setting: "QUERY_RATE_LIMIT", Reason: err.Error()}
		}
	}

	if c.Ingest.MaxContentLength <= 0 {
		return &ConfigError{Setting: "MAX_CONTENT_LENGTH", Reason: "must be positive"}
	}

	if err := c.validateProvider("EMBEDDER_PROVIDER", c.LLM.EmbedderProvider, false); err != nil {
		return err
	}

	if err := c.validateProvider("GENERATOR_PROVIDER", c.LLM.GeneratorProvider, true); err != nil {
		return err
	}

	for _, repo := range c.GitHub.Repos {
		if owner, name, ok := strings.Cut(repo, "/"); !ok || owner == "" || name == "" {
			return &ConfigError{Setting: "GITHUB_REPOS", Reason: fmt.Sprintf("%q is not owner/name", repo)}
		}
	}

	if len(c.GitHub.Repos) > 0 && c.GitHub.Token == "" {
		return &ConfigError{Setting: "GITHUB_TOKEN", Reason: "required when GITHUB_REPOS is set"}
	}

	return nil
}

func (c *Config) validateProvider(setting, provider string, generator bool) error {
	switch provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return &ConfigError{Setting: "OPENAI_API_KEY", Reason: "required for " + setting + "=openai"}
		}
	case "anthropic":
		if !generator {
			return &ConfigError{Setting: setting, Reason: "anthropic has no embeddings endpoint"}
		}
		if c.LLM.AnthropicKey == "" {
			return &ConfigError{Setting: "ANTHROPIC_API_KEY", Reason: "required for " + setting + "=anthropic"}
		}
	case "databend":
		if c.Store.Driver != DriverDatabend {
			return &ConfigError{Setting: setting, Reason: "databend provider requires STORE_DRIVER=databend"}
		}
	default:
		return &ConfigError{Setting: setting, Reason: fmt.Sprintf("unsupported provider %q", provider)}
	}

	return nil
}

// api key for the configured provider
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.LLM.OpenAIKey
	case "anthropic":
		return c.LLM.AnthropicKey
	default:
		return ""
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
