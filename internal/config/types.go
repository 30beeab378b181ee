package config

import (
	"fmt"
	"time"
)

// store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverDatabend = "databend"
)

type Config struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`

	Store  StoreConfig  `toml:"store"`
	LLM    LLMConfig    `toml:"llm"`
	Query  QueryConfig  `toml:"query"`
	Ingest IngestConfig `toml:"ingest"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	GitHub GitHubConfig `toml:"github"`
}

type StoreConfig struct {
	Driver string `toml:"driver"`
	// postgres connection string, sqlite file path or databend dsn
	DSN         string `toml:"dsn"`
	Table       string `toml:"table"`
	AnswerTable string `toml:"answer_table"`
	MaxConns    int32  `toml:"max_conns"`
}

type LLMConfig struct {
	EmbedderProvider   string `toml:"embedder_provider"`
	EmbedderModel      string `toml:"embedder_model"`
	GeneratorProvider  string `toml:"generator_provider"`
	GeneratorModel     string `toml:"generator_model"`
	GeneratorMaxTokens int    `toml:"generator_max_tokens"`
	OpenAIKey          string `toml:"openai_api_key"`
	AnthropicKey       string `toml:"anthropic_api_key"`
	OpenAIBaseURL      string `toml:"openai_base_url"`
	AnthropicBaseURL   string `toml:"anthropic_base_url"`
}

type QueryConfig struct {
	TopK             int `toml:"top_k"`
	MinContentLength int `toml:"min_content_length"`
	// nil means no ceiling
	MaxDistance        *float32 `toml:"max_distance"`
	PromptBudget       int      `toml:"prompt_budget"`
	PromptTemplateFile string   `toml:"prompt_template_file"`
	// ulule/limiter format, e.g. "30-M"
	RateLimit string `toml:"rate_limit"`
}

type IngestConfig struct {
	DataPath         string   `toml:"data_path"`
	Extensions       []string `toml:"extensions"`
	IgnoreDirs       []string `toml:"ignore_dirs"`
	MaxContentLength int      `toml:"max_content_length"`
	MinChunkChars    int      `toml:"min_chunk_chars"`
	Rebuild          bool     `toml:"rebuild"`
	FillInterval     Duration `toml:"fill_interval"`
	BatchSize        int      `toml:"batch_size"`
	Concurrency      int      `toml:"concurrency"`
}

type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        string   `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

type CacheConfig struct {
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

type GitHubConfig struct {
	Token string `toml:"token"`
	// owner/name
	Repos        []string `toml:"repos"`
	PollInterval Duration `toml:"poll_interval"`
	MaxTokens    int      `toml:"max_tokens"`
	Keyword      string   `toml:"keyword"`
}

// time.Duration that decodes from "5m" style strings
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// names the setting that failed to load or validate
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Setting, e.Reason)
}
