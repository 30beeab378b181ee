package config

import (
	"strconv"
	"strings"
	"time"
)

// overrides settings from environment variables. lookup is os.LookupEnv
// outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("ENVIRONMENT", &c.Environment)
	e.str("LOG_LEVEL", &c.LogLevel)

	e.str("STORE_DRIVER", &c.Store.Driver)
	e.str("DATABASE_URL", &c.Store.DSN)
	e.str("DATABASE_TABLE", &c.Store.Table)
	e.str("ANSWER_TABLE", &c.Store.AnswerTable)
	e.int32("DATABASE_MAX_CONNS", &c.Store.MaxConns)

	e.str("EMBEDDER_PROVIDER", &c.LLM.EmbedderProvider)
	e.str("EMBEDDER_MODEL", &c.LLM.EmbedderModel)
	e.str("GENERATOR_PROVIDER", &c.LLM.GeneratorProvider)
	e.str("GENERATOR_MODEL", &c.LLM.GeneratorModel)
	e.int("GENERATOR_MAX_TOKENS", &c.LLM.GeneratorMaxTokens)
	e.str("OPENAI_API_KEY", &c.LLM.OpenAIKey)
	e.str("ANTHROPIC_API_KEY", &c.LLM.AnthropicKey)
	e.str("OPENAI_BASE_URL", &c.LLM.OpenAIBaseURL)
	e.str("ANTHROPIC_BASE_URL", &c.LLM.AnthropicBaseURL)

	e.int("TOP_K", &c.Query.TopK)
	e.int("MIN_CONTENT_LENGTH", &c.Query.MinContentLength)
	e.optionalFloat("MAX_DISTANCE", &c.Query.MaxDistance)
	e.int("PROMPT_BUDGET", &c.Query.PromptBudget)
	e.str("PROMPT_TEMPLATE_FILE", &c.Query.PromptTemplateFile)
	e.str("QUERY_RATE_LIMIT", &c.Query.RateLimit)

	e.str("DATA_PATH", &c.Ingest.DataPath)
	e.list("EXTENSIONS", &c.Ingest.Extensions)
	e.list("IGNORE_DIRS", &c.Ingest.IgnoreDirs)
	e.int("MAX_CONTENT_LENGTH", &c.Ingest.MaxContentLength)
	e.int("MIN_CHUNK_CHARS", &c.Ingest.MinChunkChars)
	e.bool("REBUILD", &c.Ingest.Rebuild)
	e.duration("EMBED_FILL_INTERVAL", &c.Ingest.FillInterval)
	e.int("EMBED_BATCH_SIZE", &c.Ingest.BatchSize)
	e.int("EMBED_CONCURRENCY", &c.Ingest.Concurrency)

	e.str("HOST", &c.Server.Host)
	e.str("PORT", &c.Server.Port)
	e.list("CORS_ORIGINS", &c.Server.CORSOrigins)

	e.str("REDIS_URL", &c.Cache.RedisURL)
	e.duration("CACHE_TTL", &c.Cache.TTL)

	e.str("GITHUB_TOKEN", &c.GitHub.Token)
	e.list("GITHUB_REPOS", &c.GitHub.Repos)
	e.duration("GITHUB_POLL_INTERVAL", &c.GitHub.PollInterval)
	e.int("GITHUB_MAX_TOKENS", &c.GitHub.MaxTokens)
	e.str("GITHUB_KEYWORD", &c.GitHub.Keyword)

	return e.err
}

// keeps the first parse error
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}

	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key string, err error) {
	e.err = &ConfigError{Setting: key, Reason: err.Error()}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}

	*dst = n
}

func (e *envReader) int32(key string, dst *int32) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		e.fail(key, err)
		return
	}

	*dst = int32(n)
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}

	*dst = b
}

func (e *envReader) optionalFloat(key string, dst **float32) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		e.fail(key, err)
		return
	}

	f32 := float32(f)
	*dst = &f32
}

func (e *envReader) duration(key string, dst *Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}

	dst.Duration = d
}

// comma separated, blanks dropped
func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	*dst = out
}
