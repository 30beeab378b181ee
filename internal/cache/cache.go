package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/askdocs/server/internal/logger"
)

// redis-backed answer cache
type AnswerCache struct {
	client *redis.Client
	opts   Options
}

// connects to redis and returns a cache over it
func Connect(ctx context.Context, redisURL string, opts Options) (*AnswerCache, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", "addr", redisOpts.Addr)

	return New(client, opts), nil
}

func New(client *redis.Client, opts Options) *AnswerCache {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}

	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return &AnswerCache{client: client, opts: opts}
}

// underlying client, shared with the rate limiter
func (c *AnswerCache) Client() *redis.Client {
	return c.client
}

func (c *AnswerCache) Close() error {
	return c.client.Close()
}

// returns nil, nil on a miss
func (c *AnswerCache) Get(ctx context.Context, question string) (*Entry, error) {
	key := c.key(question)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get answer from redis: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// corrupt entry, drop it
		_ = c.client.Del(ctx, key).Err()
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}

	logger.Debug("answer cache hit", "key", key)

	return &entry, nil
}

func (c *AnswerCache) Set(ctx context.Context, question string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	if err := c.client.Set(ctx, c.key(question), data, c.opts.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set answer in redis: %w", err)
	}

	return nil
}

// drops every cached answer under the prefix, used after a corpus rebuild
func (c *AnswerCache) Clear(ctx context.Context) (int, error) {
	iter := c.client.Scan(ctx, 0, c.opts.KeyPrefix+"*", 100).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete cached answer: %w", err)
		}
		deleted++
	}

	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan cached answers: %w", err)
	}

	return deleted, nil
}

func (c *AnswerCache) key(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(c.opts.Namespace + "\x00" + normalized))
	return c.opts.KeyPrefix + hex.EncodeToString(sum[:])
}
