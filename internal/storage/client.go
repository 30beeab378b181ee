package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/askdocs/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// postgres + pgvector store
type Client struct {
	pool        *pgxpool.Pool
	database    string
	table       string
	answerTable string
	q           queries
}

type ClientConfig struct {
	ConnString  string
	Table       string
	AnswerTable string
	MaxConns    int32
}

func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// poolers in transaction mode don't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{
		pool:        pool,
		database:    poolConfig.ConnConfig.Database,
		table:       cfg.Table,
		answerTable: cfg.AnswerTable,
		q:           newQueries(cfg.Table, cfg.AnswerTable),
	}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) Identity() string {
	return c.database + "." + c.table
}

// creates the vector extension and tables if missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	stmts := []string{createExtensionQuery, c.q.createRecordsTable}
	if c.answerTable != "" {
		stmts = append(stmts, c.q.createAnswersTable)
	}

	for _, stmt := range stmts {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// inserts all records in a single transaction
func (c *Client) InsertRecords(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	batch := &pgx.Batch{}

	for _, r := range records {
		batch.Queue(c.q.insertRecord, r.ID, r.Path, r.Content)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range len(records) {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // error path cleanup
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	// batch results must be closed before commit or the connection stays busy
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(records), nil
}

func (c *Client) PendingRecords(ctx context.Context, after int64, limit int) ([]Record, error) {
	rows, err := c.pool.Query(ctx, c.q.pendingRecords, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending records: %w", err)
	}
	defer rows.Close()

	var records []Record

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Seq, &r.ID, &r.Path, &r.Content); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

func (c *Client) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := c.pool.Exec(ctx, c.q.setEmbedding, id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to set embedding: %w", err)
	}

	return nil
}

func (c *Client) Nearest(ctx context.Context, embedding []float32, minContentChars, topK int) ([]QueryResult, error) {
	rows, err := c.pool.Query(ctx, c.q.nearest, pgvector.NewVector(embedding), minContentChars, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest records: %w", err)
	}
	defer rows.Close()

	var results []QueryResult

	for rows.Next() {
		var r QueryResult
		if err := rows.Scan(&r.Content, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return results, nil
}

func (c *Client) InsertAnswer(ctx context.Context, rec AnswerRecord) error {
	_, err := c.pool.Exec(ctx, c.q.insertAnswer,
		rec.ID,
		rec.Question,
		rec.Prompt,
		rec.SimilarDistances,
		rec.SimilarSections,
		rec.Answer,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	return nil
}

func (c *Client) CountRecords(ctx context.Context) (int, error) {
	var count int

	if err := c.pool.QueryRow(ctx, c.q.countRecords).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}

	return count, nil
}

// deletes all records; only used by explicit rebuilds
func (c *Client) ClearRecords(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, c.q.clearRecords); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	return nil
}

// exposes the pool for health checks
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
