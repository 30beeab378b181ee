package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/storage"
)

const (
	createRecordsTableQuery = `
		CREATE TABLE IF NOT EXISTS %[1]s (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			path TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	createAnswersTableQuery = `
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			prompt TEXT NOT NULL,
			similar_distances BLOB NOT NULL,
			similar_sections TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`
	insertRecordQuery   = "INSERT INTO %[1]s (id, path, content) VALUES (?, ?, ?)"
	pendingRecordsQuery = `
		SELECT seq, id, path, content FROM %[1]s
		WHERE embedding IS NULL AND seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`
	setEmbeddingQuery = "UPDATE %[1]s SET embedding = ? WHERE id = ? AND embedding IS NULL"
	candidatesQuery   = `
		SELECT seq, content, embedding FROM %[1]s
		WHERE embedding IS NOT NULL AND length(content) > ?
		ORDER BY seq ASC
	`
	countRecordsQuery = "SELECT COUNT(*) FROM %[1]s"
	clearRecordsQuery = "DELETE FROM %[1]s"
	insertAnswerQuery = `
		INSERT INTO %[1]s (id, question, prompt, similar_distances, similar_sections, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
)

// embedded store backed by a single sqlite file. ranking is brute force.
type Store struct {
	db          *sql.DB
	path        string
	table       string
	answerTable string
}

func NewStore(path, table, answerTable string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		db:          db,
		path:        path,
		table:       quoteIdent(table),
		answerTable: quoteIdent(answerTable),
	}, nil
}

func quoteIdent(name string) string {
	if name == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Store) stmt(tmpl, table string) string {
	return fmt.Sprintf(tmpl, table)
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		logger.Warn("failed to close sqlite database", "path", s.path, "error", err)
	}
}

func (s *Store) Identity() string {
	name := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	return name + "." + strings.Trim(s.table, `"`)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.stmt(createRecordsTableQuery, s.table)); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	if s.answerTable != "" {
		if _, err := s.db.ExecContext(ctx, s.stmt(createAnswersTableQuery, s.answerTable)); err != nil {
			return fmt.Errorf("failed to create answers table: %w", err)
		}
	}

	return nil
}

func (s *Store) InsertRecords(ctx context.Context, records []storage.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.stmt(insertRecordQuery, s.table))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Path, r.Content); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(records), nil
}

func (s *Store) PendingRecords(ctx context.Context, after int64, limit int) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.stmt(pendingRecordsQuery, s.table), after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending records: %w", err)
	}
	defer rows.Close()

	var records []storage.Record

	for rows.Next() {
		var r storage.Record
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

func (s *Store) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx, s.stmt(setEmbeddingQuery, s.table), encodeVector(embedding), id)
	if err != nil {
		return fmt.Errorf("failed to set embedding: %w", err)
	}

	return nil
}

func (s *Store) Nearest(ctx context.Context, embedding []float32, minContentChars, topK int) ([]storage.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, s.stmt(candidatesQuery, s.table), minContentChars)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []storage.Record

	for rows.Next() {
		var r storage.Record
		var blob []byte
		if err := rows.Scan(&r.Seq, &r.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		r.Embedding = decodeVector(blob)
		candidates = append(candidates, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return storage.RankRecords(candidates, embedding, minContentChars, topK), nil
}

func (s *Store) InsertAnswer(ctx context.Context, rec storage.AnswerRecord) error {
	_, err := s.db.ExecContext(ctx, s.stmt(insertAnswerQuery, s.answerTable),
		rec.ID,
		rec.Question,
		rec.Prompt,
		encodeVector(rec.SimilarDistances),
		rec.SimilarSections,
		rec.Answer,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	return nil
}

func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var count int

	if err := s.db.QueryRowContext(ctx, s.stmt(countRecordsQuery, s.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}

	return count, nil
}

func (s *Store) ClearRecords(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.stmt(clearRecordsQuery, s.table)); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	return nil
}

// little-endian float32s
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data) < 4 {
		return nil
	}

	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
