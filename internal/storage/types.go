package storage

import (
	"context"
	"time"
)

// a persisted chunk. Embedding is empty until the fill pass computes it.
type Record struct {
	// storage order, assigned by the store on insert
	Seq       int64
	ID        string
	Path      string
	Content   string
	Embedding []float32
}

type QueryResult struct {
	Content  string  `json:"content"`
	Distance float32 `json:"distance"`
}

// one answered query, append-only
type AnswerRecord struct {
	ID               string
	Question         string
	Prompt           string
	SimilarDistances []float32
	SimilarSections  string
	Answer           string
	CreatedAt        time.Time
}

// write side of the record table, owned by the indexer
type RecordWriter interface {
	InsertRecords(ctx context.Context, records []Record) (int, error)
	// records with no embedding and Seq > after, ascending by Seq
	PendingRecords(ctx context.Context, after int64, limit int) ([]Record, error)
	SetEmbedding(ctx context.Context, id string, embedding []float32) error
}

// read side used by the retriever
type RecordReader interface {
	// ranks records with an embedding and more than minContentChars characters
	// by ascending cosine distance, ties in storage order
	Nearest(ctx context.Context, embedding []float32, minContentChars, topK int) ([]QueryResult, error)
}

type AnswerWriter interface {
	InsertAnswer(ctx context.Context, rec AnswerRecord) error
}

type Store interface {
	RecordWriter
	RecordReader
	AnswerWriter

	EnsureSchema(ctx context.Context) error
	CountRecords(ctx context.Context) (int, error)
	ClearRecords(ctx context.Context) error
	// "<database>.<table>" for status probes
	Identity() string
	Close()
}
