package indexer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/storage"
	"codeberg.org/askdocs/server/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeds by text length; inputs containing "poison" fail
type fakeEmbedder struct {
	calls  atomic.Int64
	mu     sync.Mutex
	inputs []string
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)

	e.mu.Lock()
	e.inputs = append(e.inputs, text)
	e.mu.Unlock()

	if strings.Contains(text, "poison") {
		return nil, errors.New("embedding service unavailable")
	}

	return []float32{float32(len(text)), 1}, nil
}

func (e *fakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.GenerateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func chunksOf(texts ...string) []chunker.Chunk {
	out := make([]chunker.Chunk, len(texts))
	for i, t := range texts {
		out[i] = chunker.Chunk{SourcePath: "doc.md", Text: t, SequenceIndex: i}
	}
	return out
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	idx := New(store, &fakeEmbedder{}, WithBatchSize(2))

	n, err := idx.Ingest(ctx, chunksOf("a", "b", "c", "d", "e"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	records := store.Records()
	require.Len(t, records, 5)

	ids := map[string]bool{}
	for i, r := range records {
		assert.Equal(t, "doc.md", r.Path)
		assert.Equal(t, string(rune('a'+i)), r.Content)
		assert.Empty(t, r.Embedding)
		assert.NotEmpty(t, r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, 5)
}

func TestIngestEmpty(t *testing.T) {
	store := memory.New("records")

	n, err := New(store, &fakeEmbedder{}).Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.Records())
}

type failingWriter struct {
	storage.RecordWriter
}

func (failingWriter) InsertRecords(context.Context, []storage.Record) (int, error) {
	return 0, errors.New("connection refused")
}

func TestIngestStorageError(t *testing.T) {
	_, err := New(failingWriter{}, &fakeEmbedder{}).Ingest(context.Background(), chunksOf("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFillEmbeddingsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	embedder := &fakeEmbedder{}
	idx := New(store, embedder, WithBatchSize(2), WithConcurrency(2))

	_, err := idx.Ingest(ctx, chunksOf("alpha", "beta", "gamma"))
	require.NoError(t, err)

	stats, err := idx.FillEmbeddings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FillStats{Embedded: 3}, stats)
	assert.Equal(t, int64(3), embedder.calls.Load())

	before := store.Records()

	stats, err = idx.FillEmbeddings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FillStats{}, stats)
	assert.Equal(t, int64(3), embedder.calls.Load(), "second pass must not embed")
	assert.Equal(t, before, store.Records())
}

func TestFillEmbeddingsTruncatesInput(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	embedder := &fakeEmbedder{}
	idx := New(store, embedder)

	_, err := idx.Ingest(ctx, chunksOf("0123456789"))
	require.NoError(t, err)

	_, err = idx.FillEmbeddings(ctx, 8)
	require.NoError(t, err)

	require.Len(t, embedder.inputs, 1)
	assert.Equal(t, "doc.md01", embedder.inputs[0])
}

func TestFillEmbeddingsSkipsFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	embedder := &fakeEmbedder{}
	idx := New(store, embedder, WithBatchSize(1))

	_, err := idx.Ingest(ctx, chunksOf("good one", "poison pill", "good two"))
	require.NoError(t, err)

	stats, err := idx.FillEmbeddings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FillStats{Embedded: 2, Failed: 1}, stats)

	pending, err := store.PendingRecords(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "poison pill", pending[0].Content)

	// the failed record is retried on the next pass only
	stats, err = idx.FillEmbeddings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FillStats{Failed: 1}, stats)
}

func TestFillEmbeddingsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.New("records")
	_, err := store.InsertRecords(context.Background(), []storage.Record{{ID: "a", Content: "x"}})
	require.NoError(t, err)

	_, err = New(store, &fakeEmbedder{}).FillEmbeddings(ctx, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingProgress struct {
	started   int
	increment atomic.Int64
	finished  bool
}

func (p *countingProgress) Start(total int) { p.started = total }
func (p *countingProgress) Increment()      { p.increment.Add(1) }
func (p *countingProgress) Finish()         { p.finished = true }

func TestFillEmbeddingsProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	progress := &countingProgress{}
	idx := New(store, &fakeEmbedder{}, WithProgress(progress))

	_, err := idx.Ingest(ctx, chunksOf("a", "b"))
	require.NoError(t, err)

	_, err = idx.FillEmbeddings(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, -1, progress.started)
	assert.Equal(t, int64(2), progress.increment.Load())
	assert.True(t, progress.finished)
}

func TestFiller(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	embedder := &fakeEmbedder{}
	idx := New(store, embedder)

	_, err := idx.Ingest(ctx, chunksOf("first"))
	require.NoError(t, err)

	f := NewFiller(idx, 100, 10*time.Millisecond)
	f.Start()

	require.Eventually(t, func() bool {
		pending, _ := store.PendingRecords(ctx, 0, 10)
		return len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	// records ingested while running are picked up by a later tick
	_, err = idx.Ingest(ctx, chunksOf("second"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		pending, _ := store.PendingRecords(ctx, 0, 10)
		return len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	f.Stop()
	assert.Equal(t, int64(2), embedder.calls.Load())
}

func TestIngestDocuments(t *testing.T) {
	ctx := context.Background()
	store := memory.New("records")
	idx := New(store, &fakeEmbedder{})

	docs := []chunker.Document{
		{Path: "guide.md", Content: "# Install\n\nrun the installer\n\n# Usage\n\ncall the api\n"},
		{Path: "main.go", Content: "package main\n\nfunc main() {\n"},
		{Path: "notes.txt", Content: "plain text"},
	}

	stats, err := idx.IngestDocuments(ctx, docs, chunker.Options{HeadingBoundaries: true})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.Records)
	assert.Len(t, store.Records(), 2)
}
