package memory

import (
	"context"
	"testing"

	"codeberg.org/askdocs/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Store = (*Store)(nil)

func TestStorePendingAndSetEmbedding(t *testing.T) {
	ctx := context.Background()
	s := New("docs")

	n, err := s.InsertRecords(ctx, []storage.Record{
		{ID: "a", Path: "a.md", Content: "alpha"},
		{ID: "b", Path: "b.md", Content: "beta"},
		{ID: "c", Path: "c.md", Content: "gamma"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pending, err := s.PendingRecords(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, int64(1), pending[0].Seq)

	require.NoError(t, s.SetEmbedding(ctx, "a", []float32{1, 0}))
	// second write to a filled record is ignored
	require.NoError(t, s.SetEmbedding(ctx, "a", []float32{0, 1}))

	pending, err = s.PendingRecords(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].ID)

	pending, err = s.PendingRecords(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].ID)

	assert.Equal(t, []float32{1, 0}, s.Records()[0].Embedding)
}

func TestStoreNearestAndAnswers(t *testing.T) {
	ctx := context.Background()
	s := New("docs")

	_, err := s.InsertRecords(ctx, []storage.Record{
		{ID: "a", Content: "first record", Embedding: []float32{0, 1}},
		{ID: "b", Content: "second record", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Nearest(ctx, []float32{1, 0}, 0, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second record", results[0].Content)

	require.NoError(t, s.InsertAnswer(ctx, storage.AnswerRecord{Question: "q"}))
	assert.Len(t, s.Answers(), 1)

	count, err := s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.ClearRecords(ctx))
	count, err = s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.Equal(t, "memory.docs", s.Identity())
}
