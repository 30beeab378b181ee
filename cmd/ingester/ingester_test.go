package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/indexer"
	"codeberg.org/askdocs/server/internal/services"
	"codeberg.org/askdocs/server/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lenEmbedder struct{}

func (lenEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (e lenEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.GenerateEmbedding(ctx, t)
	}
	return out, nil
}

func newTestServices() (*services.Services, *memory.Store) {
	store := memory.New("records")
	return &services.Services{
		Store:   store,
		Indexer: indexer.New(store, lenEmbedder{}),
	}, store
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestIngestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "# Install\n\nrun the installer\n")
	writeFile(t, dir, "api/query.md", "# Query\n\npost a question\n")
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	cfg := config.Defaults()

	tests := []struct {
		command string
		records int
	}{
		{"docs", 2},
		{"code", 1},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			svc, store := newTestServices()

			err := IngestFiles(context.Background(), cfg, svc, tt.command, config.IngestFlags{Path: dir})
			require.NoError(t, err)

			records := store.Records()
			assert.Len(t, records, tt.records)
			for _, r := range records {
				assert.NotEmpty(t, r.Embedding, r.Path)
			}
		})
	}
}

func TestIngestFilesClear(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "# Install\n\nrun the installer\n")

	cfg := config.Defaults()
	svc, store := newTestServices()
	ctx := context.Background()

	require.NoError(t, IngestFiles(ctx, cfg, svc, "docs", config.IngestFlags{Path: dir}))
	require.NoError(t, IngestFiles(ctx, cfg, svc, "docs", config.IngestFlags{Path: dir}))
	assert.Len(t, store.Records(), 2)

	require.NoError(t, IngestFiles(ctx, cfg, svc, "docs", config.IngestFlags{Path: dir, Clear: true}))
	assert.Len(t, store.Records(), 1)
}

func TestIngestFilesEmptyDir(t *testing.T) {
	svc, _ := newTestServices()

	err := IngestFiles(context.Background(), config.Defaults(), svc, "docs", config.IngestFlags{Path: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no docs files found")
}

type fakeDiffs struct {
	prs   []github.PullRequest
	diffs map[int]string
	owner string
	repo  string
}

func (f *fakeDiffs) MergedPullRequests(_ context.Context, owner, repo string, limit int) ([]github.PullRequest, error) {
	f.owner, f.repo = owner, repo
	return f.prs[:min(limit, len(f.prs))], nil
}

func (f *fakeDiffs) PullRequestDiff(_ context.Context, _, _ string, number int) (string, error) {
	diff, ok := f.diffs[number]
	if !ok {
		return "", errors.New("not found")
	}
	return diff, nil
}

func TestPullDocuments(t *testing.T) {
	src := &fakeDiffs{
		prs: []github.PullRequest{
			{Number: 3, URL: "https://github.com/acme/docs/pull/3"},
			{Number: 2, URL: "https://github.com/acme/docs/pull/2"},
			{Number: 1, URL: "https://github.com/acme/docs/pull/1"},
		},
		diffs: map[int]string{
			3: "diff --git a/a.md b/a.md\n+hello\n",
			2: "   ",
		},
	}

	docs, err := pullDocuments(context.Background(), src, "acme/docs", 10)
	require.NoError(t, err)

	assert.Equal(t, "acme", src.owner)
	assert.Equal(t, "docs", src.repo)

	// empty and unreadable diffs are skipped
	require.Len(t, docs, 1)
	assert.Equal(t, "https://github.com/acme/docs/pull/3.diff", docs[0].Path)
	assert.Contains(t, docs[0].Content, "+hello")
}

func TestPullDocumentsBadRepo(t *testing.T) {
	_, err := pullDocuments(context.Background(), &fakeDiffs{}, "not-a-repo", 10)
	require.Error(t, err)
}
