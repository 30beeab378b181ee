package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "token").WithBaseURL(srv.URL)
	require.NoError(t, err)

	return c
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in    string
		owner string
		name  string
		ok    bool
	}{
		{"acme/docs", "acme", "docs", true},
		{"https://github.com/acme/docs/", "acme", "docs", true},
		{"acme", "", "", false},
		{"acme/docs/extra", "", "", false},
		{"/docs", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, name, err := ParseRepo(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestOpenPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "open", r.URL.Query().Get("state"))

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"number": 3, "title": "third", "html_url": "https://github.com/acme/docs/pull/3"}]`)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
		fmt.Fprint(w, `[{"number": 1, "title": "first"}, {"number": 2, "title": "second"}]`)
	})

	c := newTestClient(t, mux)

	prs, err := c.OpenPullRequests(context.Background(), "acme", "docs")
	require.NoError(t, err)
	require.Len(t, prs, 3)
	assert.Equal(t, 1, prs[0].Number)
	assert.Equal(t, "https://github.com/acme/docs/pull/3", prs[2].URL)
}

func TestMergedPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"number": 10, "merged_at": "2026-01-02T03:04:05Z"},
			{"number": 9},
			{"number": 8, "merged_at": "2026-01-01T00:00:00Z"},
			{"number": 7, "merged_at": "2025-12-31T00:00:00Z"}
		]`)
	})

	c := newTestClient(t, mux)

	prs, err := c.MergedPullRequests(context.Background(), "acme", "docs", 2)
	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, 10, prs[0].Number)
	assert.Equal(t, 8, prs[1].Number)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), prs[0].MergedAt)
}

func TestPullRequestDiff(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		fmt.Fprint(w, "diff --git a/x b/x\n+hello\n")
	})

	c := newTestClient(t, mux)

	diff, err := c.PullRequestDiff(context.Background(), "acme", "docs", 7)
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/x b/x\n+hello\n", diff)
}

func TestCommentsSinceAndReplies(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var reaction, posted string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("since"))
		fmt.Fprint(w, `[{"id": 42, "body": "askdocs:summary", "created_at": "2026-03-02T00:00:00Z"}]`)
	})
	mux.HandleFunc("POST /repos/acme/docs/issues/comments/42/reactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		reaction = body["content"]
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 1, "content": "+1"}`)
	})
	mux.HandleFunc("POST /repos/acme/docs/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var body map[string]string
		assert.NoError(t, json.Unmarshal(b, &body))
		posted = body["body"]
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 43}`)
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	comments, err := c.CommentsSince(ctx, "acme", "docs", 7, since)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, int64(42), comments[0].ID)
	assert.Equal(t, "askdocs:summary", comments[0].Body)

	require.NoError(t, c.ReactToComment(ctx, "acme", "docs", 42, "+1"))
	require.NoError(t, c.CreateComment(ctx, "acme", "docs", 7, "## PR Summary"))

	assert.Equal(t, "+1", reaction)
	assert.Equal(t, "## PR Summary", posted)
}

func TestClientErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	c := newTestClient(t, mux)

	_, err := c.OpenPullRequests(context.Background(), "acme", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list pull requests")
}
