package prbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	mu        sync.Mutex
	prs       map[string][]github.PullRequest
	comments  map[int][]github.Comment
	diffs     map[int]string
	listErr   error
	lists     int
	sinces    []time.Time
	reactions []int64
	posted    map[int][]string
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		prs:      map[string][]github.PullRequest{},
		comments: map[int][]github.Comment{},
		diffs:    map[int]string{},
		posted:   map[int][]string{},
	}
}

func (f *fakeGitHub) OpenPullRequests(_ context.Context, owner, repo string) ([]github.PullRequest, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.prs[owner+"/"+repo], nil
}

func (f *fakeGitHub) CommentsSince(_ context.Context, _, _ string, number int, since time.Time) ([]github.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sinces = append(f.sinces, since)

	var out []github.Comment
	for _, c := range f.comments[number] {
		if !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeGitHub) ReactToComment(_ context.Context, _, _ string, id int64, reaction string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if reaction == "+1" {
		f.reactions = append(f.reactions, id)
	}
	return nil
}

func (f *fakeGitHub) PullRequestDiff(_ context.Context, _, _ string, number int) (string, error) {
	d, ok := f.diffs[number]
	if !ok {
		return "", errors.New("diff not found")
	}
	return d, nil
}

func (f *fakeGitHub) CreateComment(_ context.Context, _, _ string, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.posted[number] = append(f.posted[number], body)
	return nil
}

type echoGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *echoGenerator) GenerateText(_ context.Context, req llm.TextGenerationRequest) (*llm.TextGenerationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	return &llm.TextGenerationResponse{Text: fmt.Sprintf("summary %d", g.calls)}, nil
}

func fileDiff(name string, size int) string {
	return "diff --git a/" + name + " b/" + name + "\n+" + strings.Repeat("x", size) + "\n"
}

func newTestBot(gh GitHub, gen llm.TextGenerator, now time.Time) *Bot {
	b := New(gh, gen, Options{Repos: []string{"acme/docs"}})
	b.now = func() time.Time { return now }
	return b
}

func TestPollFirstScanStartsNow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	gh := newFakeGitHub()
	gh.prs["acme/docs"] = []github.PullRequest{{Number: 7}}
	gh.comments[7] = []github.Comment{{ID: 1, Body: DefaultKeyword, CreatedAt: now.Add(-time.Hour)}}

	b := newTestBot(gh, &echoGenerator{}, now)

	state, err := b.Poll(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, now, state["acme/docs"])
	assert.Equal(t, []time.Time{now}, gh.sinces)
	assert.Empty(t, gh.posted, "comments older than the first scan are ignored")
}

func TestPollSummarizes(t *testing.T) {
	last := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(20 * time.Second)

	gh := newFakeGitHub()
	gh.prs["acme/docs"] = []github.PullRequest{{Number: 7}, {Number: 8}}
	gh.comments[7] = []github.Comment{
		{ID: 1, Body: "looks good", CreatedAt: last.Add(time.Second)},
		{ID: 2, Body: "  " + DefaultKeyword + "\n", CreatedAt: last.Add(2 * time.Second)},
		{ID: 3, Body: DefaultKeyword, CreatedAt: last.Add(3 * time.Second)},
	}
	gh.diffs[7] = fileDiff("a.go", 10) + fileDiff("b.go", 10)

	gen := &echoGenerator{}
	b := newTestBot(gh, gen, now)

	state, err := b.Poll(context.Background(), ScanState{"acme/docs": last})
	require.NoError(t, err)

	assert.Equal(t, now, state["acme/docs"])
	assert.Equal(t, []int64{2}, gh.reactions, "one summary per pull request per scan")
	require.Len(t, gh.posted[7], 1)
	assert.Equal(t, summaryHeader+"summary 1", gh.posted[7][0])
	assert.Empty(t, gh.posted[8])
}

func TestPollKeepsStateOnFailure(t *testing.T) {
	last := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	gh := newFakeGitHub()
	gh.listErr = errors.New("connection refused")

	b := newTestBot(gh, &echoGenerator{}, last.Add(time.Minute))

	prev := ScanState{"acme/docs": last}
	state, err := b.Poll(context.Background(), prev)
	require.Error(t, err)

	assert.Equal(t, last, state["acme/docs"])
	assert.Equal(t, last, prev["acme/docs"], "input state is not modified")
}

func TestSummarize(t *testing.T) {
	t.Run("segments then final", func(t *testing.T) {
		gen := &echoGenerator{}
		b := New(newFakeGitHub(), gen, Options{SegmentChars: 120})

		summary, err := b.summarize(context.Background(), fileDiff("a.go", 80)+fileDiff("b.go", 80)+fileDiff("c.go", 80))
		require.NoError(t, err)

		// three segments plus the final pass
		assert.Equal(t, 4, gen.calls)
		assert.Equal(t, "summary 4", summary)
	})

	t.Run("too large", func(t *testing.T) {
		gen := &echoGenerator{}
		b := New(newFakeGitHub(), gen, Options{MaxTokens: 10})

		summary, err := b.summarize(context.Background(), fileDiff("a.go", 400))
		require.NoError(t, err)

		assert.Zero(t, gen.calls)
		assert.True(t, strings.HasPrefix(summary, "The PR is too large to summarize"))
	})

	t.Run("empty diff", func(t *testing.T) {
		gen := &echoGenerator{}
		b := New(newFakeGitHub(), gen, Options{})

		summary, err := b.summarize(context.Background(), "")
		require.NoError(t, err)
		assert.Zero(t, gen.calls)
		assert.NotEmpty(t, summary)
	})
}

func TestSegmentDiffBounds(t *testing.T) {
	diff := fileDiff("a.go", 50) + fileDiff("b.go", 20000) + fileDiff("c.go", 50)

	segments, err := segmentDiff(diff, DefaultSegmentChars)
	require.NoError(t, err)

	assert.Equal(t, diff, strings.Join(segments, ""))
	for _, s := range segments {
		assert.LessOrEqual(t, len(s), DefaultSegmentChars)
	}
}

func TestStartStop(t *testing.T) {
	gh := newFakeGitHub()
	b := New(gh, &echoGenerator{}, Options{Repos: []string{"acme/docs"}, Interval: 10 * time.Millisecond})

	b.Start(context.Background())

	assert.Eventually(t, func() bool {
		gh.mu.Lock()
		defer gh.mu.Unlock()
		return gh.lists >= 2
	}, time.Second, 10*time.Millisecond)

	b.Stop()
}

// blocks until the caller's context is canceled
type stallingGenerator struct {
	started chan struct{}
	once    sync.Once
}

func (g *stallingGenerator) GenerateText(ctx context.Context, _ llm.TextGenerationRequest) (*llm.TextGenerationResponse, error) {
	g.once.Do(func() { close(g.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStopCancelsSummaryInFlight(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	gh := newFakeGitHub()
	gh.prs["acme/docs"] = []github.PullRequest{{Number: 7}}
	gh.comments[7] = []github.Comment{{ID: 1, Body: DefaultKeyword, CreatedAt: now}}
	gh.diffs[7] = fileDiff("a.go", 10)

	gen := &stallingGenerator{started: make(chan struct{})}
	b := newTestBot(gh, gen, now)

	b.Start(context.Background())

	select {
	case <-gen.started:
	case <-time.After(time.Second):
		t.Fatal("summary never started")
	}

	stopped := make(chan struct{})
	go func() {
		b.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop waited for the summary to finish")
	}

	gh.mu.Lock()
	defer gh.mu.Unlock()
	assert.Empty(t, gh.posted[7])
}

func TestStopWithoutStart(t *testing.T) {
	b := New(newFakeGitHub(), &echoGenerator{}, Options{Repos: []string{"acme/docs"}})
	b.Stop()
}
