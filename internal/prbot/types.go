package prbot

import (
	"context"
	"time"

	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/llm"
)

const (
	DefaultKeyword      = "askdocs:summary"
	DefaultInterval     = 20 * time.Second
	DefaultMaxTokens    = 100000
	DefaultSegmentChars = 8000

	summaryHeader = "## PR Summary\n"
)

// last scan time per repository ("owner/name")
type ScanState map[string]time.Time

// the GitHub calls the bot makes
type GitHub interface {
	OpenPullRequests(ctx context.Context, owner, repo string) ([]github.PullRequest, error)
	CommentsSince(ctx context.Context, owner, repo string, number int, since time.Time) ([]github.Comment, error)
	ReactToComment(ctx context.Context, owner, repo string, commentID int64, reaction string) error
	PullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
}

type Options struct {
	Repos        []string
	Keyword      string
	Interval     time.Duration
	MaxTokens    int
	SegmentChars int
}

type Bot struct {
	gh        GitHub
	generator llm.TextGenerator
	opts      Options
	now       func() time.Time

	stopCh chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}
