package prbot

import (
	"context"
	"maps"
	"strings"
	"time"

	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/logger"
)

func New(client GitHub, generator llm.TextGenerator, opts Options) *Bot {
	if opts.Keyword == "" {
		opts.Keyword = DefaultKeyword
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	if opts.SegmentChars <= 0 {
		opts.SegmentChars = DefaultSegmentChars
	}

	return &Bot{
		gh:        client,
		generator: generator,
		opts:      opts,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// scans every repository once. comments are considered when they are newer
// than the repository's entry in state; a repository seen for the first time
// only picks up comments from now on. returns the updated state, a repository
// whose scan failed keeps its previous entry.
func (b *Bot) Poll(ctx context.Context, state ScanState) (ScanState, error) {
	next := maps.Clone(state)
	if next == nil {
		next = ScanState{}
	}

	var firstErr error

	for _, repo := range b.opts.Repos {
		now := b.now()

		since, ok := state[repo]
		if !ok {
			since = now
		}

		if err := b.scanRepo(ctx, repo, since); err != nil {
			logger.ErrorErr(err, "failed to scan repository", "repo", repo)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		next[repo] = now
	}

	return next, firstErr
}

func (b *Bot) scanRepo(ctx context.Context, repo string, since time.Time) error {
	owner, name, err := github.ParseRepo(repo)
	if err != nil {
		return err
	}

	prs, err := b.gh.OpenPullRequests(ctx, owner, name)
	if err != nil {
		return err
	}

	logger.Debug("scanning pull requests", "repo", repo, "count", len(prs), "since", since)

	for _, pr := range prs {
		comments, err := b.gh.CommentsSince(ctx, owner, name, pr.Number, since)
		if err != nil {
			return err
		}

		for _, cm := range comments {
			if strings.TrimSpace(cm.Body) != b.opts.Keyword {
				continue
			}

			if err := b.gh.ReactToComment(ctx, owner, name, cm.ID, "+1"); err != nil {
				logger.Warn("failed to react to comment", "repo", repo, "comment_id", cm.ID, "error", err)
			}

			if err := b.reply(ctx, owner, name, pr.Number); err != nil {
				logger.ErrorErr(err, "failed to summarize pull request", "repo", repo, "pr", pr.Number)
				continue
			}

			// one summary per pull request per scan
			break
		}
	}

	return nil
}

func (b *Bot) reply(ctx context.Context, owner, repo string, number int) error {
	diff, err := b.gh.PullRequestDiff(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	summary, err := b.summarize(ctx, diff)
	if err != nil {
		return err
	}

	if err := b.gh.CreateComment(ctx, owner, repo, number, summaryHeader+summary); err != nil {
		return err
	}

	logger.Info("posted pull request summary", "repo", owner+"/"+repo, "pr", number)

	return nil
}

// runs the poll loop in the background until Stop or ctx is done
func (b *Bot) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)

	go b.Run(ctx)
	logger.Info("pull request bot started", "repos", b.opts.Repos, "interval", b.opts.Interval)
}

// stops the loop and cancels any summary in flight
func (b *Bot) Stop() {
	if b.cancel == nil {
		return
	}

	close(b.stopCh)
	b.cancel()
	<-b.done
	logger.Info("pull request bot stopped")
}

// polls until Stop is called or ctx is done, threading the scan state
// through each pass
func (b *Bot) Run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	state := ScanState{}

	for {
		var err error
		state, err = b.Poll(ctx, state)
		if err != nil {
			logger.Warn("pull request scan incomplete", "error", err)
		}

		select {
		case <-ticker.C:
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
