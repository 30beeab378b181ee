package main

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/github"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/services"
)

// fetches pull request diffs
type diffSource interface {
	MergedPullRequests(ctx context.Context, owner, repo string, limit int) ([]github.PullRequest, error)
	PullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

// ingests the diffs of the most recently merged pull requests of a repository
func IngestPulls(ctx context.Context, cfg *config.Config, svc *services.Services, flags config.IngestFlags) error {
	client := github.NewClient(ctx, cfg.GitHub.Token)

	docs, err := pullDocuments(ctx, client, flags.Repo, flags.Limit)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		return fmt.Errorf("no merged pull requests with changes in %s", flags.Repo)
	}

	return ingest(ctx, cfg, svc, docs, flags.Clear)
}

// one document per merged pull request. the path is the diff URL of the
// pull request so search results point back at it and the diff splitter
// picks it up.
func pullDocuments(ctx context.Context, client diffSource, repo string, limit int) ([]chunker.Document, error) {
	owner, name, err := github.ParseRepo(repo)
	if err != nil {
		return nil, err
	}

	logger.Info("listing merged pull requests", "repo", owner+"/"+name, "limit", limit)

	prs, err := client.MergedPullRequests(ctx, owner, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	progress := newProgress("fetching diffs")
	progress.Start(len(prs))
	defer progress.Finish()

	docs := make([]chunker.Document, 0, len(prs))

	for _, pr := range prs {
		diff, err := client.PullRequestDiff(ctx, owner, name, pr.Number)
		progress.Increment()

		if err != nil {
			logger.Warn("skipping pull request", "pr", pr.Number, "error", err)
			continue
		}

		if strings.TrimSpace(diff) == "" {
			continue
		}

		docs = append(docs, chunker.Document{
			Path:    pr.URL + ".diff",
			Content: diff,
		})
	}

	return docs, nil
}
