package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// wraps go-github with the handful of calls the bot and the ingester need
type Client struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// creates a client authenticated with a static personal access token
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		gh: gh.NewClient(tc),
		// stay well under the 5000/h authenticated limit
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// points the client at another API root (GitHub Enterprise, tests)
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	c.gh.BaseURL = u
	return c, nil
}

// splits "owner/name"
func ParseRepo(repo string) (string, string, error) {
	repo = strings.TrimSuffix(strings.TrimPrefix(repo, "https://github.com/"), "/")

	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", repo)
	}

	return owner, name, nil
}

func (c *Client) OpenPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []PullRequest

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			out = append(out, toPullRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// most recently updated merged pull requests, at most limit of them
func (c *Client) MergedPullRequests(ctx context.Context, owner, repo string, limit int) ([]PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []PullRequest

	for len(out) < limit {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			if pr.MergedAt == nil {
				continue
			}

			out = append(out, toPullRequest(pr))
			if len(out) == limit {
				break
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// unified diff of a pull request
func (c *Client) PullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	diff, _, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get diff for #%d: %w", number, err)
	}

	return diff, nil
}

// issue comments on a pull request created or updated after since
func (c *Client) CommentsSince(ctx context.Context, owner, repo string, number int, since time.Time) ([]Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		Since:       &since,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []Comment

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for #%d: %w", number, err)
		}

		for _, cm := range comments {
			out = append(out, Comment{
				ID:        cm.GetID(),
				Body:      cm.GetBody(),
				CreatedAt: cm.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// adds a reaction ("+1", "eyes", ...) to an issue comment
func (c *Client) ReactToComment(ctx context.Context, owner, repo string, commentID int64, reaction string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, _, err := c.gh.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, reaction); err != nil {
		return fmt.Errorf("failed to react to comment %d: %w", commentID, err)
	}

	return nil
}

func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.Ptr(body)}); err != nil {
		return fmt.Errorf("failed to comment on #%d: %w", number, err)
	}

	return nil
}

func toPullRequest(pr *gh.PullRequest) PullRequest {
	return PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		URL:      pr.GetHTMLURL(),
		MergedAt: pr.GetMergedAt().Time,
	}
}
