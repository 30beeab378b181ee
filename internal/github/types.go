package github

import "time"

type PullRequest struct {
	Number   int
	Title    string
	URL      string
	MergedAt time.Time
}

type Comment struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}

const (
	// request timeout for the shared http client
	DefaultTimeout = 30 * time.Second

	perPage = 100
)
