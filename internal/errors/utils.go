package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// standard error codes
const (
	CodeNotFound           = "not_found"
	CodeValidationError    = "validation_error"
	CodeServerError        = "server_error"
	CodeBadRequest         = "bad_request"
	CodeTooManyRequests    = "too_many_requests"
	CodeServiceUnavailable = "service_unavailable"
)

// error categories, logged with every internal error
const (
	CategoryDatabase   = "database"
	CategoryCache      = "cache"
	CategoryProvider   = "provider"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

// one classification rule. typed matches run against the error chain,
// keywords against the lowercased message.
type rule struct {
	category string
	public   string
	is       func(err error) bool
	keywords []string
}

var rules = []rule{
	{category: CategoryDatabase, public: "database operation failed", is: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr)
	}},
	{category: CategoryNotFound, public: "resource not found", is: func(err error) bool {
		return errors.Is(err, pgx.ErrNoRows)
	}},
	{category: CategoryTimeout, public: "request timed out", is: func(err error) bool {
		return errors.Is(err, context.DeadlineExceeded)
	}},
	{category: CategoryTimeout, public: "request canceled", is: func(err error) bool {
		return errors.Is(err, context.Canceled)
	}},
	{category: CategoryCache, public: "cache operation failed", is: func(err error) bool {
		return errors.Is(err, redis.ErrClosed)
	}, keywords: []string{"redis"}},
	{category: CategoryTimeout, public: "request timed out", keywords: []string{"timeout", "deadline"}},
	{category: CategoryNotFound, public: "resource not found", keywords: []string{"not found", "no rows"}},
	// sqlite, databend and other non-pgx stores
	{category: CategoryDatabase, public: "database operation failed", keywords: []string{"database", "sql", "postgres", "pgx", "warehouse"}},
	{category: CategoryNetwork, public: "connection error occurred", keywords: []string{"connection", "network", "dial"}},
	// embedding and completion endpoints
	{category: CategoryProvider, public: "model provider request failed", keywords: []string{"openai", "anthropic", "embedding", "completion"}},
	{category: CategoryValidation, public: "validation failed", keywords: []string{"validation", "binding", "invalid", "required"}},
}

// analyzes an error and returns its category and the message safe to show
// to clients. outside production the full error is shown.
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	info := ErrorInfo{category: CategoryUnknown, sanitized: "an error occurred"}
	msg := strings.ToLower(err.Error())

	for _, r := range rules {
		if r.matches(err, msg) {
			info = ErrorInfo{category: r.category, sanitized: r.public}
			break
		}
	}

	if os.Getenv("ENVIRONMENT") != "production" {
		info.sanitized = err.Error()
	}

	return info
}

func (r rule) matches(err error, msg string) bool {
	if r.is != nil && r.is(err) {
		return true
	}

	for _, k := range r.keywords {
		if strings.Contains(msg, k) {
			return true
		}
	}

	return false
}
