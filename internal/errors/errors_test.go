package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
		prod     string
	}{
		{"pg error", fmt.Errorf("failed to query: %w", &pgconn.PgError{Code: "42P01"}), CategoryDatabase, "database operation failed"},
		{"deadline", fmt.Errorf("failed to embed: %w", context.DeadlineExceeded), CategoryTimeout, "request timed out"},
		{"canceled", context.Canceled, CategoryTimeout, "request canceled"},
		{"dial", errors.New("dial tcp 127.0.0.1:5432: connect: refused"), CategoryNetwork, "connection error occurred"},
		{"sqlite", errors.New("sql: database is closed"), CategoryDatabase, "database operation failed"},
		{"provider", errors.New("openai API error (401): invalid api key"), CategoryProvider, "model provider request failed"},
		{"binding", errors.New("Key: 'Request.Query' Error:Field validation for 'Query' failed on the 'required' tag"), CategoryValidation, "validation failed"},
		{"redis", fmt.Errorf("failed to read cache: %w", redis.ErrClosed), CategoryCache, "cache operation failed"},
		{"no rows", fmt.Errorf("failed to load: %w", pgx.ErrNoRows), CategoryNotFound, "resource not found"},
		{"other", errors.New("boom"), CategoryUnknown, "an error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "production")
			info := classifyError(tt.err)
			assert.Equal(t, tt.category, info.category)
			assert.Equal(t, tt.prod, info.sanitized)

			t.Setenv("ENVIRONMENT", "development")
			assert.Equal(t, tt.err.Error(), classifyError(tt.err).sanitized)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	info := classifyError(nil)
	assert.Equal(t, CategoryUnknown, info.category)
	assert.Empty(t, info.sanitized)
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ENVIRONMENT", "production")

	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "", nil) }, http.StatusBadRequest, CodeBadRequest},
		{"validation", func(c *gin.Context) { ValidationError(c, errors.New("binding failed")) }, http.StatusBadRequest, CodeValidationError},
		{"not found", func(c *gin.Context) { NotFound(c, "table") }, http.StatusNotFound, CodeNotFound},
		{"internal", func(c *gin.Context) { InternalError(c, "failed", errors.New("sql broke")) }, http.StatusInternalServerError, CodeServerError},
		{"rate limit", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, CodeTooManyRequests},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "") }, http.StatusServiceUnavailable, CodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			tt.call(c)

			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
