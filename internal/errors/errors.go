package errors

import (
	"net/http"
	"strings"

	"codeberg.org/askdocs/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Handlers respond through the helpers below. InternalError logs the full
// error with its category, the others only respond. Packages below the
// handlers return wrapped errors ("failed to ...: %w") and never respond.
// Background work (audit writes, embedding fills, PR scans) logs and goes on.

func respond(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// 404 for a named resource
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"
	if resource != "" {
		message = resource + " not found"
	}

	respond(c, http.StatusNotFound, CodeNotFound, message, "")
}

func BadRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = sanitizeError(err)
	}

	respond(c, http.StatusBadRequest, CodeBadRequest, orDefault(message, "invalid request"), details)
}

// 400 for a request body that failed binding or a blank query
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = sanitizeError(err)
		if text := err.Error(); strings.Contains(text, "binding") || strings.Contains(text, "validation") {
			message = "request validation failed"
		}
	}

	respond(c, http.StatusBadRequest, CodeValidationError, message, details)
}

// logs err server-side and responds 500
func InternalError(c *gin.Context, message string, err error) {
	message = orDefault(message, "an error occurred")
	info := classifyError(err)

	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"category", info.category,
	)

	respond(c, http.StatusInternalServerError, CodeServerError, message, info.sanitized)
}

func TooManyRequests(c *gin.Context, message string) {
	respond(c, http.StatusTooManyRequests, CodeTooManyRequests, orDefault(message, "too many requests"), "")
}

// 503 when a dependency is not reachable
func ServiceUnavailable(c *gin.Context, message string) {
	respond(c, http.StatusServiceUnavailable, CodeServiceUnavailable, orDefault(message, "service unavailable"), "")
}

// the client-safe message for err
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}
