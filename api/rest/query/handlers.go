package query

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
)

// QueryHandler godoc
// @Summary Answer a question
// @Description Retrieve the closest documentation sections and answer the question with them
// @Tags query
// @Accept json
// @Produce json
// @Param request body Request true "Question"
// @Success 200 {object} AnswerResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/query [post]
func QueryHandler(answerer Answerer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindQuery(c)
		if !ok {
			return
		}

		answer, err := answerer.Answer(c.Request.Context(), q)
		if err != nil {
			errors.InternalError(c, "failed to answer query", err)
			return
		}

		logger.Debug("answered query",
			"sections", len(answer.Sections),
			"cached", answer.Cached,
			"fallback", answer.Fallback,
		)

		c.JSON(http.StatusOK, AnswerResponse{Result: answer.Text})
	}
}

// SearchHandler godoc
// @Summary Search documentation sections
// @Description Return the closest documentation sections without generating an answer
// @Tags query
// @Accept json
// @Produce json
// @Param request body Request true "Question"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/search [post]
func SearchHandler(answerer Answerer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindQuery(c)
		if !ok {
			return
		}

		sections, err := answerer.Search(c.Request.Context(), q)
		if err != nil {
			errors.InternalError(c, "failed to search sections", err)
			return
		}

		if sections == nil {
			sections = []string{}
		}

		c.JSON(http.StatusOK, SearchResponse{Result: sections})
	}
}

func bindQuery(c *gin.Context) (string, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.ValidationError(c, err)
		return "", false
	}

	q := strings.TrimSpace(req.Query)
	if q == "" {
		errors.ValidationError(c, fmt.Errorf("validation failed: query is blank"))
		return "", false
	}

	return q, true
}
