package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
)

const (
	serviceName = "askdocs"
	version     = "1.0.0"
)

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: version,
	})
}

// StatusHandler godoc
// @Summary Corpus identity
// @Description Name of the database and table answers are served from
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/v1/status [get]
func StatusHandler(identity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, StatusResponse{Result: identity})
	}
}

// reports ready once the store answers, with the number of stored records
func ReadyHandler(store RecordCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		n, err := store.CountRecords(ctx)
		if err != nil {
			logger.ErrorErr(err, "readiness check failed")
			errors.ServiceUnavailable(c, "store is not reachable")
			return
		}

		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Records: n})
	}
}
