package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
)

const keyPrefix = "askdocs:ratelimit"

// per-client-IP limiter middleware. rate uses the "<limit>-<period>" format
// ("30-M", "1000-H"). counters live in redis when a client is given so the
// limit holds across replicas, in process memory otherwise.
func Middleware(rate string, client *redis.Client) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", rate, err)
	}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix})
	}

	return mgin.NewMiddleware(
		limiter.New(store, r),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("rate limit reached", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "query rate limit reached, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open, the limiter store is not worth an outage
			logger.ErrorErr(err, "rate limiter failed", "path", c.Request.URL.Path)
			c.Next()
		}),
	), nil
}
