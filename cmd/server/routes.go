package main

import (
	"time"

	"codeberg.org/askdocs/server/api/rest/health"
	"codeberg.org/askdocs/server/api/rest/query"
	"codeberg.org/askdocs/server/api/websocket"
	"codeberg.org/askdocs/server/internal/ratelimit"
	ws "codeberg.org/askdocs/server/internal/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config.Server.CORSOrigins))
	router.GET("/health", health.Handler)

	// query limits are shared across instances when redis is available
	var redisClient *redis.Client
	if server.cache != nil {
		redisClient = server.cache.Client()
	}

	// an empty rate turns the query limiter off
	var queryMiddleware []gin.HandlerFunc
	if rate := server.config.Query.RateLimit; rate != "" {
		limit, err := ratelimit.Middleware(rate, redisClient)
		if err != nil {
			return err
		}
		queryMiddleware = append(queryMiddleware, limit)
	}

	v1 := router.Group("/api/v1")

	{
		v1.GET("/status", health.StatusHandler(server.services.Store.Identity()))
		v1.GET("/ready", health.ReadyHandler(server.services.Store))

		query.RegisterRoutes(v1, server.agent, queryMiddleware...)
		websocket.RegisterRoutes(v1, server.hub, ws.OriginChecker(server.config.Server.CORSOrigins, server.config.IsProduction()))
	}

	return nil
}

func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
