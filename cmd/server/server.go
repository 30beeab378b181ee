package main

import (
	"context"
	"fmt"

	"codeberg.org/askdocs/server/internal/cache"
	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/indexer"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/services"
	ws "codeberg.org/askdocs/server/internal/websocket"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	svc, err := services.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	answerCache, err := newCache(ctx, cfg, svc.Store.Identity())
	if err != nil {
		// the cache is optional, answers are still served without it
		logger.ErrorErr(err, "continuing without answer cache")
		answerCache = nil
	}

	if cfg.Ingest.Rebuild {
		if err := rebuildCorpus(ctx, cfg, svc, answerCache); err != nil {
			closeCache(answerCache)
			svc.Close()
			return nil, fmt.Errorf("failed to rebuild corpus: %w", err)
		}
	}

	answerAgent, err := newAgent(cfg, svc, answerCache)
	if err != nil {
		closeCache(answerCache)
		svc.Close()
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware())

	server := &Server{
		config:   cfg,
		services: svc,
		agent:    answerAgent,
		cache:    answerCache,
		filler:   indexer.NewFiller(svc.Indexer, cfg.Ingest.MaxContentLength, cfg.Ingest.FillInterval.Duration),
		bot:      newBot(ctx, cfg, svc),
		hub:      ws.NewHub(answerAgent),
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		closeCache(answerCache)
		svc.Close()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return server, nil
}

func closeCache(c *cache.AnswerCache) {
	if c != nil {
		c.Close() //nolint:errcheck,gosec // best-effort cleanup
	}
}
