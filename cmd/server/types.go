package main

import (
	"codeberg.org/askdocs/server/internal/agent"
	"codeberg.org/askdocs/server/internal/cache"
	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/indexer"
	"codeberg.org/askdocs/server/internal/prbot"
	"codeberg.org/askdocs/server/internal/services"
	ws "codeberg.org/askdocs/server/internal/websocket"
	"github.com/gin-gonic/gin"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	services *services.Services
	agent    *agent.Agent
	// nil when REDIS_URL is unset
	cache   *cache.AnswerCache
	filler  *indexer.Filler
	// nil when no repositories are watched
	bot    *prbot.Bot
	hub    *ws.Hub
	router *gin.Engine
}
