package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/logger"
)

// @title AskDocs API
// @version 1.0
// @description Question answering over a documentation corpus
// @description
// @description Features:
// @description - Answers questions from the most similar documentation sections
// @description - Raw similarity search over the corpus
// @description - Streaming answers over WebSockets
// @description - Pull request summaries on request

// @contact.name API Support
// @contact.url https://codeberg.org/askdocs/server

// @license.name GPL-3.0
// @license.url https://www.gnu.org/licenses/gpl-3.0.html

func main() {
	logger.Info("starting askdocs server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if _, err := config.ParseServerFlags(os.Args[1:], cfg); err != nil {
		logger.Fatal("failed to parse flags", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	if cfg.LogLevel != "" {
		logger.SetLevel(cfg.LogLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     srv.router,
		ReadTimeout: 15 * time.Second,
		// answers wait on the completion endpoint
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "store", srv.services.Store.Identity())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// start websocket hub
	go srv.hub.Run()

	// embed records left without a vector
	srv.filler.Start()

	if srv.bot != nil {
		srv.bot.Start(ctx)
	}

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	if srv.bot != nil {
		srv.bot.Stop()
	}

	srv.filler.Stop()

	// graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// let in-flight audit writes land before the store closes
	srv.agent.Wait()

	closeCache(srv.cache)

	srv.services.Close()

	logger.Info("server stopped")
}
