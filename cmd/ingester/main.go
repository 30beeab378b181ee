package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/askdocs/server/internal/config"
	"codeberg.org/askdocs/server/internal/indexer"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/services"
)

func usage() {
	fmt.Println("Usage: ingester <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  docs      - ingest documentation from markdown files")
	fmt.Println("  code      - ingest Go source files")
	fmt.Println("  pulls     - ingest diffs of merged pull requests")
	fmt.Println("  embed     - embed records that have no embedding yet")
	fmt.Println("\nOptions:")
	fmt.Println("  --path <path>              - directory to ingest from (docs, code)")
	fmt.Println("  --clear                    - clear existing records before ingesting")
	fmt.Println("  --repo <owner/name>        - repository to read pull requests from (pulls)")
	fmt.Println("  --limit <n>                - merged pull requests to ingest (pulls)")
	fmt.Println("  --max-content-length <n>   - characters sent to the embedder (embed)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "docs", "code", "pulls", "embed":
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	flags, err := config.ParseIngestFlags(command, os.Args[2:], cfg)
	if err != nil {
		logger.Fatal("failed to parse flags", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	if cfg.LogLevel != "" {
		logger.SetLevel(cfg.LogLevel)
	}

	// ctrl-c stops between batches, records already inserted stay
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := services.Initialize(ctx, cfg, indexer.WithProgress(newProgress("embedding")))
	if err != nil {
		logger.Fatal("failed to initialize services", "error", err)
	}

	defer svc.Close()

	logger.Info("connected to store", "store", svc.Store.Identity())

	switch command {
	case "docs", "code":
		err = IngestFiles(ctx, cfg, svc, command, flags)
	case "pulls":
		err = IngestPulls(ctx, cfg, svc, flags)
	case "embed":
		err = fill(ctx, cfg, svc)
	}

	if err != nil {
		svc.Close()
		logger.Fatal("failed to ingest "+command, "error", err)
	}

	logger.Info("ingestion finished", "command", command)
}
