package config

import (
	"flag"
	"io"
)

// command line overrides for cmd/server
type ServerFlags struct {
	Rebuild  bool
	DataPath string
	Port     string
}

// parses server flags and applies them over cfg
func ParseServerFlags(args []string, cfg *Config) (ServerFlags, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	rebuild := fs.Bool("rebuild", cfg.Ingest.Rebuild, "rebuild the corpus from the data path before serving")
	dataPath := fs.String("data-path", cfg.Ingest.DataPath, "directory to ingest on rebuild")
	port := fs.String("port", cfg.Server.Port, "port to listen on")

	if err := fs.Parse(args); err != nil {
		return ServerFlags{}, &ConfigError{Setting: "flags", Reason: err.Error()}
	}

	cfg.Ingest.Rebuild = *rebuild
	cfg.Ingest.DataPath = *dataPath
	cfg.Server.Port = *port

	return ServerFlags{Rebuild: *rebuild, DataPath: *dataPath, Port: *port}, nil
}

// flags shared by the ingester subcommands
type IngestFlags struct {
	Path  string
	Clear bool

	// pulls only
	Repo  string
	Limit int
}

// parses CLI flags for an ingester subcommand (docs, code, pulls, embed)
func ParseIngestFlags(command string, args []string, cfg *Config) (IngestFlags, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)

	var f IngestFlags

	switch command {
	case "docs", "code":
		fs.StringVar(&f.Path, "path", cfg.Ingest.DataPath, "path to the directory to ingest")
		fs.BoolVar(&f.Clear, "clear", false, "clear existing records before ingesting")
	case "pulls":
		fs.StringVar(&f.Repo, "repo", "", "repository as owner/name")
		fs.IntVar(&f.Limit, "limit", 50, "maximum number of merged pull requests to ingest")
		fs.BoolVar(&f.Clear, "clear", false, "clear existing records before ingesting")
	case "embed":
		fs.IntVar(&cfg.Ingest.MaxContentLength, "max-content-length", cfg.Ingest.MaxContentLength, "characters of path+content sent to the embedder")
	}

	if err := fs.Parse(args); err != nil {
		return IngestFlags{}, &ConfigError{Setting: command + " flags", Reason: err.Error()}
	}

	if command == "pulls" && f.Repo == "" {
		return IngestFlags{}, &ConfigError{Setting: "--repo", Reason: "required"}
	}

	return f, nil
}
