package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/summarizer/internal/adapters/mcp"
	"github.com/kirillkom/summarizer/internal/bootstrap"
	"github.com/kirillkom/summarizer/internal/config"
	"github.com/kirillkom/summarizer/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	// stdout carries the protocol, so every log line goes to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "summarizer-mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}

	srv := mcpadapter.NewServer(app.SummarizeUC, logger).MCPServer(cfg.MCPServerName, version)
	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(os.Stderr, "mcp: ", log.LstdFlags))

	logger.Info("mcp_serving_stdio", "name", cfg.MCPServerName)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
