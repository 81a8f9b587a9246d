package main

import (
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/portfolio-builder/internal/adapters/mcp"
	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
	"github.com/kirillkom/portfolio-builder/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the protocol, so logs go to stderr
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	kb, err := knowledge.Load(cfg.KnowledgeBasePath)
	if err != nil {
		logger.Error("knowledge_base_load_failed", "error", err)
		os.Exit(1)
	}
	engine := portfolio.NewEngine(kb, portfolio.RandomFromSeed(cfg.RandomSeed))

	logger.Info("mcp_serving_stdio", "version", version)
	if err := server.ServeStdio(mcpadapter.NewServer(engine, version)); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
