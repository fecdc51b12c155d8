// Command mcp-salaryrace runs the MCP tool server for salary comparisons.
// Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/config"
	"github.com/salaryrace/salaryrace-go/internal/mcpserver"
	"github.com/salaryrace/salaryrace-go/internal/observability"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// stdout carries the protocol, so logs go to stderr.
	logger := observability.InitStderrLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("unable to open database: %v", err)
	}
	defer st.Close()

	if cfg.AutoMigrate {
		if _, err := st.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	svc := compare.NewService(st,
		compare.WithDefaultCurrency(cfg.DefaultCurrency),
		compare.WithLogger(logger),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salaryrace",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, svc, cfg.BaseURL)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
