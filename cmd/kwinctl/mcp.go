package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kwinctl/kwinctl/internal/config"
	"github.com/kwinctl/kwinctl/internal/mcp"
	"github.com/kwinctl/kwinctl/internal/session"
)

func runMCP(argv []string) int {
	if len(argv) == 0 {
		printMCPUsage(os.Stdout)
		return 0
	}
	switch argv[0] {
	case "serve":
		return runMCPServe()
	case "-h", "--help", "help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown mcp subcommand '%s'\n", argv[0])
		printMCPUsage(os.Stderr)
		return 1
	}
}

func runMCPServe() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	// stdout carries the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	server := mcp.NewServer(cfg, session.DetectKDE5(), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP server", "transport", "stdio")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kwinctl mcp serve")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Start an MCP server on stdio exposing window control tools.")
}
