// Package main is the entry point of the symptom triage MCP server. It needs
// no external services: sessions are in memory and feedback goes to SQLite.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/symptom-triage-server/internal/config"
	"github.com/symptom-triage-server/internal/mcp"
	"github.com/symptom-triage-server/internal/setup"
)

func main() {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.NewCLI(os.Stdout).Run(os.Args[2:]); err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg := config.LoadLiteConfig()
	log.Printf("Data directory: %s", cfg.DataDir)

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("MCP server failed: %v", err)
		server.Close()
		os.Exit(1)
	}

	log.Println("Symptom triage MCP server stopped")
}
