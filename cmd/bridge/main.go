package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tobilg/otlp-langfuse-bridge/internal/config"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	"github.com/tobilg/otlp-langfuse-bridge/internal/server"
	"github.com/tobilg/otlp-langfuse-bridge/internal/version"
)

// shutdownTimeout bounds session finalization and the final sink flush
const shutdownTimeout = 5 * time.Second

func main() {
	// No arguments: start the bridge (default behavior)
	if len(os.Args) < 2 {
		runServer()
		return
	}

	switch os.Args[1] {
	case "serve":
		runServer()
	case "-v", "--version", "version":
		printVersion()
	case "-h", "--help", "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("OTLP Langfuse Bridge %s\n", version.Version)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Date: %s\n", version.BuildDate)
}

func printHelp() {
	fmt.Print(`OTLP Langfuse Bridge - projects Claude Code telemetry into Langfuse

Usage: otlp-langfuse-bridge [command] [options]

Commands:
  serve     Start the OTLP receiver (default if no command)

Options:
  -h, --help       Show this help message
  -v, --version    Show version information

Environment Variables:
  OTLP_RECEIVER_PORT    Listen port (default: 4318)
  LOG_LEVEL             Log level: debug, info, warn, error (default: info)
  SESSION_TIMEOUT       Session idle timeout in ms (default: 3600000)
  MAX_REQUEST_SIZE      Ingress body cap in bytes (default: 10485760)
  LANGFUSE_HOST         Langfuse base URL (default: https://cloud.langfuse.com)
  LANGFUSE_PUBLIC_KEY   Langfuse public key
  LANGFUSE_SECRET_KEY   Langfuse secret key
  API_KEY               Optional bearer token required on ingress if set
`)
}

func runServer() {
	cfg := config.Load()

	// Initialize structured logging (text format for development readability)
	logger.InitializeText(logger.ParseLevel(cfg.LogLevel))
	log := logger.Logger()

	srv := server.New(cfg)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("Received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during shutdown", "error", err)
		}
		os.Exit(0)
	}()

	log.Info("OTLP Langfuse Bridge starting",
		"otlp_port", cfg.OTLPPort,
		"langfuse_host", cfg.LangfuseHost,
		"session_timeout", cfg.SessionTimeout,
	)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		os.Exit(1)
	}
}
