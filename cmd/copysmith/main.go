// copysmith is the service binary: webhook-driven content generation for
// issue-tracker workspaces.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"copysmith/pkg/agent"
	"copysmith/pkg/agent/middleware/metrics"
	"copysmith/pkg/collector"
	"copysmith/pkg/config"
	"copysmith/pkg/kvstore"
	"copysmith/pkg/logx"
	"copysmith/pkg/memory"
	"copysmith/pkg/oauth"
	"copysmith/pkg/webapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "copysmith: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "copysmith.yaml", "path to config file")
	release := flag.Bool("release", false, "run gin in release mode")
	flag.Parse()

	// Optional .env for local development.
	_ = godotenv.Load()

	logger := logx.NewLogger("main")

	if err := config.LoadConfig(*configPath); err != nil {
		return err
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	if err := loadSecrets(logger); err != nil {
		return err
	}

	store, err := kvstore.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	llmClient, err := agent.NewClient(&cfg, metrics.NewPrometheusRecorder())
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	logger.Info("Using model %s", llmClient.GetModelName())

	srv := webapi.NewServer(cfg,
		oauth.NewManager(store),
		memory.NewPrefStore(store),
		collector.New(cfg.Collector),
		llmClient)

	if *release {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Received %s, shutting down", sig)
	}

	// In-flight sessions get a grace period to finish their emissions.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Shutdown complete")
	return nil
}

// loadSecrets decrypts the secrets file when present. The password comes
// from COPYSMITH_SECRETS_PASSWORD or an interactive prompt; with neither,
// secrets fall back to plain environment variables.
func loadSecrets(logger *logx.Logger) error {
	if !config.SecretsFileExists(".") {
		logger.Info("No secrets file, using environment variables")
		return nil
	}

	password := os.Getenv("COPYSMITH_SECRETS_PASSWORD")
	if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Secrets password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}
	if password == "" {
		return fmt.Errorf("secrets file present but no password available")
	}

	secrets, err := config.DecryptSecretsFile(".", password)
	if err != nil {
		return err
	}
	config.SetDecryptedSecrets(secrets)
	logger.Info("Loaded %d secrets from encrypted file", len(secrets))
	return nil
}
