// cmd/service/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github-handler/internal/config"
	"github-handler/internal/database"
	"github-handler/internal/github"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd(&app{}).ExecuteContext(ctx)
}

// app carries the state shared by every subcommand once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// setup initializes the structured logger and loads configuration.
func (a *app) setup(cmd *cobra.Command) error {
	a.logLevel = new(slog.LevelVar)
	handler := slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.logLevel})
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, a.logLevel)
	a.cfg = cfg
	a.logger.Debug("Configuration loaded successfully")
	return nil
}

// openStore connects to DB_URL and applies pending migrations.
func (a *app) openStore(ctx context.Context) (database.Store, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, a.cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.logger.Info("Database connection established")

	if err := database.Migrate(a.cfg.DBURL); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	a.logger.Info("Database migrations applied successfully")
	return store, nil
}

func (a *app) githubClient() (*github.Client, error) {
	tokens := github.NewStaticTokenProvider(a.cfg.GithubToken, a.logger)
	client, err := github.NewClient(tokens, a.logger, a.cfg.GithubOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	if a.cfg.GithubToken == "" {
		a.logger.Warn("GITHUB_TOKEN is empty, requests are unauthenticated")
	}
	return client, nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
