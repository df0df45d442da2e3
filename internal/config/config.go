// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github-handler/internal/github"
	"github-handler/internal/syncer"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`
	DBURL    string `mapstructure:"DB_URL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	GithubToken      string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL     string        `mapstructure:"GITHUB_API_URL"`
	GithubGraphQLURL string        `mapstructure:"GITHUB_GRAPHQL_URL"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"`

	SearchLanguage       string           `mapstructure:"SEARCH_LANGUAGE"`
	SyncStartDate        string           `mapstructure:"SYNC_START_DATE"`
	SyncEndDate          string           `mapstructure:"SYNC_END_DATE"`
	SyncThresholdDate    string           `mapstructure:"SYNC_THRESHOLD_DATE"`
	SyncCoarseWindowDays int              `mapstructure:"SYNC_COARSE_WINDOW_DAYS"`
	SyncFineWindowDays   int              `mapstructure:"SYNC_FINE_WINDOW_DAYS"`
	SyncStrictCompletion bool             `mapstructure:"SYNC_STRICT_COMPLETION"`
	SyncInterval         time.Duration    `mapstructure:"SYNC_INTERVAL"`
	SyncPartition        syncer.Partition `mapstructure:"-"`

	CommitMaxPages          int           `mapstructure:"COMMIT_MAX_PAGES"`
	CommitPageDelay         time.Duration `mapstructure:"COMMIT_PAGE_DELAY"`
	ContributorsConcurrency int           `mapstructure:"CONTRIBUTORS_CONCURRENCY"`
}

// LoadConfig reads configuration from file and/or environment variables.
// Values bound to command-line flags through viper.BindPFlag take precedence.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("GITHUB_TOKEN", "")
	viper.SetDefault("GITHUB_API_URL", github.DefaultBaseURL)
	viper.SetDefault("GITHUB_GRAPHQL_URL", github.DefaultGraphQLURL)
	viper.SetDefault("HTTP_TIMEOUT", github.DefaultTimeout.String())
	viper.SetDefault("SEARCH_LANGUAGE", syncer.DefaultLanguage)
	viper.SetDefault("SYNC_START_DATE", syncer.DefaultStartDate)
	viper.SetDefault("SYNC_END_DATE", syncer.DefaultEndDate)
	viper.SetDefault("SYNC_THRESHOLD_DATE", syncer.DefaultThresholdDate)
	viper.SetDefault("SYNC_COARSE_WINDOW_DAYS", syncer.DefaultCoarseDays)
	viper.SetDefault("SYNC_FINE_WINDOW_DAYS", syncer.DefaultFineDays)
	viper.SetDefault("SYNC_STRICT_COMPLETION", false)
	viper.SetDefault("SYNC_INTERVAL", "0s")
	viper.SetDefault("COMMIT_MAX_PAGES", github.DefaultMaxCommitPages)
	viper.SetDefault("COMMIT_PAGE_DELAY", github.DefaultCommitPageDelay.String())
	viper.SetDefault("CONTRIBUTORS_CONCURRENCY", syncer.DefaultContributorConcurrency)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	partition, err := syncer.ParsePartition(
		cfg.SyncStartDate, cfg.SyncEndDate, cfg.SyncThresholdDate,
		cfg.SyncCoarseWindowDays, cfg.SyncFineWindowDays,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_* configuration: %w", err)
	}
	cfg.SyncPartition = partition

	if cfg.CommitMaxPages <= 0 {
		return nil, errors.New("COMMIT_MAX_PAGES must be positive")
	}
	if cfg.CommitPageDelay < 0 {
		return nil, errors.New("COMMIT_PAGE_DELAY must not be negative")
	}

	return &cfg, nil
}

// RequireDatabase validates the fields needed by commands that touch storage.
func (c *Config) RequireDatabase() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	return nil
}

// GithubOptions returns the client options described by the configuration.
func (c *Config) GithubOptions() github.Options {
	return github.Options{
		BaseURL:         c.GithubAPIURL,
		GraphQLURL:      c.GithubGraphQLURL,
		Timeout:         c.HTTPTimeout,
		MaxCommitPages:  c.CommitMaxPages,
		CommitPageDelay: c.CommitPageDelay,
	}
}

// SyncerOptions returns the historical sync options described by the configuration.
func (c *Config) SyncerOptions() syncer.Options {
	return syncer.Options{
		Language:         c.SearchLanguage,
		Partition:        c.SyncPartition,
		StrictCompletion: c.SyncStrictCompletion,
		Interval:         c.SyncInterval,
	}
}
