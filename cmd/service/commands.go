// cmd/service/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github-handler/internal/api"
	"github-handler/internal/syncer"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "github-handler",
		Short:         "Ingest GitHub repositories and contributors into a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("db-url", "", "database URL (postgres://... or sqlite://path)")
	bindFlag(root.PersistentFlags().Lookup("log-level"), "LOG_LEVEL")
	bindFlag(root.PersistentFlags().Lookup("db-url"), "DB_URL")

	root.AddCommand(
		newSyncCmd(a),
		newContributorsCmd(a),
		newUserCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)
	return root
}

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the historical repository sync",
		Long: `Walks the configured date range window by window, searching GitHub for
repositories created in each window and storing them as programs.
Windows already recorded as successful are skipped, so an interrupted
sync resumes where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := a.githubClient()
			if err != nil {
				return err
			}
			appSyncer, err := syncer.NewSyncer(store, client, a.logger, a.cfg.SyncerOptions())
			if err != nil {
				return fmt.Errorf("failed to create syncer: %w", err)
			}

			if err := appSyncer.Start(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					a.logger.Info("Shutdown signal received. Sync stopped.")
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("language", "", "language filter for the repository search")
	cmd.Flags().Bool("strict", false, "record windows whose pagination ended early as unsuccessful")
	cmd.Flags().Duration("interval", 0, "repeat the full sync on this period")
	bindFlag(cmd.Flags().Lookup("language"), "SEARCH_LANGUAGE")
	bindFlag(cmd.Flags().Lookup("strict"), "SYNC_STRICT_COMPLETION")
	bindFlag(cmd.Flags().Lookup("interval"), "SYNC_INTERVAL")
	return cmd
}

func newContributorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contributors owner/repo [owner/repo...]",
		Short: "Print the ranked contributors of one or more repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := syncer.ParseRepoIdentifiers(args)
			if err != nil {
				return err
			}
			client, err := a.githubClient()
			if err != nil {
				return err
			}

			results, err := syncer.AggregateAll(cmd.Context(), client, a.logger, repos, a.cfg.ContributorsConcurrency)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().Int("concurrency", 0, "number of repositories aggregated in parallel")
	bindFlag(cmd.Flags().Lookup("concurrency"), "CONTRIBUTORS_CONCURRENCY")
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <login>",
		Short: "Print a GitHub user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.githubClient()
			if err != nil {
				return err
			}
			user, err := client.GetUserDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), user)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var withSync bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := a.githubClient()
			if err != nil {
				return err
			}

			var appSyncer *syncer.Syncer
			if withSync {
				appSyncer, err = syncer.NewSyncer(store, client, a.logger, a.cfg.SyncerOptions())
				if err != nil {
					return fmt.Errorf("failed to create syncer: %w", err)
				}
			}

			srv := &http.Server{
				Addr:              a.cfg.HTTPAddr,
				Handler:           api.NewRouter(store, client, client, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("HTTP server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if appSyncer != nil {
				g.Go(func() error {
					if err := appSyncer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
						return err
					}
					return nil
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().BoolVar(&withSync, "sync", false, "run the historical sync alongside the API")
	bindFlag(cmd.Flags().Lookup("addr"), "HTTP_ADDR")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return store.Close()
		},
	}
}

// bindFlag makes an explicitly set flag override the matching configuration key.
func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
