// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github-handler/internal/database"
	custom_errors "github-handler/internal/errors"
	"github-handler/internal/github"
	"github-handler/internal/model"
)

// DefaultLanguage is the language filter applied to repository searches.
const DefaultLanguage = "rust"

// RepositorySearcher runs one page of the GraphQL repository search.
type RepositorySearcher interface {
	SearchRepositories(ctx context.Context, query string, cursor *string) (*github.SearchPage, error)
}

// Options tunes a Syncer.
type Options struct {
	Language  string
	Partition Partition
	// StrictCompletion records windows whose pagination ended early as unsuccessful,
	// so the next run retries them. By default every finished loop counts as success.
	StrictCompletion bool
	// Interval re-runs the full sync periodically from Start; zero runs it once.
	Interval time.Duration
}

// Syncer orchestrates the historical repository sync.
type Syncer struct {
	store     database.Querier
	searcher  RepositorySearcher
	progress  *ProgressTracker
	logger    *slog.Logger
	language  string
	partition Partition
	strict    bool
	interval  time.Duration
	newID     func() uuid.UUID
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(store database.Querier, searcher RepositorySearcher, logger *slog.Logger, opts Options) (*Syncer, error) {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if err := opts.Partition.Validate(); err != nil {
		return nil, err
	}

	return &Syncer{
		store:     store,
		searcher:  searcher,
		progress:  NewProgressTracker(store),
		logger:    logger,
		language:  opts.Language,
		partition: opts.Partition,
		strict:    opts.StrictCompletion,
		interval:  opts.Interval,
		newID:     uuid.New,
	}, nil
}

// Start runs the full sync and, when an interval is configured, repeats it until ctx is done.
// Windows left incomplete by one pass are picked up by the next.
func (s *Syncer) Start(ctx context.Context) error {
	if err := s.RunFullSync(ctx); err != nil || s.interval <= 0 {
		return err
	}

	s.logger.Info("Scheduling periodic sync", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunFullSync(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return nil
		}
	}
}

// RunFullSync syncs every window of the partition in order, halting on the first hard error.
func (s *Syncer) RunFullSync(ctx context.Context) error {
	windows := s.partition.Windows()
	s.logger.Info("Starting full sync",
		"start", s.partition.Start.Format(model.DateLayout),
		"end", s.partition.End.Format(model.DateLayout),
		"windows", len(windows),
	)

	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SyncWindow(ctx, w); err != nil {
			return fmt.Errorf("sync window %s..%s: %w", w.StartDate(), w.EndDate(), err)
		}
	}

	s.logger.Info("Full sync finished")
	return nil
}

// SyncWindow pages through the search results of one window and stores them.
// It is a no-op for windows already recorded as successful. Only storage failures and
// cancellation are returned; request and response failures end the window early.
func (s *Syncer) SyncWindow(ctx context.Context, w model.Window) error {
	if !w.End.After(w.Start) {
		return custom_errors.ErrInvalidWindow
	}
	logger := s.logger.With("window_start", w.StartDate(), "window_end", w.EndDate())

	done, err := s.progress.IsComplete(ctx, w)
	if err != nil {
		return fmt.Errorf("load sync status: %w", err)
	}
	if done {
		logger.Debug("Window already synced, skipping")
		return nil
	}

	logger.Info("Syncing window")
	exhausted, err := s.syncPages(ctx, logger, w)
	if err != nil {
		return err
	}

	success := exhausted || !s.strict
	if !exhausted {
		logger.Warn("Window ended before the last page", "recorded_as_success", success)
	}
	if err := s.progress.RecordStatus(ctx, w, success); err != nil {
		return fmt.Errorf("save sync status: %w", err)
	}
	return nil
}

// syncPages follows the search cursor until the last page. It reports whether the
// results were exhausted; false means a request or response failure cut the loop short.
func (s *Syncer) syncPages(ctx context.Context, logger *slog.Logger, w model.Window) (bool, error) {
	query := github.SearchQuery(s.language, w)
	var cursor *string

	for page := 1; ; page++ {
		result, err := s.searcher.SearchRepositories(ctx, query, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			if errors.Is(err, custom_errors.ErrMissingData) {
				logger.Warn("Search response contained no data", "page", page, "error", err)
			} else {
				logger.Error("Search request failed", "page", page, "error", err)
			}
			return false, nil
		}

		programs := s.toPrograms(result.Repositories)
		if err := s.store.SavePrograms(ctx, programs); err != nil {
			return false, fmt.Errorf("save programs: %w", err)
		}
		logger.Info("Saved search page", "page", page, "programs", len(programs))

		if !result.HasNextPage {
			return true, nil
		}
		if result.EndCursor == nil {
			logger.Warn("Search reported a next page without a cursor", "page", page)
			return false, nil
		}
		cursor = result.EndCursor
	}
}

// toPrograms translates search results to new Program records.
func (s *Syncer) toPrograms(repos []model.RepositoryNode) []model.Program {
	programs := make([]model.Program, 0, len(repos))
	for _, r := range repos {
		programs = append(programs, model.Program{
			ID:        s.newID(),
			GithubURL: r.URL,
			Name:      r.Name,
		})
	}
	return programs
}
