// internal/syncer/contributors.go
package syncer

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	custom_errors "github-handler/internal/errors"
	"github-handler/internal/model"
)

// DefaultContributorConcurrency is the number of repositories aggregated in parallel.
const DefaultContributorConcurrency = 5

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

func (r RepoIdentifier) String() string { return r.Owner + "/" + r.Name }

// ContributorAggregator ranks the commit authors of one repository.
type ContributorAggregator interface {
	AggregateContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error)
}

// RepoContributors is the aggregation result for one repository.
type RepoContributors struct {
	Repo         string              `json:"repo"`
	Contributors []model.Contributor `json:"contributors"`
}

// AggregateAll aggregates contributors for each repository, at most concurrency at a time.
// Each repository is still paged sequentially. Results keep the order of repos.
func AggregateAll(ctx context.Context, agg ContributorAggregator, logger *slog.Logger, repos []RepoIdentifier, concurrency int) ([]RepoContributors, error) {
	if concurrency <= 0 {
		concurrency = DefaultContributorConcurrency
	}
	results := make([]RepoContributors, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, repoID := range repos {
		i, repoID := i, repoID
		g.Go(func() error {
			contributors, err := agg.AggregateContributors(gctx, repoID.Owner, repoID.Name)
			if err != nil {
				logger.Error("Failed to aggregate contributors", "owner", repoID.Owner, "repo", repoID.Name, "error", err)
				return err
			}
			results[i] = RepoContributors{Repo: repoID.String(), Contributors: contributors}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParseRepoIdentifiers parses 'owner/name' strings.
func ParseRepoIdentifiers(repos []string) ([]RepoIdentifier, error) {
	var identifiers []RepoIdentifier
	for _, r := range repos {
		parts := strings.Split(r, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, &custom_errors.ErrInvalidRepoFormat{Repo: r}
		}
		identifiers = append(identifiers, RepoIdentifier{Owner: parts[0], Name: parts[1]})
	}
	return identifiers, nil
}
