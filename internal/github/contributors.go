// internal/github/contributors.go
package github

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/go-github/v62/github"

	"github-handler/internal/model"
)

// commitAuthor is the platform identity attached to a commit, if any.
type commitAuthor struct {
	ID        int64
	Login     string
	AvatarURL string
}

// commitEntry is the part of a commit the aggregator looks at.
type commitEntry struct {
	Author *commitAuthor
	Email  *string
}

// contributorAccumulator counts commits per author ID, remembering first-seen order.
type contributorAccumulator struct {
	index        map[int64]int
	contributors []model.Contributor
}

func newContributorAccumulator() *contributorAccumulator {
	return &contributorAccumulator{index: make(map[int64]int)}
}

func (a *contributorAccumulator) add(e commitEntry) {
	if e.Author == nil {
		return
	}
	if i, ok := a.index[e.Author.ID]; ok {
		c := &a.contributors[i]
		c.Contributions++
		if c.Email == nil && e.Email != nil {
			c.Email = e.Email
		}
		return
	}
	a.index[e.Author.ID] = len(a.contributors)
	a.contributors = append(a.contributors, model.Contributor{
		ID:            e.Author.ID,
		Login:         e.Author.Login,
		AvatarURL:     e.Author.AvatarURL,
		Contributions: 1,
		Email:         e.Email,
	})
}

func (a *contributorAccumulator) len() int { return len(a.contributors) }

// result returns the contributors ordered by descending contributions.
// Ties keep the order in which authors were first seen.
func (a *contributorAccumulator) result() []model.Contributor {
	out := slices.Clone(a.contributors)
	slices.SortStableFunc(out, func(x, y model.Contributor) int {
		return cmp.Compare(y.Contributions, x.Contributions)
	})
	return out
}

// AggregateContributors walks the commit history of owner/repo and ranks its authors by commit count.
// Transport, status and decode failures end pagination early and the partial result is returned
// without error; only context cancellation is reported.
func (c *Client) AggregateContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error) {
	logger := c.logger.With("owner", owner, "repo", repo)
	logger.Info("Aggregating contributors from commit history")

	acc := newContributorAccumulator()
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: commitsPerPage},
	}

	for page := 1; page <= c.maxCommitPages; page++ {
		opts.Page = page
		logger.Debug("Fetching commits page", "page", page)

		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logResponseFailure(logger.With("page", page), "Failed to fetch commits page", resp, err)
			break
		}

		if len(commits) == 0 {
			logger.Info("No more commits", "page", page)
			break
		}
		hasNext := HasNextPage(resp.Header.Get("Link"))

		for _, commit := range commits {
			acc.add(toCommitEntry(commit))
		}
		logger.Info("Processed commits page", "page", page, "contributors", acc.len())

		if !hasNext {
			break
		}
		if err := sleepContext(ctx, c.commitPageDelay); err != nil {
			return nil, err
		}
	}

	contributors := acc.result()
	logger.Info("Found contributors via commits", "count", len(contributors))
	return contributors, nil
}

// toCommitEntry extracts the author identity and commit email from a github.RepositoryCommit.
func toCommitEntry(rc *github.RepositoryCommit) commitEntry {
	var e commitEntry
	if a := rc.GetAuthor(); a != nil && a.ID != nil {
		e.Author = &commitAuthor{
			ID:        a.GetID(),
			Login:     a.GetLogin(),
			AvatarURL: a.GetAvatarURL(),
		}
	}
	if ca := rc.GetCommit().GetAuthor(); ca != nil {
		e.Email = ca.Email
	}
	return e
}
