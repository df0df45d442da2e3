// internal/github/contributors_test.go
package github

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-handler/internal/model"
)

func strPtr(s string) *string { return &s }

// randomCommits builds n commits from a small pool of authors, some anonymous, some without email.
func randomCommits(r *rand.Rand, n int) []commitEntry {
	emails := []*string{nil, strPtr("a@x"), strPtr("b@x")}
	commits := make([]commitEntry, n)
	for i := range commits {
		id := r.Intn(6)
		if id == 0 {
			commits[i] = commitEntry{Email: emails[r.Intn(len(emails))]}
			continue
		}
		commits[i] = commitEntry{
			Author: &commitAuthor{ID: int64(id), Login: "user", AvatarURL: "avatar"},
			Email:  emails[r.Intn(len(emails))],
		}
	}
	return commits
}

// aggregatePaged feeds commits to an accumulator in pages of pageSize.
func aggregatePaged(commits []commitEntry, pageSize int) []model.Contributor {
	acc := newContributorAccumulator()
	for start := 0; start < len(commits); start += pageSize {
		end := min(start+pageSize, len(commits))
		for _, c := range commits[start:end] {
			acc.add(c)
		}
	}
	return acc.result()
}

func TestContributorAccumulator_CountsMatchCommitsPerAuthor(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		commits := randomCommits(r, 1+r.Intn(300))

		want := map[int64]int{}
		for _, c := range commits {
			if c.Author != nil {
				want[c.Author.ID]++
			}
		}

		for _, pageSize := range []int{1, 7, 100, len(commits)} {
			got := aggregatePaged(commits, pageSize)
			counts := map[int64]int{}
			for _, c := range got {
				counts[c.ID] = c.Contributions
			}
			assert.Equal(t, want, counts, "page size %d", pageSize)
		}
	}
}

func TestContributorAccumulator_PageSizeDoesNotChangeResult(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	commits := randomCommits(r, 250)

	reference := aggregatePaged(commits, 100)
	for _, pageSize := range []int{1, 3, 33, 250} {
		assert.Equal(t, reference, aggregatePaged(commits, pageSize), "page size %d", pageSize)
	}
}

func TestContributorAccumulator_SortedDescending(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for iter := 0; iter < 50; iter++ {
		got := aggregatePaged(randomCommits(r, 1+r.Intn(200)), 100)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Contributions, got[i].Contributions)
		}
	}
}

func TestContributorAccumulator_EmailBackfill(t *testing.T) {
	author := &commitAuthor{ID: 1, Login: "alice", AvatarURL: "a"}

	t.Run("first known email wins", func(t *testing.T) {
		acc := newContributorAccumulator()
		acc.add(commitEntry{Author: author})
		acc.add(commitEntry{Author: author, Email: strPtr("first@x")})
		acc.add(commitEntry{Author: author})
		acc.add(commitEntry{Author: author, Email: strPtr("second@x")})

		got := acc.result()
		require.Len(t, got, 1)
		assert.Equal(t, 4, got[0].Contributions)
		require.NotNil(t, got[0].Email)
		assert.Equal(t, "first@x", *got[0].Email)
	})

	t.Run("stays empty when no commit supplies one", func(t *testing.T) {
		acc := newContributorAccumulator()
		acc.add(commitEntry{Author: author})
		acc.add(commitEntry{Author: author})

		got := acc.result()
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Email)
	})
}

func TestContributorAccumulator_TiesKeepFirstSeenOrder(t *testing.T) {
	acc := newContributorAccumulator()
	for _, id := range []int64{3, 1, 2, 1, 3, 2} {
		acc.add(commitEntry{Author: &commitAuthor{ID: id}})
	}

	got := acc.result()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestContributorAccumulator_SkipsAnonymousCommits(t *testing.T) {
	acc := newContributorAccumulator()
	acc.add(commitEntry{Email: strPtr("nobody@x")})

	assert.Empty(t, acc.result())
}
