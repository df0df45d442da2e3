// internal/model/models.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the layout used for sync window boundaries.
const DateLayout = "2006-01-02"

// Contributor is one author identity aggregated from a repository's commit history.
type Contributor struct {
	ID            int64   `json:"id"`
	Login         string  `json:"login"`
	AvatarURL     string  `json:"avatar_url"`
	Contributions int     `json:"contributions"`
	Email         *string `json:"email,omitempty"`
}

// GitHubUser is a user profile as returned by GET /users/{username}.
type GitHubUser struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Name        *string   `json:"name,omitempty"`
	AvatarURL   string    `json:"avatar_url"`
	HTMLURL     string    `json:"html_url"`
	Company     *string   `json:"company,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Program is the persisted record of a repository discovered by the historical sync.
// Only ID, GithubURL and Name are populated today; the rest are reserved for enrichment.
type Program struct {
	ID          uuid.UUID
	GithubURL   string
	Name        string
	Description string
	Namespace   string
	MaxVersion  string
	MegaURL     string
	DocURL      string
	ProgramType string
	Downloads   int64
	Cratesio    string
}

// SyncStatus marks whether the historical sync of the window [StartDate, EndDate) completed.
type SyncStatus struct {
	ID         int64
	StartDate  string
	EndDate    string
	SyncResult bool
}

// RepositoryNode is a single repository returned by the GraphQL search.
type RepositoryNode struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Window is a half-open date range [Start, End) scoping one search sync.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the window start in YYYY-MM-DD form.
func (w Window) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate returns the window end in YYYY-MM-DD form.
func (w Window) EndDate() string { return w.End.Format(DateLayout) }

// Days returns the window length in whole days.
func (w Window) Days() int { return int(w.End.Sub(w.Start).Hours() / 24) }
