// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	"github-handler/internal/model"
)

const (
	// DefaultBaseURL is the REST API root.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultGraphQLURL is the GraphQL endpoint.
	DefaultGraphQLURL = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxCommitPages caps commit pagination at the most recent ~10,000 commits.
	DefaultMaxCommitPages = 100

	// DefaultCommitPageDelay is the courtesy pause between commit pages.
	DefaultCommitPageDelay = 100 * time.Millisecond

	commitsPerPage = 100
)

// Options configures a Client. Zero values select the defaults above,
// except CommitPageDelay where zero disables the pause.
type Options struct {
	BaseURL         string
	GraphQLURL      string
	Timeout         time.Duration
	MaxCommitPages  int
	CommitPageDelay time.Duration
	// Transport is the underlying RoundTripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client is a wrapper around the go-github client.
type Client struct {
	gh              *github.Client
	logger          *slog.Logger
	rateLimits      *RateLimitObserver
	graphqlURL      string
	maxCommitPages  int
	commitPageDelay time.Duration
}

// NewClient creates and configures a new Client instance.
// Every request is authorized through a RequestBuilder backed by tokens.
func NewClient(tokens TokenProvider, logger *slog.Logger, opts Options) (*Client, error) {
	opts = opts.withDefaults()

	baseURL, err := url.Parse(ensureTrailingSlash(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse GitHub base URL: %w", err)
	}

	httpClient := &http.Client{
		Timeout:   opts.Timeout,
		Transport: NewRequestBuilder(tokens).Transport(opts.Transport),
	}
	gh := github.NewClient(httpClient)
	gh.BaseURL = baseURL
	gh.UserAgent = UserAgent

	return &Client{
		gh:              gh,
		logger:          logger,
		rateLimits:      NewRateLimitObserver(logger),
		graphqlURL:      opts.GraphQLURL,
		maxCommitPages:  opts.MaxCommitPages,
		commitPageDelay: opts.CommitPageDelay,
	}, nil
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.GraphQLURL == "" {
		o.GraphQLURL = DefaultGraphQLURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxCommitPages <= 0 {
		o.MaxCommitPages = DefaultMaxCommitPages
	}
	if o.CommitPageDelay < 0 {
		o.CommitPageDelay = 0
	}
	return o
}

// GetUserDetails fetches a user profile and translates it to our internal model.
func (c *Client) GetUserDetails(ctx context.Context, username string) (*model.GitHubUser, error) {
	c.logger.Debug("Fetching user details", "username", username)
	user, resp, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		c.logResponseFailure(c.logger.With("username", username), "Failed to fetch user", resp, err)
		return nil, err
	}
	return toInternalUser(user), nil
}

// toInternalUser translates a github.User object to our internal model.GitHubUser.
func toInternalUser(u *github.User) *model.GitHubUser {
	return &model.GitHubUser{
		ID:          u.GetID(),
		Login:       u.GetLogin(),
		Name:        u.Name,
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		Company:     u.Company,
		Location:    u.Location,
		Email:       u.Email,
		Bio:         u.Bio,
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		CreatedAt:   u.GetCreatedAt().Time,
		UpdatedAt:   u.GetUpdatedAt().Time,
	}
}

// logResponseFailure logs a failed call and hands 403s to the rate-limit observer.
func (c *Client) logResponseFailure(logger *slog.Logger, msg string, resp *github.Response, err error) {
	if resp == nil || resp.Response == nil {
		logger.Warn(msg, "error", err)
		return
	}
	logger.Warn(msg, "status", resp.StatusCode, "error", err)
	c.rateLimits.Observe(resp.Response)
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// sleepContext pauses for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
