// internal/github/auth.go
package github

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// UserAgent identifies this service on every outbound call.
const UserAgent = "github-handler"

// TokenProvider supplies the access token attached to outbound requests.
// An empty token means requests are sent unauthenticated.
type TokenProvider interface {
	Token() string
}

// OAuthTokenProvider adapts an oauth2.TokenSource to TokenProvider.
type OAuthTokenProvider struct {
	src    oauth2.TokenSource
	logger *slog.Logger
}

// NewStaticTokenProvider returns a provider that always yields the given token.
func NewStaticTokenProvider(token string, logger *slog.Logger) *OAuthTokenProvider {
	return NewOAuthTokenProvider(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), logger)
}

// NewOAuthTokenProvider wraps src, caching its token until it expires.
func NewOAuthTokenProvider(src oauth2.TokenSource, logger *slog.Logger) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		src:    oauth2.ReuseTokenSource(nil, src),
		logger: logger,
	}
}

// Token returns the current access token, or "" if none can be obtained.
func (p *OAuthTokenProvider) Token() string {
	tok, err := p.src.Token()
	if err != nil {
		p.logger.Warn("Failed to obtain GitHub token, sending unauthenticated request", "error", err)
		return ""
	}
	return tok.AccessToken
}

// RequestBuilder attaches the token and identification headers to outbound requests.
type RequestBuilder struct {
	tokens TokenProvider
}

// NewRequestBuilder creates a RequestBuilder backed by tokens.
func NewRequestBuilder(tokens TokenProvider) *RequestBuilder {
	return &RequestBuilder{tokens: tokens}
}

// NewRequest builds a request for url with the authorization headers applied.
func (b *RequestBuilder) NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	b.Authorize(req)
	return req, nil
}

// Authorize sets the Authorization header when a token is available, and always sets User-Agent.
func (b *RequestBuilder) Authorize(req *http.Request) {
	if token := b.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	req.Header.Set("User-Agent", UserAgent)
}

// Transport returns a RoundTripper that authorizes each request before delegating to base.
func (b *RequestBuilder) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{builder: b, base: base}
}

type authTransport struct {
	builder *RequestBuilder
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	t.builder.Authorize(r)
	return t.base.RoundTrip(r)
}
