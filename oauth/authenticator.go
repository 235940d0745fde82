// Package oauth authorizes credentials against Google's OAuth 2.0 endpoints
// using golang.org/x/oauth2.
package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/sitepush"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Ensure Authenticator implements sitepush.Authenticator at compile time.
var _ sitepush.Authenticator = (*Authenticator)(nil)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays between authorization
// attempts: three attempts, five seconds apart.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{5 * time.Second, 5 * time.Second}
}

// Authenticator exchanges stored refresh tokens for access tokens.
type Authenticator struct {
	// Endpoint is the OAuth endpoint. Defaults to google.Endpoint.
	Endpoint oauth2.Endpoint

	// HTTPClient is the base client used for token requests and wrapped
	// by the returned authorized client. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// RetryDelays is the wait before each retry; the number of attempts is
	// len(RetryDelays)+1. Defaults to DefaultRetryDelays().
	RetryDelays []time.Duration

	// Logf, if set, is called before each retry.
	Logf LogFunc
}

// NewAuthenticator creates an Authenticator for Google's endpoints.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		Endpoint:    google.Endpoint,
		RetryDelays: DefaultRetryDelays(),
	}
}

// Authorize returns a client that attaches the credential's access token
// to every request. A failure after all retries returns EUNAUTHORIZED.
func (a *Authenticator) Authorize(ctx context.Context, cred *sitepush.Credential) (*http.Client, error) {
	if a.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.HTTPClient)
	}

	cfg := a.config(cred)
	tok, err := a.tokenWithRetry(ctx, cfg, cred)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, sitepush.Errorf(sitepush.EUNAUTHORIZED, "failed to authorize %s: %v", cred.ProjectID, err)
	}

	return oauth2.NewClient(ctx, cfg.TokenSource(ctx, tok)), nil
}

// config builds the OAuth configuration for a credential.
func (a *Authenticator) config(cred *sitepush.Credential) *oauth2.Config {
	scope := cred.Scope
	if scope == "" {
		scope = sitepush.IndexingScope
	}
	endpoint := a.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{scope},
	}
}

// tokenWithRetry refreshes the access token, retrying transient failures
// with the configured delays.
func (a *Authenticator) tokenWithRetry(ctx context.Context, cfg *oauth2.Config, cred *sitepush.Credential) (*oauth2.Token, error) {
	delays := a.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
		if err == nil {
			return tok, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Transient(err) {
			break
		}

		if a.Logf != nil {
			a.Logf("  retry authorization for %s (attempt %d): %v", cred.ProjectID, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

// Transient reports whether a token error is worth retrying. Rejections
// from the token endpoint (revoked or malformed grants) are permanent;
// server errors, throttling and transport failures are not.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response == nil {
			return true
		}
		code := re.Response.StatusCode
		return code >= 500 || code == http.StatusTooManyRequests
	}
	return true
}
