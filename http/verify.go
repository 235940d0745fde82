package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/sitepush"
)

// maxPageBody caps how much of a verification page is read.
const maxPageBody = 2 << 20

// Ensure OwnershipVerifier implements sitepush.OwnershipVerifier at compile time.
var _ sitepush.OwnershipVerifier = (*OwnershipVerifier)(nil)

// OwnershipVerifier checks whether a site publishes a search console
// verification token. It looks for a <token>.html file next to the sitemap
// first and falls back to the meta tag on the site root.
type OwnershipVerifier struct {
	client   *http.Client
	detector sitepush.VerificationDetector
}

// NewOwnershipVerifier creates an OwnershipVerifier. If client is nil,
// http.DefaultClient is used.
func NewOwnershipVerifier(client *http.Client, detector sitepush.VerificationDetector) *OwnershipVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &OwnershipVerifier{client: client, detector: detector}
}

// VerifyOwnership reports whether the site serving sitemapURL exposes token.
// An unreachable page counts as not verified.
func (v *OwnershipVerifier) VerifyOwnership(ctx context.Context, sitemapURL, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, sitepush.Errorf(sitepush.EINVALID, "verification token required")
	}

	base, err := url.Parse(strings.TrimSpace(sitemapURL))
	if err != nil || base.Host == "" {
		return false, sitepush.Errorf(sitepush.EINVALID, "invalid sitemap URL %q", sitemapURL)
	}

	fileURL := base.ResolveReference(&url.URL{Path: token + ".html"})
	if _, err := v.fetchPage(ctx, fileURL.String()); err == nil {
		return true, nil
	} else if ctx.Err() != nil {
		return false, ctx.Err()
	}

	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	html, err := v.fetchPage(ctx, root.String())
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}

	return v.detector.HasVerification(html, token), nil
}

// fetchPage retrieves the body of a page that answers 200 OK.
func (v *OwnershipVerifier) fetchPage(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
