package sitepush

import "context"

// SitemapService reads URLs from sitemaps.
type SitemapService interface {
	// FetchURLs returns every <loc> of the sitemap in document order.
	// Sitemap indexes are resolved recursively. Returns EUNAVAILABLE if
	// the sitemap cannot be fetched or contains no URLs.
	FetchURLs(ctx context.Context, sitemapURL string) ([]string, error)
}

// OwnershipVerifier checks that a site publishes an account's
// verification token.
type OwnershipVerifier interface {
	// VerifyOwnership reports whether the site serving sitemapURL exposes
	// token, either as a verification file or as a meta tag.
	VerifyOwnership(ctx context.Context, sitemapURL, token string) (bool, error)
}

// VerificationDetector looks for a verification token inside an HTML
// page.
type VerificationDetector interface {
	HasVerification(html, token string) bool
}
