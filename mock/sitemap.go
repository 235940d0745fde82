package mock

import (
	"context"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sitepush.SitemapService.
type SitemapService struct {
	FetchURLsFn func(ctx context.Context, sitemapURL string) ([]string, error)
}

func (s *SitemapService) FetchURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.FetchURLsFn(ctx, sitemapURL)
}

var _ sitepush.OwnershipVerifier = (*OwnershipVerifier)(nil)

// OwnershipVerifier is a mock implementation of sitepush.OwnershipVerifier.
type OwnershipVerifier struct {
	VerifyOwnershipFn func(ctx context.Context, sitemapURL, token string) (bool, error)
}

func (v *OwnershipVerifier) VerifyOwnership(ctx context.Context, sitemapURL, token string) (bool, error) {
	return v.VerifyOwnershipFn(ctx, sitemapURL, token)
}

var _ sitepush.VerificationDetector = (*VerificationDetector)(nil)

// VerificationDetector is a mock implementation of sitepush.VerificationDetector.
type VerificationDetector struct {
	HasVerificationFn func(html, token string) bool
}

func (d *VerificationDetector) HasVerification(html, token string) bool {
	return d.HasVerificationFn(html, token)
}
