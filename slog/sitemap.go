// Package slog decorates sitepush services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitepush"
)

// Ensure LoggingSitemapService implements sitepush.SitemapService.
var _ sitepush.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with debug logging.
type LoggingSitemapService struct {
	next   sitepush.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next sitepush.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// FetchURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) FetchURLs(ctx context.Context, sitemapURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("sitemap fetch",
			"url", sitemapURL,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchURLs(ctx, sitemapURL)
}

// Ensure LoggingOwnershipVerifier implements sitepush.OwnershipVerifier.
var _ sitepush.OwnershipVerifier = (*LoggingOwnershipVerifier)(nil)

// LoggingOwnershipVerifier wraps an OwnershipVerifier with debug logging.
type LoggingOwnershipVerifier struct {
	next   sitepush.OwnershipVerifier
	logger *slog.Logger
}

// NewLoggingOwnershipVerifier creates a new LoggingOwnershipVerifier.
func NewLoggingOwnershipVerifier(next sitepush.OwnershipVerifier, logger *slog.Logger) *LoggingOwnershipVerifier {
	return &LoggingOwnershipVerifier{next: next, logger: logger}
}

// VerifyOwnership delegates to the wrapped verifier and logs the result.
func (v *LoggingOwnershipVerifier) VerifyOwnership(ctx context.Context, sitemapURL, token string) (ok bool, err error) {
	defer func(begin time.Time) {
		v.logger.Info("ownership verification",
			"url", sitemapURL,
			"verified", ok,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return v.next.VerifyOwnership(ctx, sitemapURL, token)
}
