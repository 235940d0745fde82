package slog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/sitepush"
)

// Ensure LoggingAuthenticator implements sitepush.Authenticator.
var _ sitepush.Authenticator = (*LoggingAuthenticator)(nil)

// LoggingAuthenticator wraps an Authenticator with debug logging.
type LoggingAuthenticator struct {
	next   sitepush.Authenticator
	logger *slog.Logger
}

// NewLoggingAuthenticator creates a new LoggingAuthenticator.
func NewLoggingAuthenticator(next sitepush.Authenticator, logger *slog.Logger) *LoggingAuthenticator {
	return &LoggingAuthenticator{next: next, logger: logger}
}

// Authorize delegates to the wrapped authenticator and logs the operation.
func (a *LoggingAuthenticator) Authorize(ctx context.Context, cred *sitepush.Credential) (client *http.Client, err error) {
	defer func(begin time.Time) {
		a.logger.Info("authorize",
			"project", cred.ProjectID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Authorize(ctx, cred)
}

// Ensure LoggingSubmitter implements sitepush.Submitter.
var _ sitepush.Submitter = (*LoggingSubmitter)(nil)

// LoggingSubmitter wraps a Submitter with debug logging.
type LoggingSubmitter struct {
	next   sitepush.Submitter
	logger *slog.Logger
}

// NewLoggingSubmitter creates a new LoggingSubmitter.
func NewLoggingSubmitter(next sitepush.Submitter, logger *slog.Logger) *LoggingSubmitter {
	return &LoggingSubmitter{next: next, logger: logger}
}

// Submit delegates to the wrapped submitter and logs the outcome.
func (s *LoggingSubmitter) Submit(ctx context.Context, client *http.Client, url string) (out sitepush.Outcome) {
	defer func(begin time.Time) {
		s.logger.Info("submit",
			"url", url,
			"status", out.StatusCode,
			"outcome", out.Status().String(),
			"duration", time.Since(begin),
			"err", out.Err,
		)
	}(time.Now())
	return s.next.Submit(ctx, client, url)
}

// Ensure LoggingBatchSubmitter implements sitepush.BatchSubmitter.
var _ sitepush.BatchSubmitter = (*LoggingBatchSubmitter)(nil)

// LoggingBatchSubmitter wraps a BatchSubmitter with debug logging.
type LoggingBatchSubmitter struct {
	next   sitepush.BatchSubmitter
	logger *slog.Logger
}

// NewLoggingBatchSubmitter creates a new LoggingBatchSubmitter.
func NewLoggingBatchSubmitter(next sitepush.BatchSubmitter, logger *slog.Logger) *LoggingBatchSubmitter {
	return &LoggingBatchSubmitter{next: next, logger: logger}
}

// SubmitBatch delegates to the wrapped submitter and logs outcome counts.
func (s *LoggingBatchSubmitter) SubmitBatch(ctx context.Context, client *http.Client, urls []string) (outcomes []sitepush.Outcome) {
	defer func(begin time.Time) {
		var succeeded, failed, indeterminate int
		for _, out := range outcomes {
			switch out.Status() {
			case sitepush.OutcomeSuccess:
				succeeded++
			case sitepush.OutcomeFailure:
				failed++
			default:
				indeterminate++
			}
		}
		s.logger.Info("submit batch",
			"count", len(urls),
			"succeeded", succeeded,
			"failed", failed,
			"indeterminate", indeterminate,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.SubmitBatch(ctx, client, urls)
}
