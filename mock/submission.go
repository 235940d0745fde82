package mock

import (
	"context"
	"net/http"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.Authenticator = (*Authenticator)(nil)

// Authenticator is a mock implementation of sitepush.Authenticator.
type Authenticator struct {
	AuthorizeFn func(ctx context.Context, cred *sitepush.Credential) (*http.Client, error)
}

func (a *Authenticator) Authorize(ctx context.Context, cred *sitepush.Credential) (*http.Client, error) {
	return a.AuthorizeFn(ctx, cred)
}

var _ sitepush.Submitter = (*Submitter)(nil)

// Submitter is a mock implementation of sitepush.Submitter.
type Submitter struct {
	SubmitFn func(ctx context.Context, client *http.Client, url string) sitepush.Outcome
}

func (s *Submitter) Submit(ctx context.Context, client *http.Client, url string) sitepush.Outcome {
	return s.SubmitFn(ctx, client, url)
}

var _ sitepush.BatchSubmitter = (*BatchSubmitter)(nil)

// BatchSubmitter is a mock implementation of sitepush.BatchSubmitter.
type BatchSubmitter struct {
	SubmitBatchFn func(ctx context.Context, client *http.Client, urls []string) []sitepush.Outcome
}

func (s *BatchSubmitter) SubmitBatch(ctx context.Context, client *http.Client, urls []string) []sitepush.Outcome {
	return s.SubmitBatchFn(ctx, client, urls)
}

var _ sitepush.Confirmer = (*Confirmer)(nil)

// Confirmer is a mock implementation of sitepush.Confirmer.
type Confirmer struct {
	ConfirmFn func(ctx context.Context, prompt string, def bool) (bool, error)
}

func (c *Confirmer) Confirm(ctx context.Context, prompt string, def bool) (bool, error) {
	return c.ConfirmFn(ctx, prompt, def)
}
