package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.CredentialService = (*CredentialService)(nil)

// CredentialService is a mock implementation of sitepush.CredentialService.
type CredentialService struct {
	CreateCredentialFn   func(ctx context.Context, cred *sitepush.Credential) error
	FindCredentialByIDFn func(ctx context.Context, id string) (*sitepush.Credential, error)
	FindCredentialsFn    func(ctx context.Context, filter sitepush.CredentialFilter) ([]*sitepush.Credential, error)
	UpdateQuotaFn        func(ctx context.Context, id string, budget int, lastReset time.Time) error
	DeleteCredentialFn   func(ctx context.Context, id string) error
}

func (s *CredentialService) CreateCredential(ctx context.Context, cred *sitepush.Credential) error {
	return s.CreateCredentialFn(ctx, cred)
}

func (s *CredentialService) FindCredentialByID(ctx context.Context, id string) (*sitepush.Credential, error) {
	return s.FindCredentialByIDFn(ctx, id)
}

func (s *CredentialService) FindCredentials(ctx context.Context, filter sitepush.CredentialFilter) ([]*sitepush.Credential, error) {
	return s.FindCredentialsFn(ctx, filter)
}

func (s *CredentialService) UpdateQuota(ctx context.Context, id string, budget int, lastReset time.Time) error {
	return s.UpdateQuotaFn(ctx, id, budget, lastReset)
}

func (s *CredentialService) DeleteCredential(ctx context.Context, id string) error {
	return s.DeleteCredentialFn(ctx, id)
}

var _ sitepush.QuotaLedger = (*QuotaLedger)(nil)

// QuotaLedger is a mock implementation of sitepush.QuotaLedger.
type QuotaLedger struct {
	UsableFn  func(ctx context.Context, cred *sitepush.Credential) (bool, error)
	ConsumeFn func(ctx context.Context, cred *sitepush.Credential) error
}

func (l *QuotaLedger) Usable(ctx context.Context, cred *sitepush.Credential) (bool, error) {
	return l.UsableFn(ctx, cred)
}

func (l *QuotaLedger) Consume(ctx context.Context, cred *sitepush.Credential) error {
	return l.ConsumeFn(ctx, cred)
}

var _ sitepush.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of sitepush.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context, key string, n int) error
}

func (r *RateLimiter) Wait(ctx context.Context, key string, n int) error {
	return r.WaitFn(ctx, key, n)
}
