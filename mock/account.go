package mock

import (
	"context"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.AccountService = (*AccountService)(nil)

// AccountService is a mock implementation of sitepush.AccountService.
type AccountService struct {
	FindOrCreateAccountFn func(ctx context.Context, email string) (*sitepush.Account, error)
	FindAccountByEmailFn  func(ctx context.Context, email string) (*sitepush.Account, error)
	FindAccountsFn        func(ctx context.Context, filter sitepush.AccountFilter) ([]*sitepush.Account, error)
	UpdateAccountFn       func(ctx context.Context, id string, upd sitepush.AccountUpdate) (*sitepush.Account, error)
}

func (s *AccountService) FindOrCreateAccount(ctx context.Context, email string) (*sitepush.Account, error) {
	return s.FindOrCreateAccountFn(ctx, email)
}

func (s *AccountService) FindAccountByEmail(ctx context.Context, email string) (*sitepush.Account, error) {
	return s.FindAccountByEmailFn(ctx, email)
}

func (s *AccountService) FindAccounts(ctx context.Context, filter sitepush.AccountFilter) ([]*sitepush.Account, error) {
	return s.FindAccountsFn(ctx, filter)
}

func (s *AccountService) UpdateAccount(ctx context.Context, id string, upd sitepush.AccountUpdate) (*sitepush.Account, error) {
	return s.UpdateAccountFn(ctx, id, upd)
}
