package sitepush

import (
	"context"
	"strings"
	"time"
)

// Account is a principal owning one or more credentials.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Verification string    `json:"verification"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate returns an error if the account contains invalid fields.
func (a *Account) Validate() error {
	if a.Email == "" {
		return Errorf(EINVALID, "account email required")
	}
	at := strings.IndexByte(a.Email, '@')
	if at <= 0 || at == len(a.Email)-1 {
		return Errorf(EINVALID, "account email %q is not a valid address", a.Email)
	}
	return nil
}

// AccountService represents a service for managing accounts.
type AccountService interface {
	// FindOrCreateAccount returns the account with the given email,
	// creating it if it does not exist yet.
	FindOrCreateAccount(ctx context.Context, email string) (*Account, error)

	// FindAccountByEmail retrieves an account by email.
	// Returns ENOTFOUND if account does not exist.
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)

	// FindAccounts retrieves accounts in creation order.
	FindAccounts(ctx context.Context, filter AccountFilter) ([]*Account, error)

	// UpdateAccount updates an existing account.
	// Returns ENOTFOUND if account does not exist.
	UpdateAccount(ctx context.Context, id string, upd AccountUpdate) (*Account, error)
}

// AccountFilter represents a filter for FindAccounts.
type AccountFilter struct {
	ID    *string `json:"id"`
	Email *string `json:"email"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// AccountUpdate represents fields that can be updated on an account.
type AccountUpdate struct {
	Verification *string `json:"verification"`
}
