package sitepush

import (
	"context"
	"time"
)

// IndexingScope is the OAuth scope required by the Indexing API.
const IndexingScope = "https://www.googleapis.com/auth/indexing"

// Quota window defaults. The Indexing API grants each project a fixed
// number of publish requests per rolling day.
const (
	DefaultBudget = 200
	QuotaWindow   = 24 * time.Hour
)

// Credential is one OAuth client registration tied to an account, together
// with its request budget for the current quota window.
type Credential struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	ProjectID    string    `json:"projectId"`
	ClientID     string    `json:"clientId"`
	ClientSecret string    `json:"-"`
	RefreshToken string    `json:"-"`
	Scope        string    `json:"scope"`
	Budget       int       `json:"budget"`
	LastReset    time.Time `json:"lastReset"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate returns an error if the credential contains invalid fields.
func (c *Credential) Validate() error {
	if c.AccountID == "" {
		return Errorf(EINVALID, "credential account ID required")
	}
	if c.ProjectID == "" {
		return Errorf(EINVALID, "credential project ID required")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return Errorf(EINVALID, "credential client ID and secret required")
	}
	if c.RefreshToken == "" {
		return Errorf(EINVALID, "credential refresh token required")
	}
	if c.Budget < 0 {
		return Errorf(EINVALID, "credential budget must not be negative")
	}
	return nil
}

// CredentialService represents a service for managing credentials.
type CredentialService interface {
	// CreateCredential creates a new credential.
	// Returns ECONFLICT if a credential for the same project already exists.
	CreateCredential(ctx context.Context, cred *Credential) error

	// FindCredentialByID retrieves a credential by ID.
	// Returns ENOTFOUND if credential does not exist.
	FindCredentialByID(ctx context.Context, id string) (*Credential, error)

	// FindCredentials retrieves credentials in creation order.
	FindCredentials(ctx context.Context, filter CredentialFilter) ([]*Credential, error)

	// UpdateQuota persists a credential's budget and last reset time.
	// Returns ENOTFOUND if credential does not exist.
	UpdateQuota(ctx context.Context, id string, budget int, lastReset time.Time) error

	// DeleteCredential permanently removes a credential.
	// Returns ENOTFOUND if credential does not exist.
	DeleteCredential(ctx context.Context, id string) error
}

// CredentialFilter represents a filter for FindCredentials.
type CredentialFilter struct {
	ID        *string `json:"id"`
	AccountID *string `json:"accountId"`
	ProjectID *string `json:"projectId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// QuotaLedger tracks per-credential request budgets.
type QuotaLedger interface {
	// Usable applies the window reset rule and reports whether the
	// credential has budget left.
	Usable(ctx context.Context, cred *Credential) (bool, error)

	// Consume decrements the credential's budget by one.
	// Returns EQUOTA if the budget is already zero.
	Consume(ctx context.Context, cred *Credential) error
}

// RateLimiter paces outbound notifications per key.
type RateLimiter interface {
	// Wait blocks until the rate limit allows n notifications for key.
	// A batch request counts once per notification it carries.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, key string, n int) error
}
