// Package quota tracks per-credential request budgets and paces requests
// against the provider's per-project rate limits.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.QuotaLedger = (*Ledger)(nil)

// Ledger applies the rolling-window reset rule and budget decrements to
// credentials, persisting every change through a CredentialService.
//
// Operations on the same credential are serialized; different credentials
// never block each other.
type Ledger struct {
	credentials sitepush.CredentialService

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Ceiling is the budget a credential is reset to. Defaults to
	// sitepush.DefaultBudget.
	Ceiling int

	// Window is the reset interval. Defaults to sitepush.QuotaWindow.
	Window time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger creates a Ledger backed by the given credential store.
func NewLedger(credentials sitepush.CredentialService) *Ledger {
	return &Ledger{
		credentials: credentials,
		Now:         time.Now,
		Ceiling:     sitepush.DefaultBudget,
		Window:      sitepush.QuotaWindow,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Usable resets the credential's budget if its window has elapsed and
// reports whether any budget is left.
func (l *Ledger) Usable(ctx context.Context, cred *sitepush.Credential) (bool, error) {
	unlock := l.lock(cred.ID)
	defer unlock()

	now := l.Now().UTC()
	budget, lastReset := cred.Budget, cred.LastReset

	switch {
	case lastReset.IsZero():
		// Never-tracked credentials open their first window now.
		lastReset = now
	case now.Sub(lastReset) >= l.Window:
		budget, lastReset = l.Ceiling, now
	}

	if budget != cred.Budget || !lastReset.Equal(cred.LastReset) {
		if err := l.credentials.UpdateQuota(ctx, cred.ID, budget, lastReset); err != nil {
			return false, fmt.Errorf("reset quota for %s: %w", cred.ProjectID, err)
		}
		cred.Budget, cred.LastReset = budget, lastReset
	}

	return cred.Budget > 0, nil
}

// Consume decrements the credential's budget by one.
// Returns EQUOTA when no budget is left.
func (l *Ledger) Consume(ctx context.Context, cred *sitepush.Credential) error {
	unlock := l.lock(cred.ID)
	defer unlock()

	if cred.Budget <= 0 {
		return sitepush.Errorf(sitepush.EQUOTA, "quota exhausted for %s", cred.ProjectID)
	}

	if err := l.credentials.UpdateQuota(ctx, cred.ID, cred.Budget-1, cred.LastReset); err != nil {
		return fmt.Errorf("consume quota for %s: %w", cred.ProjectID, err)
	}
	cred.Budget--

	return nil
}

// lock acquires the mutex for a credential and returns its release func.
func (l *Ledger) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
