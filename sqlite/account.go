package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitepush.AccountService = (*AccountService)(nil)

// AccountService implements sitepush.AccountService using SQLite.
type AccountService struct {
	db *DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *DB) *AccountService {
	return &AccountService{db: db}
}

// FindOrCreateAccount returns the account with the given email, creating it
// if absent.
func (s *AccountService) FindOrCreateAccount(ctx context.Context, email string) (*sitepush.Account, error) {
	account := &sitepush.Account{Email: strings.TrimSpace(email)}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, verification, created_at, updated_at)
		VALUES (?, ?, '', ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, uuid.New().String(), account.Email, now, now)
	if err != nil {
		return nil, err
	}

	return s.FindAccountByEmail(ctx, account.Email)
}

// FindAccountByEmail retrieves an account by email.
func (s *AccountService) FindAccountByEmail(ctx context.Context, email string) (*sitepush.Account, error) {
	accounts, err := s.FindAccounts(ctx, sitepush.AccountFilter{Email: &email, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, sitepush.Errorf(sitepush.ENOTFOUND, "account %q not found", email)
	}
	return accounts[0], nil
}

// FindAccounts retrieves accounts matching the filter in creation order.
func (s *AccountService) FindAccounts(ctx context.Context, filter sitepush.AccountFilter) ([]*sitepush.Account, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, email, verification, created_at, updated_at FROM accounts WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Email != nil {
		query.WriteString(" AND email = ?")
		args = append(args, *filter.Email)
	}

	query.WriteString(" ORDER BY rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*sitepush.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// UpdateAccount updates an existing account.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, upd sitepush.AccountUpdate) (*sitepush.Account, error) {
	accounts, err := s.FindAccounts(ctx, sitepush.AccountFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, sitepush.Errorf(sitepush.ENOTFOUND, "account not found")
	}
	account := accounts[0]

	if upd.Verification != nil {
		account.Verification = strings.TrimSpace(*upd.Verification)
	}
	account.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE accounts SET verification = ?, updated_at = ? WHERE id = ?
	`, account.Verification, formatTime(account.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// scanAccount scans the current row into an Account.
func scanAccount(rows *sql.Rows) (*sitepush.Account, error) {
	var account sitepush.Account
	var createdAt, updatedAt string

	if err := rows.Scan(&account.ID, &account.Email, &account.Verification, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if account.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if account.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &account, nil
}
