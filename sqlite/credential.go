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
var _ sitepush.CredentialService = (*CredentialService)(nil)

// CredentialService implements sitepush.CredentialService using SQLite.
type CredentialService struct {
	db *DB
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(db *DB) *CredentialService {
	return &CredentialService{db: db}
}

// CreateCredential creates a new credential. A credential without a last
// reset time starts a fresh quota window with the default budget.
func (s *CredentialService) CreateCredential(ctx context.Context, cred *sitepush.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	existing, err := s.FindCredentials(ctx, sitepush.CredentialFilter{ProjectID: &cred.ProjectID, Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return sitepush.Errorf(sitepush.ECONFLICT, "project %q already has a credential", cred.ProjectID)
	}

	now := time.Now().UTC()
	cred.ID = uuid.New().String()
	cred.CreatedAt = now
	if cred.Scope == "" {
		cred.Scope = sitepush.IndexingScope
	}
	if cred.LastReset.IsZero() {
		cred.LastReset = now
		cred.Budget = sitepush.DefaultBudget
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, account_id, project_id, client_id, client_secret, refresh_token, scope, budget, last_reset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cred.ID, cred.AccountID, cred.ProjectID, cred.ClientID, cred.ClientSecret, cred.RefreshToken,
		cred.Scope, cred.Budget, formatTime(cred.LastReset), formatTime(cred.CreatedAt))

	return err
}

// FindCredentialByID retrieves a credential by ID.
func (s *CredentialService) FindCredentialByID(ctx context.Context, id string) (*sitepush.Credential, error) {
	creds, err := s.FindCredentials(ctx, sitepush.CredentialFilter{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, sitepush.Errorf(sitepush.ENOTFOUND, "credential not found")
	}
	return creds[0], nil
}

// FindCredentials retrieves credentials matching the filter in creation order.
func (s *CredentialService) FindCredentials(ctx context.Context, filter sitepush.CredentialFilter) ([]*sitepush.Credential, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, account_id, project_id, client_id, client_secret, refresh_token, scope, budget, last_reset, created_at
		FROM credentials WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.AccountID != nil {
		query.WriteString(" AND account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.ProjectID != nil {
		query.WriteString(" AND project_id = ?")
		args = append(args, *filter.ProjectID)
	}

	query.WriteString(" ORDER BY rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*sitepush.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	return creds, rows.Err()
}

// UpdateQuota persists a credential's budget and last reset time.
func (s *CredentialService) UpdateQuota(ctx context.Context, id string, budget int, lastReset time.Time) error {
	if budget < 0 {
		return sitepush.Errorf(sitepush.EINVALID, "credential budget must not be negative")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET budget = ?, last_reset = ? WHERE id = ?
	`, budget, formatTime(lastReset), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sitepush.Errorf(sitepush.ENOTFOUND, "credential not found")
	}

	return nil
}

// DeleteCredential permanently removes a credential.
func (s *CredentialService) DeleteCredential(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sitepush.Errorf(sitepush.ENOTFOUND, "credential not found")
	}

	return nil
}

// scanCredential scans the current row into a Credential.
func scanCredential(rows *sql.Rows) (*sitepush.Credential, error) {
	var cred sitepush.Credential
	var lastReset, createdAt string

	if err := rows.Scan(&cred.ID, &cred.AccountID, &cred.ProjectID, &cred.ClientID, &cred.ClientSecret,
		&cred.RefreshToken, &cred.Scope, &cred.Budget, &lastReset, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if cred.LastReset, err = parseRFC3339(lastReset, "last_reset"); err != nil {
		return nil, err
	}
	if cred.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &cred, nil
}
