package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAccount creates an account and returns it.
func setupAccount(t *testing.T, db *sqlite.DB, email string) *sitepush.Account {
	t.Helper()
	account, err := sqlite.NewAccountService(db).FindOrCreateAccount(context.Background(), email)
	require.NoError(t, err)
	return account
}

func newCredential(accountID, projectID string) *sitepush.Credential {
	return &sitepush.Credential{
		AccountID:    accountID,
		ProjectID:    projectID,
		ClientID:     projectID + ".apps.googleusercontent.com",
		ClientSecret: "secret",
		RefreshToken: "refresh",
	}
}

func TestCredentialService_CreateCredential(t *testing.T) {
	t.Parallel()

	t.Run("starts a fresh quota window", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)

		cred := newCredential(account.ID, "project-a")
		before := time.Now().UTC()
		require.NoError(t, svc.CreateCredential(context.Background(), cred))

		assert.NotEmpty(t, cred.ID)
		assert.Equal(t, sitepush.DefaultBudget, cred.Budget)
		assert.Equal(t, sitepush.IndexingScope, cred.Scope)
		assert.False(t, cred.LastReset.Before(before.Add(-time.Second)))
	})

	t.Run("keeps explicit budget and reset time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		reset := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		cred := newCredential(account.ID, "project-a")
		cred.Budget = 17
		cred.LastReset = reset
		require.NoError(t, svc.CreateCredential(ctx, cred))

		found, err := svc.FindCredentialByID(ctx, cred.ID)
		require.NoError(t, err)
		assert.Equal(t, 17, found.Budget)
		assert.True(t, reset.Equal(found.LastReset))
		assert.Equal(t, "secret", found.ClientSecret)
		assert.Equal(t, "refresh", found.RefreshToken)
	})

	t.Run("returns ECONFLICT for duplicate project", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateCredential(ctx, newCredential(account.ID, "project-a")))

		err := svc.CreateCredential(ctx, newCredential(account.ID, "project-a"))
		require.Error(t, err)
		assert.Equal(t, sitepush.ECONFLICT, sitepush.ErrorCode(err))
	})

	t.Run("returns EINVALID without refresh token", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)

		cred := newCredential(account.ID, "project-a")
		cred.RefreshToken = ""

		err := svc.CreateCredential(context.Background(), cred)
		require.Error(t, err)
		assert.Equal(t, sitepush.EINVALID, sitepush.ErrorCode(err))
	})

	t.Run("rejects unknown account", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCredentialService(setupTestDB(t))

		err := svc.CreateCredential(context.Background(), newCredential("missing-account", "project-a"))
		require.Error(t, err)
	})
}

func TestCredentialService_FindCredentials(t *testing.T) {
	t.Parallel()

	t.Run("returns account credentials in creation order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		owner := setupAccount(t, db, "owner@example.com")
		other := setupAccount(t, db, "other@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		require.NoError(t, svc.CreateCredential(ctx, newCredential(owner.ID, "zeta")))
		require.NoError(t, svc.CreateCredential(ctx, newCredential(other.ID, "beta")))
		require.NoError(t, svc.CreateCredential(ctx, newCredential(owner.ID, "alpha")))

		creds, err := svc.FindCredentials(ctx, sitepush.CredentialFilter{AccountID: &owner.ID})
		require.NoError(t, err)
		require.Len(t, creds, 2)
		assert.Equal(t, "zeta", creds[0].ProjectID)
		assert.Equal(t, "alpha", creds[1].ProjectID)
	})
}

func TestCredentialService_UpdateQuota(t *testing.T) {
	t.Parallel()

	t.Run("persists budget and reset time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		cred := newCredential(account.ID, "project-a")
		require.NoError(t, svc.CreateCredential(ctx, cred))

		reset := time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)
		require.NoError(t, svc.UpdateQuota(ctx, cred.ID, 3, reset))

		found, err := svc.FindCredentialByID(ctx, cred.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Budget)
		assert.True(t, reset.Equal(found.LastReset))
	})

	t.Run("rejects negative budget", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		cred := newCredential(account.ID, "project-a")
		require.NoError(t, svc.CreateCredential(ctx, cred))

		err := svc.UpdateQuota(ctx, cred.ID, -1, time.Now())
		require.Error(t, err)
		assert.Equal(t, sitepush.EINVALID, sitepush.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown credential", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCredentialService(setupTestDB(t))

		err := svc.UpdateQuota(context.Background(), "missing", 1, time.Now())
		require.Error(t, err)
		assert.Equal(t, sitepush.ENOTFOUND, sitepush.ErrorCode(err))
	})
}

func TestCredentialService_DeleteCredential(t *testing.T) {
	t.Parallel()

	t.Run("removes credential", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		account := setupAccount(t, db, "owner@example.com")
		svc := sqlite.NewCredentialService(db)
		ctx := context.Background()

		cred := newCredential(account.ID, "project-a")
		require.NoError(t, svc.CreateCredential(ctx, cred))
		require.NoError(t, svc.DeleteCredential(ctx, cred.ID))

		_, err := svc.FindCredentialByID(ctx, cred.ID)
		assert.Equal(t, sitepush.ENOTFOUND, sitepush.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown credential", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCredentialService(setupTestDB(t))

		err := svc.DeleteCredential(context.Background(), "missing")
		assert.Equal(t, sitepush.ENOTFOUND, sitepush.ErrorCode(err))
	})
}
