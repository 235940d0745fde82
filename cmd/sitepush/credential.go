package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/oauth"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the credential add command.
func (c *CredentialAddCmd) Run(deps *Dependencies) error {
	account, secret, err := loadClient(deps, c.Email, c.ClientJSON)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	cred := secret.Credential(account.ID, c.RefreshToken)
	if err := deps.Credentials.CreateCredential(deps.Ctx, cred); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added credential %s for project %s (%d requests available)\n", cred.ID, cred.ProjectID, cred.Budget)
	return nil
}

// Run executes the credential authorize command. The consent URL is
// printed for the operator to open; the command waits for the redirect.
func (c *CredentialAuthorizeCmd) Run(deps *Dependencies) error {
	account, secret, err := loadClient(deps, c.Email, c.ClientJSON)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	refreshToken, err := deps.Exchanger.Exchange(deps.Ctx, secret, func(authURL string) error {
		fmt.Fprintf(deps.Stdout, "Open this URL to grant access for %s:\n\n  %s\n\n", account.Email, authURL)
		return nil
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	cred := secret.Credential(account.ID, refreshToken)
	if err := deps.Credentials.CreateCredential(deps.Ctx, cred); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Authorized project %s for %s (credential %s)\n", cred.ProjectID, account.Email, cred.ID)
	return nil
}

// loadClient finds the account and parses its client secret file.
func loadClient(deps *Dependencies, email, path string) (*sitepush.Account, *oauth.ClientSecret, error) {
	account, err := deps.Accounts.FindAccountByEmail(deps.Ctx, email)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, sitepush.Errorf(sitepush.EINVALID, "cannot read client secret %s: %v", path, err)
	}

	secret, err := oauth.ParseClientSecret(data)
	if err != nil {
		return nil, nil, err
	}

	return account, secret, nil
}

// Run executes the credential list command.
func (c *CredentialListCmd) Run(deps *Dependencies) error {
	filter := sitepush.CredentialFilter{}
	emails := map[string]string{}

	if c.Email != "" {
		account, err := deps.Accounts.FindAccountByEmail(deps.Ctx, c.Email)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
			return err
		}
		filter.AccountID = &account.ID
		emails[account.ID] = account.Email
	} else {
		accounts, err := deps.Accounts.FindAccounts(deps.Ctx, sitepush.AccountFilter{})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
			return err
		}
		for _, a := range accounts {
			emails[a.ID] = a.Email
		}
	}

	creds, err := deps.Credentials.FindCredentials(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	if len(creds) == 0 {
		fmt.Fprintln(deps.Stdout, "No credentials found. Use 'sitepush credential add' to import one.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Account", "Project", "Budget", "Last reset"})
	for _, cred := range creds {
		t.AppendRow(table.Row{cred.ID, emails[cred.AccountID], cred.ProjectID, cred.Budget, cred.LastReset.Local().Format("2006-01-02 15:04")})
	}
	t.Render()
	return nil
}

// Run executes the credential delete command.
func (c *CredentialDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return sitepush.Errorf(sitepush.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Credentials.DeleteCredential(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted credential %s\n", c.ID)
	return nil
}
