package main

import (
	"fmt"

	"github.com/fwojciec/sitepush"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the account add command.
func (c *AccountAddCmd) Run(deps *Dependencies) error {
	account := &sitepush.Account{Email: c.Email}
	if err := account.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	account, err := deps.Accounts.FindOrCreateAccount(deps.Ctx, c.Email)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	if c.Verification != "" {
		account, err = deps.Accounts.UpdateAccount(deps.Ctx, account.ID, sitepush.AccountUpdate{Verification: &c.Verification})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Account %s ready (id %s)\n", account.Email, account.ID)
	return nil
}

// Run executes the account list command. Budgets are shown after applying
// the quota window reset.
func (c *AccountListCmd) Run(deps *Dependencies) error {
	accounts, err := deps.Accounts.FindAccounts(deps.Ctx, sitepush.AccountFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	if len(accounts) == 0 {
		fmt.Fprintln(deps.Stdout, "No accounts found. Use 'sitepush account add' to create one.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Email", "Verification", "Credentials", "Budget"})

	var total int
	for _, a := range accounts {
		creds, err := deps.Credentials.FindCredentials(deps.Ctx, sitepush.CredentialFilter{AccountID: &a.ID})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
			return err
		}

		var budget int
		for _, cred := range creds {
			if _, err := deps.Ledger.Usable(deps.Ctx, cred); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
				return err
			}
			budget += cred.Budget
		}
		total += budget

		verification := a.Verification
		if verification == "" {
			verification = "-"
		}
		t.AppendRow(table.Row{a.Email, verification, len(creds), budget})
	}

	t.AppendFooter(table.Row{"", "", "Total", total})
	t.Render()
	return nil
}
