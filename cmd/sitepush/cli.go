package main

import (
	"context"
	"io"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/oauth"
	"github.com/fwojciec/sitepush/sqlite"
	"github.com/fwojciec/sitepush/submit"
	"github.com/fwojciec/sitepush/worklist"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	DB          *sqlite.DB
	Accounts    sitepush.AccountService
	Credentials sitepush.CredentialService
	Records     sitepush.RecordService
	Ledger      sitepush.QuotaLedger
	Sitemaps    sitepush.SitemapService
	Verifier    sitepush.OwnershipVerifier
	Worklists   *worklist.Builder
	Scheduler   *submit.Scheduler
	Confirmer   sitepush.Confirmer
	Exchanger   Exchanger
}

// Exchanger runs the OAuth consent flow and returns a refresh token.
type Exchanger interface {
	Exchange(ctx context.Context, secret *oauth.ClientSecret, open func(authURL string) error) (string, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"SITEPUSH_DB" help:"Database path (default: ~/.sitepush/sitepush.db)"`
	Verbose bool   `short:"v" help:"Log provider calls to stderr"`

	Index      IndexCmd      `cmd:"" help:"Submit sitemap URLs to the Indexing API"`
	Account    AccountCmd    `cmd:"" help:"Manage accounts"`
	Credential CredentialCmd `cmd:"" help:"Manage OAuth credentials"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Sitemap     string `arg:"" help:"Sitemap URL"`
	Email       string `arg:"" help:"Account email"`
	Filter      string `short:"f" enum:"none,successful,fresh" default:"successful" help:"Leave out URLs already submitted: none, successful, fresh (successful within 24h)"`
	Order       string `short:"o" enum:"preserve,sort,shuffle" default:"preserve" help:"URL order: preserve, sort, shuffle"`
	Seed        uint64 `help:"Shuffle seed (default: derived from the sitemap URL)"`
	Mode        string `short:"m" enum:"single,batch" default:"single" help:"Submission mode: single or batch"`
	Yes         bool   `short:"y" help:"Don't ask before starting or after failures"`
	PerMinute   int    `name:"per-minute" default:"600" help:"Notifications per minute per project"`
	Burst       int    `default:"1" help:"Notifications a project may send back to back"`
	Concurrency int    `short:"c" default:"1" help:"Concurrent batch requests per credential"`
}

// AccountCmd groups the account subcommands.
type AccountCmd struct {
	Add  AccountAddCmd  `cmd:"" help:"Add an account or update its verification token"`
	List AccountListCmd `cmd:"" help:"List accounts with their remaining budget"`
}

// AccountAddCmd is the "account add" subcommand.
type AccountAddCmd struct {
	Email        string `arg:"" help:"Account email"`
	Verification string `help:"Search console verification token"`
}

// AccountListCmd is the "account list" subcommand.
type AccountListCmd struct{}

// CredentialCmd groups the credential subcommands.
type CredentialCmd struct {
	Add       CredentialAddCmd       `cmd:"" help:"Import a client secret with an existing refresh token"`
	Authorize CredentialAuthorizeCmd `cmd:"" help:"Obtain a refresh token through the consent screen"`
	List      CredentialListCmd      `cmd:"" help:"List credentials and their budgets"`
	Delete    CredentialDeleteCmd    `cmd:"" help:"Delete a credential"`
}

// CredentialAddCmd is the "credential add" subcommand.
type CredentialAddCmd struct {
	Email        string `arg:"" help:"Account email"`
	ClientJSON   string `arg:"" type:"existingfile" help:"Client secret JSON downloaded from the cloud console"`
	RefreshToken string `required:"" help:"OAuth refresh token"`
}

// CredentialAuthorizeCmd is the "credential authorize" subcommand.
type CredentialAuthorizeCmd struct {
	Email      string `arg:"" help:"Account email"`
	ClientJSON string `arg:"" type:"existingfile" help:"Client secret JSON downloaded from the cloud console"`
	Addr       string `env:"SITEPUSH_CALLBACK_ADDR" default:"127.0.0.1:0" help:"Callback listen address"`
}

// CredentialListCmd is the "credential list" subcommand.
type CredentialListCmd struct {
	Email string `arg:"" optional:"" help:"Only list credentials of this account"`
}

// CredentialDeleteCmd is the "credential delete" subcommand.
type CredentialDeleteCmd struct {
	ID    string `arg:"" help:"Credential ID"`
	Force bool   `help:"Confirm deletion"`
}
