package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/goquery"
	sphttp "github.com/fwojciec/sitepush/http"
	"github.com/fwojciec/sitepush/oauth"
	"github.com/fwojciec/sitepush/quota"
	spslog "github.com/fwojciec/sitepush/slog"
	"github.com/fwojciec/sitepush/sqlite"
	"github.com/fwojciec/sitepush/submit"
	"github.com/fwojciec/sitepush/worklist"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Configuration file path. Missing files are ignored.
	ConfigPath string

	// Operator input for confirmations.
	Stdin io.Reader

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	AccountService    sitepush.AccountService
	CredentialService sitepush.CredentialService
	RecordService     sitepush.RecordService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
		Stdin:      os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitepush"),
		kong.Description("Submit sitemap URLs to the Google Indexing API across OAuth credentials."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(YAMLConfig, m.ConfigPath),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitepush --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITEPUSH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.AccountService = sqlite.NewAccountService(m.DB)
	m.CredentialService = sqlite.NewCredentialService(m.DB)
	m.RecordService = sqlite.NewRecordService(m.DB)
	deps.DB = m.DB
	deps.Accounts = m.AccountService
	deps.Credentials = m.CredentialService
	deps.Records = m.RecordService
	deps.Ledger = quota.NewLedger(m.CredentialService)
	deps.Confirmer = NewPrompt(m.Stdin, stdout)

	switch command := kongCtx.Command(); {
	case strings.HasPrefix(command, "index"):
		deps.Sitemaps = spslog.NewLoggingSitemapService(sphttp.NewSitemapService(nil), logger)
		deps.Verifier = spslog.NewLoggingOwnershipVerifier(
			sphttp.NewOwnershipVerifier(nil, goquery.NewDetector()), logger)
		deps.Worklists = worklist.NewBuilder(m.RecordService)

		indexing := sphttp.NewIndexingService()
		authenticator := oauth.NewAuthenticator()
		authenticator.Logf = func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}
		deps.Scheduler = &submit.Scheduler{
			Credentials:    m.CredentialService,
			Ledger:         deps.Ledger,
			Authenticator:  spslog.NewLoggingAuthenticator(authenticator, logger),
			Submitter:      spslog.NewLoggingSubmitter(indexing, logger),
			BatchSubmitter: spslog.NewLoggingBatchSubmitter(indexing, logger),
			Records:        m.RecordService,
			RateLimiter:    quota.NewProjectLimiter(cli.Index.PerMinute, cli.Index.Burst),
			Confirmer:      deps.Confirmer,
			Mode:           sitepush.SubmissionMode(cli.Index.Mode),
			AlwaysContinue: cli.Index.Yes,
			Concurrency:    cli.Index.Concurrency,
		}
	case strings.HasPrefix(command, "credential authorize"):
		deps.Exchanger = &oauth.Exchanger{Addr: cli.Credential.Authorize.Addr}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("SITEPUSH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitepush.db"
	}
	dir := filepath.Join(home, ".sitepush")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitepush.db")
}

func defaultConfigPath() string {
	if path := os.Getenv("SITEPUSH_CONFIG"); path != "" {
		return path
	}
	return "~/.sitepush/config.yaml"
}
