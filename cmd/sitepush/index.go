package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/submit"
	"github.com/fwojciec/sitepush/worklist"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// estimateEvery is how many submissions pass between time estimates.
const estimateEvery = 10

// maxURLWidth bounds URLs on progress lines.
const maxURLWidth = 80

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	sitemapURL := strings.TrimSpace(c.Sitemap)
	if sitemapURL == "" {
		return nil
	}
	if c.PerMinute <= 0 || c.Burst <= 0 {
		err := sitepush.Errorf(sitepush.EINVALID, "--per-minute and --burst must be positive, got %d and %d", c.PerMinute, c.Burst)
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	account, err := deps.Accounts.FindAccountByEmail(deps.Ctx, c.Email)
	if sitepush.ErrorCode(err) == sitepush.ENOTFOUND {
		fmt.Fprintf(deps.Stdout, "No account %q. Use 'sitepush account add' to create one.\n", c.Email)
		return nil
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	urls, err := deps.Sitemaps.FetchURLs(deps.Ctx, sitemapURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	if account.Verification != "" {
		ok, err := deps.Verifier.VerifyOwnership(deps.Ctx, sitemapURL, account.Verification)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
			return err
		}
		if !ok {
			fmt.Fprintf(deps.Stdout, "Verification token %q not found for %s.\n", account.Verification, sitemapURL)
			proceed, err := deps.Confirmer.Confirm(deps.Ctx, "Continue without verified ownership?", false)
			if err != nil {
				return err
			}
			if !proceed {
				return nil
			}
		}
	}

	work, err := deps.Worklists.Build(deps.Ctx, urls, worklist.Options{
		Source: sitemapURL,
		Filter: sitepush.FilterMode(c.Filter),
		Order:  sitepush.OrderPolicy(c.Order),
		Seed:   c.Seed,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d URLs in %s, %d to submit.\n", len(urls), sitemapURL, len(work))
	if len(work) == 0 {
		return nil
	}

	if !c.Yes {
		prompt := fmt.Sprintf("Submit %d URLs using %s?", len(work), account.Email)
		proceed, err := deps.Confirmer.Confirm(deps.Ctx, prompt, true)
		if err != nil {
			return err
		}
		if !proceed {
			return nil
		}
	}

	result, err := deps.Scheduler.Run(deps.Ctx, submit.Run{
		Account: account,
		Source:  sitemapURL,
		URLs:    work,
	}, progressPrinter(deps.Stdout))
	if result != nil {
		printSummary(deps.Stdout, result)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitepush.ErrorMessage(err))
		return err
	}

	return nil
}

// progressPrinter writes one line per scheduler event.
func progressPrinter(w io.Writer) submit.ProgressFunc {
	return func(event submit.ProgressEvent) {
		switch event.Type {
		case submit.ProgressCredential:
			fmt.Fprintf(w, "Using project %s for %d URLs\n", event.ProjectID, event.SliceSize)
		case submit.ProgressSkipped:
			fmt.Fprintf(w, "%s project %s: %s\n", text.FgYellow.Sprint("SKIP"), event.ProjectID, sitepush.ErrorMessage(event.Error))
		case submit.ProgressSubmitted:
			url := submit.TruncateURL(event.URL, maxURLWidth)
			if event.Outcome.Succeeded() {
				fmt.Fprintf(w, "[%d/%d] %s %s\n", event.Completed, event.Total, text.FgGreen.Sprint("OK  "), url)
			} else {
				fmt.Fprintf(w, "[%d/%d] %s %s (%s)\n", event.Completed, event.Total, text.FgRed.Sprint("FAIL"), url, submit.Describe(event.Outcome))
			}
			if event.Completed%estimateEvery == 0 && event.Remaining > 0 {
				fmt.Fprintf(w, "Est. time remaining: %s\n", submit.FormatDuration(event.Remaining))
			}
		}
	}
}

// printSummary renders the run result as a table.
func printSummary(w io.Writer, result *submit.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Result", result.State.String()},
		{"Submitted", result.Submitted},
		{"Succeeded", result.Succeeded},
		{"Failed", result.Failed},
		{"Remaining", result.Remaining},
		{"Skipped credentials", result.SkippedCredentials},
		{"Elapsed", submit.FormatDuration(result.Elapsed)},
	})
	t.Render()
}
