// Package submit drives URL notifications through an account's credentials.
// It assigns each usable credential a slice of the worklist bounded by its
// remaining budget, records every outcome and stops when the worklist is
// consumed or no credential can take more work.
package submit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/sitepush"
	"golang.org/x/sync/errgroup"
)

// MaxBatchSize is the largest number of notifications the provider accepts
// in a single batch request.
const MaxBatchSize = 100

// ErrNoResponse marks a batch part the provider never answered.
var ErrNoResponse = errors.New("no response for batch part")

// State is a step of the scheduler's state machine.
type State int

const (
	StateIdle State = iota
	StateSelectingCredential
	StateAuthorizing
	StateSubmitting
	StateRecording
	StateDone
	StateExhausted
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectingCredential:
		return "selecting-credential"
	case StateAuthorizing:
		return "authorizing"
	case StateSubmitting:
		return "submitting"
	case StateRecording:
		return "recording"
	case StateDone:
		return "done"
	case StateExhausted:
		return "exhausted"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateExhausted || s == StateAborted
}

// Scheduler submits a worklist using the credentials of one account.
// A Scheduler runs one worklist at a time.
type Scheduler struct {
	Credentials    sitepush.CredentialService
	Ledger         sitepush.QuotaLedger
	Authenticator  sitepush.Authenticator
	Submitter      sitepush.Submitter
	BatchSubmitter sitepush.BatchSubmitter
	Records        sitepush.RecordService
	RateLimiter    sitepush.RateLimiter

	// Confirmer is asked whether to continue after a failed submission.
	// Nil continues without asking.
	Confirmer sitepush.Confirmer

	// Mode selects per-URL requests or provider batch requests.
	// Defaults to sitepush.ModeSingle.
	Mode sitepush.SubmissionMode

	// AlwaysContinue skips the confirmation after failures.
	AlwaysContinue bool

	// BatchSize caps notifications per batch request. Defaults to and is
	// capped at MaxBatchSize.
	BatchSize int

	// Concurrency caps in-flight batch requests within a slice.
	// Defaults to 1.
	Concurrency int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	state State
}

// Run is a worklist to submit on behalf of an account.
type Run struct {
	Account *sitepush.Account
	Source  string
	URLs    []string
}

// Result summarizes a finished run.
type Result struct {
	State              State
	Total              int
	Submitted          int
	Succeeded          int
	Failed             int
	Remaining          int
	SkippedCredentials int
	Elapsed            time.Duration
}

// State returns the scheduler's current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// run holds the mutable state of one Run call.
type run struct {
	Run
	progress       ProgressFunc
	estimator      *Estimator
	result         *Result
	next           int
	alwaysContinue bool
}

func (r *run) emit(event ProgressEvent) {
	if r.progress == nil {
		return
	}
	event.Completed = r.result.Submitted
	event.Total = r.result.Total
	r.progress(event)
}

// Run submits the worklist. It returns an error only when the run cannot
// proceed at all (invalid input or a storage failure); quota exhaustion,
// authorization failures and failed submissions are reported through the
// result and progress events.
func (s *Scheduler) Run(ctx context.Context, in Run, progress ProgressFunc) (*Result, error) {
	if in.Account == nil {
		return nil, sitepush.Errorf(sitepush.EINVALID, "account required")
	}
	if in.Source == "" {
		return nil, sitepush.Errorf(sitepush.EINVALID, "source required")
	}
	mode := s.Mode
	if mode == "" {
		mode = sitepush.ModeSingle
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	begin := s.now()
	r := &run{
		Run:            in,
		progress:       progress,
		estimator:      NewEstimator(len(in.URLs), begin),
		result:         &Result{Total: len(in.URLs)},
		alwaysContinue: s.AlwaysContinue,
	}
	r.emit(ProgressEvent{Type: ProgressStarted})

	state, err := s.schedule(ctx, r, mode)
	s.setState(state)

	r.result.State = state
	r.result.Remaining = len(in.URLs) - r.next
	r.result.Elapsed = s.now().Sub(begin)
	r.emit(ProgressEvent{Type: ProgressFinished, State: state, Elapsed: r.result.Elapsed})

	return r.result, err
}

// schedule walks the account's credentials until the worklist is consumed,
// every credential has been tried, or the run is aborted.
func (s *Scheduler) schedule(ctx context.Context, r *run, mode sitepush.SubmissionMode) (State, error) {
	if len(r.URLs) == 0 {
		return StateDone, nil
	}

	s.setState(StateSelectingCredential)
	creds, err := s.Credentials.FindCredentials(ctx, sitepush.CredentialFilter{AccountID: &r.Account.ID})
	if err != nil {
		return StateAborted, fmt.Errorf("load credentials: %w", err)
	}

	for _, cred := range creds {
		if r.next >= len(r.URLs) {
			break
		}
		if ctx.Err() != nil {
			return StateAborted, nil
		}

		s.setState(StateSelectingCredential)
		ok, err := s.Ledger.Usable(ctx, cred)
		if err != nil {
			return StateAborted, fmt.Errorf("check quota for %s: %w", cred.ProjectID, err)
		}
		if !ok {
			r.result.SkippedCredentials++
			r.emit(ProgressEvent{
				Type:      ProgressSkipped,
				ProjectID: cred.ProjectID,
				Error:     sitepush.Errorf(sitepush.EQUOTA, "request limit exceeded for %s", cred.ProjectID),
			})
			continue
		}

		s.setState(StateAuthorizing)
		client, err := s.Authenticator.Authorize(ctx, cred)
		if err != nil {
			if ctx.Err() != nil {
				return StateAborted, nil
			}
			r.result.SkippedCredentials++
			r.emit(ProgressEvent{Type: ProgressSkipped, ProjectID: cred.ProjectID, Error: err})
			continue
		}

		n := min(cred.Budget, len(r.URLs)-r.next)
		slice := r.URLs[r.next : r.next+n]
		r.emit(ProgressEvent{Type: ProgressCredential, ProjectID: cred.ProjectID, SliceSize: n})

		var aborted bool
		if mode == sitepush.ModeBatch {
			aborted, err = s.submitBatches(ctx, r, cred, client, slice)
		} else {
			aborted, err = s.submitEach(ctx, r, cred, client, slice)
		}
		if err != nil {
			return StateAborted, err
		}
		if aborted {
			return StateAborted, nil
		}
	}

	if r.next >= len(r.URLs) {
		return StateDone, nil
	}
	return StateExhausted, nil
}

// submitEach sends one request per URL. The run may stop between URLs but
// never interrupts a request in flight.
func (s *Scheduler) submitEach(ctx context.Context, r *run, cred *sitepush.Credential, client *http.Client, slice []string) (bool, error) {
	inflight := context.WithoutCancel(ctx)

	for _, u := range slice {
		if ctx.Err() != nil {
			return true, nil
		}

		s.setState(StateSubmitting)
		if s.RateLimiter != nil {
			if err := s.RateLimiter.Wait(ctx, cred.ProjectID, 1); err != nil {
				if ctx.Err() != nil {
					return true, nil
				}
				return false, fmt.Errorf("rate limit: %w", err)
			}
		}
		out := s.Submitter.Submit(inflight, client, u)

		if err := s.settle(inflight, r, cred, out); err != nil {
			return false, err
		}

		if !out.Succeeded() {
			proceed, err := s.confirm(ctx, r, out)
			if err != nil || !proceed {
				return true, err
			}
		}
	}
	return false, nil
}

// submitBatches sends the slice as provider batch requests and drains every
// outcome before the slice is complete.
func (s *Scheduler) submitBatches(ctx context.Context, r *run, cred *sitepush.Credential, client *http.Client, slice []string) (bool, error) {
	if ctx.Err() != nil {
		return true, nil
	}
	s.setState(StateSubmitting)

	inflight := context.WithoutCancel(ctx)
	chunks := chunk(slice, s.batchSize())
	results := make([][]sitepush.Outcome, len(chunks))

	// A chunk not yet sent when ctx is canceled stays unattempted: its
	// results entry is nil and nothing is settled for it.
	g, gctx := errgroup.WithContext(inflight)
	g.SetLimit(s.concurrency())
	for i, urls := range chunks {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if s.RateLimiter != nil {
				if err := s.RateLimiter.Wait(ctx, cred.ProjectID, len(urls)); err != nil {
					if ctx.Err() == nil {
						results[i] = unanswered(urls, err)
					}
					return nil
				}
			}
			if ctx.Err() != nil {
				return nil
			}
			results[i] = align(urls, s.BatchSubmitter.SubmitBatch(gctx, client, urls))
			return nil
		})
	}
	_ = g.Wait()

	var failure *sitepush.Outcome
	for _, outcomes := range results {
		for _, out := range outcomes {
			if err := s.settle(inflight, r, cred, out); err != nil {
				return false, err
			}
			if failure == nil && !out.Succeeded() {
				failure = &out
			}
		}
	}

	if ctx.Err() != nil {
		return true, nil
	}
	if failure != nil {
		proceed, err := s.confirm(ctx, r, *failure)
		if err != nil || !proceed {
			return true, err
		}
	}
	return false, nil
}

// settle consumes one unit of the credential's budget for an outcome,
// records it and reports it.
func (s *Scheduler) settle(ctx context.Context, r *run, cred *sitepush.Credential, out sitepush.Outcome) error {
	s.setState(StateRecording)

	if err := s.Ledger.Consume(ctx, cred); err != nil {
		return fmt.Errorf("consume quota for %s: %w", cred.ProjectID, err)
	}

	now := s.now()
	rec := &sitepush.URLRecord{
		URL:           out.URL,
		Source:        r.Source,
		Success:       out.Succeeded(),
		LastAttemptAt: now,
	}
	if err := s.Records.UpsertRecord(ctx, rec); err != nil {
		return fmt.Errorf("record outcome for %s: %w", out.URL, err)
	}

	r.next++
	r.result.Submitted++
	if rec.Success {
		r.result.Succeeded++
	} else {
		r.result.Failed++
	}
	r.estimator.Observe(1)

	r.emit(ProgressEvent{
		Type:      ProgressSubmitted,
		ProjectID: cred.ProjectID,
		URL:       out.URL,
		Outcome:   out,
		Elapsed:   r.estimator.Elapsed(now),
		Remaining: r.estimator.Remaining(now),
	})
	return nil
}

// confirm asks whether to continue after a failure. A positive answer
// stops further questions for the rest of the run.
func (s *Scheduler) confirm(ctx context.Context, r *run, out sitepush.Outcome) (bool, error) {
	if r.alwaysContinue || s.Confirmer == nil {
		return true, nil
	}

	prompt := fmt.Sprintf("Submission of %s failed (%s). Continue?", out.URL, describe(out))
	ok, err := s.Confirmer.Confirm(ctx, prompt, true)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	if ok {
		r.alwaysContinue = true
	}
	return ok, nil
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) batchSize() int {
	if s.BatchSize <= 0 || s.BatchSize > MaxBatchSize {
		return MaxBatchSize
	}
	return s.BatchSize
}

func (s *Scheduler) concurrency() int {
	if s.Concurrency <= 0 {
		return 1
	}
	return s.Concurrency
}

// chunk splits urls into consecutive groups of at most size.
func chunk(urls []string, size int) [][]string {
	var out [][]string
	for len(urls) > size {
		out = append(out, urls[:size])
		urls = urls[size:]
	}
	if len(urls) > 0 {
		out = append(out, urls)
	}
	return out
}

// align returns exactly one outcome per URL in order. Outcomes missing from
// the provider's response are indeterminate.
func align(urls []string, outcomes []sitepush.Outcome) []sitepush.Outcome {
	aligned := make([]sitepush.Outcome, len(urls))
	for i, u := range urls {
		if i < len(outcomes) {
			aligned[i] = outcomes[i]
			if aligned[i].URL == "" {
				aligned[i].URL = u
			}
			continue
		}
		aligned[i] = sitepush.Outcome{URL: u, Err: ErrNoResponse}
	}
	return aligned
}

func unanswered(urls []string, err error) []sitepush.Outcome {
	outcomes := make([]sitepush.Outcome, len(urls))
	for i, u := range urls {
		outcomes[i] = sitepush.Outcome{URL: u, Err: err}
	}
	return outcomes
}
