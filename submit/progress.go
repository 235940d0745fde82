package submit

import (
	"time"

	"github.com/fwojciec/sitepush"
)

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int

	// ProjectID identifies the credential the event concerns.
	ProjectID string

	// SliceSize is the number of URLs assigned to the credential.
	SliceSize int

	URL     string
	Outcome sitepush.Outcome

	// Error explains why a credential was skipped.
	Error error

	Elapsed   time.Duration
	Remaining time.Duration

	// State is the terminal state on ProgressFinished.
	State State
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCredential
	ProgressSkipped
	ProgressSubmitted
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Estimator projects the time left in a run from its observed throughput.
type Estimator struct {
	total int
	done  int
	start time.Time
}

// NewEstimator creates an Estimator for total submissions starting at start.
func NewEstimator(total int, start time.Time) *Estimator {
	return &Estimator{total: total, start: start}
}

// Observe records n finished submissions.
func (e *Estimator) Observe(n int) {
	e.done += n
}

// Elapsed returns the time since the run started.
func (e *Estimator) Elapsed(now time.Time) time.Duration {
	if now.Before(e.start) {
		return 0
	}
	return now.Sub(e.start)
}

// Remaining returns the projected time to finish the outstanding
// submissions at the average rate so far. It is zero until the first
// submission finishes.
func (e *Estimator) Remaining(now time.Time) time.Duration {
	if e.done == 0 || e.done >= e.total {
		return 0
	}
	perItem := e.Elapsed(now) / time.Duration(e.done)
	return perItem * time.Duration(e.total-e.done)
}
