package sitepush

import (
	"context"
	"net/http"
)

// IndexingEndpoint is the Indexing API publish endpoint.
const IndexingEndpoint = "https://indexing.googleapis.com/v3/urlNotifications:publish"

// NotificationType is the notification type sent for every URL.
const NotificationType = "URL_UPDATED"

// Authenticator exchanges a credential's refresh token for an authorized
// HTTP client.
type Authenticator interface {
	// Authorize returns a client that attaches a valid access token to
	// every request. Returns EUNAUTHORIZED when the credential cannot be
	// authorized.
	Authorize(ctx context.Context, cred *Credential) (*http.Client, error)
}

// OutcomeStatus classifies a single submission attempt.
type OutcomeStatus int

// OutcomeStatus constants.
const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeFailure
	OutcomeIndeterminate
)

// String returns a lowercase name for the status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "indeterminate"
	}
}

// ClassifyStatus maps an HTTP status code to an outcome status.
// Codes outside [200,600) never came from the provider.
func ClassifyStatus(code int) OutcomeStatus {
	switch {
	case code >= 200 && code < 300:
		return OutcomeSuccess
	case code >= 300 && code < 600:
		return OutcomeFailure
	default:
		return OutcomeIndeterminate
	}
}

// Outcome is the result of submitting one URL.
type Outcome struct {
	URL        string
	StatusCode int    // zero when no response was received
	Message    string // provider error message, if any
	Err        error  // transport error, if any
}

// Status classifies the outcome.
func (o Outcome) Status() OutcomeStatus {
	if o.Err != nil && o.StatusCode == 0 {
		return OutcomeIndeterminate
	}
	return ClassifyStatus(o.StatusCode)
}

// Succeeded reports whether the provider accepted the notification.
func (o Outcome) Succeeded() bool {
	return o.Status() == OutcomeSuccess
}

// Submitter publishes one URL notification per request.
type Submitter interface {
	Submit(ctx context.Context, client *http.Client, url string) Outcome
}

// BatchSubmitter publishes many URL notifications using the provider's
// batch endpoint.
type BatchSubmitter interface {
	// SubmitBatch returns exactly one outcome per URL, in input order.
	// URLs the provider never answered are reported as indeterminate.
	SubmitBatch(ctx context.Context, client *http.Client, urls []string) []Outcome
}

// SubmissionMode selects how a credential's slice is sent.
type SubmissionMode string

// SubmissionMode constants.
const (
	ModeSingle SubmissionMode = "single"
	ModeBatch  SubmissionMode = "batch"
)

// Validate returns an error if the mode is unknown.
func (m SubmissionMode) Validate() error {
	switch m {
	case ModeSingle, ModeBatch:
		return nil
	}
	return Errorf(EINVALID, "unknown submission mode %q", string(m))
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string, def bool) (bool, error)
}
