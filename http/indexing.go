// Package http implements the sitemap reader, the indexing API client and
// the ownership verifier over HTTP.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/sitepush"
)

// DefaultBatchEndpoint is the provider's batch endpoint.
const DefaultBatchEndpoint = "https://indexing.googleapis.com/batch"

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Ensure IndexingService implements the submission interfaces at compile time.
var (
	_ sitepush.Submitter      = (*IndexingService)(nil)
	_ sitepush.BatchSubmitter = (*IndexingService)(nil)
)

// IndexingService publishes URL notifications to the indexing API. The
// authorized client passed to each call supplies credentials.
type IndexingService struct {
	endpoint      string
	batchEndpoint string
	timeout       time.Duration
}

// Option configures an IndexingService.
type Option func(*IndexingService)

// WithEndpoint sets the publish endpoint.
// Defaults to sitepush.IndexingEndpoint.
func WithEndpoint(url string) Option {
	return func(s *IndexingService) {
		s.endpoint = url
	}
}

// WithBatchEndpoint sets the batch endpoint.
// Defaults to DefaultBatchEndpoint.
func WithBatchEndpoint(url string) Option {
	return func(s *IndexingService) {
		s.batchEndpoint = url
	}
}

// WithTimeout sets the timeout for each provider request.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *IndexingService) {
		s.timeout = d
	}
}

// NewIndexingService creates an IndexingService.
func NewIndexingService(opts ...Option) *IndexingService {
	s := &IndexingService{
		endpoint:      sitepush.IndexingEndpoint,
		batchEndpoint: DefaultBatchEndpoint,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// notification is the publish request body.
type notification struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Submit publishes a single URL_UPDATED notification. Transport failures
// are returned in Outcome.Err with no status code.
func (s *IndexingService) Submit(ctx context.Context, client *http.Client, url string) sitepush.Outcome {
	body, err := json.Marshal(notification{URL: url, Type: sitepush.NotificationType})
	if err != nil {
		return sitepush.Outcome{URL: url, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return sitepush.Outcome{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return sitepush.Outcome{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return sitepush.Outcome{
		URL:        url,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, data),
	}
}

// errorMessage extracts the provider's error message from a non-2xx body
// of the form {"error":{"message":"..."}}.
func errorMessage(status int, body []byte) string {
	if status >= 200 && status < 300 {
		return ""
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
