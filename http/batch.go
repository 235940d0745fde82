package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/sitepush"
)

// MaxBatchSize is the provider's limit on notifications per batch request.
const MaxBatchSize = 100

// ErrUnanswered marks a notification the batch response did not answer.
var ErrUnanswered = errors.New("batch response has no part for this notification")

// SubmitBatch publishes up to MaxBatchSize notifications in one
// multipart/mixed request. Parts are correlated by Content-ID; a part the
// response leaves out is indeterminate.
func (s *IndexingService) SubmitBatch(ctx context.Context, client *http.Client, urls []string) []sitepush.Outcome {
	outcomes := make([]sitepush.Outcome, len(urls))
	for i, u := range urls {
		outcomes[i] = sitepush.Outcome{URL: u, Err: ErrUnanswered}
	}
	if len(urls) == 0 {
		return outcomes
	}
	if len(urls) > MaxBatchSize {
		return fail(outcomes, sitepush.Errorf(sitepush.EINVALID, "batch of %d exceeds limit of %d", len(urls), MaxBatchSize))
	}

	body, contentType, err := s.encodeBatch(urls)
	if err != nil {
		return fail(outcomes, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.batchEndpoint, body)
	if err != nil {
		return fail(outcomes, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fail(outcomes, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := errorMessage(resp.StatusCode, data)
		for i := range outcomes {
			outcomes[i] = sitepush.Outcome{URL: urls[i], StatusCode: resp.StatusCode, Message: msg}
		}
		return outcomes
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return fail(outcomes, fmt.Errorf("unexpected batch response type %q", resp.Header.Get("Content-Type")))
	}

	mr := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			for i := range outcomes {
				if errors.Is(outcomes[i].Err, ErrUnanswered) {
					outcomes[i].Err = err
				}
			}
			break
		}

		idx, ok := partIndex(part.Header.Get("Content-ID"), len(urls))
		if !ok {
			continue
		}

		inner, err := http.ReadResponse(bufio.NewReader(part), nil)
		if err != nil {
			outcomes[idx] = sitepush.Outcome{URL: urls[idx], Err: fmt.Errorf("reading batch part: %w", err)}
			continue
		}
		data, _ := io.ReadAll(io.LimitReader(inner.Body, maxErrorBody))
		inner.Body.Close()

		outcomes[idx] = sitepush.Outcome{
			URL:        urls[idx],
			StatusCode: inner.StatusCode,
			Message:    errorMessage(inner.StatusCode, data),
		}
	}

	return outcomes
}

// encodeBatch builds the multipart/mixed body. Each part is an
// application/http publish request with Content-ID <item-N>, N counting
// from one.
func (s *IndexingService) encodeBatch(urls []string) (io.Reader, string, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("invalid endpoint: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, u := range urls {
		payload, err := json.Marshal(notification{URL: u, Type: sitepush.NotificationType})
		if err != nil {
			return nil, "", err
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Type", "application/http")
		h.Set("Content-ID", fmt.Sprintf("<item-%d>", i+1))
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		fmt.Fprintf(pw, "POST %s HTTP/1.1\r\n", endpoint.RequestURI())
		fmt.Fprintf(pw, "Content-Type: application/json\r\n")
		fmt.Fprintf(pw, "Content-Length: %d\r\n\r\n", len(payload))
		if _, err := pw.Write(payload); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, "multipart/mixed; boundary=" + mw.Boundary(), nil
}

// partIndex maps a response Content-ID such as <response-item-3> to a
// zero-based index.
func partIndex(contentID string, n int) (int, bool) {
	id := strings.Trim(strings.TrimSpace(contentID), "<>")
	id = strings.TrimPrefix(id, "response-")
	id = strings.TrimPrefix(id, "item-")
	i, err := strconv.Atoi(id)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// fail sets err on every outcome.
func fail(outcomes []sitepush.Outcome, err error) []sitepush.Outcome {
	for i := range outcomes {
		outcomes[i].Err = err
		outcomes[i].StatusCode = 0
	}
	return outcomes
}
