// Package client talks to a remote submission endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"syntexapply/internal/model"
)

// ErrRejected is returned when the endpoint answers but does not accept the submission
var ErrRejected = errors.New("submission rejected by endpoint")

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 4 << 10

// Submitter posts answer sets to a /v1/apply endpoint. It satisfies flow.Submitter.
type Submitter struct {
	endpoint   string
	httpClient *http.Client
}

// NewSubmitter creates a client for baseURL, e.g. "https://apply.example.com"
func NewSubmitter(baseURL string, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Submitter{
		endpoint: strings.TrimRight(baseURL, "/") + "/v1/apply",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit sends the answers once. A transport error, a non-2xx status or a
// body with success=false all count as a failed submission.
func (s *Submitter) Submit(ctx context.Context, answers model.AnswerSet) error {
	_, err := s.SubmitWithReceipt(ctx, answers)
	return err
}

// SubmitWithReceipt sends the answers and returns the endpoint's receipt
func (s *Submitter) SubmitWithReceipt(ctx context.Context, answers model.AnswerSet) (*model.SubmissionReceipt, error) {
	payload, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("endpoint", s.endpoint).Warn("submission request failed")
		return nil, fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var receipt model.SubmissionReceipt
	decodeErr := json.Unmarshal(body, &receipt)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := receipt.Error
		if decodeErr != nil || msg == "" {
			msg = truncate(string(body), maxErrorBody)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if !receipt.Success {
		return nil, fmt.Errorf("%w: %s", ErrRejected, receipt.Error)
	}
	return &receipt, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
