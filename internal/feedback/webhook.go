package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

const (
	defaultBatchSize     = 20
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	maxRetries           = 3
)

// WebhookOption configures a WebhookSink.
type WebhookOption func(*WebhookSink)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) WebhookOption {
	return func(s *WebhookSink) { s.headers = h }
}

// WithBatchSize sets the number of records accumulated before a flush.
func WithBatchSize(n int) WebhookOption {
	return func(s *WebhookSink) { s.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes.
func WithFlushInterval(d time.Duration) WebhookOption {
	return func(s *WebhookSink) { s.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) WebhookOption {
	return func(s *WebhookSink) { s.client.Timeout = d }
}

// WebhookSink POSTs batched feedback to a training endpoint as a JSON
// array. Records accumulate in a buffer flushed when batchSize is reached
// or flushInterval elapses. 5xx responses are retried with exponential
// backoff.
type WebhookSink struct {
	client        *http.Client
	url           string
	headers       map[string]string
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	pending []model.Feedback
	timer   *time.Timer
}

// NewWebhookSink creates a sink targeting the given URL.
func NewWebhookSink(url string, logger *zap.Logger, opts ...WebhookOption) *WebhookSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebhookSink{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit appends a record to the batch. A full batch flushes immediately; a
// timer started on the first record guarantees a flush even when the batch
// never fills. The lock is never held across the HTTP delivery, so a slow
// endpoint does not block concurrent Submit calls.
func (s *WebhookSink) Submit(_ context.Context, fb model.Feedback) error {
	s.mu.Lock()
	s.pending = append(s.pending, fb)

	if len(s.pending) >= s.batchSize {
		batch := s.takeLocked()
		s.mu.Unlock()
		return s.send(batch)
	}

	if len(s.pending) == 1 {
		s.timer = time.AfterFunc(s.flushInterval, func() {
			s.mu.Lock()
			batch := s.takeLocked()
			s.mu.Unlock()
			if err := s.send(batch); err != nil {
				s.logger.Warn("feedback flush failed", zap.Error(err))
			}
		})
	}
	s.mu.Unlock()
	return nil
}

// Close flushes any remaining records and stops the timer.
func (s *WebhookSink) Close() error {
	s.mu.Lock()
	batch := s.takeLocked()
	s.mu.Unlock()
	return s.send(batch)
}

// takeLocked detaches the pending batch and stops the timer. Caller must
// hold s.mu.
func (s *WebhookSink) takeLocked() []model.Feedback {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.pending
	s.pending = nil
	return batch
}

// send delivers one detached batch.
func (s *WebhookSink) send(batch []model.Feedback) error {
	if len(batch) == 0 {
		return nil
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("feedback: marshal: %w", err)
	}
	return s.postWithRetry(body)
}

func (s *WebhookSink) postWithRetry(body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("feedback: HTTP %d", resp.StatusCode)

		// Client errors will not succeed on retry.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
