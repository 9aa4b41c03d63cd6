package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxRetryAttempts   = 10
)

// RetryPolicy controls retry behavior for outbound requests.
type RetryPolicy struct {
	Attempts int           // Total attempts including the first request
	Delay    time.Duration // Base delay, doubled after each failed attempt
}

// HTTPRequest describes one outbound call. Per-request Timeout and Retries
// override the service defaults when set.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	Timeout time.Duration
	Retries *RetryPolicy
}

// HTTPResponse is the outcome of a successful call (status < 400).
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       string
	JSON       any // Parsed body when the response is valid JSON
}

// HTTPError is returned for responses with status >= 400. Client errors
// (4xx) are not retried; only 5xx and transport failures are.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the error is worth retrying.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500
}

// HTTPService performs outbound HTTP calls with timeout and retry handling.
// Executors depend on this interface, never on a concrete client.
type HTTPService interface {
	Do(ctx context.Context, req HTTPRequest) (*HTTPResponse, error)
}

type httpService struct {
	client  *http.Client
	retries RetryPolicy
	logger  *slog.Logger
}

// NewHTTPService creates an HTTP service with the given default timeout and
// retry policy.
func NewHTTPService(timeout time.Duration, retries RetryPolicy, logger *slog.Logger) HTTPService {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	if retries.Attempts < 1 {
		retries.Attempts = 1
	}

	return &httpService{
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
	}
}

func (s *httpService) Do(ctx context.Context, req HTTPRequest) (*HTTPResponse, error) {
	retries := s.retries
	if req.Retries != nil {
		retries = *req.Retries
	}

	if retries.Attempts < 1 {
		retries.Attempts = 1
	}

	if retries.Attempts > maxRetryAttempts {
		retries.Attempts = maxRetryAttempts
	}

	var lastErr error

	delay := retries.Delay

	for attempt := 1; attempt <= retries.Attempts; attempt++ {
		if attempt > 1 {
			s.logger.DebugContext(ctx, "Retrying HTTP request",
				"url", req.URL, "attempt", attempt, "delay", delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			delay *= 2
		}

		resp, err := s.do(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			break
		}

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", retries.Attempts, lastErr)
}

func (s *httpService) do(ctx context.Context, req HTTPRequest) (*HTTPResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	result := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(respBody),
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		result.JSON = parsed
	}

	return result, nil
}
