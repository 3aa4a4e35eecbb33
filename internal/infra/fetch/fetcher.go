package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aalvaropc/kipu/internal/domain"
)

// Result captures the fetched body and metadata.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Fetcher downloads remote documents over HTTP.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option allows configuring a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the default timeout applied to fetches.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) { f.timeout = timeout }
}

// WithClient sets a custom HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithMaxBytes caps the response body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

const defaultMaxBytes = 16 << 20 // 16 MiB

// NewFetcher builds a Fetcher with a default client and timeout.
func NewFetcher(opts ...Option) *Fetcher {
	cfg := DefaultConfig()
	f := &Fetcher{
		client:   New(cfg),
		timeout:  cfg.Timeout,
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document at url and returns its body.
// Non-2xx statuses are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Result, error) {
	start := time.Now()
	ctxWithTimeout := ctx
	cancel := func() {}
	if f.timeout > 0 {
		ctxWithTimeout, cancel = context.WithTimeout(ctx, f.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, &domain.OpError{
			Op:   "fetch.get",
			Kind: domain.KindInvalidConfig,
			Path: url,
			Err:  err,
		}
	}

	resp, err := f.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return Result{Duration: duration}, &domain.OpError{
			Op:   "fetch.get",
			Kind: domain.KindExecution,
			Path: url,
			Err:  err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Status: resp.StatusCode, Duration: duration}, &domain.OpError{
			Op:   "fetch.get",
			Kind: domain.KindExecution,
			Path: url,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Result{Status: resp.StatusCode, Duration: duration}, &domain.OpError{
			Op:   "fetch.get",
			Kind: domain.KindExecution,
			Path: url,
			Err:  err,
		}
	}
	if int64(len(body)) > f.maxBytes {
		return Result{Status: resp.StatusCode, Duration: duration}, &domain.OpError{
			Op:   "fetch.get",
			Kind: domain.KindExecution,
			Path: url,
			Err:  fmt.Errorf("response exceeds %d bytes", f.maxBytes),
		}
	}

	return Result{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Duration:    time.Since(start),
	}, nil
}
