package contaix

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single HTTP request
const DefaultTimeout = 10 * time.Second

// Fetcher performs single-attempt HTTP requests; callers close the body
type Fetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
	Head(ctx context.Context, url string) (*http.Response, error)
}

// HTTPFetcher is a Fetcher over net/http
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates a fetcher with the given timeout (DefaultTimeout when zero)
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "Mozilla/5.0 (compatible; contaix/1.0)",
	}
}

func (f *HTTPFetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	return f.do(ctx, http.MethodGet, url)
}

// Head follows redirects, as the default client does
func (f *HTTPFetcher) Head(ctx context.Context, url string) (*http.Response, error) {
	return f.do(ctx, http.MethodHead, url)
}

func (f *HTTPFetcher) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// URLToContents fetches url and returns its body, failing on non-2xx statuses
func URLToContents(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bad status fetching %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
