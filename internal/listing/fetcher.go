package listing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/proxy"

	"github.com/nao1215/latestver/internal/model"
)

// Fetcher retrieves listing pages over HTTP.
// A Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	// client performs the requests and applies the retry policy.
	client *retryablehttp.Client

	// timeout bounds a single request attempt, including reading the body.
	timeout time.Duration

	// retries is the number of additional attempts after a failed one.
	// Only connection errors and 5xx/429 responses are retried.
	retries int

	// retryWaitMin and retryWaitMax bound the backoff between attempts.
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the number of body bytes read.
	maxBodySize int64

	// headers are added to every request.
	headers map[string]string

	// proxyURL routes requests through an HTTP or SOCKS5 proxy when set.
	proxyURL string

	// logger receives request and retry diagnostics.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the timeout of a single request attempt.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetries sets how many times a failed request is retried.
// Zero means a single attempt.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithRetryWait sets the minimum and maximum backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.retryWaitMin = minWait
		f.retryWaitMax = maxWait
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
// Bodies larger than this are truncated. Non-positive values keep the default.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds custom HTTP headers to every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithProxy routes requests through a proxy.
// Supported forms are http://host:port, https://host:port,
// socks5://host:port and socks5h://host:port.
func WithProxy(proxyURL string) FetcherOption {
	return func(f *Fetcher) {
		f.proxyURL = proxyURL
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher. It fails only when the proxy URL is invalid.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      30 * time.Second,
		retries:      0,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 10 * time.Second,
		userAgent:    "latestver (+https://github.com/nao1215/latestver)",
		maxBodySize:  10 * 1024 * 1024, // 10MB
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
	}
	transport = transport.Clone()

	if f.proxyURL != "" {
		if err := configureProxy(transport, f.proxyURL); err != nil {
			return nil, err
		}
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}
	client.RetryMax = f.retries
	client.RetryWaitMin = f.retryWaitMin
	client.RetryWaitMax = f.retryWaitMax
	client.Logger = f.logger
	// Keep the final response so non-2xx statuses can be reported with their code.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	f.client = client

	return f, nil
}

// configureProxy routes transport through the proxy described by raw.
func configureProxy(transport *http.Transport, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidProxy, raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidProxy, raw)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidProxy, raw, err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidProxy, raw, u.Scheme)
	}

	return nil
}

// Fetch retrieves the page at pageURL.
// Any failure to obtain a 2xx response is returned as a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("fetching listing", "url", pageURL, "retries", f.retries)

	resp, err := f.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &TransportError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	// Read one byte past the limit to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     resp.Header,
		Raw:         body,
		FetchedAt:   time.Now(),
	}
	if int64(len(body)) > f.maxBodySize {
		page.Raw = body[:f.maxBodySize]
		page.Truncated = true
		f.logger.Warn("listing body truncated", "url", pageURL, "limit", f.maxBodySize)
	}
	page.ComputeHash()

	f.logger.Debug("listing fetched",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(page.Raw),
	)

	return page, nil
}
