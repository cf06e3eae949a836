package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"

	"github.com/nao1215/verbcrawl/internal/log"
)

// PageFetcher fetches and parses one results page.
type PageFetcher interface {
	Fetch(ctx context.Context, address string) (Page, error)
}

// DefaultUserAgent identifies the crawler to the search service.
const DefaultUserAgent = "Mozilla/5.0 (compatible; verbcrawl; +https://github.com/nao1215/verbcrawl)"

// DefaultMaxBodySize limits how much of a results page is read.
const DefaultMaxBodySize = 10 * 1024 * 1024

// HTTPFetcher is a PageFetcher backed by net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher returns a fetcher using client. The client's Timeout is
// the per-request timeout; see NewHTTPClient.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests address and parses the listing. Network errors and
// transient statuses (429, 5xx) are returned as-is so that a RetryPolicy
// retries them; other statuses and unparseable pages are Permanent.
func (f *HTTPFetcher) Fetch(ctx context.Context, address string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, EscapeAddress(address), nil)
	if err != nil {
		return Page{}, Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru,en;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	f.logger.Debug("fetched page",
		"url", address,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		statusErr := &StatusError{Code: resp.StatusCode}
		if statusErr.Transient() {
			return Page{}, statusErr
		}
		return Page{}, Permanent(statusErr)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return Page{}, Permanent(fmt.Errorf("failed to decode response body: %w", err))
	}

	page, err := ParseListing(body)
	if err != nil {
		return Page{}, Permanent(err)
	}
	return page, nil
}

const upperhex = "0123456789ABCDEF"

// EscapeAddress percent-escapes bytes that may not appear raw in a request
// line: non-ASCII bytes, spaces and control characters. Everything else,
// including existing escapes, is left untouched.
func EscapeAddress(address string) string {
	var b strings.Builder
	b.Grow(len(address))
	for i := 0; i < len(address); i++ {
		c := address[i]
		if c > 0x20 && c < 0x7f {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// NewHTTPClient returns an HTTP client with the given per-request timeout.
// proxyURL may be empty, an http(s):// proxy, or a socks5:// proxy;
// credentials in the URL are used for proxy authentication.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, log.RedactURL(proxyURL))
		}
		switch u.Scheme {
		case "http", "https":
			transport.Proxy = http.ProxyURL(u)
		case "socks5", "socks5h":
			dialer, err := proxy.FromURL(u, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
			}
			transport.Proxy = nil
			transport.DialContext = contextDialer(dialer)
		default:
			return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// contextDialer adapts a proxy.Dialer to http.Transport.DialContext.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		// Unbuffered: a send succeeds only while the caller still waits.
		resultCh := make(chan dialResult)
		go func() {
			conn, err := d.Dial(network, addr)
			select {
			case resultCh <- dialResult{conn, err}:
			case <-ctx.Done():
				if conn != nil {
					_ = conn.Close() //nolint:errcheck // nobody uses the connection
				}
			}
		}()
		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
