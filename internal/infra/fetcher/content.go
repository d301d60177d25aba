package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-shiori/go-readability"

	"feed-digest/internal/resilience/circuitbreaker"
)

var (
	// ErrTooManyRedirects indicates a redirect chain exceeded the limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates an article response exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrNoReadableContent indicates extraction found nothing usable.
	ErrNoReadableContent = errors.New("no readable content found")
)

// ReadabilityFetcher fetches article pages and extracts clean text
// using the Mozilla Readability algorithm. It is used to enhance feed
// entries whose bodies are too short to summarize well.
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ContentConfig
	userAgent      string
}

// NewReadabilityFetcher creates a ReadabilityFetcher with the given
// configuration.
func NewReadabilityFetcher(cfg Config) *ReadabilityFetcher {
	f := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		config:         cfg.Content,
		userAgent:      cfg.UserAgent,
	}

	f.client = &http.Client{
		Timeout: cfg.Content.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			return validateArticleURL(req.URL)
		},
	}

	return f
}

// FetchContent fetches the page at urlStr and returns extracted article
// text. Any failure is returned to the caller, which falls back to the
// feed body; content fetching never fails an item.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid article URL %q: %w", urlStr, err)
	}
	if err := validateArticleURL(u); err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// doFetch performs the HTTP request and Readability extraction.
func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("article request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	pageURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}

	if article.TextContent == "" {
		if article.Content == "" {
			return "", ErrNoReadableContent
		}
		return article.Content, nil
	}
	return article.TextContent, nil
}

// validateArticleURL restricts article fetches to HTTP(S) targets.
func validateArticleURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported article URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("article URL has no host")
	}
	return nil
}
