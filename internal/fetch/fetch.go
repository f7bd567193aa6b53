// Package fetch retrieves the registry documents from HTTP(S) URLs or local
// files and memoizes each source for the lifetime of the process.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultMaxBytes bounds a single document download.
const DefaultMaxBytes = 16 << 20

// Fetcher retrieves the raw bytes of a source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Options configures HTTP retrieval.
type Options struct {
	// Timeout bounds one request. Zero means no client timeout.
	Timeout time.Duration
	// MaxBytes bounds the response body. Zero uses DefaultMaxBytes.
	MaxBytes int64
	// UserAgent is sent with every request when set.
	UserAgent string
}

// HTTPFetcher fetches http and https URLs.
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher returns an HTTPFetcher configured by opts.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		maxBytes:  maxBytes,
		userAgent: opts.UserAgent,
	}
}

// Fetch issues a GET and returns the body. Non-200 responses and bodies
// larger than the limit are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", source, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", source, f.maxBytes)
	}
	return body, nil
}

// SourceFetcher dispatches on the source form: http and https URLs go to
// the HTTP fetcher, file:// URLs and plain paths are read from disk.
type SourceFetcher struct {
	http Fetcher
}

// NewSourceFetcher returns a SourceFetcher using httpFetcher for remote
// sources.
func NewSourceFetcher(httpFetcher Fetcher) *SourceFetcher {
	return &SourceFetcher{http: httpFetcher}
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch implements Fetcher.
func (s *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, errors.New("empty source")
	}
	if IsRemote(source) {
		return s.http.Fetch(ctx, source)
	}
	path, err := localPath(source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func localPath(source string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(source), "file:") {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing file URL %q: %w", source, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file URL %q must not name a remote host", source)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file URL %q has no path", source)
	}
	return u.Path, nil
}
