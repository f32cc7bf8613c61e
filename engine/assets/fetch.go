package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spaghettifunk/on3d/engine/core"
	"golang.org/x/sync/singleflight"
)

// Fetcher supplies the raw bytes of an archive. Timeouts and cancellation are
// carried by ctx; decoding never blocks on it.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FileFetcher reads archives from the local file system. Relative locators
// are resolved against BasePath.
type FileFetcher struct {
	BasePath string
}

func (f FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(locator, "file://")
	if !filepath.IsAbs(p) && f.BasePath != "" {
		p = filepath.Join(f.BasePath, p)
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: archive %s", core.ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", p, err)
	}
	return data, nil
}

// HTTPFetcher downloads archives with a GET request.
type HTTPFetcher struct {
	client  *nethttp.Client
	headers nethttp.Header
	timeout time.Duration
}

type HTTPOption func(*HTTPFetcher)

func WithClient(client *nethttp.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		if f.headers == nil {
			f.headers = make(nethttp.Header)
		}
		f.headers.Set(key, value)
	}
}

// WithTimeout bounds every fetch; zero keeps only the caller's deadline.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{client: nethttp.DefaultClient}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = nethttp.DefaultClient
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	for key, values := range f.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == nethttp.StatusNotFound:
		return nil, fmt.Errorf("%w: fetch %s: %s", core.ErrNotFound, locator, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %s: %s", locator, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", locator, err)
	}
	return data, nil
}

type routingFetcher struct {
	file Fetcher
	http Fetcher
}

// NewFetcher routes http(s) locators to an HTTPFetcher and everything else to
// a FileFetcher rooted at basePath.
func NewFetcher(basePath string, timeout time.Duration) Fetcher {
	return &routingFetcher{
		file: FileFetcher{BasePath: basePath},
		http: NewHTTPFetcher(WithTimeout(timeout)),
	}
}

func IsRemoteLocator(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func (r *routingFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if IsRemoteLocator(locator) {
		return r.http.Fetch(ctx, locator)
	}
	return r.file.Fetch(ctx, locator)
}

// SharedFetcher collapses concurrent fetches of the same locator into one.
// Every caller receives the same slice, which must be treated as read-only.
type SharedFetcher struct {
	next  Fetcher
	group singleflight.Group
}

func NewSharedFetcher(next Fetcher) *SharedFetcher {
	return &SharedFetcher{next: next}
}

func (s *SharedFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	result, err, shared := s.group.Do(locator, func() (any, error) {
		return s.next.Fetch(ctx, locator)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		core.LogDebug("fetch: %s shared with a concurrent caller", locator)
	}
	data, _ := result.([]byte)
	return data, nil
}
