package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	lru "github.com/hashicorp/golang-lru/v2"

	"wikiharvest/internal/config"
	"wikiharvest/internal/types"
)

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client  *http.Client
	baseURL *url.URL
	cfg     *config.FetcherConfig
	wikiCfg *config.WikiConfig
	robots  *robotsManager
	cache   *lru.Cache[types.PageID, *types.Page]
	logger  *slog.Logger
}

// NewHTTPFetcher creates an HTTP fetcher for the configured wiki.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	base, err := url.Parse(cfg.Wiki.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Fetcher.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decompression handled here, including brotli
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetcher.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetcher.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetcher.MaxRedirects)
		}
		return nil
	}

	client := &http.Client{
		Transport:     transport,
		Timeout:       cfg.Fetcher.Timeout,
		CheckRedirect: redirectPolicy,
	}

	f := &HTTPFetcher{
		client:  client,
		baseURL: base,
		cfg:     &cfg.Fetcher,
		wikiCfg: &cfg.Wiki,
		logger:  logger.With("component", "http_fetcher"),
	}

	if cfg.Fetcher.CacheSize > 0 {
		cache, err := lru.New[types.PageID, *types.Page](cfg.Fetcher.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		f.cache = cache
	}
	if cfg.Fetcher.RespectRobotsTxt {
		f.robots = newRobotsManager(client, cfg.Wiki.UserAgent, logger)
	}
	return f, nil
}

// PageURL resolves the article URL for a page identifier.
func (f *HTTPFetcher) PageURL(id types.PageID) *url.URL {
	u := *f.baseURL
	u.Path = u.Path + string(id)
	return &u
}

// Fetch retrieves one page, consulting the in-process cache first.
func (f *HTTPFetcher) Fetch(ctx context.Context, id types.PageID) (*types.Page, error) {
	if f.cache != nil {
		if page, ok := f.cache.Get(id); ok {
			f.logger.Debug("page cache hit", "page", string(id))
			return page, nil
		}
	}

	pageURL := f.PageURL(id)
	if f.robots != nil && !f.robots.Allowed(ctx, pageURL) {
		return nil, &types.FetchError{ID: id, Err: types.ErrRobotsBlocked}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, &types.FetchError{ID: id, Err: err}
	}
	req.Header.Set("User-Agent", f.wikiCfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{ID: id, Err: err, Retryable: isRetryableNetErr(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &types.FetchError{ID: id, StatusCode: resp.StatusCode, Err: types.ErrNotFound}
	case resp.StatusCode >= 400:
		return nil, &types.FetchError{
			ID:         id,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("http status %s", resp.Status),
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	body, err := decodeBody(resp, f.cfg.MaxBodySize)
	if err != nil {
		return nil, &types.FetchError{ID: id, StatusCode: resp.StatusCode, Err: err}
	}

	page := &types.Page{
		ID:         id,
		Body:       body,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		FetchedAt:  time.Now(),
	}
	if f.cache != nil {
		f.cache.Add(id, page)
	}
	return page, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decodeBody reads the response body, applying the advertised content
// encoding and capping the read at maxBody bytes.
func decodeBody(resp *http.Response, maxBody int64) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		reader = brotli.NewReader(reader)
	case "gzip":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fr := flate.NewReader(reader)
		defer fr.Close()
		reader = fr
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > maxBody {
		return nil, fmt.Errorf("body exceeds max size of %d bytes", maxBody)
	}
	return body, nil
}

func isRetryableNetErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
