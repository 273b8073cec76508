package fetcher

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// robotsCacheSize bounds the number of hosts whose rules are kept; a crawl
// normally touches a single wiki host, so this is generous.
const robotsCacheSize = 16

// robotsManager fetches, parses, and enforces robots.txt rules per host.
type robotsManager struct {
	client    *http.Client
	userAgent string
	cache     *lru.Cache[string, *robotsData]
	logger    *slog.Logger
}

// robotsData holds parsed robots.txt rules for one host.
type robotsData struct {
	disallowed []string
	allowed    []string
	fetchedAt  time.Time
}

func newRobotsManager(client *http.Client, userAgent string, logger *slog.Logger) *robotsManager {
	cache, _ := lru.New[string, *robotsData](robotsCacheSize)
	return &robotsManager{
		client:    client,
		userAgent: userAgent,
		cache:     cache,
		logger:    logger.With("component", "robots"),
	}
}

// Allowed reports whether the host's robots.txt permits fetching u.
// An unreachable or missing robots.txt allows everything.
func (rm *robotsManager) Allowed(ctx context.Context, u *url.URL) bool {
	origin := u.Scheme + "://" + u.Host
	data, ok := rm.cache.Get(origin)
	if !ok {
		data = rm.fetch(ctx, origin)
		rm.cache.Add(origin, data)
	}
	if data == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	// Allow rules override disallow rules.
	for _, pattern := range data.allowed {
		if matchRobotsPattern(pattern, path) {
			return true
		}
	}
	for _, pattern := range data.disallowed {
		if matchRobotsPattern(pattern, path) {
			return false
		}
	}
	return true
}

// fetch downloads and parses robots.txt for an origin. A nil result means
// no restrictions apply.
func (rm *robotsManager) fetch(ctx context.Context, origin string) *robotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rm.userAgent)

	resp, err := rm.client.Do(req)
	if err != nil {
		rm.logger.Debug("robots.txt unreachable", "origin", origin, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	return parseRobots(resp.Body)
}

// parseRobots extracts the Allow/Disallow rules that apply to all agents.
// Only the wildcard User-agent group is honored; per-agent groups for other
// crawlers do not apply to us.
func parseRobots(r io.Reader) *robotsData {
	data := &robotsData{fetchedAt: time.Now()}
	scanner := bufio.NewScanner(r)
	inWildcardGroup := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			inWildcardGroup = value == "*"
		case "disallow":
			if inWildcardGroup && value != "" {
				data.disallowed = append(data.disallowed, value)
			}
		case "allow":
			if inWildcardGroup && value != "" {
				data.allowed = append(data.allowed, value)
			}
		}
	}
	return data
}

// matchRobotsPattern matches a path against a robots.txt pattern supporting
// the * wildcard and the $ end anchor.
func matchRobotsPattern(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx < 0 {
			return false
		}
		// The first literal must match at the start of the path.
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(part)
	}

	if anchored {
		// Pattern ending in * consumes the rest of the path.
		if parts[len(parts)-1] == "" {
			return true
		}
		return pos == len(path)
	}
	return true
}
