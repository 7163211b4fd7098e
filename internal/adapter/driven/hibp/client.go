// Package hibp implements the BreachAPI port against the Have I Been Pwned
// v3 API and the Pwned Passwords range API.
package hibp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BreachAPI = (*Client)(nil)

// Defaults applied by NewClient for zero-valued Config fields.
const (
	DefaultBaseURL         = "https://haveibeenpwned.com/api/v3"
	DefaultPasswordsURL    = "https://api.pwnedpasswords.com"
	DefaultUserAgent       = "breachwatch/1.0"
	DefaultTimeout         = 10 * time.Second
	DefaultMinRequestDelay = 1500 * time.Millisecond
)

// retryAfterFallback is used when a throttling response carries no parseable
// Retry-After header.
const retryAfterFallback = 60 * time.Second

// Config is the explicit client configuration. There is no package-level
// mutable state: every knob lives here and is fixed at construction.
type Config struct {
	APIKey          string        // required for the account lookups
	BaseURL         string        // authenticated API base
	PasswordsURL    string        // anonymous range API base
	UserAgent       string        // sent on every request
	Timeout         time.Duration // per-request bound
	MinRequestDelay time.Duration // enforced before every authenticated call; negative disables
}

// Client implements the driven.BreachAPI port.
//
// The range endpoint is anonymous and served through an in-memory caching
// transport: responses for a given prefix are cacheable and re-checking a
// vault tends to hit the same prefixes. Authenticated calls share a pacing
// gate so the minimum inter-request delay holds across goroutines.
type Client struct {
	cfg         Config
	authClient  *http.Client
	rangeClient *http.Client

	mu          sync.Mutex
	nextAllowed time.Time
}

// NewClient creates a Client, filling unset Config fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PasswordsURL == "" {
		cfg.PasswordsURL = DefaultPasswordsURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinRequestDelay == 0 {
		cfg.MinRequestDelay = DefaultMinRequestDelay
	}

	return &Client{
		cfg:        cfg,
		authClient: &http.Client{Timeout: cfg.Timeout},
		rangeClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httpcache.NewMemoryCacheTransport(),
		},
	}
}

// LookupPasswordRange fetches all suffix:count pairs for a 5-character hash
// prefix. The call is anonymous, bounded by the configured timeout, and
// never retried.
func (c *Client) LookupPasswordRange(ctx context.Context, prefix string) ([]model.RangeEntry, error) {
	endpoint := fmt.Sprintf("%s/range/%s", strings.TrimRight(c.cfg.PasswordsURL, "/"), prefix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build range request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.rangeClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("range lookup %s: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("range lookup %s: unexpected status %d", prefix, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("range lookup %s: read body: %w", prefix, err)
	}

	return parseRange(body)
}

// parseRange parses the newline-delimited SUFFIX:COUNT body of a range
// response.
func parseRange(body []byte) ([]model.RangeEntry, error) {
	lines := strings.Split(string(body), "\n")
	entries := make([]model.RangeEntry, 0, len(lines))

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		suffix, countStr, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("range line %d %q: %w", i+1, line, driven.ErrMalformed)
		}

		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("range line %d %q: bad count: %w", i+1, line, driven.ErrMalformed)
		}

		entries = append(entries, model.RangeEntry{Suffix: suffix, Count: count})
	}

	return entries, nil
}

// LookupAccountBreaches returns the full breach records for an account.
// ErrNotFound means the account appears in no breach.
func (c *Client) LookupAccountBreaches(ctx context.Context, account string) ([]model.BreachRecord, error) {
	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(account))

	body, err := c.authGet(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("breached account lookup: %w", err)
	}

	var wire []breachJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("breached account lookup: decode: %w", driven.ErrMalformed)
	}

	records := make([]model.BreachRecord, 0, len(wire))
	for _, b := range wire {
		records = append(records, b.toModel())
	}

	return records, nil
}

// LookupStealerLogs returns the domains for which the account's credentials
// were captured by stealer malware.
func (c *Client) LookupStealerLogs(ctx context.Context, account string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/stealerlogsbyemail/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(account))

	body, err := c.authGet(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("stealer log lookup: %w", err)
	}

	var domains []string
	if err := json.Unmarshal(body, &domains); err != nil {
		return nil, fmt.Errorf("stealer log lookup: decode: %w", driven.ErrMalformed)
	}

	return domains, nil
}

// LookupPastes returns the pastes the account appears in.
func (c *Client) LookupPastes(ctx context.Context, account string) ([]model.PasteHit, error) {
	endpoint := fmt.Sprintf("%s/pasteaccount/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(account))

	body, err := c.authGet(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("paste lookup: %w", err)
	}

	var wire []pasteJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("paste lookup: decode: %w", driven.ErrMalformed)
	}

	pastes := make([]model.PasteHit, 0, len(wire))
	for _, p := range wire {
		pastes = append(pastes, model.PasteHit{
			Source:     p.Source,
			Title:      p.Title,
			Date:       p.Date,
			EmailCount: p.EmailCount,
		})
	}

	return pastes, nil
}

// authGet performs an authenticated GET with pacing and rate-limit handling:
// the minimum inter-request delay is enforced first; a 429 response sleeps
// for the server-provided Retry-After and retries exactly once.
func (c *Client) authGet(ctx context.Context, endpoint string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := c.waitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("hibp-api-key", c.cfg.APIKey)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.authClient.Do(req)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			return body, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, driven.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return nil, fmt.Errorf("status %d: %w", resp.StatusCode, driven.ErrAuth)

		case http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if attempt > 0 {
				return nil, fmt.Errorf("throttled again after retry: %w", driven.ErrRateLimited)
			}
			if err := sleepCtx(ctx, retryAfter); err != nil {
				return nil, err
			}
			// Single transparent retry.

		default:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	}
}

// waitTurn reserves the next authenticated-call slot and sleeps until it.
func (c *Client) waitTurn(ctx context.Context) error {
	if c.cfg.MinRequestDelay <= 0 {
		return ctx.Err()
	}

	c.mu.Lock()
	start := c.nextAllowed
	if now := time.Now(); start.Before(now) {
		start = now
	}
	c.nextAllowed = start.Add(c.cfg.MinRequestDelay)
	c.mu.Unlock()

	return sleepCtx(ctx, time.Until(start))
}

// parseRetryAfter interprets a Retry-After header as delay-seconds or an
// HTTP date, falling back to a fixed pause when absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return retryAfterFallback
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return retryAfterFallback
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
