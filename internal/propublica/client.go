package propublica

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://projects.propublica.org/nonprofits/api/v2"
	defaultXMLBaseURL = "https://projects.propublica.org/nonprofits/download-xml"
	defaultUserAgent  = "charity-prospector/1.0"

	// The free API asks for ~0.5s between requests; the XML mirror is larger
	// and flakier and gets a longer floor plus one extra retry attempt.
	defaultRequestDelay = 500 * time.Millisecond
	documentDelayFloor  = 1500 * time.Millisecond

	jsonAttempts = 3
	docAttempts  = 4

	defaultJSONBackoff   = 10 * time.Second
	defaultDocBackoff    = 15 * time.Second
	defaultTransportWait = 5 * time.Second
)

// Client fetches nonprofit data from the ProPublica Nonprofit Explorer API
// and the IRS e-file XML mirror.
type Client interface {
	// Search queries by keyword with an optional 2-letter state filter and a
	// zero-based page. A response without an organizations key decodes with
	// Organizations == nil; callers treat that as an API error, distinct from
	// an empty page ending pagination.
	Search(ctx context.Context, keyword, state string, page int) (*SearchResponse, error)

	// Organization fetches the detail record for one EIN.
	Organization(ctx context.Context, ein string) (*OrgDetail, error)

	// FilingDocument downloads the raw Form 990 e-file for an object ID.
	FilingDocument(ctx context.Context, objectID string) ([]byte, error)
}

// Cache memoizes responses keyed by normalized request signature. Identical
// requests within the TTL window return the prior body without a network
// call.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithXMLBaseURL overrides the e-file download base URL.
func WithXMLBaseURL(u string) Option {
	return func(c *httpClient) { c.xmlBaseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithCache attaches a response cache with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *httpClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRequestDelay sets the minimum inter-request delay. Values below the
// default floor are raised to it.
func WithRequestDelay(d time.Duration) Option {
	return func(c *httpClient) {
		if d < defaultRequestDelay {
			d = defaultRequestDelay
		}
		c.requestDelay = d
	}
}

// WithBackoff overrides the 429 backoff bases and the fixed transport-error
// wait. Intended for tests.
func WithBackoff(jsonBase, docBase, transportWait time.Duration) Option {
	return func(c *httpClient) {
		c.jsonBackoff = jsonBase
		c.docBackoff = docBase
		c.transportWait = transportWait
	}
}

type httpClient struct {
	baseURL       string
	xmlBaseURL    string
	http          *http.Client
	limiter       *rate.Limiter
	docLimiter    *rate.Limiter
	cache         Cache
	cacheTTL      time.Duration
	requestDelay  time.Duration
	jsonBackoff   time.Duration
	docBackoff    time.Duration
	transportWait time.Duration
}

// NewClient creates a ProPublica client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:       defaultBaseURL,
		xmlBaseURL:    defaultXMLBaseURL,
		requestDelay:  defaultRequestDelay,
		jsonBackoff:   defaultJSONBackoff,
		docBackoff:    defaultDocBackoff,
		transportWait: defaultTransportWait,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}

	docDelay := c.requestDelay
	if docDelay < documentDelayFloor {
		docDelay = documentDelayFloor
	}
	c.limiter = rate.NewLimiter(rate.Every(c.requestDelay), 1)
	c.docLimiter = rate.NewLimiter(rate.Every(docDelay), 1)
	return c
}

func (c *httpClient) Search(ctx context.Context, keyword, state string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("page", strconv.Itoa(page))
	if state != "" {
		params.Set("state", state)
	}

	body, err := c.getJSON(ctx, c.baseURL+"/search.json", params)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "propublica: decode search response")
	}
	return &resp, nil
}

func (c *httpClient) Organization(ctx context.Context, ein string) (*OrgDetail, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("%s/organizations/%s.json", c.baseURL, ein), nil)
	if err != nil {
		return nil, err
	}

	var detail OrgDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, eris.Wrap(err, "propublica: decode organization detail")
	}
	return &detail, nil
}

// getJSON fetches a JSON endpoint with the standard retry policy: 429 backs
// off linearly per attempt, transport errors wait a fixed interval, any
// other non-200 fails immediately.
func (c *httpClient) getJSON(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	fullURL := rawURL
	if len(params) > 0 {
		fullURL = rawURL + "?" + params.Encode()
	}
	key := cacheKey(http.MethodGet, fullURL)

	if body, ok := c.cachedBody(ctx, key); ok {
		return body, nil
	}

	var lastErr error
	for attempt := 1; attempt <= jsonAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "propublica: rate limiter wait")
		}

		resp, err := c.do(ctx, fullURL)
		if err != nil {
			lastErr = err
			zap.L().Warn("propublica: request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if err := sleepCtx(ctx, c.transportWait); err != nil {
				return nil, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = eris.Wrap(err, "propublica: read response")
			if err := sleepCtx(ctx, c.transportWait); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			c.storeBody(ctx, key, body)
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = eris.Errorf("propublica: http 429 from %s", rawURL)
			zap.L().Warn("propublica: rate limited, backing off",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
			)
			if err := sleepCtx(ctx, c.jsonBackoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		default:
			return nil, eris.Errorf("propublica: unexpected status %d from %s", resp.StatusCode, rawURL)
		}
	}

	return nil, eris.Wrap(lastErr, "propublica: retries exhausted")
}

func (c *httpClient) FilingDocument(ctx context.Context, objectID string) ([]byte, error) {
	fullURL := c.xmlBaseURL + "?object_id=" + url.QueryEscape(objectID)
	key := cacheKey(http.MethodGet, fullURL)

	if body, ok := c.cachedBody(ctx, key); ok {
		return body, nil
	}

	var lastErr error
	for attempt := 1; attempt <= docAttempts; attempt++ {
		if err := c.docLimiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "propublica: rate limiter wait")
		}

		resp, err := c.do(ctx, fullURL)
		if err != nil {
			lastErr = err
			zap.L().Warn("propublica: document request failed, retrying",
				zap.String("object_id", objectID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if err := sleepCtx(ctx, c.transportWait); err != nil {
				return nil, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = eris.Wrap(err, "propublica: read document")
			if err := sleepCtx(ctx, c.transportWait); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = bytes.TrimPrefix(body, []byte{0xef, 0xbb, 0xbf})
			// The mirror sometimes serves HTML error pages with a 200 status;
			// treat those as transient, same as a real 429.
			if isErrorPayload(body) {
				lastErr = eris.Errorf("propublica: error payload for object %s", objectID)
				zap.L().Warn("propublica: document endpoint returned error payload, backing off",
					zap.String("object_id", objectID),
					zap.Int("attempt", attempt),
				)
				if err := sleepCtx(ctx, c.docBackoff*time.Duration(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			c.storeBody(ctx, key, body)
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = eris.Errorf("propublica: http 429 for object %s", objectID)
			if err := sleepCtx(ctx, c.docBackoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		default:
			return nil, eris.Errorf("propublica: unexpected status %d for object %s", resp.StatusCode, objectID)
		}
	}

	return nil, eris.Wrap(lastErr, "propublica: document retries exhausted")
}

func (c *httpClient) do(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "propublica: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	return c.http.Do(req)
}

func (c *httpClient) cachedBody(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx, key)
}

func (c *httpClient) storeBody(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}
	c.cache.Set(ctx, key, body, c.cacheTTL)
}

// isErrorPayload reports whether a 200 body is actually an upstream error
// page rather than an e-file.
func isErrorPayload(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("<html")) ||
		bytes.HasPrefix(trimmed, []byte("<!DOCTYPE html")) ||
		bytes.HasPrefix(trimmed, []byte("Error 429"))
}

// cacheKey returns SHA-256 hex of the normalized request signature.
// url.Values.Encode sorts parameters, so equivalent requests share a key.
func cacheKey(method, fullURL string) string {
	h := sha256.Sum256([]byte(method + "|" + fullURL))
	return fmt.Sprintf("%x", h)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "propublica: wait cancelled")
	case <-t.C:
		return nil
	}
}
