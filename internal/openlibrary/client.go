// Package openlibrary resolves authors, works and editions from the
// OpenLibrary catalog and maps them into the canonical books model.
package openlibrary

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/config"
	"github.com/lepinkainen/libris/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://openlibrary.org"
	defaultUserAgent     = "libris/1.0 (+https://github.com/lepinkainen/libris)"
	defaultTimeout       = 15 * time.Second
	defaultRatePerSecond = 3
	defaultSearchLimit   = 20
)

// Cache lifetimes per resource kind.
const (
	AuthorTTL = 30 * 24 * time.Hour
	WorkTTL   = 90 * 24 * time.Hour
	SearchTTL = 7 * 24 * time.Hour
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TTLs holds the cache lifetime for each resource kind.
type TTLs struct {
	Author time.Duration
	Work   time.Duration
	Search time.Duration
}

// Client is a cached OpenLibrary HTTP client.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	cache       *cache.CacheDB
	ttls        TTLs
	searchLimit int
}

// NewClient creates a new OpenLibrary client. Without WithCache every
// request goes to the network.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     defaultBaseURL,
		userAgent:   defaultUserAgent,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("OpenLibrary", defaultRatePerSecond),
		ttls:        TTLs{Author: AuthorTTL, Work: WorkTTL, Search: SearchTTL},
		searchLimit: defaultSearchLimit,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// NewClientFromConfig builds a client from the loaded configuration.
func NewClientFromConfig(cfg config.Config, db *cache.CacheDB) *Client {
	return NewClient(
		WithBaseURL(cfg.OpenLibrary.BaseURL),
		WithUserAgent(cfg.OpenLibrary.UserAgent),
		WithHTTPClient(&http.Client{Timeout: cfg.OpenLibrary.Timeout}),
		WithRateLimiter(ratelimit.New("OpenLibrary", cfg.OpenLibrary.RateLimit)),
		WithCache(db),
		WithTTLs(TTLs{
			Author: cfg.Cache.AuthorTTL,
			Work:   cfg.Cache.WorkTTL,
			Search: cfg.Cache.SearchTTL,
		}),
		WithSearchLimit(cfg.Search.Limit),
	)
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the catalog.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(agent string) Option {
	return func(client *Client) {
		if agent != "" {
			client.userAgent = agent
		}
	}
}

// WithRateLimiter replaces the default rate limiter. A nil limiter disables throttling.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithCache stores responses in db.
func WithCache(db *cache.CacheDB) Option {
	return func(client *Client) {
		client.cache = db
	}
}

// WithTTLs overrides the cache lifetimes. Zero fields keep their defaults.
func WithTTLs(ttls TTLs) Option {
	return func(client *Client) {
		if ttls.Author > 0 {
			client.ttls.Author = ttls.Author
		}
		if ttls.Work > 0 {
			client.ttls.Work = ttls.Work
		}
		if ttls.Search > 0 {
			client.ttls.Search = ttls.Search
		}
	}
}

// WithSearchLimit sets the number of results requested from the search endpoint.
func WithSearchLimit(limit int) Option {
	return func(client *Client) {
		if limit > 0 {
			client.searchLimit = limit
		}
	}
}
