package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/errors"
)

const (
	searchRoute     = "search"
	maxErrorBodyLen = 512
)

// endpoint builds {base}/{route}.json?{query}. The result doubles as the cache key.
func (c *Client) endpoint(route string, query url.Values) string {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, route)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// fetch returns the raw JSON body for route. Unless useCache is false a
// cached body younger than ttl is returned without touching the network;
// successful live responses are always written back.
func (c *Client) fetch(ctx context.Context, route string, query url.Values, ttl time.Duration, useCache bool) ([]byte, error) {
	endpoint := c.endpoint(route, query)

	table := cache.OpenLibraryTable
	if route == searchRoute {
		table = cache.OpenLibrarySearchTable
	}

	body, _, err := cache.GetOrFetch(c.cache, table, endpoint, ttl, !useCache, func() (json.RawMessage, error) {
		return c.get(ctx, route, endpoint)
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// fetchJSON fetches route and decodes it into target.
func (c *Client) fetchJSON(ctx context.Context, route string, query url.Values, ttl time.Duration, useCache bool, target any) error {
	body, err := c.fetch(ctx, route, query, ttl, useCache)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewTransportError(c.endpoint(route, query), 0, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, route, endpoint string) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewTransportError(endpoint, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewTransportError(endpoint, 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Requesting OpenLibrary", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyLen))
		resource, id := describeRoute(route)
		return nil, errors.NewNotFoundError(resource, id)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		var cause error
		if msg := strings.TrimSpace(string(body)); msg != "" {
			cause = fmt.Errorf("%s", msg)
		}
		return nil, errors.NewTransportError(endpoint, resp.StatusCode, cause)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransportError(endpoint, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}
	if !json.Valid(body) {
		return nil, errors.NewTransportError(endpoint, resp.StatusCode, fmt.Errorf("response is not valid JSON"))
	}

	return body, nil
}

// describeRoute maps a route such as "works/OL1W" to the resource kind and ID
// reported by NotFoundError.
func describeRoute(route string) (string, string) {
	dir, id := path.Split(route)
	switch dir {
	case strings.TrimPrefix(AuthorPrefix, "/"):
		return errors.ResourceAuthor, id
	case strings.TrimPrefix(WorkPrefix, "/"):
		return errors.ResourceWork, id
	case strings.TrimPrefix(EditionPrefix, "/"):
		return errors.ResourceEdition, id
	default:
		return "resource", route
	}
}
