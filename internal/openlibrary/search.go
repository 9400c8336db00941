package openlibrary

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/lepinkainen/libris/internal/errors"
)

const (
	reasonUnreachable = "Unable to communicate with OpenLibrary"
	reasonInvalid     = "Invalid response received from OpenLibrary"
)

// RawSearchDoc is an undecoded search result document.
type RawSearchDoc = json.RawMessage

// Searcher runs free-text queries against the catalog search endpoint.
type Searcher interface {
	Search(ctx context.Context, query string) ([]RawSearchDoc, error)
}

// SearchProxy is the Searcher backed by /search.json.
type SearchProxy struct {
	client *Client
}

// NewSearchProxy creates a SearchProxy on top of client.
func NewSearchProxy(client *Client) *SearchProxy {
	return &SearchProxy{client: client}
}

// Search returns the raw documents for query in upstream order. Results are
// always served from the cache when fresh. Every failure is returned as a
// SearchError carrying the query.
func (s *SearchProxy) Search(ctx context.Context, query string) ([]RawSearchDoc, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(s.client.searchLimit))

	body, err := s.client.fetch(ctx, searchRoute, params, s.client.ttls.Search, true)
	if err != nil {
		reason := reasonUnreachable
		var te *errors.TransportError
		if stdErrors.As(err, &te) && te.StatusCode >= 200 && te.StatusCode < 300 {
			reason = reasonInvalid
		}
		slog.Warn("OpenLibrary search failed", "query", query, "error", err)
		return nil, errors.NewSearchError(query, reason, err)
	}

	var response SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		slog.Warn("OpenLibrary search returned an invalid response", "query", query, "error", err)
		return nil, errors.NewSearchError(query, reasonInvalid, err)
	}

	slog.Debug("OpenLibrary search completed", "query", query, "found", response.NumFound, "returned", len(response.Docs))

	if response.Docs == nil {
		return []RawSearchDoc{}, nil
	}
	return response.Docs, nil
}

// DecodeSearchDoc decodes a single search document.
func DecodeSearchDoc(raw RawSearchDoc) (SearchDoc, error) {
	var doc SearchDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return SearchDoc{}, errors.NewMappingError("", err)
	}
	return doc, nil
}
