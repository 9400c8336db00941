package openlibrary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/errors"
)

// MaxSearchResults caps the number of books mapped from one search.
const MaxSearchResults = 20

// Proxy resolves catalog identifiers into canonical entities.
type Proxy struct {
	client *Client
	search Searcher
}

// NewProxy creates a Proxy. A nil search uses the catalog search endpoint
// through client.
func NewProxy(client *Client, search Searcher) *Proxy {
	if search == nil {
		search = NewSearchProxy(client)
	}
	return &Proxy{client: client, search: search}
}

// GetAuthorInfo fetches and maps an author. A missing author is reported as
// a NotFoundError, anything else as a TransportError.
func (p *Proxy) GetAuthorInfo(ctx context.Context, foreignAuthorID string, useCache bool) (*books.Author, error) {
	id := NormalizeKey(foreignAuthorID, AuthorPrefix)
	slog.Debug("Getting author from OpenLibrary", "id", id)

	if id == "" {
		return nil, errors.NewNotFoundError(errors.ResourceAuthor, foreignAuthorID)
	}

	var res AuthorResource
	if err := p.client.fetchJSON(ctx, "authors/"+id, nil, p.client.ttls.Author, useCache, &res); err != nil {
		return nil, err
	}

	return mapAuthor(&res)
}

// GetWorkInfo fetches the raw work resource.
func (p *Proxy) GetWorkInfo(ctx context.Context, foreignWorkID string, useCache bool) (*WorkResource, error) {
	id := NormalizeKey(foreignWorkID, WorkPrefix)
	slog.Debug("Getting work from OpenLibrary", "id", id)

	if id == "" {
		return nil, errors.NewNotFoundError(errors.ResourceWork, foreignWorkID)
	}

	var res WorkResource
	if err := p.client.fetchJSON(ctx, "works/"+id, nil, p.client.ttls.Work, useCache, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

// GetBookInfo resolves foreignID as a work, falling back to an edition only
// when the work does not exist. Other work failures are returned as is.
func (p *Proxy) GetBookInfo(ctx context.Context, foreignID string, useCache bool) (*books.Book, error) {
	id := NormalizeKey(NormalizeKey(foreignID, WorkPrefix), EditionPrefix)
	if id == "" {
		return nil, errors.NewNotFoundError(errors.ResourceBook, foreignID)
	}

	work, err := p.GetWorkInfo(ctx, id, useCache)
	if err == nil {
		return p.mapWorkToBook(ctx, work, useCache)
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	slog.Debug("ID not found as work, trying as edition", "id", id)

	var edition EditionResource
	if err := p.client.fetchJSON(ctx, "books/"+id, nil, p.client.ttls.Work, useCache, &edition); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError(errors.ResourceBook, id)
		}
		return nil, err
	}

	return p.mapEditionToBook(ctx, &edition, useCache)
}

// SearchForNewBook searches for title, optionally narrowed by author, and
// maps up to MaxSearchResults documents in upstream order. Malformed
// documents are skipped. getAllEditions has no effect: every result is a work
// with one synthesized edition.
func (p *Proxy) SearchForNewBook(ctx context.Context, title, author string, getAllEditions bool) ([]books.Book, error) {
	query := BuildQuery(title, author)
	slog.Debug("Searching OpenLibrary", "query", query, "all_editions", getAllEditions)

	docs, err := p.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]books.Book, 0, min(len(docs), MaxSearchResults))
	authors := make(map[string]*books.Author)

	for _, raw := range docs {
		if len(results) >= MaxSearchResults {
			break
		}

		book, err := mapSearchResultToBook(raw)
		if err != nil {
			slog.Warn("Skipping malformed search result", "query", query, "error", err)
			continue
		}
		if book == nil {
			continue
		}

		// books by the same author share one Author value
		if book.Author != nil {
			if seen, ok := authors[book.Author.ForeignAuthorID]; ok {
				book.SetAuthor(seen)
			} else {
				authors[book.Author.ForeignAuthorID] = book.Author
			}
		}

		results = append(results, *book)
	}

	return results, nil
}

// Search exposes the underlying search delegate.
func (p *Proxy) Search(ctx context.Context, query string) ([]RawSearchDoc, error) {
	return p.search.Search(ctx, query)
}

// BuildQuery joins a title and an optional author into a search query.
func BuildQuery(title, author string) string {
	query := strings.TrimSpace(title)
	if author = strings.TrimSpace(author); author != "" {
		query += " " + author
	}
	return query
}
