package metadata

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/openlibrary"
)

// MaxIsbnResults caps the number of search documents enriched by SearchByIsbn.
const MaxIsbnResults = 5

// Resolver is the core lookup contract the Provider delegates to.
type Resolver interface {
	GetAuthorInfo(ctx context.Context, foreignAuthorID string, useCache bool) (*books.Author, error)
	GetBookInfo(ctx context.Context, foreignID string, useCache bool) (*books.Book, error)
	SearchForNewBook(ctx context.Context, title, author string, getAllEditions bool) ([]books.Book, error)
}

// Provider implements every collaborator interface of this package.
// Lookups propagate failures; searches degrade to empty results.
type Provider struct {
	resolver Resolver
	search   openlibrary.Searcher
	useCache bool
}

var (
	_ AuthorInfoProvider = (*Provider)(nil)
	_ BookInfoProvider   = (*Provider)(nil)
	_ NewBookSearcher    = (*Provider)(nil)
	_ NewAuthorSearcher  = (*Provider)(nil)
	_ NewEntitySearcher  = (*Provider)(nil)
)

// NewProvider creates a Provider from a resolver and the search delegate it uses.
func NewProvider(resolver Resolver, search openlibrary.Searcher) *Provider {
	return &Provider{resolver: resolver, search: search, useCache: true}
}

// NewOpenLibraryProvider wires a Provider to the OpenLibrary catalog.
func NewOpenLibraryProvider(client *openlibrary.Client) *Provider {
	search := openlibrary.NewSearchProxy(client)
	return NewProvider(openlibrary.NewProxy(client, search), search)
}

// WithCacheBypass returns a copy of p whose book lookups skip cached payloads.
// Fresh responses are still written back.
func (p *Provider) WithCacheBypass(bypass bool) *Provider {
	clone := *p
	clone.useCache = !bypass
	return &clone
}

// GetAuthorInfo resolves an author. Failures are logged and returned.
func (p *Provider) GetAuthorInfo(ctx context.Context, foreignAuthorID string, useCache bool) (*books.Author, error) {
	author, err := p.resolver.GetAuthorInfo(ctx, foreignAuthorID, useCache && p.useCache)
	if err != nil {
		slog.Warn("Failed to get author info", "id", foreignAuthorID, "error", err)
		return nil, err
	}
	return author, nil
}

// GetBookInfo resolves a book by work or edition ID.
func (p *Provider) GetBookInfo(ctx context.Context, foreignBookID string) (BookInfo, error) {
	book, err := p.resolver.GetBookInfo(ctx, foreignBookID, p.useCache)
	if err != nil {
		slog.Warn("Failed to get book info", "id", foreignBookID, "error", err)
		return BookInfo{}, err
	}

	info := BookInfo{
		ForeignBookID: book.ForeignBookID,
		Book:          book,
		Authors:       []books.AuthorMetadata{},
	}
	if book.AuthorMetadata != nil {
		info.Authors = append(info.Authors, *book.AuthorMetadata)
	}
	return info, nil
}

// GetChangedAuthors always returns nil: the catalog has no change feed, so
// callers must refresh every author.
func (p *Provider) GetChangedAuthors(_ context.Context, since time.Time) ([]string, error) {
	slog.Debug("OpenLibrary has no author change feed", "since", since)
	return nil, nil
}

// GetChangedBooks always returns nil, see GetChangedAuthors.
func (p *Provider) GetChangedBooks(_ context.Context, since time.Time) ([]string, error) {
	slog.Debug("OpenLibrary has no book change feed", "since", since)
	return nil, nil
}

// SearchForNewBook searches by title and optional author. Failures yield an
// empty result.
func (p *Provider) SearchForNewBook(ctx context.Context, title, author string, getAllEditions bool) []books.Book {
	results, err := p.resolver.SearchForNewBook(ctx, title, author, getAllEditions)
	if err != nil {
		slog.Warn("Book search failed", "title", title, "author", author, "error", err)
		return []books.Book{}
	}
	return results
}

// SearchForNewAuthor returns the distinct authors of the books matching term,
// in order of first appearance.
func (p *Provider) SearchForNewAuthor(ctx context.Context, term string) []books.Author {
	authors := []books.Author{}
	seen := make(map[string]bool)

	for _, book := range p.SearchForNewBook(ctx, term, "", true) {
		if book.Author == nil || seen[book.Author.ForeignAuthorID] {
			continue
		}
		seen[book.Author.ForeignAuthorID] = true
		authors = append(authors, *book.Author)
	}

	return authors
}

// SearchForNewEntity returns the books matching term, each preceded by its
// author the first time that author appears.
func (p *Provider) SearchForNewEntity(ctx context.Context, term string) []Entity {
	entities := []Entity{}
	seen := make(map[string]bool)

	for _, book := range p.SearchForNewBook(ctx, term, "", true) {
		if book.Author != nil && !seen[book.Author.ForeignAuthorID] {
			seen[book.Author.ForeignAuthorID] = true
			entities = append(entities, Entity{Author: book.Author})
		}
		entities = append(entities, Entity{Book: &book})
	}

	return entities
}

// SearchByIsbn searches for isbn and resolves up to MaxIsbnResults matching
// works in full. Documents that fail to resolve are skipped.
func (p *Provider) SearchByIsbn(ctx context.Context, isbn string) []books.Book {
	results := []books.Book{}

	docs, err := p.search.Search(ctx, "isbn:"+isbn)
	if err != nil {
		slog.Warn("ISBN search failed", "isbn", isbn, "error", err)
		return results
	}

	for i, raw := range docs {
		if i >= MaxIsbnResults {
			break
		}

		doc, err := openlibrary.DecodeSearchDoc(raw)
		if err != nil {
			slog.Warn("Skipping malformed ISBN search result", "isbn", isbn, "error", err)
			continue
		}

		workID := openlibrary.NormalizeKey(doc.Key, openlibrary.WorkPrefix)
		if workID == "" {
			continue
		}

		book, err := p.resolver.GetBookInfo(ctx, workID, p.useCache)
		if err != nil {
			slog.Warn("Failed to resolve ISBN search result", "isbn", isbn, "id", workID, "error", err)
			continue
		}
		results = append(results, *book)
	}

	return results
}

// SearchByAsin treats asin as an ISBN. The catalog has no ASIN index, but
// ASINs of print books are usually their ISBN-10.
func (p *Provider) SearchByAsin(ctx context.Context, asin string) []books.Book {
	return p.SearchByIsbn(ctx, asin)
}

// SearchByGoodreadsBookID is not supported by the catalog and returns no results.
func (p *Provider) SearchByGoodreadsBookID(_ context.Context, id int, _ bool) []books.Book {
	slog.Warn("Goodreads ID search is not supported by OpenLibrary", "goodreads_id", id)
	return []books.Book{}
}
