// Package metadata is the public face of the book metadata resolver. It
// exposes the collaborator interfaces consumed by lookup and search callers
// and a Provider that implements them on top of OpenLibrary.
package metadata

import (
	"context"
	"time"

	"github.com/lepinkainen/libris/internal/books"
)

// AuthorInfoProvider resolves a single author.
type AuthorInfoProvider interface {
	GetAuthorInfo(ctx context.Context, foreignAuthorID string, useCache bool) (*books.Author, error)
	GetChangedAuthors(ctx context.Context, since time.Time) ([]string, error)
}

// BookInfoProvider resolves a single book.
type BookInfoProvider interface {
	GetBookInfo(ctx context.Context, foreignBookID string) (BookInfo, error)
	GetChangedBooks(ctx context.Context, since time.Time) ([]string, error)
}

// NewBookSearcher finds books that are not yet known to the caller.
type NewBookSearcher interface {
	SearchForNewBook(ctx context.Context, title, author string, getAllEditions bool) []books.Book
	SearchByIsbn(ctx context.Context, isbn string) []books.Book
	SearchByAsin(ctx context.Context, asin string) []books.Book
	SearchByGoodreadsBookID(ctx context.Context, id int, getAllEditions bool) []books.Book
}

// NewAuthorSearcher finds authors that are not yet known to the caller.
type NewAuthorSearcher interface {
	SearchForNewAuthor(ctx context.Context, term string) []books.Author
}

// NewEntitySearcher returns authors and books in one mixed result list.
type NewEntitySearcher interface {
	SearchForNewEntity(ctx context.Context, term string) []Entity
}

// BookInfo is a resolved book together with its canonical ID and the
// metadata of its author (zero or one entries).
type BookInfo struct {
	ForeignBookID string                 `json:"foreignBookId" yaml:"foreignBookId"`
	Book          *books.Book            `json:"book" yaml:"book"`
	Authors       []books.AuthorMetadata `json:"authors" yaml:"authors"`
}

// Entity is one element of a mixed search result: exactly one of Author
// and Book is set.
type Entity struct {
	Author *books.Author `json:"author,omitempty" yaml:"author,omitempty"`
	Book   *books.Book   `json:"book,omitempty" yaml:"book,omitempty"`
}
