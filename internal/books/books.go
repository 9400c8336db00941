// Package books holds the canonical bibliographic entities produced by the
// metadata resolvers. Entities are built fresh on every resolution and are
// never persisted by libris itself.
package books

import (
	"fmt"
	"time"
)

// Author is a person credited on a Book.
type Author struct {
	ForeignAuthorID string          `json:"foreignAuthorId" yaml:"foreignAuthorId"`
	Name            string          `json:"name" yaml:"name"`
	Overview        *string         `json:"overview,omitempty" yaml:"overview,omitempty"`
	Metadata        *AuthorMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AuthorMetadata carries the descriptive fields of an Author. Its identity
// fields mirror the owning Author.
type AuthorMetadata struct {
	ForeignAuthorID string     `json:"foreignAuthorId" yaml:"foreignAuthorId"`
	Name            string     `json:"name" yaml:"name"`
	Overview        *string    `json:"overview,omitempty" yaml:"overview,omitempty"`
	Aliases         []string   `json:"aliases" yaml:"aliases"`
	Born            *time.Time `json:"born,omitempty" yaml:"born,omitempty"`
	Died            *time.Time `json:"died,omitempty" yaml:"died,omitempty"`
}

// Book is a work (or an edition that could not be promoted to its work).
type Book struct {
	ForeignBookID  string          `json:"foreignBookId" yaml:"foreignBookId"`
	Title          string          `json:"title" yaml:"title"`
	ReleaseDate    *time.Time      `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	Author         *Author         `json:"author,omitempty" yaml:"author,omitempty"`
	AuthorMetadata *AuthorMetadata `json:"authorMetadata,omitempty" yaml:"authorMetadata,omitempty"`
	Editions       []Edition       `json:"editions" yaml:"editions"`
}

// Edition is one printing of a Book.
type Edition struct {
	ForeignEditionID string     `json:"foreignEditionId" yaml:"foreignEditionId"`
	Title            string     `json:"title" yaml:"title"`
	ISBN13           *string    `json:"isbn13,omitempty" yaml:"isbn13,omitempty"`
	ISBN10           *string    `json:"isbn10,omitempty" yaml:"isbn10,omitempty"`
	Publisher        *string    `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	ReleaseDate      *time.Time `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	PageCount        int        `json:"pageCount" yaml:"pageCount"`
	Format           string     `json:"format,omitempty" yaml:"format,omitempty"`
	Monitored        bool       `json:"monitored" yaml:"monitored"`
}

// NewAuthor builds an Author together with its metadata. Aliases start empty,
// never nil.
func NewAuthor(foreignAuthorID, name string) *Author {
	return &Author{
		ForeignAuthorID: foreignAuthorID,
		Name:            name,
		Metadata: &AuthorMetadata{
			ForeignAuthorID: foreignAuthorID,
			Name:            name,
			Aliases:         []string{},
		},
	}
}

// SetAuthor attaches author and its metadata to the book.
func (b *Book) SetAuthor(author *Author) {
	if author == nil {
		b.Author = nil
		b.AuthorMetadata = nil
		return
	}
	b.Author = author
	b.AuthorMetadata = author.Metadata
}

// Validate reports whether the book is fully keyed and carries exactly one edition.
func (b *Book) Validate() error {
	if b.ForeignBookID == "" {
		return fmt.Errorf("book %q has no foreign id", b.Title)
	}
	if len(b.Editions) != 1 {
		return fmt.Errorf("book %s has %d editions, want 1", b.ForeignBookID, len(b.Editions))
	}
	if b.Editions[0].ForeignEditionID == "" {
		return fmt.Errorf("book %s has an edition without a foreign id", b.ForeignBookID)
	}
	if b.Author != nil && b.Author.ForeignAuthorID == "" {
		return fmt.Errorf("book %s has an author without a foreign id", b.ForeignBookID)
	}
	return nil
}
