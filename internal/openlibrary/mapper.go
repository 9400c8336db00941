package openlibrary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/errors"
)

func mapAuthor(res *AuthorResource) (*books.Author, error) {
	id := NormalizeKey(res.Key, AuthorPrefix)
	if id == "" {
		return nil, errors.NewMappingError(res.Key, fmt.Errorf("author record has no key"))
	}

	author := books.NewAuthor(id, res.Name)
	author.Overview = ExtractText(res.Bio)

	meta := author.Metadata
	meta.Overview = author.Overview
	meta.Born = ParseDate(res.BirthDate)
	meta.Died = ParseDate(res.DeathDate)
	if len(res.AlternateNames) > 0 {
		meta.Aliases = append(meta.Aliases, res.AlternateNames...)
	}

	return author, nil
}

func (p *Proxy) mapWorkToBook(ctx context.Context, res *WorkResource, useCache bool) (*books.Book, error) {
	workID := NormalizeKey(res.Key, WorkPrefix)
	if workID == "" {
		return nil, errors.NewMappingError(res.Key, fmt.Errorf("work record has no key"))
	}

	book := &books.Book{
		ForeignBookID: workID,
		Title:         res.Title,
		ReleaseDate:   ParseDate(res.FirstPublishDate),
	}

	if authorID := res.FirstAuthorID(); authorID != "" {
		p.attachAuthor(ctx, book, authorID, useCache)
	}

	book.Editions = []books.Edition{{
		ForeignEditionID: workID,
		Title:            res.Title,
		Monitored:        true,
	}}

	return book, nil
}

// mapEditionToBook maps an edition, promoting the book identity to the parent
// work when that work can be fetched.
func (p *Proxy) mapEditionToBook(ctx context.Context, res *EditionResource, useCache bool) (*books.Book, error) {
	editionID := NormalizeKey(res.Key, EditionPrefix)
	if editionID == "" {
		return nil, errors.NewMappingError(res.Key, fmt.Errorf("edition record has no key"))
	}

	book := &books.Book{
		ForeignBookID: editionID,
		Title:         res.Title,
		ReleaseDate:   ParseDate(res.PublishDate),
	}

	if len(res.Works) > 0 {
		if workID := NormalizeKey(res.Works[0].Key, WorkPrefix); workID != "" {
			work, err := p.GetWorkInfo(ctx, workID, useCache)
			if err != nil {
				slog.Warn("Failed to fetch work for edition", "work", workID, "edition", editionID, "error", err)
			} else {
				book.ForeignBookID = workID
				if authorID := work.FirstAuthorID(); authorID != "" {
					p.attachAuthor(ctx, book, authorID, useCache)
				}
			}
		}
	}

	if book.Author == nil && len(res.Authors) > 0 {
		if authorID := NormalizeKey(res.Authors[0].Key, AuthorPrefix); authorID != "" {
			p.attachAuthor(ctx, book, authorID, useCache)
		}
	}

	format := res.PhysicalFormat
	if format == "" {
		format = res.Format
	}

	pageCount := 0
	if res.NumberOfPages != nil {
		pageCount = *res.NumberOfPages
	}

	book.Editions = []books.Edition{{
		ForeignEditionID: editionID,
		Title:            res.Title,
		ISBN13:           first(res.ISBN13),
		ISBN10:           first(res.ISBN10),
		Publisher:        first(res.Publishers),
		ReleaseDate:      book.ReleaseDate,
		PageCount:        pageCount,
		Format:           format,
		Monitored:        true,
	}}

	return book, nil
}

// mapSearchResultToBook maps a search document without fetching anything.
// Documents without a key map to nil.
func mapSearchResultToBook(raw RawSearchDoc) (*books.Book, error) {
	doc, err := DecodeSearchDoc(raw)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(doc.Key) == "" {
		return nil, nil
	}

	workID := NormalizeKey(doc.Key, WorkPrefix)
	if workID == "" {
		return nil, errors.NewMappingError(doc.Key, fmt.Errorf("search result has an empty work id"))
	}

	book := &books.Book{
		ForeignBookID: workID,
		Title:         doc.Title,
		ReleaseDate:   yearDate(doc.FirstPublishYear),
	}

	if len(doc.AuthorName) > 0 && len(doc.AuthorKey) > 0 {
		if authorID := NormalizeKey(doc.AuthorKey[0], AuthorPrefix); authorID != "" {
			book.SetAuthor(books.NewAuthor(authorID, doc.AuthorName[0]))
		}
	}

	book.Editions = []books.Edition{{
		ForeignEditionID: workID,
		Title:            doc.Title,
		Monitored:        true,
	}}

	return book, nil
}

// attachAuthor resolves authorID and sets it on book. Failures are logged
// and leave the book without an author.
func (p *Proxy) attachAuthor(ctx context.Context, book *books.Book, authorID string, useCache bool) {
	author, err := p.resolveAuthor(ctx, authorID, useCache)
	if err != nil {
		slog.Warn("Failed to fetch author", "author", authorID, "book", book.ForeignBookID, "error", err)
		return
	}
	book.SetAuthor(author)
}

func (p *Proxy) resolveAuthor(ctx context.Context, authorID string, useCache bool) (*books.Author, error) {
	return p.GetAuthorInfo(ctx, authorID, useCache)
}

func first(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
