package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/errors"
	"github.com/lepinkainen/libris/internal/openlibrary"
	"github.com/lepinkainen/libris/internal/tui"
)

// SearchCmd represents the book search command
type SearchCmd struct {
	Title       string `arg:"" help:"Title to search for"`
	Author      string `short:"a" help:"Restrict results to an author name"`
	AllEditions bool   `help:"Request every edition of each work"`
	Interactive bool   `short:"i" help:"Pick one result interactively and resolve it in full"`
}

// SearchAuthorCmd represents the author search command
type SearchAuthorCmd struct {
	Term string `arg:"" help:"Author name or title to search for"`
}

// IsbnCmd represents the ISBN search command
type IsbnCmd struct {
	ISBN string `arg:"" help:"ISBN-10 or ISBN-13"`
}

// AsinCmd represents the ASIN search command
type AsinCmd struct {
	ASIN string `arg:"" help:"Amazon standard identification number"`
}

func tuiSelect(title string, results []books.Book) (tui.SelectionResult, error) {
	return tui.Select(title, results)
}

func (c *SearchCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := context.Background()
	results := s.provider.SearchForNewBook(ctx, c.Title, c.Author, c.AllEditions)
	if !c.Interactive {
		return s.render(results)
	}

	choice, err := selectBook(openlibrary.BuildQuery(c.Title, c.Author), results)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	switch choice.Action {
	case tui.ActionStopped:
		return errors.NewStopProcessingError("selection stopped")
	case tui.ActionSelected:
		if choice.Selection == nil {
			return nil
		}
		info, err := s.provider.GetBookInfo(ctx, choice.Selection.ForeignBookID)
		if err != nil {
			return err
		}
		return s.render(info)
	default:
		slog.Info("No book selected", "title", c.Title, "results", len(results))
		return nil
	}
}

func (c *SearchAuthorCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	return s.render(s.provider.SearchForNewAuthor(context.Background(), c.Term))
}

func (c *IsbnCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	return s.render(s.provider.SearchByIsbn(context.Background(), c.ISBN))
}

func (c *AsinCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	return s.render(s.provider.SearchByAsin(context.Background(), c.ASIN))
}
