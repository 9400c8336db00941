package cmd

import "context"

// AuthorCmd represents the author lookup command
type AuthorCmd struct {
	ID string `arg:"" help:"Author ID, with or without the /authors/ prefix"`
}

// BookCmd represents the book lookup command
type BookCmd struct {
	ID string `arg:"" help:"Work or edition ID, with or without the /works/ or /books/ prefix"`
}

func (a *AuthorCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	author, err := s.provider.GetAuthorInfo(context.Background(), a.ID, true)
	if err != nil {
		return err
	}
	return s.render(author)
}

func (b *BookCmd) Run(g *Globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	info, err := s.provider.GetBookInfo(context.Background(), b.ID)
	if err != nil {
		return err
	}
	return s.render(info)
}
