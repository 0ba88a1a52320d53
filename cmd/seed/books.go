package main

import (
	"context"
	"fmt"
	"math/rand"

	"bookshelf/internal/book"
	"bookshelf/internal/genre"
)

type demoBook struct {
	Title  string
	Author string
}

var demoBooks = []demoBook{
	{"Dune", "Frank Herbert"},
	{"Pride and Prejudice", "Jane Austen"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin"},
	{"The Hobbit", "J. R. R. Tolkien"},
	{"The Name of the Rose", "Umberto Eco"},
	{"Beloved", "Toni Morrison"},
	{"Neuromancer", "William Gibson"},
	{"The Master and Margarita", "Mikhail Bulgakov"},
	{"Frankenstein", "Mary Shelley"},
	{"The Big Sleep", "Raymond Chandler"},
	{"A Wizard of Earthsea", "Ursula K. Le Guin"},
	{"Middlemarch", "George Eliot"},
}

// seedBooks creates count books for owner through the service, each with up
// to three random genres.
func seedBooks(ctx context.Context, svc *book.Service, catalog genre.Catalog, owner string, count int, rnd *rand.Rand) ([]int64, error) {
	genres, err := catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		demo := demoBooks[i%len(demoBooks)]
		title := demo.Title
		if i >= len(demoBooks) {
			title = fmt.Sprintf("%s (copy %d)", demo.Title, i/len(demoBooks)+1)
		}

		var genreIDs []int64
		if len(genres) > 0 {
			for n := rnd.Intn(4); n > 0; n-- {
				genreIDs = append(genreIDs, genres[rnd.Intn(len(genres))].ID)
			}
		}

		id, err := svc.Create(ctx, owner, title, demo.Author, genreIDs)
		if err != nil {
			return ids, fmt.Errorf("failed to create %q: %w", title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
