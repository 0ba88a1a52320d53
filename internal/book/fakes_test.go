package book

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"bookshelf/internal/genre"
)

// memoryRepo is an in-memory Repository with the same association rules as
// the postgres one: unknown genres are rejected and deletes cascade.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]Book
	genres *staticCatalog
}

func newMemoryRepo(genres *staticCatalog) *memoryRepo {
	return &memoryRepo{books: map[int64]Book{}, genres: genres}
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return m.hydrate(b), nil
}

func (m *memoryRepo) FindAllByOwner(_ context.Context, ownerID string) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Book{}
	for _, b := range m.books {
		if b.OwnerID == ownerID {
			out = append(out, m.hydrate(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryRepo) Insert(_ context.Context, b *Book) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkGenres(b.GenreIDs); err != nil {
		return 0, err
	}
	m.nextID++
	now := time.Now()
	stored := *b
	stored.ID = m.nextID
	stored.GenreIDs = NormalizeGenreIDs(b.GenreIDs)
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.books[stored.ID] = stored
	b.ID = stored.ID
	return stored.ID, nil
}

func (m *memoryRepo) Replace(_ context.Context, b *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.books[b.ID]
	if !ok {
		return ErrNotFound
	}
	if err := m.checkGenres(b.GenreIDs); err != nil {
		return err
	}
	current.Title = b.Title
	current.Author = b.Author
	current.GenreIDs = NormalizeGenreIDs(b.GenreIDs)
	current.UpdatedAt = time.Now()
	m.books[b.ID] = current
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	return nil
}

// associationCount returns how many association rows reference bookID.
func (m *memoryRepo) associationCount(bookID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books[bookID].GenreIDs)
}

func (m *memoryRepo) checkGenres(ids []int64) error {
	var missing []int64
	for _, id := range ids {
		if _, ok := m.genres.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &InvalidGenreError{IDs: missing}
	}
	return nil
}

func (m *memoryRepo) hydrate(b Book) Book {
	b.GenreIDs = slices.Clone(b.GenreIDs)
	if b.GenreIDs == nil {
		b.GenreIDs = []int64{}
	}
	b.Genres = make([]genre.Genre, 0, len(b.GenreIDs))
	for _, id := range b.GenreIDs {
		b.Genres = append(b.Genres, m.genres.byID[id])
	}
	return b
}

type staticCatalog struct {
	byID map[int64]genre.Genre
	err  error
}

func newStaticCatalog(genres ...genre.Genre) *staticCatalog {
	c := &staticCatalog{byID: map[int64]genre.Genre{}}
	for _, g := range genres {
		c.byID[g.ID] = g
	}
	return c
}

func (c *staticCatalog) ListAll(context.Context) ([]genre.Genre, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]genre.Genre, 0, len(c.byID))
	for _, g := range c.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *staticCatalog) Exists(_ context.Context, id int64) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.byID[id]
	return ok, nil
}

// setCatalog answers validation with one Missing call.
type setCatalog struct {
	*staticCatalog
	missingCalls int
}

func (c *setCatalog) Missing(_ context.Context, ids []int64) ([]int64, error) {
	c.missingCalls++
	if c.err != nil {
		return nil, c.err
	}
	var out []int64
	for _, id := range ids {
		if _, ok := c.byID[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

var (
	scienceFiction = genre.Genre{ID: 1, Name: "Science Fiction"}
	classic        = genre.Genre{ID: 2, Name: "Classic"}
	fantasy        = genre.Genre{ID: 3, Name: "Fantasy"}
	mystery        = genre.Genre{ID: 4, Name: "Mystery"}
)

func newFixture() (*Service, *memoryRepo) {
	catalog := newStaticCatalog(scienceFiction, classic, fantasy, mystery)
	repo := newMemoryRepo(catalog)
	return NewService(repo, catalog), repo
}
