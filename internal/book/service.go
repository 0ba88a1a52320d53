package book

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength  = 500
	maxAuthorLength = 500
)

// genreSetChecker is implemented by catalogs that can check a whole id set at once.
type genreSetChecker interface {
	Missing(ctx context.Context, ids []int64) ([]int64, error)
}

// Service owns the book rules: ownership checks, validation and genre set
// reconciliation. Every operation takes the acting user explicitly.
type Service struct {
	repo   Repository
	genres GenreCatalog
}

// NewService creates a new book service.
func NewService(repo Repository, genres GenreCatalog) *Service {
	return &Service{repo: repo, genres: genres}
}

// Create stores a new book owned by ownerID and returns its id.
func (s *Service) Create(ctx context.Context, ownerID, title, author string, genreIDs []int64) (int64, error) {
	if ownerID == "" {
		return 0, ErrNotAuthorized
	}
	title, author, ids, err := s.validate(ctx, title, author, genreIDs)
	if err != nil {
		return 0, err
	}

	b := &Book{
		Title:    title,
		Author:   author,
		OwnerID:  ownerID,
		GenreIDs: ids,
	}
	return s.repo.Insert(ctx, b)
}

// Update replaces title, author and the whole genre set of a book the acting
// user owns. Genres missing from genreIDs are dropped. The owner never changes.
func (s *Service) Update(ctx context.Context, bookID int64, actingUserID, title, author string, genreIDs []int64) error {
	current, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if err := Authorize(current, actingUserID); err != nil {
		return err
	}
	title, author, ids, err := s.validate(ctx, title, author, genreIDs)
	if err != nil {
		return err
	}

	current.Title = title
	current.Author = author
	current.GenreIDs = ids
	current.Genres = nil
	return s.repo.Replace(ctx, &current)
}

// Delete removes a book and its associations after reloading it by id.
func (s *Service) Delete(ctx context.Context, bookID int64, actingUserID string) error {
	current, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if err := Authorize(current, actingUserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, current.ID)
}

// ListMine returns the acting user's books. The result is never nil.
func (s *Service) ListMine(ctx context.Context, actingUserID string) ([]Book, error) {
	if actingUserID == "" {
		return nil, ErrNotAuthorized
	}
	books, err := s.repo.FindAllByOwner(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns a single book the acting user owns.
func (s *Service) Get(ctx context.Context, bookID int64, actingUserID string) (Book, error) {
	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return Book{}, err
	}
	if err := Authorize(b, actingUserID); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Form returns the values and genre options for an edit form, or an empty
// create form when bookID is zero.
func (s *Service) Form(ctx context.Context, bookID int64, actingUserID string) (FormView, error) {
	view := FormView{GenreIDs: []int64{}}
	if bookID != 0 {
		b, err := s.Get(ctx, bookID, actingUserID)
		if err != nil {
			return FormView{}, err
		}
		view.ID = b.ID
		view.Title = b.Title
		view.Author = b.Author
		view.GenreIDs = b.GenreIDs
	}

	all, err := s.genres.ListAll(ctx)
	if err != nil {
		return FormView{}, fmt.Errorf("%w: list genres: %w", ErrStorage, err)
	}
	view.GenreOptions = make([]GenreOption, 0, len(all))
	for _, g := range all {
		_, selected := slices.BinarySearch(view.GenreIDs, g.ID)
		view.GenreOptions = append(view.GenreOptions, GenreOption{ID: g.ID, Name: g.Name, Selected: selected})
	}
	return view, nil
}

func (s *Service) validate(ctx context.Context, title, author string, genreIDs []int64) (string, string, []int64, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	var fields []FieldError
	switch {
	case title == "":
		fields = append(fields, FieldError{Field: "title", Message: "title is required"})
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields = append(fields, FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength)})
	}
	if utf8.RuneCountInString(author) > maxAuthorLength {
		fields = append(fields, FieldError{Field: "author", Message: fmt.Sprintf("author must be at most %d characters", maxAuthorLength)})
	}
	if len(fields) > 0 {
		return "", "", nil, &ValidationError{Fields: fields}
	}

	ids := NormalizeGenreIDs(genreIDs)
	if err := s.checkGenres(ctx, ids); err != nil {
		return "", "", nil, err
	}
	return title, author, ids, nil
}

func (s *Service) checkGenres(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var missing []int64
	var lookup []int64
	for _, id := range ids {
		if id <= 0 {
			missing = append(missing, id)
			continue
		}
		lookup = append(lookup, id)
	}

	if checker, ok := s.genres.(genreSetChecker); ok {
		unknown, err := checker.Missing(ctx, lookup)
		if err != nil {
			return fmt.Errorf("%w: check genres: %w", ErrStorage, err)
		}
		missing = append(missing, unknown...)
	} else {
		for _, id := range lookup {
			ok, err := s.genres.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("%w: check genre %d: %w", ErrStorage, id, err)
			}
			if !ok {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return &InvalidGenreError{IDs: missing}
	}
	return nil
}

// NormalizeGenreIDs applies set semantics: the result is sorted, unique and
// never nil.
func NormalizeGenreIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	slices.Sort(out)
	return slices.Compact(out)
}
