package book

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrNotAuthorized is returned when the acting user does not own the book.
	ErrNotAuthorized = errors.New("not authorized")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidGenre  = errors.New("invalid genre")
	// ErrStorage wraps infrastructure failures; the cause is never shown to users.
	ErrStorage = errors.New("storage failure")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the fields that failed; errors.Is matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidGenreError names the submitted genre ids that do not exist.
type InvalidGenreError struct {
	IDs []int64
}

func (e *InvalidGenreError) Error() string {
	if len(e.IDs) == 0 {
		return ErrInvalidGenre.Error()
	}
	return fmt.Sprintf("%s: %v", ErrInvalidGenre, e.IDs)
}

func (e *InvalidGenreError) Unwrap() error { return ErrInvalidGenre }
