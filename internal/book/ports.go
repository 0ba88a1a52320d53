package book

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

import (
	"context"

	"bookshelf/internal/genre"
)

// Repository defines the contract for book storage. Insert, Replace and Delete
// are each all-or-nothing over the book row and its association rows.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Book, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]Book, error)
	Insert(ctx context.Context, b *Book) (int64, error)
	Replace(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}

// GenreCatalog is the read-only genre lookup the service validates against.
type GenreCatalog interface {
	ListAll(ctx context.Context) ([]genre.Genre, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
