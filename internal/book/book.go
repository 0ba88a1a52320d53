package book

import (
	"time"

	"bookshelf/internal/genre"
)

// Book is a user-owned record together with its full genre association set.
// GenreIDs is sorted ascending and holds no duplicates.
type Book struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	OwnerID   string        `json:"owner_id"`
	GenreIDs  []int64       `json:"genre_ids"`
	Genres    []genre.Genre `json:"genres"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// GenreOption is one selectable genre on a book form.
type GenreOption struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// FormView is what a create or edit form needs to render.
type FormView struct {
	ID           int64         `json:"id,omitempty"`
	Title        string        `json:"title"`
	Author       string        `json:"author"`
	GenreIDs     []int64       `json:"genre_ids"`
	GenreOptions []GenreOption `json:"genre_options"`
}
