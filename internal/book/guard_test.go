package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	b := Book{ID: 1, OwnerID: "alice"}

	tests := []struct {
		name   string
		user   string
		wantOK bool
	}{
		{"owner", "alice", true},
		{"other user", "bob", false},
		{"empty user", "", false},
		{"case differs", "Alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(b, tt.user)
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrNotAuthorized))
		})
	}

	t.Run("ownerless book", func(t *testing.T) {
		assert.True(t, errors.Is(Authorize(Book{}, ""), ErrNotAuthorized))
	})
}
