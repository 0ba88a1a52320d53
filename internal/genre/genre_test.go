package genre

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingCatalog is an in-memory source that records how often it was read.
type countingCatalog struct {
	genres []Genre
	err    error
	calls  int
}

func (c *countingCatalog) ListAll(context.Context) ([]Genre, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]Genre(nil), c.genres...), nil
}

func (c *countingCatalog) Exists(ctx context.Context, id int64) (bool, error) {
	genres, err := c.ListAll(ctx)
	if err != nil {
		return false, err
	}
	return len(missingFrom(genres, []int64{id})) == 0, nil
}

func (c *countingCatalog) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	genres, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return missingFrom(genres, ids), nil
}

var errSourceDown = errors.New("source down")

var seeded = []Genre{
	{ID: 2, Name: "Fantasy"},
	{ID: 6, Name: "Mystery"},
	{ID: 10, Name: "Science Fiction"},
}

func TestMissingFrom(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want []int64
	}{
		{"all known", []int64{2, 10}, nil},
		{"keeps input order", []int64{99, 2, 42}, []int64{99, 42}},
		{"empty input", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, missingFrom(seeded, tt.ids)); diff != "" {
				t.Errorf("missingFrom() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
