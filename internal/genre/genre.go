package genre

import "context"

// Genre is read-only reference data seeded by migrations.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Catalog is the read-only lookup of available genres.
type Catalog interface {
	ListAll(ctx context.Context) ([]Genre, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Missing(ctx context.Context, ids []int64) ([]int64, error)
}

// missingFrom returns the ids not present in genres, keeping input order.
func missingFrom(genres []Genre, ids []int64) []int64 {
	known := make(map[int64]struct{}, len(genres))
	for _, g := range genres {
		known[g.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
