package analyses

import "context"

// Repo catalogs saved analysis outputs.
type Repo interface {
	Insert(ctx context.Context, rec OutputRecord) error
	// List returns records newest first.
	List(ctx context.Context, limit, offset int) ([]OutputRecord, error)
}
