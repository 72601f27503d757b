package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps the catalog in process memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	records []OutputRecord
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Insert adds the record, replacing any earlier record with the same filename.
func (r *MemoryRepo) Insert(ctx context.Context, rec OutputRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].Filename == rec.Filename {
			r.records[i] = rec
			return nil
		}
	}
	r.records = append(r.records, rec)
	return nil
}

// List returns records newest first with limit/offset. A zero limit means no limit.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]OutputRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	records := make([]OutputRecord, len(r.records))
	copy(records, r.records)
	r.mu.RUnlock()

	if offset >= len(records) {
		return []OutputRecord{}, nil
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
