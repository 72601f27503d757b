package analyses

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert records a saved output. Saving twice within the same second reuses
// the file name, so the later row replaces the earlier one.
func (r *PGRepo) Insert(ctx context.Context, rec OutputRecord) error {
	const query = `
INSERT INTO analysis_outputs (
	id, filename, storage_key, engine, model, source_name, speakers, utterances, transcript_hash, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (filename) DO UPDATE SET
	id = EXCLUDED.id,
	storage_key = EXCLUDED.storage_key,
	engine = EXCLUDED.engine,
	model = EXCLUDED.model,
	source_name = EXCLUDED.source_name,
	speakers = EXCLUDED.speakers,
	utterances = EXCLUDED.utterances,
	transcript_hash = EXCLUDED.transcript_hash,
	created_at = EXCLUDED.created_at`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.StorageKey,
		rec.Engine,
		rec.Model,
		rec.SourceName,
		rec.Speakers,
		rec.Utterances,
		rec.TranscriptHash,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis output %s: %w", rec.Filename, err)
	}
	return nil
}

// List returns outputs ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]OutputRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, filename, storage_key, engine, model, source_name, speakers, utterances, transcript_hash, created_at
FROM analysis_outputs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analysis outputs: %w", err)
	}
	defer rows.Close()

	out := []OutputRecord{}
	for rows.Next() {
		var rec OutputRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Filename,
			&rec.StorageKey,
			&rec.Engine,
			&rec.Model,
			&rec.SourceName,
			&rec.Speakers,
			&rec.Utterances,
			&rec.TranscriptHash,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis output: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analysis outputs: %w", err)
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
