package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoInsertUpsertsByFilename(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	rec := OutputRecord{
		ID:             "6f1d1a52-5a0e-4c43-9d0c-8f3d8d0a2f10",
		Filename:       "analysis_2026-10-19T09-30-00.json",
		StorageKey:     "analysis_2026-10-19T09-30-00.json",
		Engine:         "heuristic",
		Model:          "keyword-heuristics-v1",
		SourceName:     "standup.docx",
		Speakers:       3,
		Utterances:     42,
		TranscriptHash: "abc123",
		CreatedAt:      time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO analysis_outputs").
		WithArgs(
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
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO analysis_outputs").WillReturnError(boom)

	err = (&PGRepo{DB: db}).Insert(context.Background(), OutputRecord{Filename: "a.json"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestPGRepoListClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "filename", "storage_key", "engine", "model", "source_name", "speakers", "utterances", "transcript_hash", "created_at",
	}).
		AddRow("id-2", "analysis_b.json", "analysis_b.json", "llm", "google/gemini-2.5-flash", "b.docx", 2, 10, "h2", created).
		AddRow("id-1", "analysis_a.json", "analysis_a.json", "heuristic", "keyword-heuristics-v1", "", 4, 30, "h1", created.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM analysis_outputs").
		WithArgs(maxListLimit, 0).
		WillReturnRows(rows)

	got, err := (&PGRepo{DB: db}).List(context.Background(), 500, -3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "id-2" || got[1].Engine != "heuristic" || got[1].Utterances != 30 {
		t.Fatalf("unexpected records: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM analysis_outputs").
		WithArgs(defaultListLimit, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := (&PGRepo{DB: db}).List(context.Background(), 0, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
