// Package history handles SQLite persistence of generated exams.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/texam/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for exam history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exams (
			id INTEGER PRIMARY KEY,
			generated_at TEXT NOT NULL,
			questions INTEGER NOT NULL,
			mode TEXT NOT NULL,
			seeded INTEGER NOT NULL,
			topics TEXT NOT NULL,
			output_path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exams_generated_at ON exams(generated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertExam stores a generated exam record.
func (s *Store) InsertExam(ctx context.Context, rec model.ExamRecord) (int64, error) {
	seeded := 0
	if rec.Seeded {
		seeded = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO exams (generated_at, questions, mode, seeded, topics, output_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.GeneratedAt.Format(time.RFC3339Nano),
		rec.Questions,
		rec.Mode,
		seeded,
		rec.Topics,
		rec.OutputPath,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListExams returns the most recent exams, newest first. A non-positive
// limit returns everything.
func (s *Store) ListExams(ctx context.Context, limit int) ([]model.ExamRecord, error) {
	query := `SELECT id, generated_at, questions, mode, seeded, topics, output_path
		FROM exams
		ORDER BY generated_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ExamRecord
	for rows.Next() {
		var rec model.ExamRecord
		var generatedAt string
		var seeded int
		if err := rows.Scan(&rec.ID, &generatedAt, &rec.Questions, &rec.Mode, &seeded, &rec.Topics, &rec.OutputPath); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, err
		}
		rec.GeneratedAt = parsed
		rec.Seeded = seeded != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// CountExams returns the total number of recorded exams.
func (s *Store) CountExams(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exams`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
