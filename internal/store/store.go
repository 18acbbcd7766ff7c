// Package store handles SQLite persistence for passages and results.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/typelit/typelit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the passage repository and session results.
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
		`CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			difficulty TEXT NOT NULL,
			text TEXT NOT NULL,
			grade REAL NOT NULL,
			ease REAL NOT NULL,
			length INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			fingerprint TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_passages_difficulty ON passages(difficulty);`,
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			passage_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			chars INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			gross_wpm REAL NOT NULL,
			net_wpm REAL NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplacePassages atomically replaces the stored set for a difficulty.
// The delete and inserts run in one transaction, so a concurrent read
// never observes a partially cleared set.
func (s *Store) ReplacePassages(ctx context.Context, difficulty model.Difficulty, passages []model.Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM passages WHERE difficulty = ?`, string(difficulty)); err != nil {
		return err
	}

	if len(passages) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO passages (id, difficulty, text, grade, ease, length, word_count, fingerprint)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, p := range passages {
			if _, err = stmt.ExecContext(ctx, p.ID, string(p.Difficulty), p.Text, p.Grade, p.Ease, p.Length, p.WordCount, p.Fingerprint); err != nil {
				return err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// Passages returns the current set for a difficulty. The slice is
// empty when no books have been processed for the tier yet.
func (s *Store) Passages(ctx context.Context, difficulty model.Difficulty) ([]model.Passage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, difficulty, text, grade, ease, length, word_count, fingerprint
		 FROM passages WHERE difficulty = ?`, string(difficulty))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	passages := []model.Passage{}
	for rows.Next() {
		var p model.Passage
		var diff string
		if err := rows.Scan(&p.ID, &diff, &p.Text, &p.Grade, &p.Ease, &p.Length, &p.WordCount, &p.Fingerprint); err != nil {
			return nil, err
		}
		p.Difficulty = model.Difficulty(diff)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passages, nil
}

// PassageCounts returns the stored passage count per difficulty.
func (s *Store) PassageCounts(ctx context.Context) (map[model.Difficulty]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT difficulty, COUNT(*) FROM passages GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	counts := map[model.Difficulty]int{}
	for rows.Next() {
		var diff string
		var n int
		if err := rows.Scan(&diff, &n); err != nil {
			return nil, err
		}
		counts[model.Difficulty(diff)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// InsertResult stores a completed typing session.
func (s *Store) InsertResult(ctx context.Context, res model.SessionResult) (int64, error) {
	out, err := s.db.ExecContext(ctx,
		`INSERT INTO results (passage_id, difficulty, started_at, ended_at, duration_ms, chars, errors, gross_wpm, net_wpm, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.PassageID,
		string(res.Difficulty),
		res.StartedAt.Format(time.RFC3339Nano),
		res.EndedAt.Format(time.RFC3339Nano),
		res.DurationMs,
		res.Chars,
		res.Errors,
		res.GrossWPM,
		res.NetWPM,
		res.Accuracy,
	)
	if err != nil {
		return 0, err
	}
	return out.LastInsertId()
}

// ListResults returns stored results matching the stats filters, oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.SessionResult, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Difficulty != "" {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, cfg.Difficulty)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT passage_id, difficulty, started_at, ended_at, duration_ms, chars, errors, gross_wpm, net_wpm, accuracy
		FROM results
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
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

	var results []model.SessionResult
	for rows.Next() {
		var res model.SessionResult
		var diff, startedAt, endedAt string
		if err := rows.Scan(&res.PassageID, &diff, &startedAt, &endedAt, &res.DurationMs, &res.Chars, &res.Errors, &res.GrossWPM, &res.NetWPM, &res.Accuracy); err != nil {
			return nil, err
		}
		res.Difficulty = model.Difficulty(diff)
		res.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		res.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}
