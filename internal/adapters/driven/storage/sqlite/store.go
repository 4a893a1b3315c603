// Package sqlite provides a SQLite-backed archive of evaluation runs.
// The backend owns all pipeline state; this store only keeps locally
// produced evaluation reports so runs can be compared across sessions.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zhouliangjun/rag-project03-audit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-based evaluation-run archive.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragaudit/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragaudit", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveReport archives one evaluation report in a single transaction.
func (s *Store) SaveReport(ctx context.Context, report *domain.EvaluationReport) error {
	diagnostics, err := json.Marshal(report.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluation_runs
			(run_id, collection_id, total_queries, avg_score_hit, avg_score_find, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.RunID, report.CollectionID, report.TotalQueries,
		report.Averages.ScoreHit, report.Averages.ScoreFind, string(diagnostics))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}

	for i, row := range report.Rows {
		expected, err := json.Marshal(row.ExpectedPages)
		if err != nil {
			return fmt.Errorf("marshal expected pages: %w", err)
		}
		found, err := json.Marshal(row.FoundPages)
		if err != nil {
			return fmt.Errorf("marshal found pages: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO evaluation_rows
				(run_id, position, query_id, requirement, expected_pages,
				 found_pages, score_hit, score_find, compliance_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.RunID, i, row.ID, row.Requirement, string(expected),
			string(found), row.ScoreHit, row.ScoreFind, string(row.Compliance))
		if err != nil {
			return fmt.Errorf("insert row %d of run %s: %w", i, report.RunID, err)
		}
	}

	return tx.Commit()
}

// ListReports returns run summaries, newest first.
func (s *Store) ListReports(ctx context.Context) ([]driven.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, collection_id, total_queries, avg_score_hit, avg_score_find, created_at
		FROM evaluation_runs
		ORDER BY created_at DESC, run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []driven.HistoryEntry
	for rows.Next() {
		var entry driven.HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.RunID, &entry.CollectionID, &entry.TotalQueries,
			&entry.AvgScoreHit, &entry.AvgScoreFind, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entry.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetReport loads one archived report with all its rows.
func (s *Store) GetReport(ctx context.Context, runID string) (*domain.EvaluationReport, error) {
	report := &domain.EvaluationReport{RunID: runID}

	var diagnostics sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT collection_id, total_queries, avg_score_hit, avg_score_find, diagnostics
		FROM evaluation_runs WHERE run_id = ?
	`, runID).Scan(&report.CollectionID, &report.TotalQueries,
		&report.Averages.ScoreHit, &report.Averages.ScoreFind, &diagnostics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %q", domain.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}

	if diagnostics.Valid && diagnostics.String != "" && diagnostics.String != "null" {
		if err := json.Unmarshal([]byte(diagnostics.String), &report.Diagnostics); err != nil {
			return nil, fmt.Errorf("decode diagnostics of run %s: %w", runID, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT query_id, requirement, expected_pages, found_pages,
		       score_hit, score_find, compliance_status
		FROM evaluation_rows WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rows of run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row domain.EvaluationRow
		var expected, found, compliance string
		if err := rows.Scan(&row.ID, &row.Requirement, &expected, &found,
			&row.ScoreHit, &row.ScoreFind, &compliance); err != nil {
			return nil, fmt.Errorf("scan row of run %s: %w", runID, err)
		}
		if err := json.Unmarshal([]byte(expected), &row.ExpectedPages); err != nil {
			return nil, fmt.Errorf("decode expected pages: %w", err)
		}
		if err := json.Unmarshal([]byte(found), &row.FoundPages); err != nil {
			return nil, fmt.Errorf("decode found pages: %w", err)
		}
		row.Compliance = domain.ComplianceStatus(compliance)
		report.Rows = append(report.Rows, row)
	}
	return report, rows.Err()
}
