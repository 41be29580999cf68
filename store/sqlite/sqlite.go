/*
Package sqlite provides the SQLite-backed run store.

PURPOSE:
  Persists every consolidation run so the technical table and its audit
  trail can be listed, inspected and re-exported after the fact. The engine
  is pure; only the batch runner and the API touch this package.

KEY TABLES:
  runs:            One row per run (period, rules, totals, output paths)
  run_records:     The technical table, one row per employee, in output order
  run_adjustments: The audit trail, in emission order

APPEND-ONLY:
  Runs are never updated. A re-run of the same month is a new run with a
  new ID; Reset is the only delete and exists for tests and demos.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking. The
  pool is capped at one connection so ":memory:" databases are shared.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./vr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  run := &sqlite.Run{Competencia: "05/2025"}
  err = store.SaveRun(ctx, run, result.Technical, result.Audit.Adjustments)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - batch/runner.go: Saves a run after the artifacts are written
  - api/handlers.go: Read side
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

// Store persists runs.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// Run is the header of one stored run.
type Run struct {
	ID            string    `db:"id" json:"id"`
	Competencia   string    `db:"competencia" json:"competencia"`
	Origin        string    `db:"origin" json:"origin"` // input dir or scenario id
	Rounding      string    `db:"rounding" json:"rounding"`
	Basis         string    `db:"basis" json:"basis"`
	Proportional  bool      `db:"proportional" json:"proportional"`
	Employees     int       `db:"employees" json:"employees"`
	Gross         string    `db:"gross" json:"gross"`
	EmployerShare string    `db:"employer_share" json:"employer_share"`
	EmployeeShare string    `db:"employee_share" json:"employee_share"`
	TechnicalPath string    `db:"technical_path" json:"technical_path,omitempty"`
	ExportPath    string    `db:"export_path" json:"export_path,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		competencia TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT '',
		rounding TEXT NOT NULL,
		basis TEXT NOT NULL,
		proportional INTEGER NOT NULL,
		employees INTEGER NOT NULL,
		gross TEXT NOT NULL,
		employer_share TEXT NOT NULL,
		employee_share TEXT NOT NULL,
		technical_path TEXT NOT NULL DEFAULT '',
		export_path TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at);

	CREATE TABLE IF NOT EXISTS run_records (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		matricula TEXT NOT NULL,
		empresa TEXT NOT NULL DEFAULT '',
		sindicato TEXT NOT NULL DEFAULT '',
		uf TEXT NOT NULL DEFAULT '',
		working_days TEXT NOT NULL,
		vacation_days TEXT NOT NULL,
		eligible_days TEXT NOT NULL,
		daily_rate TEXT NOT NULL,
		gross TEXT NOT NULL,
		employer_share TEXT NOT NULL,
		employee_share TEXT NOT NULL,
		termination TEXT NOT NULL DEFAULT '',
		rule TEXT NOT NULL DEFAULT '',
		admission TEXT NOT NULL DEFAULT '',
		competencia TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_run_records_matricula
		ON run_records(run_id, matricula);

	CREATE TABLE IF NOT EXISTS run_adjustments (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		stage TEXT NOT NULL,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITE SIDE
// =============================================================================

type recordRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	vr.TechnicalRecord
}

type adjustmentRow struct {
	RunID    string `db:"run_id"`
	Position int    `db:"position"`
	vr.Adjustment
}

// SaveRun stores a run with its records and adjustments in one transaction.
// An empty ID is filled with a fresh UUID and a zero CreatedAt with now.
func (s *Store) SaveRun(ctx context.Context, run *Run, records []vr.TechnicalRecord, adjustments []vr.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, competencia, origin, rounding, basis, proportional, employees,
			gross, employer_share, employee_share, technical_path, export_path, created_at)
		VALUES (:id, :competencia, :origin, :rounding, :basis, :proportional, :employees,
			:gross, :employer_share, :employee_share, :technical_path, :export_path, :created_at)
	`, run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, rec := range records {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_records (run_id, position, matricula, empresa, sindicato, uf,
				working_days, vacation_days, eligible_days, daily_rate, gross,
				employer_share, employee_share, termination, rule, admission, competencia)
			VALUES (:run_id, :position, :matricula, :empresa, :sindicato, :uf,
				:working_days, :vacation_days, :eligible_days, :daily_rate, :gross,
				:employer_share, :employee_share, :termination, :rule, :admission, :competencia)
		`, recordRow{RunID: run.ID, Position: i, TechnicalRecord: rec}); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Matricula, err)
		}
	}

	for i, adj := range adjustments {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_adjustments (run_id, position, stage, kind, subject, count)
			VALUES (:run_id, :position, :stage, :kind, :subject, :count)
		`, adjustmentRow{RunID: run.ID, Position: i, Adjustment: adj}); err != nil {
			return fmt.Errorf("failed to insert adjustment: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// READ SIDE
// =============================================================================

const runColumns = `id, competencia, origin, rounding, basis, proportional, employees,
	gross, employer_share, employee_share, technical_path, export_path, created_at`

// ListRuns returns runs newest first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	runs := []Run{}
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one run header or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRun(ctx, id)
}

func (s *Store) getRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunRecords returns the technical table of a run in output order.
func (s *Store) GetRunRecords(ctx context.Context, id string) ([]vr.TechnicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getRun(ctx, id); err != nil {
		return nil, err
	}

	records := []vr.TechnicalRecord{}
	err := s.db.SelectContext(ctx, &records, `
		SELECT matricula, empresa, sindicato, uf, working_days, vacation_days, eligible_days,
			daily_rate, gross, employer_share, employee_share, termination, rule, admission, competencia
		FROM run_records
		WHERE run_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetRunAdjustments returns the audit trail of a run in emission order.
func (s *Store) GetRunAdjustments(ctx context.Context, id string) ([]vr.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getRun(ctx, id); err != nil {
		return nil, err
	}

	adjustments := []vr.Adjustment{}
	err := s.db.SelectContext(ctx, &adjustments, `
		SELECT stage, kind, subject, count
		FROM run_adjustments
		WHERE run_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"run_adjustments", "run_records", "runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
