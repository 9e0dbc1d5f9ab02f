package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"codremit/internal"
)

// DB is the batch-run audit trail. It records what each invocation produced;
// the billing engine itself keeps no state between runs.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  source TEXT NOT NULL,
  records INTEGER NOT NULL,
  customers INTEGER NOT NULL,
  coercedFields INTEGER NOT NULL,
  durationMs INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_summaries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  customerCode TEXT NOT NULL,
  clientName TEXT,
  isWhitelisted INTEGER NOT NULL,
  totalNetCod REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_run_summaries_run ON run_summaries(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

// RunRow describes one recorded batch invocation.
type RunRow struct {
	ID            int
	TraceID       string
	Source        string
	Records       int
	Customers     int
	CoercedFields int
	DurationMs    int64
	CreatedAt     string
}

// InsertRun stores the outcome of one batch together with its per-customer
// summaries.
func (d *DB) InsertRun(traceID, source string, records, coercedFields int, duration time.Duration, summaries []internal.CustomerSummary) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
INSERT INTO runs (traceId, source, records, customers, coercedFields, durationMs)
VALUES (?, ?, ?, ?, ?, ?)
`, traceID, source, records, len(summaries), coercedFields, duration.Milliseconds())
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO run_summaries (runId, customerCode, clientName, isWhitelisted, totalNetCod)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, s := range summaries {
		whitelisted := 0
		if s.IsWhitelisted {
			whitelisted = 1
		}
		if _, err := stmt.Exec(runID, s.CustomerCode, s.ClientName, whitelisted, s.TotalNetCOD); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(runID), nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, source, records, customers, coercedFields, durationMs, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.TraceID, &r.Source, &r.Records, &r.Customers, &r.CoercedFields, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSummaries returns the stored per-customer totals for a run, in
// insertion order.
func (d *DB) RunSummaries(runID int) ([]internal.CustomerSummary, error) {
	rows, err := d.conn.Query(`
SELECT customerCode, clientName, isWhitelisted, totalNetCod
FROM run_summaries WHERE runId = ? ORDER BY id
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CustomerSummary
	for rows.Next() {
		var s internal.CustomerSummary
		var whitelisted int
		if err := rows.Scan(&s.CustomerCode, &s.ClientName, &whitelisted, &s.TotalNetCOD); err != nil {
			return nil, err
		}
		s.IsWhitelisted = whitelisted == 1
		out = append(out, s)
	}
	return out, rows.Err()
}
