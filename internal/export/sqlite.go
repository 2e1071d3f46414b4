package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psantana5/leadtime/pkg/models"
)

// SQLiteStore holds the cleaned table of the latest run and a history of runs
type SQLiteStore struct {
	db *sql.DB
}

// RunRecord is one row of the runs history
type RunRecord struct {
	RunID       string
	Input       string
	FinishedAt  time.Time
	Orders      int
	OnTimeRatio float64
	SLAMetRatio float64
	CapHours    float64
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		finished_at DATETIME NOT NULL,
		orders INTEGER NOT NULL,
		on_time_ratio REAL NOT NULL,
		sla_met_ratio REAL NOT NULL,
		cap_hours REAL NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const ordersSchema = `
	CREATE TABLE orders (
		source_row INTEGER PRIMARY KEY,
		created_at TEXT NOT NULL,
		delivered_at TEXT NOT NULL,
		delivery_hours REAL NOT NULL,
		raw_lead_time_hours REAL NOT NULL,
		lead_time_hours REAL NOT NULL,
		adjusted BOOLEAN NOT NULL,
		capped BOOLEAN NOT NULL,
		on_time TEXT NOT NULL,
		hour_created INTEGER NOT NULL,
		date_created TEXT NOT NULL,
		sla_window TEXT NOT NULL,
		sla TEXT,
		extra TEXT
	);
	CREATE INDEX idx_orders_date ON orders(date_created);
	CREATE INDEX idx_orders_hour ON orders(hour_created);
`

// ReplaceOrders drops and recreates the orders table with records
func (s *SQLiteStore) ReplaceOrders(ctx context.Context, records []models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS orders"); err != nil {
		return fmt.Errorf("failed to drop orders: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ordersSchema); err != nil {
		return fmt.Errorf("failed to create orders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (source_row, created_at, delivered_at, delivery_hours, raw_lead_time_hours,
			lead_time_hours, adjusted, capped, on_time, hour_created, date_created, sla_window, sla, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var extra sql.NullString
		if len(r.Extra) > 0 {
			data, err := json.Marshal(r.Extra)
			if err != nil {
				return fmt.Errorf("failed to encode row %d extras: %w", r.Row, err)
			}
			extra = sql.NullString{String: string(data), Valid: true}
		}

		var sla sql.NullString
		if r.SLA != models.SLANotApplicable {
			sla = sql.NullString{String: string(r.SLA), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			r.Row,
			r.CreatedAt.Format(TimestampLayout),
			r.DeliveredAt.Format(TimestampLayout),
			r.DeliveryHours,
			r.RawLeadTimeHours,
			r.LeadTimeHours,
			r.Adjusted,
			r.Capped,
			string(r.OnTime),
			r.HourCreated(),
			r.DateCreated(),
			string(r.Window),
			sla,
			extra,
		); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.Row, err)
		}
	}

	return tx.Commit()
}

// RecordRun appends a run to the history
func (s *SQLiteStore) RecordRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, input, finished_at, orders, on_time_ratio, sla_met_ratio, cap_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Input, run.FinishedAt.UTC(), run.Orders, run.OnTimeRatio, run.SLAMetRatio, run.CapHours)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns the run history, most recent first
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, input, finished_at, orders, on_time_ratio, sla_met_ratio, cap_hours
		FROM runs ORDER BY finished_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Input, &r.FinishedAt, &r.Orders, &r.OnTimeRatio, &r.SLAMetRatio, &r.CapHours); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SLACounts returns the number of stored orders per SLA status, keyed by
// status with out-of-scope orders under ""
func (s *SQLiteStore) SLACounts(ctx context.Context) (map[models.SLAStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT COALESCE(sla, ''), COUNT(*) FROM orders GROUP BY sla")
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SLAStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.SLAStatus(status)] = n
	}
	return counts, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
