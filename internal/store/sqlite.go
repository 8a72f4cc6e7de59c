package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fxvol/internal/errors"
	"fxvol/internal/models"
)

// SQLiteStore implements QuoteStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based quote store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Named quote snapshots
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		spot REAL NOT NULL,
		source TEXT,
		created_at DATETIME NOT NULL
	);

	-- One row per tenor of a snapshot
	CREATE TABLE IF NOT EXISTS quote_points (
		snapshot TEXT NOT NULL,
		tenor REAL NOT NULL,
		yield REAL NOT NULL,
		atm REAL NOT NULL,
		rr25 REAL NOT NULL,
		bb25 REAL NOT NULL,
		rr10 REAL NOT NULL,
		bb10 REAL NOT NULL,
		PRIMARY KEY (snapshot, tenor),
		FOREIGN KEY (snapshot) REFERENCES snapshots(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_quote_points_snapshot ON quote_points(snapshot);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot stores a snapshot, replacing any snapshot of the same name.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *models.QuoteSnapshot) error {
	if snap.Name == "" {
		return errors.NewPreconditionError("name", snap.Name, "snapshot name must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_points WHERE snapshot = ?`, snap.Name); err != nil {
		return fmt.Errorf("%w: clearing quote points: %v", errors.ErrDatabaseError, err)
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (name, spot, source, created_at)
		VALUES (?, ?, ?, ?)
	`, snap.Name, snap.Spot, snap.Source, createdAt)
	if err != nil {
		return fmt.Errorf("%w: saving snapshot: %v", errors.ErrDatabaseError, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quote_points (snapshot, tenor, yield, atm, rr25, bb25, rr10, bb10)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range snap.Points {
		_, err := stmt.ExecContext(ctx, snap.Name, p.Tenor, p.Yield, p.ATM, p.RR25, p.BB25, p.RR10, p.BB10)
		if err != nil {
			return fmt.Errorf("%w: inserting quote point at T=%v: %v", errors.ErrDatabaseError, p.Tenor, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSnapshot loads a snapshot with its points ordered by tenor.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, name string) (*models.QuoteSnapshot, error) {
	snap := &models.QuoteSnapshot{Name: name}
	var source sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT spot, source, created_at FROM snapshots WHERE name = ?
	`, name).Scan(&snap.Spot, &source, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewDataError("snapshot", name, "not found", errors.ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	snap.Source = source.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenor, yield, atm, rr25, bb25, rr10, bb10
		FROM quote_points
		WHERE snapshot = ?
		ORDER BY tenor ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := models.QuotePoint{Spot: snap.Spot}
		if err := rows.Scan(&p.Tenor, &p.Yield, &p.ATM, &p.RR25, &p.BB25, &p.RR10, &p.BB10); err != nil {
			return nil, fmt.Errorf("failed to scan quote point: %w", err)
		}
		snap.Points = append(snap.Points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote points: %w", err)
	}

	return snap, nil
}

// ListSnapshots returns every stored snapshot, newest first.
func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, s.spot, s.source, s.created_at, COUNT(p.tenor), COALESCE(MAX(p.tenor), 0)
		FROM snapshots s
		LEFT JOIN quote_points p ON p.snapshot = s.name
		GROUP BY s.name
		ORDER BY s.created_at DESC, s.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var source sql.NullString
		if err := rows.Scan(&info.Name, &info.Spot, &source, &info.CreatedAt, &info.Points, &info.MaxTenor); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		info.Source = source.String
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return infos, nil
}

// DeleteSnapshot removes a snapshot and its points.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quote_points WHERE snapshot = ?`, name); err != nil {
		return fmt.Errorf("%w: deleting quote points: %v", errors.ErrDatabaseError, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("%w: deleting snapshot: %v", errors.ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewDataError("snapshot", name, "not found", errors.ErrDataNotFound)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
