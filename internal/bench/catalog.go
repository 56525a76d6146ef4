package bench

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CatalogEntry is one synthetic storage file the benchmark simulates
// reading: a path standing in for an on-disk SSTable/segment and its
// simulated file size, which Run also uses as the reader's admission
// memory estimate. The size of each bulk read is RunnerConfig.ReadRange.
type CatalogEntry struct {
	Path          string
	SimulatedSize int64
}

// OpenCatalog opens (creating if necessary) a sqlite-backed workload
// catalog at dbPath. The schema holds one row per simulated storage file.
func OpenCatalog(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", dbPath, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	path TEXT PRIMARY KEY,
	simulated_size INTEGER NOT NULL
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return db, nil
}

// SeedCatalog inserts entries into the catalog, replacing any existing row
// with the same path. Used to populate a fresh benchmark run.
func SeedCatalog(ctx context.Context, db *sql.DB, entries []CatalogEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning catalog seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a documented no-op

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO catalog_entries (path, simulated_size) VALUES (?, ?)
ON CONFLICT(path) DO UPDATE SET simulated_size = excluded.simulated_size`)
	if err != nil {
		return fmt.Errorf("preparing catalog insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Path, e.SimulatedSize); err != nil {
			return fmt.Errorf("inserting catalog entry %s: %w", e.Path, err)
		}
	}
	return tx.Commit()
}

// ListCatalog returns every entry currently in the catalog.
func ListCatalog(ctx context.Context, db *sql.DB) ([]CatalogEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT path, simulated_size FROM catalog_entries ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Path, &e.SimulatedSize); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
