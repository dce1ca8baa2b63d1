package store

import (
	"context"
	"fmt"

	"github.com/franz/spotify-warehouse/internal/util"
)

const (
	currentSchemaVersion = 1
)

// Migrate applies the warehouse schema and commits.
// Every statement is create-if-absent, so calling it on a migrated file is a
// no-op apart from restoring anything that was dropped by hand. The version is
// kept in PRAGMA user_version so the file holds only warehouse tables.
func (s *Store) Migrate(ctx context.Context) error {
	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("%w: database is at v%d, this build knows v%d",
			util.ErrSchemaMismatch, version, currentSchemaVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to apply schema v1: %w", err)
	}

	// Future migrations would go here:
	// if version < 2 { ... }

	if version < currentSchemaVersion {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	util.DebugLog("Schema at v%d in %s", currentSchemaVersion, s.path)
	return nil
}

// SchemaVersion returns the recorded schema version (0 for a fresh file)
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// CurrentSchemaVersion is the version Migrate brings a database to
func CurrentSchemaVersion() int {
	return currentSchemaVersion
}

// SchemaObject is a table or index found in sqlite_master
type SchemaObject struct {
	Type string
	Name string
	SQL  string
}

// SchemaObjects returns the user tables and indexes present in the file,
// skipping SQLite's internal and automatic objects.
func (s *Store) SchemaObjects(ctx context.Context) ([]SchemaObject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, name, COALESCE(sql, '') FROM sqlite_master
		WHERE type IN ('table', 'index') AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema objects: %w", err)
	}
	defer rows.Close()

	var objects []SchemaObject
	for rows.Next() {
		var o SchemaObject
		if err := rows.Scan(&o.Type, &o.Name, &o.SQL); err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// MissingObjects returns the schema tables and indexes absent from the file
func (s *Store) MissingObjects(ctx context.Context) ([]string, error) {
	objects, err := s.SchemaObjects(ctx)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(objects))
	for _, o := range objects {
		present[o.Type+":"+o.Name] = true
	}

	var missing []string
	for _, t := range Tables {
		if !present["table:"+t] {
			missing = append(missing, t)
		}
	}
	for _, idx := range Indexes {
		if !present["index:"+idx] {
			missing = append(missing, idx)
		}
	}
	return missing, nil
}

// TableCount is the number of rows in one warehouse table
type TableCount struct {
	Table string
	Rows  int64
}

// TableCounts returns row counts for every warehouse table, in schema order
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		var n int64
		// Table names come from the fixed schema list
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

// CountSnapshots returns the number of distinct (playlist, snapshot) pairs in the fact table
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT DISTINCT playlist_id, snapshot_id FROM fact_playlist_track
		)
	`).Scan(&n)
	return n, err
}
