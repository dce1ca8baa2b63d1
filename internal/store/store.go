package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite" // SQLite driver
	sqlite3 "modernc.org/sqlite/lib"
)

// Store owns the single connection to the warehouse file
type Store struct {
	db   *sql.DB
	path string
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	// BusyTimeout makes writers wait on a locked file instead of failing at once.
	// Zero keeps the engine default.
	BusyTimeout time.Duration

	// JournalMode sets PRAGMA journal_mode (e.g. "WAL"). Empty keeps the engine default.
	JournalMode string
}

// Open opens or creates the warehouse file at path with default options.
// Foreign keys are enforced on the returned connection; the schema is not applied.
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens or creates the warehouse file with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(path, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One exclusively-owned connection; per-connection pragmas stay in effect
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// sql.Open is lazy, so force the file open here
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	s := &Store{db: db, path: path}

	enabled, err := s.ForeignKeysEnabled(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read foreign key setting: %w", err)
	}
	if !enabled {
		db.Close()
		return nil, fmt.Errorf("foreign key enforcement could not be enabled on %s", path)
	}

	return s, nil
}

// uriPathEscaper escapes the characters SQLite's URI parser treats as syntax
// inside the path part of a file: URI.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// buildDSN renders the modernc.org/sqlite connection string.
// Pragmas in the DSN run on every new connection the pool creates.
func buildDSN(path string, opts *OpenOptions) string {
	pragmas := []string{"_pragma=foreign_keys(1)"}
	if opts.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	}
	if opts.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", strings.ToUpper(opts.JournalMode)))
	}
	return fmt.Sprintf("file:%s?%s", uriPathEscaper.Replace(path), strings.Join(pragmas, "&"))
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the file backing the store
func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// ForeignKeysEnabled reads PRAGMA foreign_keys back from the connection
func (s *Store) ForeignKeysEnabled(ctx context.Context) (bool, error) {
	var on int
	if err := s.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
		return false, err
	}
	return on == 1, nil
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var result string
	err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// ForeignKeyViolation is one row reported by PRAGMA foreign_key_check
type ForeignKeyViolation struct {
	Table  string
	RowID  int64
	Parent string
}

// ForeignKeyViolations lists rows whose references do not resolve.
// Rows written while enforcement was off are the only way to get here.
func (s *Store) ForeignKeyViolations(ctx context.Context) ([]ForeignKeyViolation, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("foreign key check failed: %w", err)
	}
	defer rows.Close()

	var out []ForeignKeyViolation
	for rows.Next() {
		var v ForeignKeyViolation
		var rowID sql.NullInt64
		var fkid int
		if err := rows.Scan(&v.Table, &rowID, &v.Parent, &fkid); err != nil {
			return nil, err
		}
		v.RowID = rowID.Int64
		out = append(out, v)
	}
	return out, rows.Err()
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsConstraintError reports whether err is a SQLite constraint violation
// (foreign key, primary key, unique, not null or check).
func IsConstraintError(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	// Extended codes carry the primary code in the low byte
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
