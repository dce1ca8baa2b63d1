package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the warehouse database",
	Long: `Run diagnostic checks against the configured warehouse database.

This command checks:
- SQLite version
- Database accessibility and integrity
- Foreign key enforcement and dangling references
- Schema version and presence of every table and index
- Disk space next to the database file

The database is not created or modified.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	util.InfoLog("=== swh doctor ===")

	dbPath := GetDBPath()
	results := []checkResult{checkSQLite()}
	results = append(results, checkDatabase(ctx, dbPath)...)
	results = append(results, checkDiskSpace(filepath.Dir(dbPath)))

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	if hasErrors {
		return fmt.Errorf("diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings")
	} else {
		util.SuccessLog("All checks passed")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite answers
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase inspects an existing warehouse file without migrating it
func checkDatabase(ctx context.Context, dbPath string) []checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []checkResult{{
				name:    "Database",
				warning: true,
				message: fmt.Sprintf("%s does not exist (run swh init)", dbPath),
			}}
		}
		return []checkResult{{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}}
	}

	if !info.Mode().IsRegular() {
		return []checkResult{{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return []checkResult{{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}}
	}
	defer db.Close()

	results := []checkResult{{
		name:    "Database",
		message: fmt.Sprintf("%s (%s)", dbPath, util.FormatBytes(info.Size())),
	}}

	if err := db.CheckIntegrity(ctx); err != nil {
		results = append(results, checkResult{name: "Integrity", error: true, message: err.Error()})
		// Later checks read the same pages
		return results
	}
	results = append(results, checkResult{name: "Integrity", message: "ok"})

	results = append(results, checkSchema(ctx, db))
	results = append(results, checkForeignKeys(ctx, db))

	return results
}

func checkSchema(ctx context.Context, db *store.Store) checkResult {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return checkResult{name: "Schema", error: true, message: err.Error()}
	}
	if version > store.CurrentSchemaVersion() {
		return checkResult{
			name:    "Schema",
			error:   true,
			message: fmt.Sprintf("v%d is newer than this build (v%d)", version, store.CurrentSchemaVersion()),
		}
	}

	missing, err := db.MissingObjects(ctx)
	if err != nil {
		return checkResult{name: "Schema", error: true, message: err.Error()}
	}
	if len(missing) > 0 || version < store.CurrentSchemaVersion() {
		msg := fmt.Sprintf("v%d", version)
		if len(missing) > 0 {
			msg += fmt.Sprintf(", missing %s", strings.Join(missing, ", "))
		}
		return checkResult{name: "Schema", warning: true, message: msg + " (run swh init)"}
	}

	return checkResult{
		name:    "Schema",
		message: fmt.Sprintf("v%d, %d tables, %d indexes", version, len(store.Tables), len(store.Indexes)),
	}
}

func checkForeignKeys(ctx context.Context, db *store.Store) checkResult {
	enabled, err := db.ForeignKeysEnabled(ctx)
	if err != nil {
		return checkResult{name: "Foreign keys", error: true, message: err.Error()}
	}
	if !enabled {
		return checkResult{name: "Foreign keys", error: true, message: "enforcement is off"}
	}

	violations, err := db.ForeignKeyViolations(ctx)
	if err != nil {
		return checkResult{name: "Foreign keys", error: true, message: err.Error()}
	}
	if len(violations) > 0 {
		first := violations[0]
		return checkResult{
			name:    "Foreign keys",
			error:   true,
			message: fmt.Sprintf("%d dangling references (first: %s row %d -> %s)", len(violations), first.Table, first.RowID, first.Parent),
		}
	}

	return checkResult{name: "Foreign keys", message: "enforced, no dangling references"}
}

// checkDiskSpace verifies available disk space where the database lives
func checkDiskSpace(dir string) checkResult {
	// The directory may not exist before the first init
	for {
		if _, err := os.Stat(dir); err == nil || filepath.Dir(dir) == dir {
			break
		}
		dir = filepath.Dir(dir)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return checkResult{
			name:    "Disk space",
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	// Available bytes = available blocks * block size
	availBytes := stat.Bavail * uint64(stat.Bsize)
	totalBytes := stat.Blocks * uint64(stat.Bsize)

	// Warn below 100MB or 5% free
	warning := false
	warningMsg := ""
	if availBytes < 100*1000*1000 {
		warning = true
		warningMsg = " (low space!)"
	} else if totalBytes > 0 && float64(availBytes)/float64(totalBytes) < 0.05 {
		warning = true
		warningMsg = " (>95% used)"
	}

	return checkResult{
		name:    "Disk space",
		warning: warning,
		message: fmt.Sprintf("%s available in %s%s", util.FormatBytes(int64(availBytes)), dir, warningMsg),
	}
}
