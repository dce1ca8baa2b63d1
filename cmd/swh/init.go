package main

import (
	"context"
	"fmt"
	"io"

	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse database and apply the schema",
	Long: `Create the warehouse database file (and its parent directory) if needed,
enable foreign key enforcement and apply the schema.

Safe to run repeatedly: every table and index is created only when absent.
This is what swh does when run without a subcommand.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	return bootstrap(cmd.Context(), GetDBPath(), GetOpenOptions(), cmd.OutOrStdout())
}

// bootstrap opens dbPath, applies the schema and reports the location on out
func bootstrap(ctx context.Context, dbPath string, opts *store.OpenOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	util.DebugLog("Opening database: %s", dbPath)
	db, err := store.OpenWithOptions(dbPath, opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	fmt.Fprintf(out, "DB ready at: %s\n", dbPath)
	return nil
}
