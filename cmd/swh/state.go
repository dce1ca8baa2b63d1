package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read and write etl_state entries",
	Long: `Inspect or set entries of the etl_state key/value table.

Entries are addressed by pipeline name and key. Values are stored as text
and carry no meaning for swh itself.`,
}

var stateGetCmd = &cobra.Command{
	Use:   "get <pipeline> <key>",
	Short: "Print one state value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, db *store.Store) error {
			entry, err := db.GetState(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.StateValue.String)
			return nil
		})
	},
}

var stateSetCmd = &cobra.Command{
	Use:   "set <pipeline> <key> <value>",
	Short: "Insert or replace one state value",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, db *store.Store) error {
			if err := db.SetState(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}
			util.SuccessLog("Set %s/%s", args[0], args[1])
			return nil
		})
	},
}

var stateListCmd = &cobra.Command{
	Use:   "list [pipeline]",
	Short: "List state entries, optionally for one pipeline",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline := ""
		if len(args) == 1 {
			pipeline = args[0]
		}
		return withStore(cmd, func(ctx context.Context, db *store.Store) error {
			entries, err := db.ListState(ctx, pipeline)
			if err != nil {
				return err
			}
			writeStateTable(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateGetCmd, stateSetCmd, stateListCmd)
}

// withStore opens and migrates the configured warehouse for the duration of fn
func withStore(cmd *cobra.Command, fn func(context.Context, *store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := GetDBPath()
	db, err := store.OpenWithOptions(dbPath, GetOpenOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	return fn(ctx, db)
}

func writeStateTable(out io.Writer, entries []store.StateEntry) {
	if len(entries) == 0 {
		util.InfoLog("No state entries")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PIPELINE\tKEY\tVALUE\tUPDATED")
	for _, e := range entries {
		value := e.StateValue.String
		if !e.StateValue.Valid {
			value = "(null)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.PipelineName, e.StateKey, util.Truncate(value, 60), e.UpdatedAt)
	}
	w.Flush()
}
