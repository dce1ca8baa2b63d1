package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/spotify-warehouse/internal/report"
	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a summary report of the warehouse",
	Long: `Generate a Markdown summary of the warehouse database.

The report includes:
- File size, SQLite and schema versions
- Row counts per table
- Number of playlist snapshots in the fact table
- Date dimension coverage

The report is saved to artifacts/reports/<timestamp>/summary.md unless
--out is given. Use --stdout to print it instead.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().Bool("stdout", false, "Print the report instead of writing a file")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := GetDBPath()
	util.InfoLog("Database: %s", dbPath)

	db, err := openExistingStore(dbPath, GetOpenOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := report.GenerateSummaryReport(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		fmt.Fprint(cmd.OutOrStdout(), report.RenderMarkdown(summary))
		return nil
	}

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		base := GetConfigString("report-dir", filepath.Join("artifacts", "reports"))
		outputDir = filepath.Join(base, time.Now().Format("20060102-150405"))
	}

	outputPath := filepath.Join(outputDir, "summary.md")
	if err := report.WriteMarkdownReport(summary, outputPath); err != nil {
		return err
	}

	util.SuccessLog("Report written to %s", util.Truncate(outputPath, util.GetTerminalWidth()-20))
	return nil
}

// openExistingStore opens a warehouse file that must already exist.
// Opening a missing path would otherwise create an empty database.
func openExistingStore(dbPath string, opts *store.OpenOptions) (*store.Store, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist (run swh init)", util.ErrNotFound, dbPath)
		}
		return nil, fmt.Errorf("cannot access %s: %w", dbPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", dbPath)
	}

	db, err := store.OpenWithOptions(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
