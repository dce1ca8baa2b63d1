package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
)

// SummaryReport describes the state of one warehouse file
type SummaryReport struct {
	GeneratedAt time.Time

	// Database
	DatabasePath   string
	SizeBytes      int64
	SQLiteVersion  string
	SchemaVersion  int
	MissingObjects []string

	// Contents
	Tables       []store.TableCount
	TotalRows    int64
	Snapshots    int64
	StateEntries int64

	// Date dimension coverage (YYYYMMDD, zero when empty)
	FirstDateID int
	LastDateID  int
}

// GenerateSummaryReport gathers statistics from a migrated warehouse
func GenerateSummaryReport(ctx context.Context, db *store.Store) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt:   time.Now(),
		DatabasePath:  db.Path(),
		SQLiteVersion: store.SQLiteVersion(),
	}

	if info, err := os.Stat(db.Path()); err == nil {
		report.SizeBytes = info.Size()
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	report.SchemaVersion = version

	missing, err := db.MissingObjects(ctx)
	if err != nil {
		return nil, err
	}
	report.MissingObjects = missing
	if len(missing) > 0 {
		// Counting would fail on absent tables
		return report, nil
	}

	counts, err := db.TableCounts(ctx)
	if err != nil {
		return nil, err
	}
	report.Tables = counts
	for _, c := range counts {
		report.TotalRows += c.Rows
		if c.Table == "etl_state" {
			report.StateEntries = c.Rows
		}
	}

	snapshots, err := db.CountSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count snapshots: %w", err)
	}
	report.Snapshots = snapshots

	first, last, _, err := db.DateCoverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read date coverage: %w", err)
	}
	report.FirstDateID = first
	report.LastDateID = last

	return report, nil
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	// Create output directory
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown renders the summary report as a Markdown document
func RenderMarkdown(report *SummaryReport) string {
	var md strings.Builder

	// Header
	md.WriteString("# Playlist Warehouse - Summary Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| File Size | %s |\n", util.FormatBytes(report.SizeBytes)))
	if report.SQLiteVersion != "" {
		md.WriteString(fmt.Sprintf("| SQLite | %s |\n", report.SQLiteVersion))
	}
	md.WriteString(fmt.Sprintf("| Schema Version | %d |\n", report.SchemaVersion))
	md.WriteString(fmt.Sprintf("| Total Rows | %s |\n", util.FormatCount(report.TotalRows)))
	md.WriteString(fmt.Sprintf("| Playlist Snapshots | %s |\n", util.FormatCount(report.Snapshots)))
	md.WriteString(fmt.Sprintf("| ETL State Entries | %s |\n", util.FormatCount(report.StateEntries)))
	if report.FirstDateID > 0 {
		md.WriteString(fmt.Sprintf("| Date Coverage | %s to %s |\n",
			formatDateID(report.FirstDateID), formatDateID(report.LastDateID)))
	}
	md.WriteString("\n")

	// Schema problems
	if len(report.MissingObjects) > 0 {
		md.WriteString("## Missing Schema Objects\n\n")
		md.WriteString("*Run `swh init` to restore them.*\n\n")
		for _, name := range report.MissingObjects {
			md.WriteString(fmt.Sprintf("- `%s`\n", name))
		}
		md.WriteString("\n")
	}

	// Tables
	if len(report.Tables) > 0 {
		md.WriteString("## Tables\n\n")
		md.WriteString("| Table | Rows |\n")
		md.WriteString("|-------|------|\n")
		for _, t := range report.Tables {
			md.WriteString(fmt.Sprintf("| %s | %s |\n", t.Table, util.FormatCount(t.Rows)))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by swh - Playlist Warehouse*\n")

	return md.String()
}

// formatDateID renders a YYYYMMDD key as YYYY-MM-DD
func formatDateID(id int) string {
	return fmt.Sprintf("%04d-%02d-%02d", id/10000, id/100%100, id%100)
}
