package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Fill the date dimension for a calendar range",
	Long: `Insert one dim_date row per calendar day between --from and --to
(inclusive). Days already present are skipped, so overlapping runs are safe.

day_of_week follows ISO 8601: Monday is 1, Sunday is 7.

Examples:
  swh dates --from 2008-01-01 --to 2030-12-31
  swh dates --from 2024-01-01            # through today`,
	Args: cobra.NoArgs,
	RunE: runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)

	datesCmd.Flags().String("from", "", "first day, YYYY-MM-DD (required)")
	datesCmd.Flags().String("to", "", "last day, YYYY-MM-DD (default: today, UTC)")
	datesCmd.MarkFlagRequired("from")
}

func runDates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	from, to, days, err := parseDateRange(fromStr, toStr, time.Now().UTC())
	if err != nil {
		return err
	}

	dbPath := GetDBPath()
	db, err := store.OpenWithOptions(dbPath, GetOpenOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	// The dimension table has to exist before seeding
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	util.InfoLog("Seeding dim_date: %s to %s (%d days)", from.Format("2006-01-02"), to.Format("2006-01-02"), days)

	var progress func(int)
	if util.ShowProgress() {
		bar := progressbar.NewOptions(days,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Seeding dates"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("days"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		progress = func(done int) {
			bar.Set(done)
		}
	}

	inserted, err := db.SeedDates(ctx, from, to, progress)
	if err != nil {
		return err
	}

	util.SuccessLog("dim_date: %d new rows, %d already present", inserted, days-inserted)
	return nil
}

// parseDateRange validates the --from/--to flags; an empty to means today
func parseDateRange(fromStr, toStr string, today time.Time) (from, to time.Time, days int, err error) {
	from, err = store.ParseDate(fromStr)
	if err != nil {
		return from, to, 0, err
	}

	if toStr == "" {
		to = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	} else if to, err = store.ParseDate(toStr); err != nil {
		return from, to, 0, err
	}

	days, err = store.DaysInRange(from, to)
	return from, to, days, err
}
