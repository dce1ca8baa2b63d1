package store

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/spotify-warehouse/internal/util"
)

const (
	dateLayout = "2006-01-02"

	// maxSeedDays caps one seeding run at roughly a century of days
	maxSeedDays = 366 * 100
)

// DateRow is one row of dim_date
type DateRow struct {
	DateID    int    // YYYYMMDD
	Date      string // YYYY-MM-DD
	Year      int
	Month     int
	Day       int
	DayOfWeek int // ISO weekday, Monday=1 .. Sunday=7
}

// DateID returns the YYYYMMDD key for the calendar day of t
func DateID(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// NewDateRow builds the dim_date row for the calendar day of t
func NewDateRow(t time.Time) DateRow {
	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}
	return DateRow{
		DateID:    DateID(t),
		Date:      t.Format(dateLayout),
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		DayOfWeek: dow,
	}
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", util.ErrInvalidDateRange, s)
	}
	return t, nil
}

// DaysInRange returns the number of calendar days in [from, to]
func DaysInRange(from, to time.Time) (int, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return 0, fmt.Errorf("%w: %s is after %s", util.ErrInvalidDateRange,
			from.Format(dateLayout), to.Format(dateLayout))
	}
	// Calendar arithmetic in UTC has no DST gaps
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxSeedDays {
		return 0, fmt.Errorf("%w: %d days exceeds the limit of %d", util.ErrInvalidDateRange, days, maxSeedDays)
	}
	return days, nil
}

// SeedDates inserts one dim_date row per calendar day in [from, to].
// Days already present are left untouched. progress, when non-nil, is
// called after each day with the number of days handled so far.
// Returns the number of rows inserted.
func (s *Store) SeedDates(ctx context.Context, from, to time.Time, progress func(done int)) (int, error) {
	days, err := DaysInRange(from, to)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dim_date (date_id, date, year, month, day, day_of_week)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare date insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	day := truncateDay(from)
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		row := NewDateRow(day)
		res, err := stmt.ExecContext(ctx, row.DateID, row.Date, row.Year, row.Month, row.Day, row.DayOfWeek)
		if err != nil {
			return 0, fmt.Errorf("failed to insert date %s: %w", row.Date, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}

		if progress != nil {
			progress(i + 1)
		}
		day = day.AddDate(0, 0, 1)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit dates: %w", err)
	}

	return inserted, nil
}

// DateCoverage returns the first and last date_id in dim_date and the row count.
// Both ids are zero when the table is empty.
func (s *Store) DateCoverage(ctx context.Context) (first, last int, rows int64, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MIN(date_id), 0), COALESCE(MAX(date_id), 0), COUNT(*) FROM dim_date
	`).Scan(&first, &last, &rows)
	return first, last, rows, err
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
