package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/franz/spotify-warehouse/internal/util"
)

func TestNewDateRow(t *testing.T) {
	tests := []struct {
		date string
		want DateRow
	}{
		{"2024-02-29", DateRow{DateID: 20240229, Date: "2024-02-29", Year: 2024, Month: 2, Day: 29, DayOfWeek: 4}},
		{"2024-03-03", DateRow{DateID: 20240303, Date: "2024-03-03", Year: 2024, Month: 3, Day: 3, DayOfWeek: 7}},
		{"2024-03-04", DateRow{DateID: 20240304, Date: "2024-03-04", Year: 2024, Month: 3, Day: 4, DayOfWeek: 1}},
		{"1999-12-31", DateRow{DateID: 19991231, Date: "1999-12-31", Year: 1999, Month: 12, Day: 31, DayOfWeek: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			if err != nil {
				t.Fatalf("ParseDate failed: %v", err)
			}
			if got := NewDateRow(d); got != tt.want {
				t.Errorf("NewDateRow(%s) = %+v, want %+v", tt.date, got, tt.want)
			}
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "20240101", "2024-02-30"} {
		if _, err := ParseDate(in); !errors.Is(err, util.ErrInvalidDateRange) {
			t.Errorf("ParseDate(%q): expected ErrInvalidDateRange, got %v", in, err)
		}
	}
}

func TestDaysInRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	days, err := DaysInRange(from, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DaysInRange failed: %v", err)
	}
	if days != 366 {
		t.Errorf("expected 366 days in 2024, got %d", days)
	}

	days, err = DaysInRange(from, from)
	if err != nil || days != 1 {
		t.Errorf("expected single day range, got %d (%v)", days, err)
	}

	if _, err := DaysInRange(from, from.AddDate(0, 0, -1)); !errors.Is(err, util.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange for reversed range, got %v", err)
	}

	if _, err := DaysInRange(from, from.AddDate(200, 0, 0)); !errors.Is(err, util.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange for oversized range, got %v", err)
	}
}

func TestSeedDates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	from, _ := ParseDate("2024-02-25")
	to, _ := ParseDate("2024-03-05")

	var calls, last int
	inserted, err := store.SeedDates(ctx, from, to, func(done int) {
		calls++
		last = done
	})
	if err != nil {
		t.Fatalf("SeedDates failed: %v", err)
	}
	if inserted != 10 {
		t.Errorf("expected 10 inserted rows, got %d", inserted)
	}
	if calls != 10 || last != 10 {
		t.Errorf("expected 10 progress calls ending at 10, got %d calls ending at %d", calls, last)
	}

	var row DateRow
	err = store.db.QueryRow(`SELECT date_id, date, year, month, day, day_of_week FROM dim_date WHERE date = '2024-02-29'`).
		Scan(&row.DateID, &row.Date, &row.Year, &row.Month, &row.Day, &row.DayOfWeek)
	if err != nil {
		t.Fatalf("failed to read leap day: %v", err)
	}
	if row.DateID != 20240229 || row.DayOfWeek != 4 {
		t.Errorf("unexpected leap day row: %+v", row)
	}

	// Overlapping range only adds the new days
	to2, _ := ParseDate("2024-03-07")
	inserted, err = store.SeedDates(ctx, from, to2, nil)
	if err != nil {
		t.Fatalf("second SeedDates failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("expected 2 new rows on overlap, got %d", inserted)
	}

	first, lastID, rows, err := store.DateCoverage(ctx)
	if err != nil {
		t.Fatalf("DateCoverage failed: %v", err)
	}
	if first != 20240225 || lastID != 20240307 || rows != 12 {
		t.Errorf("unexpected coverage: first=%d last=%d rows=%d", first, lastID, rows)
	}
}

func TestSeedDatesInvalidRange(t *testing.T) {
	store := openTestStore(t)

	from, _ := ParseDate("2024-03-05")
	to, _ := ParseDate("2024-03-01")

	if _, err := store.SeedDates(context.Background(), from, to, nil); !errors.Is(err, util.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSeedDatesCancelled(t *testing.T) {
	store := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	from, _ := ParseDate("2024-01-01")
	to, _ := ParseDate("2024-01-31")
	if _, err := store.SeedDates(ctx, from, to, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	_, _, rows, err := store.DateCoverage(context.Background())
	if err != nil {
		t.Fatalf("DateCoverage failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected no rows after cancelled seed, got %d", rows)
	}
}

func TestDateCoverageEmpty(t *testing.T) {
	store := openTestStore(t)

	first, last, rows, err := store.DateCoverage(context.Background())
	if err != nil {
		t.Fatalf("DateCoverage failed: %v", err)
	}
	if first != 0 || last != 0 || rows != 0 {
		t.Errorf("expected empty coverage, got first=%d last=%d rows=%d", first, last, rows)
	}
}
