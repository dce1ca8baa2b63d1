package store

import (
	"context"
	"errors"
	"testing"

	"github.com/franz/spotify-warehouse/internal/util"
)

func TestStateSetAndGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.SetState(ctx, "playlists", "last_run", "2024-05-01"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	entry, err := store.GetState(ctx, "playlists", "last_run")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if !entry.StateValue.Valid || entry.StateValue.String != "2024-05-01" {
		t.Errorf("expected value 2024-05-01, got %+v", entry.StateValue)
	}
	if entry.UpdatedAt == "" {
		t.Error("expected updated_at to be set")
	}

	// Upsert replaces the value in place
	if err := store.SetState(ctx, "playlists", "last_run", "2024-06-01"); err != nil {
		t.Fatalf("SetState (update) failed: %v", err)
	}
	entry, err = store.GetState(ctx, "playlists", "last_run")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if entry.StateValue.String != "2024-06-01" {
		t.Errorf("expected updated value, got %s", entry.StateValue.String)
	}

	entries, err := store.ListState(ctx, "")
	if err != nil {
		t.Fatalf("ListState failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single entry after upsert, got %d", len(entries))
	}
}

func TestStateGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetState(context.Background(), "playlists", "nope")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStateRequiresKeys(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name     string
		pipeline string
		key      string
	}{
		{"empty pipeline", "", "k"},
		{"empty key", "p", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SetState(context.Background(), tt.pipeline, tt.key, "v")
			if !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestStateListByPipeline(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	writes := [][3]string{
		{"playlists", "b", "2"},
		{"playlists", "a", "1"},
		{"artists", "a", "x"},
	}
	for _, w := range writes {
		if err := store.SetState(ctx, w[0], w[1], w[2]); err != nil {
			t.Fatalf("SetState failed: %v", err)
		}
	}

	entries, err := store.ListState(ctx, "playlists")
	if err != nil {
		t.Fatalf("ListState failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 playlist entries, got %d", len(entries))
	}
	if entries[0].StateKey != "a" || entries[1].StateKey != "b" {
		t.Errorf("expected entries ordered by key, got %s, %s", entries[0].StateKey, entries[1].StateKey)
	}

	all, err := store.ListState(ctx, "")
	if err != nil {
		t.Fatalf("ListState failed: %v", err)
	}
	if len(all) != 3 || all[0].PipelineName != "artists" {
		t.Errorf("expected 3 entries starting with artists, got %+v", all)
	}
}
