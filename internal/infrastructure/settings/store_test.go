package settings

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStore_InMemoryDefaults(t *testing.T) {
	t.Parallel()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.Get(context.Background())
	if got.Handle != "" || got.Theme != "" || len(got.AttendedContests) != 0 {
		t.Fatalf("expected empty defaults, got %+v", got)
	}
}

func TestStore_RoundTripThroughFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.SetHandle(ctx, "  tourist  "); err != nil {
		t.Fatalf("set handle: %v", err)
	}
	if _, err := store.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if _, err := store.SetContestAttendance(ctx, 1700, true); err != nil {
		t.Fatalf("set attendance: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Get(ctx)
	if got.Handle != "tourist" {
		t.Fatalf("expected trimmed handle, got %q", got.Handle)
	}
	if got.Theme != "dark" {
		t.Fatalf("expected theme dark, got %q", got.Theme)
	}
	if !got.AttendedContests[1700] {
		t.Fatalf("expected contest 1700 attended, got %v", got.AttendedContests)
	}
}

func TestStore_ClearHandleKeepsOtherSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.SetHandle(ctx, "tourist"); err != nil {
		t.Fatalf("set handle: %v", err)
	}
	if _, err := store.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}

	got, err := store.ClearHandle(ctx)
	if err != nil {
		t.Fatalf("clear handle: %v", err)
	}
	if got.Handle != "" {
		t.Fatalf("expected cleared handle, got %q", got.Handle)
	}
	if got.Theme != "dark" {
		t.Fatalf("logout must keep the theme, got %q", got.Theme)
	}
}

func TestStore_UnmarkingAttendanceRemovesEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.SetContestAttendance(ctx, 1700, true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	got, err := store.SetContestAttendance(ctx, 1700, false)
	if err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if _, exists := got.AttendedContests[1700]; exists {
		t.Fatalf("unmarked contest must be removed, got %v", got.AttendedContests)
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.SetContestAttendance(ctx, 1, true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	first := store.Get(ctx)
	first.AttendedContests[2] = true

	second := store.Get(ctx)
	if _, leaked := second.AttendedContests[2]; leaked {
		t.Fatalf("mutating a snapshot must not affect the store")
	}
}
