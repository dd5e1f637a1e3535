package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/store/disk"
)

func TestGarbageCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	fs := afero.NewMemMapFs()
	store := disk.New(fs, "redstone")
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout failed: %v", err)
	}

	now := time.Now()
	files := []struct {
		path string
		age  time.Duration
	}{
		{"redstone/endpoints/.a.tmp-1", 2 * time.Hour},    // stale
		{"redstone/waypoints/.b.tmp-2", 3 * time.Hour},    // stale
		{"redstone/endpoints/.c.tmp-3", 5 * time.Minute},  // still being written
		{"redstone/endpoints/record-id", 48 * time.Hour}, // real record, never touched
	}
	for _, f := range files {
		if err := afero.WriteFile(fs, f.path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f.path, err)
		}
		mod := now.Add(-f.age)
		if err := fs.Chtimes(f.path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", f.path, err)
		}
	}

	gc := NewGarbageCollector(store, log, time.Hour, 0)
	gc.now = func() time.Time { return now }

	if got := gc.Collect(context.Background()); got != 2 {
		t.Errorf("Expected 2 temp files removed, got %d", got)
	}

	for _, f := range files {
		ok, _ := afero.Exists(fs, f.path)
		shouldExist := f.age < DefaultGCThreshold || f.path == "redstone/endpoints/record-id"
		if ok != shouldExist {
			t.Errorf("%s: exists=%v, want %v", f.path, ok, shouldExist)
		}
	}

	if got := gc.Collect(context.Background()); got != 0 {
		t.Errorf("Expected nothing left to collect, got %d", got)
	}
}

func TestGarbageCollector_MissingDirectories(t *testing.T) {
	store := disk.New(afero.NewMemMapFs(), "absent")
	gc := NewGarbageCollector(store, logger.New("error", false), time.Hour, time.Minute)

	if got := gc.Collect(context.Background()); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}
