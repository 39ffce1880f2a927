package ingest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{
		"b.PDF", "a.png", "notes.txt", "sub/c.jpeg", ".hidden.pdf", ".cache/d.pdf", "manifest.yaml",
	} {
		touch(t, filepath.Join(root, p))
	}

	paths, stats, err := Scan(root, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b.PDF"),
		filepath.Join(root, "sub", "c.jpeg"),
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if stats.Matched != 3 || stats.Scanned != 5 {
		t.Errorf("unexpected stats %+v", stats)
	}

	all, _, err := Scan(root, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected hidden documents when skipHidden is false, got %v", all)
	}
}

func TestScanErrors(t *testing.T) {
	if _, _, err := Scan("  ", true); err == nil {
		t.Error("expected error for empty root")
	}
	if _, _, err := Scan(filepath.Join(t.TempDir(), "missing"), true); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWatchEmitsNewDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch event")
			return ""
		}
	}

	if got := next(); got != filepath.Join(root, "existing.pdf") {
		t.Fatalf("initial scan emitted %q", got)
	}

	touch(t, filepath.Join(root, "ignored.txt"))
	touch(t, filepath.Join(root, "new.png"))
	if got := next(); got != filepath.Join(root, "new.png") {
		t.Errorf("expected new.png, got %q", got)
	}

	cancel()
	for range events {
	}
}

func TestWatchDebouncesPerPath(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{Roots: []string{root}, Debounce: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	busy := filepath.Join(root, "busy.pdf")
	quiet := filepath.Join(root, "quiet.pdf")
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			_ = os.WriteFile(busy, []byte(time.Now().String()), 0o644)
			select {
			case <-stop:
				return
			case <-tick.C:
			}
		}
	}()
	time.Sleep(50 * time.Millisecond)
	touch(t, quiet)

	select {
	case got := <-events:
		if got != quiet {
			t.Errorf("first event = %q, want %q while busy.pdf is still changing", got, quiet)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("quiet.pdf was held back by writes to another file")
	}

	close(stop)
	<-done
	select {
	case got := <-events:
		if got != busy {
			t.Errorf("second event = %q, want %q", got, busy)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("busy.pdf never emitted after it went quiet")
	}

	cancel()
	for range events {
	}
}

func TestWatchRequiresRoots(t *testing.T) {
	if _, _, err := Watch(context.Background(), WatchConfig{}, nil); err == nil {
		t.Error("expected error without roots")
	}
}
