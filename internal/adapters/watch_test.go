package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDeploysSettledCheckpoint(t *testing.T) {
	dir := t.TempDir()
	deployed := make(chan Checkpoint, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, "*.nemo", 50*time.Millisecond, func(ck Checkpoint) error {
			deployed <- ck
			return nil
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	ckPath := filepath.Join(dir, "math.nemo")
	if err := os.WriteFile(ckPath, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ck := <-deployed:
		if ck.Path != ckPath {
			t.Fatalf("deployed %q, want %q", ck.Path, ckPath)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for deploy")
	}

	cancel()
	if err := <-done; err == nil {
		t.Fatalf("expected context error after cancel")
	}
}

func TestWatchRejectsNonPositiveSettle(t *testing.T) {
	dir := t.TempDir()
	for _, settle := range []time.Duration{0, -time.Second} {
		err := Watch(context.Background(), dir, "*.nemo", settle, func(ck Checkpoint) error {
			t.Fatalf("unexpected deploy with settle=%v", settle)
			return nil
		})
		if err == nil {
			t.Fatalf("expected error for settle=%v", settle)
		}
	}
}

func TestWatchIgnoresNonMatching(t *testing.T) {
	dir := t.TempDir()
	deployed := make(chan Checkpoint, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watch(ctx, dir, "*.nemo", 30*time.Millisecond, func(ck Checkpoint) error {
			deployed <- ck
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ck := <-deployed:
		t.Fatalf("unexpected deploy of %q", ck.Path)
	case <-time.After(300 * time.Millisecond):
	}
}
