package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindCheckpointPicksNewest(t *testing.T) {
	d := t.TempDir()
	old := filepath.Join(d, "run1", "ckpt.nemo")
	newer := filepath.Join(d, "run2", "ckpt.nemo")
	writeFile(t, old, "old-weights")
	writeFile(t, newer, "new-weights")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	ck, err := FindCheckpoint(filepath.Join(d, "*", "*.nemo"))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ck.Path != newer {
		t.Fatalf("picked %q, want %q", ck.Path, newer)
	}
	if ck.SizeBytes != int64(len("new-weights")) {
		t.Fatalf("size = %d", ck.SizeBytes)
	}
}

func TestFindCheckpointSkipsEmptyFiles(t *testing.T) {
	d := t.TempDir()
	writeFile(t, filepath.Join(d, "empty.nemo"), "")
	if _, err := FindCheckpoint(filepath.Join(d, "*.nemo")); err == nil {
		t.Fatalf("expected error when only empty files match")
	}
}

func TestFindCheckpointNoMatch(t *testing.T) {
	if _, err := FindCheckpoint(filepath.Join(t.TempDir(), "*.nemo")); err == nil {
		t.Fatalf("expected error for no matches")
	}
}

func TestNameFromPath(t *testing.T) {
	if got := NameFromPath("/results/Llama-Math-LoRA.nemo"); got != "llama-math-lora" {
		t.Fatalf("name = %q", got)
	}
}

func TestValidName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`, "a..b"} {
		if err := ValidName(bad); err == nil {
			t.Fatalf("ValidName(%q) accepted", bad)
		}
	}
	if err := ValidName("math-lora-v1"); err != nil {
		t.Fatalf("ValidName rejected a good name: %v", err)
	}
}
