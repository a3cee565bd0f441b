package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Checkpoint is an externally-produced training artifact on the local
// filesystem. The file is never opened; only path and size are recorded.
type Checkpoint struct {
	Path      string
	SizeBytes int64
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// FindCheckpoint locates the newest non-empty file matching the glob
// pattern, e.g. "~/results/*/checkpoints/*.nemo". The checkpoint format is
// opaque; existence and a non-zero size are the only checks performed.
func FindCheckpoint(pattern string) (Checkpoint, error) {
	expanded, err := ExpandHome(pattern)
	if err != nil {
		return Checkpoint{}, err
	}
	matches, err := filepath.Glob(expanded)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("glob %q: %w", pattern, err)
	}
	type cand struct {
		path string
		size int64
		mod  int64
	}
	var cands []cand
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() || fi.Size() == 0 {
			continue
		}
		cands = append(cands, cand{path: m, size: fi.Size(), mod: fi.ModTime().UnixNano()})
	}
	if len(cands) == 0 {
		return Checkpoint{}, fmt.Errorf("no checkpoint files match %q", pattern)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].mod > cands[j].mod })
	return Checkpoint{Path: cands[0].path, SizeBytes: cands[0].size}, nil
}

// NameFromPath derives an adapter name from a checkpoint path: the file
// base without extension, lowercased.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}

// ValidName rejects adapter names that would escape the source root or
// confuse the server's directory scan.
func ValidName(name string) error {
	if name == "" {
		return fmt.Errorf("adapter name is empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid adapter name %q", name)
	}
	return nil
}
