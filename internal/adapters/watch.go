package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch observes a training-output directory and invokes deploy for every
// file that matches pattern (a base-name glob, e.g. "*.nemo") once it has
// stopped growing. It blocks until the context is canceled. The notebooks
// this replaces did the same step by hand between the training and
// inference cells.
func Watch(ctx context.Context, dir, pattern string, settle time.Duration, deploy func(Checkpoint) error) error {
	if settle <= 0 {
		return fmt.Errorf("settle interval must be positive, got %v", settle)
	}
	expanded, err := ExpandHome(dir)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(expanded); err != nil {
		return fmt.Errorf("watch %s: %w", expanded, err)
	}

	// pending holds paths seen recently; a path deploys once no new event
	// has arrived for it within the settle window.
	pending := map[string]time.Time{}
	half := settle / 2
	if half <= 0 {
		half = settle
	}
	tick := time.NewTicker(half)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			match, err := filepath.Match(pattern, filepath.Base(ev.Name))
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if match {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				ck, err := FindCheckpoint(path)
				if err != nil {
					continue // truncated or removed while settling
				}
				if err := deploy(ck); err != nil {
					return err
				}
			}
		}
	}
}
