package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nimctl/internal/adapters"
	"nimctl/pkg/types"
)

const adapterPollInterval = 5 * time.Second

func newStore(cfg *Config) *adapters.Store {
	return adapters.NewStore(newDocker(), cfg.AdapterVolume)
}

// adapterDeploy copies a checkpoint into the adapter volume and optionally
// waits for the server scan to pick it up.
func adapterDeploy(ctx context.Context, cfg *Config, ckptPath, name string, wait bool, waitTimeout time.Duration) error {
	var ck adapters.Checkpoint
	var err error
	if ckptPath != "" {
		ck, err = adapters.FindCheckpoint(ckptPath)
	} else {
		ck, err = adapters.FindCheckpoint(cfg.CheckpointGlob)
	}
	if err != nil {
		return err
	}
	if name == "" {
		name = adapters.NameFromPath(ck.Path)
	}
	logger.Info().Str("checkpoint", ck.Path).Int64("size_bytes", ck.SizeBytes).Str("adapter", name).Msg("deploying adapter")

	store := newStore(cfg)
	if err := store.Deploy(ctx, name, ck); err != nil {
		return err
	}
	logger.Info().Str("adapter", name).Str("volume", cfg.AdapterVolume).Msg("checkpoint copied")

	if !wait {
		fmt.Printf("adapter %s deployed; the server scans %s every %ds\n", name, cfg.AdapterVolume, cfg.RefreshSec)
		return nil
	}
	if err := store.WaitLoaded(ctx, newClient(cfg), name, adapterPollInterval, waitTimeout); err != nil {
		return err
	}
	fmt.Printf("adapter %s is live\n", name)
	return nil
}

// adapterList shows the volume contents, cross-checked against /v1/models
// when the server answers.
func adapterList(ctx context.Context, cfg *Config) error {
	store := newStore(cfg)
	as, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(as) == 0 {
		fmt.Println("no adapters deployed")
		return nil
	}

	loaded := map[string]bool{}
	client := newClient(cfg)
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if status, err := client.Ready(probeCtx); err == nil && status == http.StatusOK {
		if ml, err := client.ListModels(probeCtx); err == nil {
			for _, m := range ml.Data {
				loaded[m.ID] = true
			}
		}
	}
	markLoaded(as, loaded)

	for _, a := range as {
		state := "not loaded"
		if a.Loaded {
			state = "loaded"
		}
		fmt.Printf("%-40s %8d KiB  %s\n", a.Name, a.SizeBytes/1024, state)
	}
	return nil
}

// markLoaded flags each adapter the server currently lists as a model.
func markLoaded(as []types.Adapter, ids map[string]bool) {
	for i := range as {
		as[i].Loaded = ids[as[i].Name]
	}
}

// adapterRemove deletes an adapter directory; the server drops the entry on
// its next refresh.
func adapterRemove(ctx context.Context, cfg *Config, name string) error {
	if err := newStore(cfg).Remove(ctx, name); err != nil {
		return err
	}
	fmt.Printf("adapter %s removed; it disappears from /v1/models within %ds\n", name, cfg.RefreshSec)
	return nil
}

// adapterWatch auto-deploys checkpoints as the training job writes them.
func adapterWatch(ctx context.Context, cfg *Config, dir, pattern string, settle time.Duration) error {
	logger.Info().Str("dir", dir).Str("pattern", pattern).Msg("watching for new checkpoints")
	return adapters.Watch(ctx, dir, pattern, settle, func(ck adapters.Checkpoint) error {
		name := adapters.NameFromPath(ck.Path)
		logger.Info().Str("checkpoint", ck.Path).Str("adapter", name).Msg("new checkpoint detected")
		return newStore(cfg).Deploy(ctx, name, ck)
	})
}
