package adapters

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nimctl/internal/dockercli"
	"nimctl/internal/nimapi"
	"nimctl/pkg/types"
)

// helperImage is the small utility image used to touch volume contents.
const helperImage = "busybox:stable"

// Store manages adapter checkpoint directories inside the named Docker
// volume the server scans. Discovery of deployed adapters is the server's
// own background job; the store only arranges files.
type Store struct {
	docker *dockercli.Docker
	volume string
}

// NewStore creates a store for the given adapter volume.
func NewStore(d *dockercli.Docker, volume string) *Store {
	return &Store{docker: d, volume: volume}
}

// Deploy copies a checkpoint file into <volume>/<name>/ via a short-lived
// helper container. The server picks the directory up on its next scan.
func (s *Store) Deploy(ctx context.Context, name string, ck Checkpoint) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if _, err := os.Stat(ck.Path); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := s.docker.EnsureVolume(ctx, s.volume); err != nil {
		return err
	}

	helper := fmt.Sprintf("nimctl-cp-%d", time.Now().UnixNano())
	// A sleeping container keeps the volume mounted while docker cp runs.
	if _, err := s.docker.RunDetached(ctx, []string{
		"--name", helper,
		"-v", s.volume + ":/loras",
		helperImage, "sleep", "300",
	}); err != nil {
		return fmt.Errorf("start helper container: %w", err)
	}
	defer func() { _ = s.docker.Remove(context.WithoutCancel(ctx), helper) }()

	if _, err := s.docker.RunRM(ctx, []string{
		"-v", s.volume + ":/loras",
		helperImage, "mkdir", "-p", "/loras/" + name,
	}); err != nil {
		return fmt.Errorf("create adapter dir: %w", err)
	}
	if err := s.docker.CP(ctx, ck.Path, helper+":/loras/"+name+"/"); err != nil {
		return fmt.Errorf("copy checkpoint: %w", err)
	}
	return nil
}

// List enumerates adapter directories in the volume with their sizes.
func (s *Store) List(ctx context.Context) ([]types.Adapter, error) {
	out, err := s.docker.RunRM(ctx, []string{
		"-v", s.volume + ":/loras",
		helperImage, "sh", "-c", "du -sk /loras/*/ 2>/dev/null || true",
	})
	if err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	return parseDuListing(out), nil
}

// Remove deletes an adapter directory from the volume. The server drops the
// entry on its next refresh.
func (s *Store) Remove(ctx context.Context, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if _, err := s.docker.RunRM(ctx, []string{
		"-v", s.volume + ":/loras",
		helperImage, "rm", "-rf", "/loras/" + name,
	}); err != nil {
		return fmt.Errorf("remove adapter %s: %w", name, err)
	}
	return nil
}

// WaitLoaded polls /v1/models until the named adapter appears or the
// timeout elapses. The scan interval is the server's, so the poll interval
// here only bounds how often we look.
func (s *Store) WaitLoaded(ctx context.Context, client *nimapi.Client, name string, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		ml, err := client.ListModels(ctx)
		if err == nil {
			for _, m := range ml.Data {
				if m.ID == name {
					return nil
				}
			}
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return fmt.Errorf("adapter %q did not appear in /v1/models before the deadline", name)
		}
	}
}

// parseDuListing turns `du -sk` output into adapter entries. Lines look like
// "1234\t/loras/my-adapter/".
func parseDuListing(out string) []types.Adapter {
	var as []types.Adapter
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		kb, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		name := strings.Trim(strings.TrimPrefix(fields[1], "/loras/"), "/")
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		as = append(as, types.Adapter{Name: name, SizeBytes: kb * 1024})
	}
	return as
}
