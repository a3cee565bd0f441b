package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"nimctl/internal/dockercli"
	"nimctl/internal/nimapi"
	"nimctl/pkg/types"
)

const (
	readyPollInterval = 5 * time.Second
	logTailOnFailure  = 50
)

func newDocker() *dockercli.Docker { return dockercli.New() }

func newClient(cfg *Config) *nimapi.Client {
	return nimapi.New(cfg.ResolvedBaseURL())
}

func serverConfig(cfg *Config) dockercli.ServerConfig {
	return dockercli.ServerConfig{
		Image:         cfg.Image,
		Name:          cfg.Container,
		Port:          cfg.Port,
		CacheVolume:   cfg.CacheVolume,
		AdapterVolume: cfg.AdapterVolume,
		GPUs:          cfg.GPUs,
		ShmSize:       cfg.ShmSize,
		RefreshSec:    cfg.RefreshSec,
	}
}

// serverLogin authenticates docker against nvcr.io using NGC_API_KEY.
func serverLogin(ctx context.Context, cfg *Config) error {
	loadEnvFile(cfg, false)
	key := os.Getenv("NGC_API_KEY")
	if key == "" {
		return fmt.Errorf("NGC_API_KEY is not set; put it in %s or the environment", cfg.EnvFile)
	}
	d := newDocker()
	if err := d.Available(ctx); err != nil {
		return err
	}
	if err := d.LoginNGC(ctx, key); err != nil {
		return err
	}
	logger.Info().Str("registry", dockercli.NGCRegistry).Msg("login succeeded")
	return nil
}

// serverPull fetches the server image up front so start does not block on
// a multi-gigabyte download.
func serverPull(ctx context.Context, cfg *Config) error {
	d := newDocker()
	if err := d.Available(ctx); err != nil {
		return err
	}
	logger.Info().Str("image", cfg.Image).Msg("pulling server image")
	return d.Pull(ctx, cfg.Image)
}

// serverStart launches the inference container and, unless wait is
// disabled, blocks until the readiness probe succeeds.
func serverStart(ctx context.Context, cfg *Config, wait bool, waitTimeout time.Duration) error {
	loadEnvFile(cfg, false)
	if os.Getenv("NGC_API_KEY") == "" {
		logger.Warn().Msg("NGC_API_KEY is not set; the container will fail to download model weights")
	}
	d := newDocker()
	if err := d.Available(ctx); err != nil {
		return err
	}

	state, err := d.ContainerState(ctx, cfg.Container)
	if err != nil {
		return err
	}
	if state == "running" {
		logger.Info().Str("container", cfg.Container).Msg("server already running")
		return nil
	}
	if state != "absent" {
		// leftover stopped container from a previous run
		if err := d.Remove(ctx, cfg.Container); err != nil {
			return err
		}
	}

	id, err := d.StartServer(ctx, serverConfig(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, dockercli.Troubleshooting)
		return err
	}
	logger.Info().Str("container", cfg.Container).Str("id", shortID(id)).Str("image", cfg.Image).Msg("server started")

	if !wait {
		return nil
	}
	return serverWait(ctx, cfg, waitTimeout)
}

// serverWait polls the readiness endpoint; on timeout it dumps recent
// container logs so the operator can see why startup stalled.
func serverWait(ctx context.Context, cfg *Config, timeout time.Duration) error {
	client := newClient(cfg)
	logger.Info().Str("url", client.BaseURL()+"/v1/health/ready").Dur("timeout", timeout).Msg("waiting for server readiness")
	if err := client.WaitReady(ctx, readyPollInterval, timeout); err != nil {
		d := newDocker()
		if out, lerr := d.Logs(context.WithoutCancel(ctx), cfg.Container, logTailOnFailure); lerr == nil {
			fmt.Fprintf(os.Stderr, "--- last %d log lines from %s ---\n%s\n", logTailOnFailure, cfg.Container, out)
		}
		fmt.Fprintln(os.Stderr, dockercli.Troubleshooting)
		return err
	}
	logger.Info().Msg("server is ready")
	return nil
}

// serverStop stops the container; with rm it also removes container and,
// with volumes, the named volumes.
func serverStop(ctx context.Context, cfg *Config, rm, volumes bool) error {
	d := newDocker()
	if err := d.Stop(ctx, cfg.Container); err != nil {
		return err
	}
	logger.Info().Str("container", cfg.Container).Msg("server stopped")
	if !rm {
		return nil
	}
	if err := d.Remove(ctx, cfg.Container); err != nil {
		return err
	}
	if volumes {
		for _, v := range []string{cfg.CacheVolume, cfg.AdapterVolume} {
			if v == "" {
				continue
			}
			if err := d.RemoveVolume(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// serverStatus prints a snapshot of container state and API readiness.
func serverStatus(ctx context.Context, cfg *Config) (types.ServerStatus, error) {
	d := newDocker()
	st := types.ServerStatus{Container: cfg.Container, BaseURL: cfg.ResolvedBaseURL()}

	state, err := d.ContainerState(ctx, cfg.Container)
	if err != nil {
		return st, err
	}
	st.State = state
	if state == "running" {
		if ip, err := d.ContainerIP(ctx, cfg.Container); err == nil {
			st.IPAddress = ip
		}
		client := newClient(cfg)
		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if status, err := client.Ready(probeCtx); err == nil && status == http.StatusOK {
			st.Ready = true
			if ml, err := client.ListModels(probeCtx); err == nil {
				st.Models = ml.Data
			}
		}
	}
	return st, nil
}

// serverLogs prints the last tail lines of container output.
func serverLogs(ctx context.Context, cfg *Config, tail int) error {
	d := newDocker()
	out, err := d.Logs(ctx, cfg.Container, tail)
	if out != "" {
		fmt.Print(out)
	}
	return err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
