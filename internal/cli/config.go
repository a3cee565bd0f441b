package cli

import (
	"fmt"

	"nimctl/internal/config"
)

// Config is the resolved runtime configuration: built-in defaults, then the
// optional config file, then NIMCTL_* environment variables, then flags.
type Config struct {
	Image         string
	Container     string
	Port          int
	GPUs          string
	ShmSize       string
	CacheVolume   string
	AdapterVolume string
	RefreshSec    int

	BaseURL      string
	DefaultModel string
	EnvFile      string

	CheckpointGlob string

	LogLvl  string
	LogFile string
}

// DefaultConfig returns the built-in defaults with environment overrides
// applied.
func DefaultConfig() *Config {
	return &Config{
		Image:          envStr("NIMCTL_IMAGE", "nvcr.io/nim/meta/llama-3.1-8b-instruct:latest"),
		Container:      envStr("NIMCTL_CONTAINER", "nim-server"),
		Port:           envInt("NIMCTL_PORT", 8000),
		GPUs:           envStr("NIMCTL_GPUS", "all"),
		ShmSize:        envStr("NIMCTL_SHM_SIZE", "16GB"),
		CacheVolume:    envStr("NIMCTL_CACHE_VOLUME", "nim-cache"),
		AdapterVolume:  envStr("NIMCTL_ADAPTER_VOLUME", "nim-loras"),
		RefreshSec:     envInt("NIMCTL_REFRESH_SEC", 30),
		BaseURL:        envStr("NIMCTL_BASE_URL", ""),
		DefaultModel:   envStr("NIMCTL_MODEL", ""),
		EnvFile:        envStr("NIMCTL_ENV_FILE", ".env"),
		CheckpointGlob: envStr("NIMCTL_CHECKPOINT_GLOB", "~/results/*/checkpoints/*.nemo"),
		LogLvl:         envStr("NIMCTL_LOG_LEVEL", "info"),
		LogFile:        envStr("NIMCTL_LOG_FILE", ""),
	}
}

// ApplyFile overlays values from a config file onto cfg. Only set fields
// replace defaults.
func (c *Config) ApplyFile(path string) error {
	fc, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if fc.Image != "" {
		c.Image = fc.Image
	}
	if fc.Container != "" {
		c.Container = fc.Container
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.GPUs != "" {
		c.GPUs = fc.GPUs
	}
	if fc.ShmSize != "" {
		c.ShmSize = fc.ShmSize
	}
	if fc.CacheVolume != "" {
		c.CacheVolume = fc.CacheVolume
	}
	if fc.AdapterVolume != "" {
		c.AdapterVolume = fc.AdapterVolume
	}
	if fc.RefreshSec != 0 {
		c.RefreshSec = fc.RefreshSec
	}
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.DefaultModel != "" {
		c.DefaultModel = fc.DefaultModel
	}
	if fc.EnvFile != "" {
		c.EnvFile = fc.EnvFile
	}
	if fc.CheckpointGlob != "" {
		c.CheckpointGlob = fc.CheckpointGlob
	}
	return nil
}

// ResolvedBaseURL is the URL commands talk to: an explicit base URL wins,
// otherwise the published port of the managed container.
func (c *Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}
