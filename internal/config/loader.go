package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the file-configurable parameters of the tool.
// Zero values mean "unspecified" and are replaced by defaults in the CLI.
type Config struct {
	// Inference server container.
	Image         string `json:"image" yaml:"image" toml:"image"`
	Container     string `json:"container" yaml:"container" toml:"container"`
	Port          int    `json:"port" yaml:"port" toml:"port"`
	GPUs          string `json:"gpus" yaml:"gpus" toml:"gpus"`
	ShmSize       string `json:"shm_size" yaml:"shm_size" toml:"shm_size"`
	CacheVolume   string `json:"cache_volume" yaml:"cache_volume" toml:"cache_volume"`
	AdapterVolume string `json:"adapter_volume" yaml:"adapter_volume" toml:"adapter_volume"`
	RefreshSec    int    `json:"refresh_sec" yaml:"refresh_sec" toml:"refresh_sec"`

	// Client side.
	BaseURL      string `json:"base_url" yaml:"base_url" toml:"base_url"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`
	EnvFile      string `json:"env_file" yaml:"env_file" toml:"env_file"`

	// Adapter training output.
	CheckpointGlob string `json:"checkpoint_glob" yaml:"checkpoint_glob" toml:"checkpoint_glob"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
