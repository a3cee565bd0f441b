package dockercli

import (
	"context"
	"fmt"
)

// ServerConfig holds the container-level parameters for the inference
// server. All values are plain strings handed to docker run; the contract
// for what the image does with them is owned by the image.
type ServerConfig struct {
	Image         string // e.g. nvcr.io/nim/meta/llama-3.1-8b-instruct:latest
	Name          string // container name
	Port          int    // host port published to the in-container OpenAI port
	CacheVolume   string // named volume mounted at the image's model cache
	AdapterVolume string // named volume mounted at the adapter source root; empty disables adapters
	GPUs          string // docker --gpus value
	ShmSize       string // docker --shm-size value
	RefreshSec    int    // adapter-source rescan interval passed to the image
}

const (
	// containerPort is the in-container OpenAI-compatible API port.
	containerPort = 8000
	// cacheMount is where the image keeps downloaded model weights.
	cacheMount = "/opt/nim/.cache"
	// AdapterMount is where the image scans for adapter subdirectories.
	AdapterMount = "/home/nvs/loras"
	// ngcKeyEnv is passed through to the container so it can pull weights.
	ngcKeyEnv = "NGC_API_KEY"
)

// RunArgs assembles the docker run argument list (after "run -d") for the
// server container.
func (sc ServerConfig) RunArgs() []string {
	args := []string{
		"--name", sc.Name,
		"--gpus", sc.GPUs,
		"--shm-size", sc.ShmSize,
		"-e", ngcKeyEnv,
		"-v", fmt.Sprintf("%s:%s", sc.CacheVolume, cacheMount),
		"-p", fmt.Sprintf("%d:%d", sc.Port, containerPort),
	}
	if sc.AdapterVolume != "" {
		args = append(args,
			"-v", fmt.Sprintf("%s:%s", sc.AdapterVolume, AdapterMount),
			"-e", fmt.Sprintf("NIM_PEFT_SOURCE=%s", AdapterMount),
			"-e", fmt.Sprintf("NIM_PEFT_REFRESH_INTERVAL=%d", sc.RefreshSec),
		)
	}
	return append(args, sc.Image)
}

// StartServer creates the required volumes and starts the server container.
// It returns the container ID. Any failure carries the captured docker
// output; remediation is up to the operator (see Troubleshooting).
func (d *Docker) StartServer(ctx context.Context, sc ServerConfig) (string, error) {
	if err := d.EnsureVolume(ctx, sc.CacheVolume); err != nil {
		return "", err
	}
	if sc.AdapterVolume != "" {
		if err := d.EnsureVolume(ctx, sc.AdapterVolume); err != nil {
			return "", err
		}
	}
	return d.RunDetached(ctx, sc.RunArgs())
}

// Troubleshooting is printed when the server container fails to start or
// never becomes ready. It is a static checklist; the tool performs no
// automatic recovery.
const Troubleshooting = `Troubleshooting:
  - Is the NVIDIA container toolkit installed? (docker info | grep -i nvidia)
  - Is NGC_API_KEY set and valid? (nimctl env check)
  - Are you logged in to nvcr.io? (docker login nvcr.io)
  - Does the host have enough free GPU memory? (nvidia-smi)
  - Is the host port already taken? (docker ps, ss -ltn)
  - Inspect the container logs: nimctl server logs`
