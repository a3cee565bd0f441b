package dockercli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// NGCRegistry is the container registry the inference images live in.
const NGCRegistry = "nvcr.io"

// Docker shells out to the docker CLI. All knowledge of what the commands do
// with their arguments belongs to Docker and the container image; this type
// only assembles argument lists and reports captured output.
type Docker struct {
	run RunFunc
}

// New returns a Docker wrapper using the real CLI.
func New() *Docker { return &Docker{run: runCmd} }

// NewWithRunner returns a Docker wrapper with a custom executor, for tests.
func NewWithRunner(run RunFunc) *Docker { return &Docker{run: run} }

// Available checks that the docker binary exists and answers.
func (d *Docker) Available(ctx context.Context) error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker not found in PATH: %w", err)
	}
	if out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"--version"}}); err != nil {
		return fmt.Errorf("docker --version failed: %w\n%s", err, out)
	}
	return nil
}

// LoginNGC authenticates against nvcr.io with the NGC API key. The username
// is the fixed token account the registry expects.
func (d *Docker) LoginNGC(ctx context.Context, apiKey string) error {
	out, err := d.run(ctx, Cmd{
		Path:  "docker",
		Args:  []string{"login", NGCRegistry, "--username", "$oauthtoken", "--password-stdin"},
		Stdin: apiKey,
	})
	if err != nil {
		return fmt.Errorf("docker login %s failed: %w\n%s", NGCRegistry, err, out)
	}
	if !strings.Contains(out, "Login Succeeded") {
		return fmt.Errorf("docker login %s did not report success:\n%s", NGCRegistry, out)
	}
	return nil
}

// Pull fetches an image, streaming progress to stdout.
func (d *Docker) Pull(ctx context.Context, image string) error {
	_, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"pull", image}, Stream: true})
	return err
}

// ContainerState returns the docker inspect state string for a container:
// running, exited, created, etc. A missing container reports "absent".
func (d *Docker) ContainerState(ctx context.Context, name string) (string, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"inspect", "--format", "{{.State.Status}}", name}})
	if err != nil {
		if strings.Contains(out, "No such object") || strings.Contains(out, "No such container") {
			return "absent", nil
		}
		return "", fmt.Errorf("inspect %s: %w\n%s", name, err, out)
	}
	return strings.TrimSpace(out), nil
}

// ContainerIP returns the container address on its first attached network,
// or empty when not running.
func (d *Docker) ContainerIP(ctx context.Context, name string) (string, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{
		"inspect", "--format",
		"{{range .NetworkSettings.Networks}}{{.IPAddress}}{{end}}", name,
	}})
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w\n%s", name, err, out)
	}
	return strings.TrimSpace(out), nil
}

// Stop stops a running container. Stopping an already stopped container is
// not an error.
func (d *Docker) Stop(ctx context.Context, name string) error {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"stop", name}})
	if err != nil && !strings.Contains(out, "No such container") {
		return fmt.Errorf("stop %s: %w\n%s", name, err, out)
	}
	return nil
}

// Remove force-removes a container. A missing container is not an error.
func (d *Docker) Remove(ctx context.Context, name string) error {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"rm", "-f", name}})
	if err != nil && !strings.Contains(out, "No such container") {
		return fmt.Errorf("rm %s: %w\n%s", name, err, out)
	}
	return nil
}

// Logs returns the last tail lines of a container's output.
func (d *Docker) Logs(ctx context.Context, name string, tail int) (string, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"logs", "--tail", fmt.Sprint(tail), name}})
	if err != nil {
		return out, fmt.Errorf("logs %s: %w", name, err)
	}
	return out, nil
}

// VolumeExists checks for a named volume.
func (d *Docker) VolumeExists(ctx context.Context, name string) (bool, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"volume", "inspect", name}})
	if err != nil {
		if strings.Contains(out, "no such volume") || strings.Contains(out, "No such volume") {
			return false, nil
		}
		return false, fmt.Errorf("volume inspect %s: %w\n%s", name, err, out)
	}
	return true, nil
}

// EnsureVolume creates a named volume if it does not already exist.
func (d *Docker) EnsureVolume(ctx context.Context, name string) error {
	exists, err := d.VolumeExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"volume", "create", name}})
	if err != nil {
		return fmt.Errorf("volume create %s: %w\n%s", name, err, out)
	}
	return nil
}

// RemoveVolume deletes a named volume. A missing volume is not an error.
func (d *Docker) RemoveVolume(ctx context.Context, name string) error {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"volume", "rm", name}})
	if err != nil && !strings.Contains(out, "no such volume") && !strings.Contains(out, "No such volume") {
		return fmt.Errorf("volume rm %s: %w\n%s", name, err, out)
	}
	return nil
}

// RunDetached starts a container in the background and returns the container
// ID printed by docker run.
func (d *Docker) RunDetached(ctx context.Context, args []string) (string, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: append([]string{"run", "-d"}, args...)})
	if err != nil {
		return "", fmt.Errorf("docker run: %w\n%s", err, out)
	}
	return strings.TrimSpace(out), nil
}

// RunRM runs a short-lived helper container to completion and returns its
// output. Used for operating on volume contents without a daemon API.
func (d *Docker) RunRM(ctx context.Context, args []string) (string, error) {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: append([]string{"run", "--rm"}, args...)})
	if err != nil {
		return out, fmt.Errorf("docker run --rm: %w\n%s", err, out)
	}
	return out, nil
}

// CP copies a file or directory between the host and a container, in either
// direction depending on which argument carries the container: prefix.
func (d *Docker) CP(ctx context.Context, src, dst string) error {
	out, err := d.run(ctx, Cmd{Path: "docker", Args: []string{"cp", src, dst}})
	if err != nil {
		return fmt.Errorf("docker cp %s %s: %w\n%s", src, dst, err, out)
	}
	return nil
}
