package dockercli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes one external command invocation.
type Cmd struct {
	Path  string
	Args  []string
	Env   map[string]string // additional env vars
	Dir   string            // working directory
	Stdin string            // optional stdin payload (e.g. password-stdin)
	// If true, stream output to the process stdout as it arrives instead of
	// capturing it. Captured mode returns combined stdout+stderr.
	Stream bool
}

// RunFunc executes a Cmd and returns its combined output. Tests substitute
// a fake to avoid requiring a Docker daemon.
type RunFunc func(ctx context.Context, c Cmd) (string, error)

// runCmd is the real executor.
func runCmd(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	// inherit environment
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	if c.Stream {
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			return "", err
		}
		go stream(stdout)
		go stream(stderr)
		return "", cmd.Wait()
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		// Keep the captured text with the error so callers can show it.
		return string(out), fmt.Errorf("%s %s: %w", c.Path, strings.Join(c.Args, " "), err)
	}
	return string(out), nil
}

func stream(r io.Reader) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		fmt.Println(s.Text())
	}
}
