package dockercli

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner records invocations and plays back canned output.
type fakeRunner struct {
	calls []Cmd
	out   string
	err   error
}

func (f *fakeRunner) run(ctx context.Context, c Cmd) (string, error) {
	f.calls = append(f.calls, c)
	return f.out, f.err
}

func TestContainerStateRunning(t *testing.T) {
	fr := &fakeRunner{out: "running\n"}
	d := NewWithRunner(fr.run)
	st, err := d.ContainerState(context.Background(), "nim-server")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st != "running" {
		t.Fatalf("state = %q, want running", st)
	}
	got := fr.calls[0].Args
	want := "inspect --format {{.State.Status}} nim-server"
	if strings.Join(got, " ") != want {
		t.Fatalf("args = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestContainerStateAbsent(t *testing.T) {
	fr := &fakeRunner{out: "Error: No such object: nim-server\n", err: errors.New("exit status 1")}
	d := NewWithRunner(fr.run)
	st, err := d.ContainerState(context.Background(), "nim-server")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st != "absent" {
		t.Fatalf("state = %q, want absent", st)
	}
}

func TestVolumeExistsNo(t *testing.T) {
	fr := &fakeRunner{out: "Error response from daemon: get x: no such volume\n", err: errors.New("exit status 1")}
	d := NewWithRunner(fr.run)
	ok, err := d.VolumeExists(context.Background(), "x")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected volume to be reported missing")
	}
}

func TestEnsureVolumeCreatesWhenMissing(t *testing.T) {
	n := 0
	d := NewWithRunner(func(ctx context.Context, c Cmd) (string, error) {
		n++
		if n == 1 {
			return "no such volume", errors.New("exit status 1")
		}
		return "loras\n", nil
	})
	if err := d.EnsureVolume(context.Background(), "loras"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected inspect then create, got %d calls", n)
	}
}

func TestLoginNGCUsesPasswordStdin(t *testing.T) {
	fr := &fakeRunner{out: "Login Succeeded\n"}
	d := NewWithRunner(fr.run)
	if err := d.LoginNGC(context.Background(), "ngc-key"); err != nil {
		t.Fatalf("login: %v", err)
	}
	c := fr.calls[0]
	if c.Stdin != "ngc-key" {
		t.Fatalf("stdin = %q, want the key", c.Stdin)
	}
	joined := strings.Join(c.Args, " ")
	if strings.Contains(joined, "ngc-key") {
		t.Fatalf("key leaked into argv: %q", joined)
	}
}

func TestLoginNGCFailureKeepsOutput(t *testing.T) {
	fr := &fakeRunner{out: "unauthorized: authentication required\n", err: errors.New("exit status 1")}
	d := NewWithRunner(fr.run)
	err := d.LoginNGC(context.Background(), "bad")
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("error should carry captured output, got: %v", err)
	}
}

func TestServerRunArgs(t *testing.T) {
	sc := ServerConfig{
		Image:         "nvcr.io/nim/meta/llama-3.1-8b-instruct:latest",
		Name:          "nim-server",
		Port:          8000,
		CacheVolume:   "nim-cache",
		AdapterVolume: "nim-loras",
		GPUs:          "all",
		ShmSize:       "16GB",
		RefreshSec:    30,
	}
	joined := strings.Join(sc.RunArgs(), " ")
	for _, want := range []string{
		"--name nim-server",
		"--gpus all",
		"--shm-size 16GB",
		"-e NGC_API_KEY",
		"-v nim-cache:/opt/nim/.cache",
		"-p 8000:8000",
		"-v nim-loras:/home/nvs/loras",
		"-e NIM_PEFT_SOURCE=/home/nvs/loras",
		"-e NIM_PEFT_REFRESH_INTERVAL=30",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("run args missing %q in %q", want, joined)
		}
	}
	if !strings.HasSuffix(joined, sc.Image) {
		t.Fatalf("image must come last: %q", joined)
	}
}

func TestServerRunArgsNoAdapters(t *testing.T) {
	sc := ServerConfig{Image: "img", Name: "n", Port: 9000, CacheVolume: "c", GPUs: "all", ShmSize: "8GB"}
	joined := strings.Join(sc.RunArgs(), " ")
	if strings.Contains(joined, "NIM_PEFT_SOURCE") {
		t.Fatalf("adapter env should be absent without a volume: %q", joined)
	}
}
