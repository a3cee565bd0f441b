package blackbox

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	return filepath.Dir(filepath.Dir(bbDir))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	outDir := t.TempDir()
	binPath := filepath.Join(outDir, "nimctl")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/nimctl")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func runBinary(t *testing.T, bin string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestHelpListsCommandGroups(t *testing.T) {
	bin := buildBinary(t)
	out, err := runBinary(t, bin, os.Environ(), "--help")
	if err != nil {
		t.Fatalf("--help: %v\n%s", err, out)
	}
	for _, want := range []string{"server", "models", "chat", "adapter", "proxy", "env"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help output missing %q:\n%s", want, out)
		}
	}
}

func TestEnvCheckReadsDotenv(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	data := "NGC_API_KEY=nvapi-secret-value\nNVIDIA_API_KEY=nvapi-other-value\n"
	if err := os.WriteFile(envFile, []byte(data), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	// scrub inherited credentials so only the file provides them
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		fmt.Sprintf("NIMCTL_ENV_FILE=%s", envFile),
	}
	out, err := runBinary(t, bin, env, "env", "check")
	if err != nil {
		t.Fatalf("env check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "NGC_API_KEY") || !strings.Contains(out, "NVIDIA_API_KEY") {
		t.Fatalf("env check missing key names:\n%s", out)
	}
	if strings.Contains(out, "nvapi-secret-value") {
		t.Fatalf("env check leaked a credential:\n%s", out)
	}
	if strings.Contains(out, "missing") {
		t.Fatalf("keys from .env reported missing:\n%s", out)
	}
}

func TestEnvCheckReportsMissingKeys(t *testing.T) {
	bin := buildBinary(t)
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"NIMCTL_ENV_FILE=" + filepath.Join(t.TempDir(), "absent.env"),
	}
	out, err := runBinary(t, bin, env, "env", "check")
	if err != nil {
		t.Fatalf("env check should not fail on missing file: %v\n%s", err, out)
	}
	if !strings.Contains(out, "missing") {
		t.Fatalf("expected missing keys to be reported:\n%s", out)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	bin := buildBinary(t)
	out, err := runBinary(t, bin, os.Environ(), "frobnicate")
	if err == nil {
		t.Fatalf("expected non-zero exit for unknown command:\n%s", out)
	}
}
