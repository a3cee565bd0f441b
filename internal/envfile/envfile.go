package envfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads KEY=VALUE lines from path into the process environment.
// Existing variables are kept unless override is set. Blank lines, comments,
// an optional "export " prefix and single/double quotes around values are
// tolerated. Malformed lines are skipped.
func Load(path string, override bool) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer f.Close()

	loaded := map[string]string{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		key, val, ok := parseLine(s.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists && !override {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return loaded, fmt.Errorf("set %s: %w", key, err)
		}
		loaded[key] = val
	}
	if err := s.Err(); err != nil {
		return loaded, fmt.Errorf("read env file: %w", err)
	}
	return loaded, nil
}

func parseLine(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	eq := strings.Index(line, "=")
	if eq <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	val = strings.TrimSpace(line[eq+1:])
	val = unquote(val)
	if key == "" {
		return "", "", false
	}
	return key, val, true
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Mask returns a display-safe form of a secret: the first four characters
// followed by an ellipsis, or "(empty)" for blank values.
func Mask(v string) string {
	if v == "" {
		return "(empty)"
	}
	if len(v) <= 4 {
		return v[:1] + "..."
	}
	return v[:4] + "..."
}
