package sse

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// DoneSentinel terminates an OpenAI-compatible event stream.
const DoneSentinel = "[DONE]"

// NewScanner creates a new scanner for server sent events.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 4096), 1024*1024)
	s.Split(split)
	return &Scanner{
		Scanner: s,
	}
}

// Scanner is a scanner for server sent events. Each token is one event
// block; Data strips the "data:" field prefix from the current token.
type Scanner struct {
	*bufio.Scanner
}

// Data returns the payload of the current event with the "data:" prefix
// removed and surrounding whitespace trimmed. Non-data events (comments,
// other fields) return an empty string.
func (s *Scanner) Data() string {
	line := strings.TrimSpace(s.Text())
	if !strings.HasPrefix(line, "data:") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
}

// split tokenizes the input into event blocks separated by a double newline.
func split(data []byte, atEOF bool) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, nil
	}

	delims := [][]byte{
		[]byte("\r\r"),
		[]byte("\n\n"),
		[]byte("\r\n\r\n"),
	}
	pos := -1
	var dlen int
	for _, d := range delims {
		n := bytes.Index(data, d)
		if n >= 0 && (pos < 0 || n < pos) {
			pos = n
			dlen = len(d)
		}
	}

	if pos >= 0 {
		return pos + dlen, data[0:pos], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
