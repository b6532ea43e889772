// Package history segments zsh extended-format history files into
// logical entries.
//
// Extended format: ": <timestamp>:<elapsed>;<command>". A command may
// spill onto further lines (multiline strings, backslash continuations);
// every line that does not itself match the header grammar belongs to
// the entry opened by the most recent header line.
package history

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazuruo/histwipe/internal/errors"
)

// headerRE matches the first line of an extended-format entry and
// captures the timestamp. Stray whitespace around the colon fields is
// tolerated; the command follows the first semicolon.
var headerRE = regexp.MustCompile(`^\s*:\s*(\d+):\d+\s*;.*$`)

// IsHeader reports whether line opens a new history entry.
func IsHeader(line string) bool {
	return headerRE.MatchString(line)
}

// Header is the parsed first line of an entry.
type Header struct {
	// Timestamp is the entry's epoch-second timestamp.
	Timestamp int64
	// Command is the text after the first semicolon, left-trimmed.
	Command string
}

// ParseHeader parses an entry's first line. A line that does not match
// the grammar, or whose timestamp overflows the epoch range, returns a
// ParseError wrapping ErrFormat; callers respond to either by keeping
// the entry.
func ParseHeader(line string) (Header, error) {
	m := headerRE.FindStringSubmatch(line)
	if m == nil {
		return Header{}, &errors.ParseError{Input: line, Err: errors.ErrFormat}
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Header{}, &errors.ParseError{Input: m[1], Err: errors.ErrFormat}
	}
	// The timestamp and elapsed fields are all digits, so the first
	// semicolon is always the command separator.
	idx := strings.Index(line, ";")
	cmd := strings.TrimLeft(line[idx+1:], " \t")
	return Header{Timestamp: ts, Command: cmd}, nil
}

// DefaultPath returns the history file to clean when none is given
// explicitly: $HISTFILE if set, otherwise the first existing of the
// common zsh locations under the home directory, otherwise
// ~/.zsh_history.
func DefaultPath() string {
	if v := os.Getenv("HISTFILE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zsh_history"
	}
	for _, name := range []string{".zsh_history", ".zhistory", ".histfile"} {
		p := filepath.Join(home, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return filepath.Join(home, ".zsh_history")
}
