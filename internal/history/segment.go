package history

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chazuruo/histwipe/internal/errors"
)

// Scanner sizing: history lines are usually short, but pasted heredocs
// and minified one-liners can be enormous.
const (
	scanBufSize = 64 * 1024
	maxLineSize = 8 * 1024 * 1024
)

// Entry is one logical history record: a header line plus the
// continuation lines that follow it, stored raw with one trailing
// newline per line.
type Entry struct {
	// Text is the entry's lines, each newline-terminated.
	Text string
	// EndLine is the 1-based line number of the entry's last line.
	EndLine int
	// Leading marks a continuation-shaped line found before the first
	// header. It has no timestamp, so it is always kept.
	Leading bool
}

// HeaderLine returns the entry's first line without its newline.
func (e Entry) HeaderLine() string {
	if i := strings.IndexByte(e.Text, '\n'); i >= 0 {
		return e.Text[:i]
	}
	return e.Text
}

// Segment reads r line by line and emits one Entry per record, in file
// order. A header line closes the previous entry; end of input closes
// the last one. Lines before the first header are emitted individually
// as leading entries. A trailing carriage return is stripped from each
// line, so CRLF input comes out LF-only on rewrite. The first error
// returned by emit aborts the scan. Returns the number of lines read.
func Segment(r io.Reader, emit func(Entry) error) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, scanBufSize), maxLineSize)

	var block strings.Builder
	open := false
	lineNum := 0

	for sc.Scan() {
		lineNum++
		line := strings.TrimSuffix(sc.Text(), "\r")

		switch {
		case IsHeader(line):
			if open {
				if err := emit(Entry{Text: block.String(), EndLine: lineNum - 1}); err != nil {
					return lineNum, err
				}
				block.Reset()
			}
			open = true
			block.WriteString(line)
			block.WriteByte('\n')
		case open:
			block.WriteString(line)
			block.WriteByte('\n')
		default:
			if err := emit(Entry{Text: line + "\n", EndLine: lineNum, Leading: true}); err != nil {
				return lineNum, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return lineNum, errors.Wrap(err, fmt.Sprintf("read history near line %d", lineNum))
	}
	if open {
		if err := emit(Entry{Text: block.String(), EndLine: lineNum}); err != nil {
			return lineNum, err
		}
	}
	return lineNum, nil
}
