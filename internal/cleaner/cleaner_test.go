package cleaner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazuruo/histwipe/internal/errors"
	"github.com/chazuruo/histwipe/internal/filter"
	"github.com/chazuruo/histwipe/internal/interrupt"
	"github.com/chazuruo/histwipe/internal/window"
)

// Timestamps built through time.Date so the tests hold in any zone.
var (
	mar1 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local).Unix()
	mar5 = time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local).Unix()
)

func writeHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".zsh_history")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write history fixture: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		names = append(names, e.Name())
	}
	return names
}

func TestRunDeletesByTimeAlone(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n: %d:0;echo b\n", mar1, mar5)
	path := writeHistory(t, src)

	c := New(Options{
		Path:   path,
		Mode:   window.ModeSpecificDay,
		Inputs: window.Inputs{Date: "2024-03-05"},
		Passes: 1,
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.LinesRead != 2 || res.Summary.Kept != 1 || res.Summary.Deleted != 1 {
		t.Errorf("counts = %d/%d/%d (lines/kept/deleted), want 2/1/1",
			res.Summary.LinesRead, res.Summary.Kept, res.Summary.Deleted)
	}

	want := fmt.Sprintf(": %d:0;echo a\n", mar1)
	if got := readFile(t, path); got != want {
		t.Errorf("rewritten file = %q, want %q", got, want)
	}
	if names := dirNames(t, filepath.Dir(path)); len(names) != 1 {
		t.Errorf("directory holds %v, want only the history file", names)
	}
}

func TestRunKeywordNarrowsDeletion(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n: %d:0;echo b\n", mar1, mar5)
	path := writeHistory(t, src)

	c := New(Options{
		Path:    path,
		Mode:    window.ModeAllTime,
		Filters: filter.Set{Keywords: []string{"echo b"}},
		Passes:  1,
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Kept != 1 || res.Summary.Deleted != 1 {
		t.Errorf("kept/deleted = %d/%d, want 1/1", res.Summary.Kept, res.Summary.Deleted)
	}
	want := fmt.Sprintf(": %d:0;echo a\n", mar1)
	if got := readFile(t, path); got != want {
		t.Errorf("rewritten file = %q, want %q", got, want)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n: %d:0;echo b\nsleep 1\n", mar1, mar5)
	path := writeHistory(t, src)

	c := New(Options{
		Path:   path,
		Mode:   window.ModeSpecificDay,
		Inputs: window.Inputs{Date: "2024-03-05"},
		DryRun: true,
		Backup: true, // ignored on dry runs
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Summary.DryRun {
		t.Error("Summary.DryRun = false, want true")
	}
	if res.Summary.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", res.Summary.Deleted)
	}
	if res.Summary.BackupPath != "" {
		t.Errorf("BackupPath = %q, want empty on a dry run", res.Summary.BackupPath)
	}

	wantDeletion := fmt.Sprintf(": %d:0;echo b\nsleep 1\n", mar5)
	if len(res.Deletions) != 1 {
		t.Fatalf("Deletions = %d entries, want 1", len(res.Deletions))
	}
	if res.Deletions[0].Text != wantDeletion || res.Deletions[0].EndLine != 3 {
		t.Errorf("Deletions[0] = line %d %q, want line 3 %q",
			res.Deletions[0].EndLine, res.Deletions[0].Text, wantDeletion)
	}

	if got := readFile(t, path); got != src {
		t.Errorf("dry run modified the file:\n got %q\nwant %q", got, src)
	}
	if names := dirNames(t, filepath.Dir(path)); len(names) != 1 {
		t.Errorf("dry run left extra files: %v", names)
	}
}

func TestRunPreservesKeptBytes(t *testing.T) {
	keepA := fmt.Sprintf(": %d:0;cat <<EOF\nline one\n\nline three\nEOF\n", mar1)
	delB := fmt.Sprintf(": %d:0;echo gone\n", mar5)
	// Header-shaped but the timestamp overflows, so the entry is kept
	// as malformed rather than judged against the window.
	keepC := ": 99999999999999999999:0;broken\n"
	leading := "stray line\n"
	path := writeHistory(t, leading+keepA+delB+keepC)

	c := New(Options{
		Path:   path,
		Mode:   window.ModeSpecificDay,
		Inputs: window.Inputs{Date: "2024-03-05"},
		Passes: 1,
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Kept != 3 || res.Summary.Deleted != 1 {
		t.Errorf("kept/deleted = %d/%d, want 3/1", res.Summary.Kept, res.Summary.Deleted)
	}
	if got, want := readFile(t, path), leading+keepA+keepC; got != want {
		t.Errorf("rewritten file = %q, want %q", got, want)
	}
}

func TestRunSecondPassDeletesNothing(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n: %d:0;echo b\n", mar1, mar5)
	path := writeHistory(t, src)

	opts := Options{
		Path:   path,
		Mode:   window.ModeSpecificDay,
		Inputs: window.Inputs{Date: "2024-03-05"},
		Passes: 1,
	}

	first, err := New(opts, zaptest.NewLogger(t), nil).Run()
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Summary.Deleted != 1 {
		t.Fatalf("first run Deleted = %d, want 1", first.Summary.Deleted)
	}
	after := readFile(t, path)

	second, err := New(opts, zaptest.NewLogger(t), nil).Run()
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Summary.Deleted != 0 {
		t.Errorf("second run Deleted = %d, want 0", second.Summary.Deleted)
	}
	if got := readFile(t, path); got != after {
		t.Errorf("second run changed the file:\n got %q\nwant %q", got, after)
	}
}

func TestRunMissingSourceIsNoOp(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{
		Path: filepath.Join(dir, ".zsh_history"),
		Mode: window.ModeAllTime,
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.LinesRead != 0 || res.Summary.Kept != 0 || res.Summary.Deleted != 0 {
		t.Errorf("counts = %d/%d/%d, want all zero",
			res.Summary.LinesRead, res.Summary.Kept, res.Summary.Deleted)
	}
	if names := dirNames(t, dir); len(names) != 0 {
		t.Errorf("run created files in an empty directory: %v", names)
	}
}

func TestRunBackupKeepsOriginalContent(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n: %d:0;echo b\n", mar1, mar5)
	path := writeHistory(t, src)

	c := New(Options{
		Path:   path,
		Mode:   window.ModeSpecificDay,
		Inputs: window.Inputs{Date: "2024-03-05"},
		Backup: true,
		Passes: 1,
	}, zaptest.NewLogger(t), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.BackupPath == "" {
		t.Fatal("Summary.BackupPath is empty, want a backup file path")
	}
	base := filepath.Base(res.Summary.BackupPath)
	if !strings.HasPrefix(base, ".zsh_history.backup_") {
		t.Errorf("backup name = %q, want .zsh_history.backup_<random>", base)
	}
	if got := readFile(t, res.Summary.BackupPath); got != src {
		t.Errorf("backup content = %q, want original %q", got, src)
	}
	if got, want := readFile(t, path), fmt.Sprintf(": %d:0;echo a\n", mar1); got != want {
		t.Errorf("rewritten file = %q, want %q", got, want)
	}
	if names := dirNames(t, filepath.Dir(path)); len(names) != 2 {
		t.Errorf("directory holds %v, want history file and backup only", names)
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n", mar1)
	path := writeHistory(t, src)

	flag := interrupt.NewFlag()
	flag.Cancel()
	c := New(Options{Path: path, Mode: window.ModeAllTime}, zaptest.NewLogger(t), flag)

	res, err := c.Run()
	if !errors.IsCanceled(err) {
		t.Fatalf("Run() error = %v, want canceled", err)
	}
	if res != nil {
		t.Errorf("Run() result = %+v, want nil", res)
	}
	if got := readFile(t, path); got != src {
		t.Errorf("canceled run modified the file: %q", got)
	}
}

func TestRunWarnsOnLeadingAndMalformed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	// The second line matches the header shape but its timestamp
	// overflows int64, so the parse fails.
	src := "stray\n: 99999999999999999999:0;broken\n"
	path := writeHistory(t, src)

	c := New(Options{Path: path, Mode: window.ModeAllTime, DryRun: true},
		zap.New(core), nil)

	res, err := c.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Kept != 2 || res.Summary.Deleted != 0 {
		t.Errorf("kept/deleted = %d/%d, want 2/0", res.Summary.Kept, res.Summary.Deleted)
	}
	if n := logs.FilterMessage("line found before first history entry header, keeping line").Len(); n != 1 {
		t.Errorf("leading-line warnings = %d, want 1", n)
	}
	if n := logs.FilterMessage("malformed history entry, keeping block").Len(); n != 1 {
		t.Errorf("malformed-entry warnings = %d, want 1", n)
	}
}

func TestWriteReplacementTracksTempFile(t *testing.T) {
	dir := t.TempDir()
	c := New(Options{Path: filepath.Join(dir, ".zsh_history")}, zaptest.NewLogger(t), nil)

	if err := c.writeReplacement([]string{"one\n", "two\n"}); err != nil {
		t.Fatalf("writeReplacement() error = %v", err)
	}
	if c.tempPath == "" {
		t.Fatal("tempPath not tracked after writeReplacement")
	}
	if got := readFile(t, c.tempPath); got != "one\ntwo\n" {
		t.Errorf("replacement content = %q, want %q", got, "one\ntwo\n")
	}
	if base := filepath.Base(c.tempPath); len(base) != randomNameLength {
		t.Errorf("replacement name %q length = %d, want %d", base, len(base), randomNameLength)
	}

	c.cleanup()
	if c.tempPath != "" {
		t.Error("tempPath still set after cleanup")
	}
	if names := dirNames(t, dir); len(names) != 0 {
		t.Errorf("cleanup left files behind: %v", names)
	}
	c.cleanup() // second call is a no-op
}

func TestFinalizeCanceledRemovesNothingDurable(t *testing.T) {
	src := fmt.Sprintf(": %d:0;echo a\n", mar1)
	path := writeHistory(t, src)

	flag := interrupt.NewFlag()
	c := New(Options{Path: path, Mode: window.ModeAllTime, Passes: 1},
		zaptest.NewLogger(t), flag)
	if err := c.writeReplacement([]string{"kept\n"}); err != nil {
		t.Fatalf("writeReplacement() error = %v", err)
	}

	flag.Cancel()
	res := &Result{}
	if err := c.finalize(&res.Summary); !errors.IsCanceled(err) {
		t.Fatalf("finalize() error = %v, want canceled", err)
	}
	if got := readFile(t, path); got != src {
		t.Errorf("canceled finalize modified the original: %q", got)
	}

	c.cleanup()
	if names := dirNames(t, filepath.Dir(path)); len(names) != 1 {
		t.Errorf("directory holds %v, want only the untouched original", names)
	}
}

func TestPassesDefault(t *testing.T) {
	c := New(Options{}, nil, nil)
	if got := c.passes(); got != 32 {
		t.Errorf("passes() = %d, want 32", got)
	}
	c.opts.Passes = 3
	if got := c.passes(); got != 3 {
		t.Errorf("passes() = %d, want 3", got)
	}
}
