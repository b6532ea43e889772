// Package cleaner drives the end-to-end history rewrite: segment the
// source file, decide each entry against the window and filters, write
// the keep-set to a replacement file, then swap it over the original
// after the original has been securely destroyed.
package cleaner

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazuruo/histwipe/internal/errors"
	"github.com/chazuruo/histwipe/internal/filter"
	"github.com/chazuruo/histwipe/internal/history"
	"github.com/chazuruo/histwipe/internal/interrupt"
	"github.com/chazuruo/histwipe/internal/report"
	"github.com/chazuruo/histwipe/internal/shred"
	"github.com/chazuruo/histwipe/internal/window"
)

// randomNameLength sizes the replacement file name and the backup
// suffix. Long enough that collisions in the target directory are not
// a practical concern.
const randomNameLength = 15

// Options describes one cleaning run. It is treated as immutable once
// handed to New.
type Options struct {
	// Path is the history file to clean.
	Path string
	// Mode selects how the time window is computed.
	Mode window.Mode
	// Inputs carries the raw date strings and day counts Mode needs.
	Inputs window.Inputs
	// Filters narrows deletion to matching commands. An empty set
	// deletes on time alone.
	Filters filter.Set
	// DryRun reports what would be deleted without touching the file.
	DryRun bool
	// Backup copies the original aside before it is destroyed.
	// Ignored on dry runs.
	Backup bool
	// Passes is the overwrite pass count for the secure delete.
	// Zero means shred.DefaultPasses.
	Passes int
}

// Result is what a run produced.
type Result struct {
	// Summary holds the counts and identifying details of the run.
	Summary report.Summary
	// Deletions lists the entries a dry run would remove, in file
	// order. Empty outside dry runs.
	Deletions []report.Deletion
}

// Cleaner owns a single rewrite run over one history file. The
// interrupt flag passed to New is polled between entries and between
// phases; once it trips, the run stops at the next poll and the
// replacement file is removed. Completed steps are never rolled back.
type Cleaner struct {
	opts Options
	log  *zap.Logger
	flag *interrupt.Flag
	now  func() time.Time

	// tempPath tracks the replacement file from creation until it is
	// renamed over the original, so cleanup can remove it on failure.
	tempPath string
}

// New returns a Cleaner for one run. A nil logger logs nowhere; a nil
// flag means the run cannot be canceled.
func New(opts Options, log *zap.Logger, flag *interrupt.Flag) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	if flag == nil {
		flag = interrupt.NewFlag()
	}
	return &Cleaner{opts: opts, log: log, flag: flag, now: time.Now}
}

// Run executes the pipeline: resolve the window, scan the source into
// a keep-set, and unless this is a dry run, write the keep-set beside
// the source, destroy the original and rename the replacement into
// place. The original is only touched once the replacement is durably
// on disk; any failure after that point leaves whatever state the
// completed steps produced, but the replacement file itself is always
// cleaned up when it was not renamed. A missing source is a successful
// no-op.
func (c *Cleaner) Run() (res *Result, err error) {
	start := time.Now()
	defer func() {
		if res != nil {
			res.Summary.Duration = time.Since(start).Round(time.Millisecond).String()
		}
	}()
	defer c.cleanup()

	if err := c.flag.Err(); err != nil {
		return nil, err
	}

	win, err := window.Resolve(c.opts.Mode, c.opts.Inputs, c.now())
	if err != nil {
		return nil, err
	}

	c.log.Info("processing entries",
		zap.String("path", c.opts.Path),
		zap.Stringer("mode", c.opts.Mode),
		zap.String("window", win.String()))

	res = &Result{Summary: report.Summary{
		RunID:  uuid.NewString(),
		Path:   c.opts.Path,
		Mode:   c.opts.Mode.String(),
		Window: win.String(),
		DryRun: c.opts.DryRun,
	}}

	keep, found, err := c.scan(win, res)
	if err != nil {
		return nil, err
	}
	if !found {
		return res, nil
	}

	c.log.Info("processing complete",
		zap.Int("lines_read", res.Summary.LinesRead),
		zap.Int("kept", res.Summary.Kept),
		zap.Int("deleted", res.Summary.Deleted))

	if c.opts.DryRun {
		c.log.Info("dry run, no changes made")
		return res, nil
	}
	if err := c.flag.Err(); err != nil {
		return nil, err
	}

	if err := c.writeReplacement(keep); err != nil {
		return nil, err
	}
	if err := c.finalize(&res.Summary); err != nil {
		return nil, err
	}
	return res, nil
}

// scan segments the source and partitions its entries, appending kept
// text to the returned keep-set and counting deletions. found is false
// when the source does not exist, which is not an error: there is
// nothing to clean. On dry runs the keep-set is not accumulated, only
// counted.
func (c *Cleaner) scan(win window.Window, res *Result) (keep []string, found bool, err error) {
	src, err := os.Open(c.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Info("history file does not exist, nothing to clean",
				zap.String("path", c.opts.Path))
			return nil, false, nil
		}
		return nil, false, &errors.PathError{Op: "open", Path: c.opts.Path, Err: err}
	}
	defer src.Close()

	keepEntry := func(text string) {
		res.Summary.Kept++
		if !c.opts.DryRun {
			keep = append(keep, text)
		}
	}

	ev := filter.NewEvaluator(win, c.opts.Filters)
	lines, err := history.Segment(src, func(e history.Entry) error {
		if err := c.flag.Err(); err != nil {
			return err
		}
		if e.Leading {
			c.log.Warn("line found before first history entry header, keeping line",
				zap.Int("line", e.EndLine))
			keepEntry(e.Text)
			return nil
		}
		switch ev.Decide(e) {
		case filter.Delete:
			res.Summary.Deleted++
			if c.opts.DryRun {
				res.Deletions = append(res.Deletions, report.Deletion{
					EndLine: e.EndLine,
					Text:    e.Text,
				})
			}
		case filter.KeepMalformed:
			c.log.Warn("malformed history entry, keeping block",
				zap.Int("line", e.EndLine))
			keepEntry(e.Text)
		default:
			keepEntry(e.Text)
		}
		return nil
	})
	res.Summary.LinesRead = lines
	if err != nil {
		return nil, true, err
	}
	return keep, true, nil
}

// writeReplacement writes the keep-set to a randomly named file next
// to the source and syncs it to disk. The file is tracked for cleanup
// from the moment it exists.
func (c *Cleaner) writeReplacement(keep []string) error {
	name, err := shred.RandomName(randomNameLength)
	if err != nil {
		return errors.Wrap(err, "generate replacement name")
	}
	path := filepath.Join(filepath.Dir(c.opts.Path), name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return &errors.PathError{Op: "create", Path: path, Err: err}
	}
	c.tempPath = path

	for _, block := range keep {
		if _, err := io.WriteString(f, block); err != nil {
			f.Close()
			return &errors.PathError{Op: "write", Path: path, Err: err}
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &errors.PathError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &errors.PathError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// finalize takes the optional backup, securely destroys the original
// and renames the replacement over it. No interruption poll happens
// between the destroy and the rename: once the original is gone, the
// rename is the only step that restores a consistent history file.
func (c *Cleaner) finalize(sum *report.Summary) error {
	if err := c.flag.Err(); err != nil {
		return err
	}

	if c.opts.Backup {
		backupPath, err := c.backup()
		if err != nil {
			return errors.Wrap(err, "backup failed, original file preserved")
		}
		sum.BackupPath = backupPath
		c.log.Info("backup created", zap.String("path", backupPath))
		if err := c.flag.Err(); err != nil {
			return err
		}
	}

	c.log.Info("securely deleting original history file",
		zap.String("path", c.opts.Path),
		zap.Int("passes", c.passes()))
	if !shred.Delete(c.opts.Path, c.passes(), c.log) {
		return errors.Wrap(errors.ErrIO, "secure delete of original history file failed")
	}

	if err := os.Rename(c.tempPath, c.opts.Path); err != nil {
		return &errors.PathError{Op: "rename", Path: c.tempPath, Err: err}
	}
	c.tempPath = ""
	return nil
}

// backup copies the source to <name>.backup_<random> in the same
// directory.
func (c *Cleaner) backup() (string, error) {
	suffix, err := shred.RandomName(randomNameLength)
	if err != nil {
		return "", errors.Wrap(err, "generate backup name")
	}
	dst := c.opts.Path + ".backup_" + suffix

	in, err := os.Open(c.opts.Path)
	if err != nil {
		return "", &errors.PathError{Op: "open", Path: c.opts.Path, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", &errors.PathError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", &errors.PathError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", &errors.PathError{Op: "close", Path: dst, Err: err}
	}
	return dst, nil
}

func (c *Cleaner) passes() int {
	if c.opts.Passes > 0 {
		return c.opts.Passes
	}
	return shred.DefaultPasses
}

// cleanup removes the tracked replacement file, if any. Idempotent;
// runs on every exit from Run.
func (c *Cleaner) cleanup() {
	if c.tempPath == "" {
		return
	}
	if err := os.Remove(c.tempPath); err != nil && !os.IsNotExist(err) {
		c.log.Warn("failed to remove replacement file",
			zap.String("path", c.tempPath), zap.Error(err))
	}
	c.tempPath = ""
}
