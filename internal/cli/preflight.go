package cli

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chazuruo/histwipe/internal/errors"
)

// resolvePath turns a user-supplied history path into an absolute one,
// following symlinks when the target exists. Resolution failures fall
// back to the best form available with a warning; the preflight checks
// below catch anything genuinely unusable.
func resolvePath(path string, logger *zap.Logger) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		logger.Warn("could not resolve absolute path, using as given",
			zap.String("path", path), zap.Error(err))
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not resolve symlinks, using absolute path",
				zap.String("path", abs), zap.Error(err))
		}
		return abs
	}
	return resolved
}

// preflight verifies the history file can be rewritten in place before
// anything touches it: the parent directory must exist and accept new
// files (the replacement and any backup land there), and the file, when
// present, must be a regular file open for reading and writing. A
// missing file passes; the run then finds nothing to clean.
func preflight(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &errors.PathError{Op: "stat", Path: dir, Err: errors.ErrNotFound}
		}
		return &errors.PathError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &errors.PathError{Op: "stat", Path: dir, Err: errors.Wrap(errors.ErrInvalid, "not a directory")}
	}
	if err := probeWritableDir(dir); err != nil {
		return &errors.PathError{Op: "write", Path: dir, Err: errors.Wrap(errors.ErrPermission, err.Error())}
	}

	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errors.PathError{Op: "stat", Path: path, Err: err}
	}
	if fi.Mode()&fs.ModeSymlink == 0 && !fi.Mode().IsRegular() {
		return &errors.PathError{Op: "open", Path: path, Err: errors.Wrap(errors.ErrInvalid, "not a regular file")}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return &errors.PathError{Op: "open", Path: path, Err: errors.ErrPermission}
		}
		return &errors.PathError{Op: "open", Path: path, Err: err}
	}
	return f.Close()
}

// probeWritableDir checks directory writability the portable way:
// create and remove a throwaway file.
func probeWritableDir(dir string) error {
	f, err := os.CreateTemp(dir, ".histwipe-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
