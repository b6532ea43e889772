// Package shred destroys file contents before unlinking.
//
// Deletion is best effort: overwrite the file with random data a fixed
// number of passes, syncing after each, then rename it to a random name
// and unlink. Every failure along the stronger path degrades to a plain
// removal rather than leaving the file behind; the return value only
// claims success when the file is actually gone.
package shred

import (
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

const (
	// DefaultPasses is the historical overwrite pass count.
	DefaultPasses = 32

	// bufferSize bounds the scratch buffer reused across passes.
	bufferSize = 4096

	// nameLength is the length of generated random file names.
	nameLength = 15
)

const nameCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomName returns an unpredictable n-character alphanumeric name.
// Used for replacement files, backups and pre-unlink renames, where a
// predictable name would invite symlink races or collide with other
// in-flight operations.
func RandomName(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = nameCharset[int(b[i])%len(nameCharset)]
	}
	return string(b), nil
}

// Delete overwrites path with passes rounds of random data, renames it
// to a random name in the same directory, and unlinks it. The return
// value reports whether the file is gone; diagnostics go to logger,
// never to the caller. A missing path counts as success. Non-regular
// and zero-length files are removed without overwriting.
func Delete(path string, passes int, logger *zap.Logger) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("file already deleted", zap.String("path", path))
			return true
		}
		logger.Error("failed to check file status", zap.String("path", path), zap.Error(err))
		return false
	}
	if !info.Mode().IsRegular() {
		logger.Warn("not a regular file, using standard delete", zap.String("path", path))
		return plainRemove(path, logger)
	}
	if info.Size() == 0 {
		logger.Info("empty file, using standard delete", zap.String("path", path))
		return plainRemove(path, logger)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_SYNC, 0)
	if err != nil && (errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EOPNOTSUPP)) {
		logger.Info("synchronous writes unsupported, falling back to buffered mode",
			zap.String("path", path))
		f, err = os.OpenFile(path, os.O_WRONLY, 0)
	}
	if err != nil {
		logger.Error("failed to open file for overwrite", zap.String("path", path), zap.Error(err))
		return plainRemove(path, logger)
	}

	overwriteErr := overwrite(f, info.Size(), passes, logger)
	if err := f.Close(); err != nil {
		logger.Warn("close failed after overwrite", zap.String("path", path), zap.Error(err))
	}
	if overwriteErr != nil {
		return plainRemove(path, logger)
	}

	// Rename away from the original name before unlinking, so journal
	// entries and directory slack reference a meaningless name. A
	// failed rename is not fatal; unlink proceeds on the original.
	target := path
	if name, err := RandomName(nameLength); err == nil {
		obscure := filepath.Join(filepath.Dir(path), name)
		if err := os.Rename(path, obscure); err == nil {
			target = obscure
		}
	}

	if err := os.Remove(target); err != nil {
		logger.Error("failed to delete file", zap.String("path", target), zap.Error(err))
		return false
	}
	return true
}

// overwriteTarget is the write surface overwrite needs from an open
// file. Narrow on purpose: tests substitute a counting fake.
type overwriteTarget interface {
	io.Writer
	io.Seeker
	Sync() error
}

// overwrite runs the pass loop: seek to the start, refill the scratch
// buffer with fresh random bytes, cover size bytes in bounded chunks,
// then sync. The scratch buffer is zeroed before return on every exit
// path.
func overwrite(f overwriteTarget, size int64, passes int, logger *zap.Logger) error {
	buf := make([]byte, bufferSize)
	defer zeroBytes(buf)

	for pass := 1; pass <= passes; pass++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			logger.Error("failed to seek to start of file", zap.Int("pass", pass), zap.Error(err))
			return err
		}
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to fill overwrite buffer", zap.Error(err))
			return err
		}

		remaining := size
		for remaining > 0 {
			chunk := buf
			if remaining < int64(len(buf)) {
				chunk = buf[:remaining]
			}
			if err := writeFull(f, chunk); err != nil {
				logger.Error("overwrite write failed", zap.Int("pass", pass), zap.Error(err))
				return err
			}
			remaining -= int64(len(chunk))
		}

		if err := f.Sync(); err != nil {
			logger.Warn("sync failed after overwrite pass", zap.Int("pass", pass), zap.Error(err))
		}
	}
	return nil
}

// writeFull writes all of chunk, retrying interrupted system calls and
// resuming after partial writes.
func writeFull(w io.Writer, chunk []byte) error {
	total := 0
	for total < len(chunk) {
		n, err := w.Write(chunk[total:])
		total += n
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// plainRemove is the degraded path: no overwrite, just unlink.
func plainRemove(path string, logger *zap.Logger) bool {
	if err := os.Remove(path); err != nil {
		logger.Error("failed to delete file", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
