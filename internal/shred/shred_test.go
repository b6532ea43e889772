package shred

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestRandomName(t *testing.T) {
	a, err := RandomName(15)
	if err != nil {
		t.Fatalf("RandomName() error = %v", err)
	}
	if len(a) != 15 {
		t.Errorf("RandomName(15) length = %d, want 15", len(a))
	}
	for _, r := range a {
		if !strings.ContainsRune(nameCharset, r) {
			t.Errorf("RandomName() produced %q outside the charset", r)
		}
	}

	b, err := RandomName(15)
	if err != nil {
		t.Fatalf("RandomName() error = %v", err)
	}
	if a == b {
		t.Errorf("two RandomName() calls returned the same name %q", a)
	}
}

// countingFile records the overwrite traffic overwrite() generates so
// the pass accounting can be asserted exactly.
type countingFile struct {
	passSizes   []int64
	current     int64
	seeks       int
	syncs       int
	firstChunks [][]byte
	sawWrite    bool
}

func (c *countingFile) Seek(offset int64, whence int) (int64, error) {
	c.seeks++
	c.sawWrite = false
	return 0, nil
}

func (c *countingFile) Write(p []byte) (int, error) {
	if !c.sawWrite {
		c.firstChunks = append(c.firstChunks, append([]byte(nil), p...))
		c.sawWrite = true
	}
	c.current += int64(len(p))
	return len(p), nil
}

func (c *countingFile) Sync() error {
	c.syncs++
	c.passSizes = append(c.passSizes, c.current)
	c.current = 0
	return nil
}

func TestOverwritePassAccounting(t *testing.T) {
	const (
		size   = 10000 // two full buffers plus a partial chunk
		passes = 5
	)
	cf := &countingFile{}
	if err := overwrite(cf, size, passes, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("overwrite() error = %v", err)
	}

	if cf.seeks != passes {
		t.Errorf("seeks = %d, want %d", cf.seeks, passes)
	}
	if cf.syncs != passes {
		t.Errorf("syncs = %d, want %d", cf.syncs, passes)
	}
	if len(cf.passSizes) != passes {
		t.Fatalf("recorded %d passes, want %d", len(cf.passSizes), passes)
	}
	for i, n := range cf.passSizes {
		if n != size {
			t.Errorf("pass %d wrote %d bytes, want %d", i+1, n, size)
		}
	}
}

func TestOverwriteRefillsBufferEachPass(t *testing.T) {
	cf := &countingFile{}
	if err := overwrite(cf, bufferSize, 2, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("overwrite() error = %v", err)
	}
	if len(cf.firstChunks) != 2 {
		t.Fatalf("captured %d chunks, want 2", len(cf.firstChunks))
	}
	if bytes.Equal(cf.firstChunks[0], cf.firstChunks[1]) {
		t.Error("both passes wrote identical data; buffer was not refilled")
	}
}

type failingSeeker struct{ countingFile }

func (f *failingSeeker) Seek(int64, int) (int64, error) { return 0, syscall.EIO }

func TestOverwriteSeekErrorAborts(t *testing.T) {
	fs := &failingSeeker{}
	if err := overwrite(fs, 100, 3, zaptest.NewLogger(t)); err == nil {
		t.Fatal("overwrite() succeeded despite seek failure")
	}
	if fs.syncs != 0 {
		t.Errorf("syncs = %d after failed seek, want 0", fs.syncs)
	}
}

type failingWriter struct{ countingFile }

func (f *failingWriter) Write(p []byte) (int, error) { return 0, syscall.EIO }

func TestOverwriteWriteErrorAborts(t *testing.T) {
	fw := &failingWriter{}
	if err := overwrite(fw, 100, 3, zaptest.NewLogger(t)); err == nil {
		t.Fatal("overwrite() succeeded despite write failure")
	}
}

// flakyWriter fails its first call with EINTR after a partial write.
type flakyWriter struct {
	calls int
	buf   bytes.Buffer
}

func (f *flakyWriter) Write(p []byte) (int, error) {
	f.calls++
	if f.calls == 1 {
		n := len(p) / 2
		f.buf.Write(p[:n])
		return n, syscall.EINTR
	}
	f.buf.Write(p)
	return len(p), nil
}

func TestWriteFullResumesAfterEINTR(t *testing.T) {
	chunk := []byte("0123456789abcdef")
	fw := &flakyWriter{}
	if err := writeFull(fw, chunk); err != nil {
		t.Fatalf("writeFull() error = %v", err)
	}
	if !bytes.Equal(fw.buf.Bytes(), chunk) {
		t.Errorf("writeFull() wrote %q, want %q", fw.buf.Bytes(), chunk)
	}
	if fw.calls != 2 {
		t.Errorf("writer called %d times, want 2", fw.calls)
	}
}

func TestDeleteMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-existed")
	if !Delete(path, 3, zaptest.NewLogger(t)) {
		t.Error("Delete() = false for a missing file, want true")
	}
}

func TestDeleteZeroByteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	if !Delete(path, 3, zap.New(core)) {
		t.Fatal("Delete() = false for an empty file, want true")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty file still exists after Delete()")
	}
	if logs.FilterMessage("empty file, using standard delete").Len() != 1 {
		t.Error("expected the empty-file fast path to be logged")
	}
}

func TestDeleteRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	if err := os.WriteFile(path, bytes.Repeat([]byte("secret\n"), 1000), 0600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if !Delete(path, 3, zaptest.NewLogger(t)) {
		t.Fatal("Delete() = false, want true")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Delete()")
	}

	// The renamed obscure file must not survive either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after Delete(): %v", entries)
	}
}

func TestDeleteDirectoryFallsBackToPlainRemove(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	if !Delete(sub, 3, zap.New(core)) {
		t.Fatal("Delete() = false for an empty directory, want true")
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Error("directory still exists after Delete()")
	}
	if logs.FilterMessage("not a regular file, using standard delete").Len() != 1 {
		t.Error("expected the non-regular fast path to be logged")
	}
}
