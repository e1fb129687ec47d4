package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter appends to a single log file and rotates it once a
// write would push it past the size limit. Rotated files are numbered
// caselens.log.1 (newest) through caselens.log.N (oldest); the oldest
// is dropped when the chain is full.
type RotatingWriter struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	size  int64
	limit int64
	keep  int
}

// NewRotatingWriter opens (creating if needed) the log file at path,
// along with its parent directories. maxSizeMB bounds the live file;
// maxFiles bounds the numbered rotations kept next to it.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:  path,
		limit: int64(maxSizeMB) << 20,
		keep:  maxFiles,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			// Keep logging into the oversized file rather than lose
			// records.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate shifts the numbered chain up one slot and reopens a fresh
// live file. caselens.log becomes caselens.log.1 and so on; the file
// at slot keep falls off.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close before rotation: %w", err)
	}

	_ = os.Remove(w.slot(w.keep))
	for i := w.keep - 1; i >= 1; i-- {
		if _, err := os.Stat(w.slot(i)); err == nil {
			_ = os.Rename(w.slot(i), w.slot(i+1))
		}
	}
	if err := os.Rename(w.path, w.slot(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log file: %w", err)
	}

	w.size = 0
	return w.open()
}

func (w *RotatingWriter) slot(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// Sync flushes buffered records to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close releases the live file. The writer must not be used after.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
