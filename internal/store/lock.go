package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WriterLock is an advisory lock on the data directory. The server and
// writing CLI commands hold it so only one process mutates a store at a time.
type WriterLock struct {
	fl *flock.Flock
}

// AcquireWriterLock takes the lock at path without blocking. It returns
// ErrLocked when another process holds it.
func AcquireWriterLock(path string) (*WriterLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrLocked.WithMessage(fmt.Sprintf("another process holds %s", path))
	}
	return &WriterLock{fl: fl}, nil
}

// Release unlocks. It is safe to call more than once.
func (l *WriterLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
