package runs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another castline process holds the ledger lock.
var ErrLocked = errors.New("another castline process is using the data directory")

// Lock serializes ledger writers across processes.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the data directory lock, failing fast when another
// process holds it.
func AcquireLock(dataDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dataDir, "castline.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
