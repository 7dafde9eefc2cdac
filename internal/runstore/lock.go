package runstore

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"enrich/internal/config"
)

// ErrRunInProgress reports that another process holds the run lock.
var ErrRunInProgress = errors.New("another enrichment run is already in progress")

// Lock serializes runs against a shared state directory. The ledger database
// tolerates concurrent readers; the lock exists so two runs do not append to
// the same output files at once.
type Lock struct {
	path string
	fl   *flock.Flock
}

// AcquireLock takes the run lock without blocking. It fails with
// ErrRunInProgress when another process holds it.
func AcquireLock(cfg *config.Config) (*Lock, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lockPath := filepath.Join(cfg.Paths.StateDir, "enrich.lock")
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return &Lock{path: lockPath, fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. Safe on a nil receiver.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
