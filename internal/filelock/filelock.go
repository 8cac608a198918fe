// Package filelock serializes writers across processes with an exclusive
// lock on a sidecar file.
package filelock

import (
	"fmt"
	"os"
)

const lockFileMode = 0o600

// Lock blocks until the exclusive lock on path is held. The caller must
// call the returned unlock function exactly once.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // board-owned path
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	return func() error {
		uerr := unlockFile(f)
		cerr := f.Close()
		if uerr != nil {
			return fmt.Errorf("releasing lock %s: %w", path, uerr)
		}
		return cerr
	}, nil
}

// With runs fn while holding the lock on path.
func With(path string, fn func() error) error {
	unlock, err := Lock(path)
	if err != nil {
		return err
	}
	ferr := fn()
	if uerr := unlock(); uerr != nil && ferr == nil {
		return uerr
	}
	return ferr
}
