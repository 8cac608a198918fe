//go:build windows

package filelock

import (
	"os"

	"golang.org/x/sys/windows"
)

// Both calls cover the first byte of the file; that is enough for a
// sidecar lock file that holds no data.
func lockFile(f *os.File) error {
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, new(windows.Overlapped))
}

func unlockFile(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, new(windows.Overlapped))
}
