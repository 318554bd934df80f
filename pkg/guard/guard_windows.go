//go:build windows

package guard

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

type mutexLock struct {
	handle windows.Handle
}

// DefaultDir returns %SystemRoot%\Temp, which every user session shares.
func DefaultDir() string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return filepath.Join(root, "Temp")
}

// acquireLock creates the named mutex id. An existing mutex means another
// instance holds the guard.
func acquireLock(id, _ string) (osLock, bool, error) {
	name, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return nil, false, err
	}
	handle, err := windows.CreateMutex(nil, true, name)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		_ = windows.CloseHandle(handle)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &mutexLock{handle: handle}, true, nil
}

func (l *mutexLock) release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	if err := windows.ReleaseMutex(l.handle); err != nil {
		_ = windows.CloseHandle(l.handle)
		return err
	}
	return windows.CloseHandle(l.handle)
}
