package backup

import (
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// backupOnce tracks per-file backup state within a session.
// This prevents redundant backups when multiple operations occur.
var (
	backupOnce  = make(map[string]*sync.Once)
	backupMutex sync.Mutex
)

// EnsureBackedUp ensures a backup of the config file exists before it is
// modified. Uses sync.Once so only one backup is created per file per
// session, no matter how many times it's called.
//
// Returns nil if:
//   - A backup was just created successfully
//   - A backup was already created in this session (no-op)
//   - The file does not exist yet (nothing to back up)
//
// Returns an error if the backup creation fails; the state is reset on
// failure so the caller can retry.
func EnsureBackedUp(m *Manager, path string) error {
	if path == "" {
		return nil
	}

	key := filepath.Clean(path)

	backupMutex.Lock()
	once, exists := backupOnce[key]
	if !exists {
		once = &sync.Once{}
		backupOnce[key] = once
	}
	backupMutex.Unlock()

	var backupErr error
	once.Do(func() {
		_, backupErr = m.Backup(path)
		if errors.Is(backupErr, ErrNothingToBackUp) {
			// A file that was never written has no state to lose.
			backupErr = nil
		}
		if backupErr != nil {
			backupMutex.Lock()
			delete(backupOnce, key)
			backupMutex.Unlock()
		}
	})

	if backupErr != nil {
		return errors.Wrapf(backupErr, "backing up %s", path)
	}

	return nil
}

// ResetBackupState clears the backup state for all files.
// This is primarily useful for testing to reset state between tests.
func ResetBackupState() {
	backupMutex.Lock()
	defer backupMutex.Unlock()
	backupOnce = make(map[string]*sync.Once)
}

// ResetPathBackupState clears the backup state for a specific file. This
// allows a new backup to be created for it on the next call to
// EnsureBackedUp.
func ResetPathBackupState(path string) {
	backupMutex.Lock()
	defer backupMutex.Unlock()
	delete(backupOnce, filepath.Clean(path))
}
