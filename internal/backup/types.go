package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// Default configuration values.
const (
	// DefaultRetentionCount is the default number of backups to retain per
	// config file.
	DefaultRetentionCount = 5
)

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates backup file integrity verification failed.
	// This occurs when the stored copy's SHA256 hash doesn't match the manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrRestoreConflict indicates the target file has been modified since the
	// backup was taken. Restoring would overwrite those changes, so the caller
	// must opt in explicitly.
	ErrRestoreConflict = errors.New("restore conflict")

	// ErrNothingToBackUp indicates the source file does not exist. A config
	// that was never written has no state worth snapshotting.
	ErrNothingToBackUp = errors.New("nothing to back up")
)

// Manifest describes one config file snapshot.
// It is stored as manifest.json in each backup directory.
type Manifest struct {
	// Version is the manifest format version for forward compatibility.
	Version int `json:"version"`

	// CreatedAt is when the backup was created.
	CreatedAt time.Time `json:"created_at"`

	// Path is the absolute path the file was snapshotted from, and the
	// location a restore writes back to.
	Path string `json:"path"`

	// RelPath is the relative path of the stored copy within the backup
	// directory.
	RelPath string `json:"rel_path"`

	// SHA256 is the hex-encoded SHA256 hash of the file contents at backup
	// time.
	SHA256 string `json:"sha256"`

	// Mode is the file's permission bits at backup time.
	Mode fs.FileMode `json:"mode"`

	// PlugupVersion is the version of plugup that created this backup.
	PlugupVersion string `json:"plugup_version"`

	// ID is the backup identifier (timestamp format: 20260123T100712, with a
	// numeric suffix on collision). Populated when loading from disk but not
	// stored in JSON.
	ID string `json:"-"`
}
