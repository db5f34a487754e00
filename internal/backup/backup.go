package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/plugup/internal/paths"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Manager handles backup creation, restoration, and management.
type Manager struct {
	rootDir        string
	retentionCount int
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups to retain per config file.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupsDir(),
		retentionCount: DefaultRetentionCount,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RetentionCount returns the configured per-file retention count.
func (m *Manager) RetentionCount() int {
	return m.retentionCount
}

// Backup snapshots a single config file. Returns the manifest describing the
// backup, or an error if the backup fails.
//
// The file is copied with preserved permissions and recorded with a SHA256
// hash for integrity verification at restore time. A path that does not exist
// returns ErrNothingToBackUp.
func (m *Manager) Backup(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNothingToBackUp, "%s does not exist", abs)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Newf("%s is a directory, not a config file", abs)
	}

	backupID, backupPath, err := m.createBackupDir()
	if err != nil {
		return nil, err
	}

	relPath := generateRelPath(abs)
	dst := filepath.Join(backupPath, relPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		os.RemoveAll(backupPath)
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(abs, dst)
	if err != nil {
		os.RemoveAll(backupPath)
		return nil, errors.Wrapf(err, "backing up %s", abs)
	}

	manifest := &Manifest{
		Version:       ManifestVersion,
		CreatedAt:     time.Now().UTC(),
		Path:          abs,
		RelPath:       relPath,
		SHA256:        hash,
		Mode:          mode,
		PlugupVersion: Version,
		ID:            backupID,
	}

	manifestPath := filepath.Join(backupPath, "manifest.json")
	if err := fileutil.AtomicWriteJSON(manifestPath, manifest); err != nil {
		os.RemoveAll(backupPath)
		return nil, errors.Wrap(err, "writing manifest")
	}

	return manifest, nil
}

// Restore writes a backup back to its original location.
//
// The stored copy is verified against the manifest hash first; a mismatch
// returns ErrBackupCorrupted. If the target file exists and its content
// differs from the snapshot, the restore returns ErrRestoreConflict unless
// force is set, so hand edits made since the backup are never silently
// overwritten.
func (m *Manager) Restore(backupID string, force bool) error {
	if backupID == "" {
		return errors.New("backup ID is required")
	}

	manifest, err := m.Get(backupID)
	if err != nil {
		return err
	}

	src := filepath.Join(m.backupPath(backupID), manifest.RelPath)

	hash, err := hashFile(src)
	if err != nil {
		return errors.Wrapf(err, "reading backup file %s", manifest.RelPath)
	}
	if hash != manifest.SHA256 {
		return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", manifest.RelPath)
	}

	if !force {
		current, err := hashFile(manifest.Path)
		switch {
		case err == nil && current != manifest.SHA256:
			return errors.Wrapf(ErrRestoreConflict, "%s changed since backup %s", manifest.Path, backupID)
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return errors.Wrapf(err, "reading %s", manifest.Path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(manifest.Path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", manifest.Path)
	}

	if _, _, err := copyFile(src, manifest.Path); err != nil {
		return errors.Wrapf(err, "restoring %s", manifest.Path)
	}

	if err := os.Chmod(manifest.Path, manifest.Mode); err != nil {
		return errors.Wrapf(err, "setting permissions for %s", manifest.Path)
	}

	return nil
}

// List returns all available backups, sorted by date (newest first).
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifest, err := m.Get(entry.Name())
		if err != nil {
			// Skip invalid backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	// Sort by date, newest first; same-instant backups fall back to ID order
	slices.SortFunc(manifests, func(a, b Manifest) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		return strings.Compare(b.ID, a.ID)
	})

	return manifests, nil
}

// ListFor returns the backups taken of one config file, newest first.
func (m *Manager) ListFor(path string) ([]Manifest, error) {
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	all, err := m.List()
	if err != nil {
		return nil, err
	}

	manifests := make([]Manifest, 0, len(all))
	for _, manifest := range all {
		if manifest.Path == abs {
			manifests = append(manifests, manifest)
		}
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}
	return manifests, nil
}

// Prune removes old backups beyond the retention count, keeping the most
// recent 'keep' backups of each config file.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil // Nothing to prune
		}
		return err
	}

	// List is newest first, so each group stays newest first too
	groups := make(map[string][]Manifest)
	for _, manifest := range manifests {
		groups[manifest.Path] = append(groups[manifest.Path], manifest)
	}

	for _, group := range groups {
		for i := keep; i < len(group); i++ {
			backupPath := m.backupPath(group[i].ID)
			if err := os.RemoveAll(backupPath); err != nil {
				return errors.Wrapf(err, "removing backup %s", group[i].ID)
			}
		}
	}

	return nil
}

// Get returns the manifest for a specific backup.
func (m *Manager) Get(backupID string) (*Manifest, error) {
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}
	if strings.ContainsAny(backupID, `/\`) {
		return nil, errors.Newf("invalid backup ID %q", backupID)
	}

	manifestPath := filepath.Join(m.backupPath(backupID), "manifest.json")

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = backupID
	return &manifest, nil
}

// backupPath returns the full path to a backup directory.
func (m *Manager) backupPath(backupID string) string {
	return filepath.Join(m.rootDir, backupID)
}

// createBackupDir allocates a fresh timestamped backup directory. Two backups
// within the same second get distinct IDs via a numeric suffix.
func (m *Manager) createBackupDir() (string, string, error) {
	if err := os.MkdirAll(m.rootDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "creating backup root")
	}

	base := time.Now().UTC().Format("20060102T150405")
	backupID := base
	for n := 2; ; n++ {
		backupPath := filepath.Join(m.rootDir, backupID)
		err := os.Mkdir(backupPath, 0o755)
		if err == nil {
			return backupID, backupPath, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
		backupID = fmt.Sprintf("%s-%d", base, n)
	}
}

// hashFile computes the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file from src to dst, returning the SHA256 hash and mode.
// The destination file is created with 0644 permissions initially,
// then updated to match the source file's permissions.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode()

	// Create destination file
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	// Compute hash while copying
	h := sha256.New()
	w := io.MultiWriter(dstFile, h)

	if _, err := io.Copy(w, srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	// Set permissions to match source
	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath creates a relative path for storage in the backup directory.
// The absolute path keeps its shape minus the leading separator, and colons
// are removed so Windows drive letters cannot produce invalid names.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)

	vol := filepath.VolumeName(clean)
	clean = clean[len(vol):]
	clean = strings.TrimPrefix(clean, string(filepath.Separator))
	if vol != "" {
		clean = filepath.Join(strings.TrimSuffix(vol, ":"), clean)
	}

	return strings.ReplaceAll(clean, ":", "")
}

// expandHome expands ~ to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}

	return path
}
