package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(WithBackupDir(t.TempDir()))
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBackup_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", `{"plugin": ["pkg"]}`)

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	if manifest.Version != ManifestVersion {
		t.Errorf("manifest.Version = %d, want %d", manifest.Version, ManifestVersion)
	}
	if manifest.Path != src {
		t.Errorf("manifest.Path = %q, want %q", manifest.Path, src)
	}
	if manifest.ID == "" {
		t.Error("manifest.ID is empty")
	}
	if manifest.PlugupVersion != Version {
		t.Errorf("manifest.PlugupVersion = %q, want %q", manifest.PlugupVersion, Version)
	}
	if manifest.Mode.Perm() != 0o600 {
		t.Errorf("manifest.Mode = %04o, want 0600", manifest.Mode.Perm())
	}

	wantHash, err := hashFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.SHA256 != wantHash {
		t.Errorf("manifest.SHA256 = %q, want %q", manifest.SHA256, wantHash)
	}

	// The stored copy carries the original content and mode
	stored := filepath.Join(m.backupPath(manifest.ID), manifest.RelPath)
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("reading stored copy: %v", err)
	}
	if got, want := string(data), `{"plugin": ["pkg"]}`; got != want {
		t.Errorf("stored copy = %q, want %q", got, want)
	}
	info, err := os.Stat(stored)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("stored copy mode = %04o, want 0600", info.Mode().Perm())
	}
}

func TestBackup_Collision(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	// Sequential backups typically land in the same second; IDs must still
	// be distinct.
	manifest1, err := m.Backup(src)
	if err != nil {
		t.Fatalf("First backup failed: %v", err)
	}

	manifest2, err := m.Backup(src)
	if err != nil {
		t.Fatalf("Second backup failed: %v", err)
	}

	if manifest1.ID == manifest2.ID {
		t.Errorf("Backup IDs collided: %s", manifest1.ID)
	}
}

func TestBackup_MissingSource(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Backup(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if !errors.Is(err, ErrNothingToBackUp) {
		t.Errorf("Backup() error = %v, want ErrNothingToBackUp", err)
	}
}

func TestBackup_Directory(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Backup(t.TempDir())
	if err == nil {
		t.Fatal("Backup() of a directory succeeded, want error")
	}
	if errors.Is(err, ErrNothingToBackUp) {
		t.Errorf("Backup() error = %v, want a plain error, not ErrNothingToBackUp", err)
	}
}

func TestGenerateRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/usr/local/bin", "usr/local/bin"},
		{"C:\\Users\\Data", "C\\Users\\Data"}, // Windows style with : removed
		{"file:name", "filename"},             // Arbitrary : removal
	}

	for _, tt := range tests {
		got := generateRelPath(tt.input)

		// The core requirement: NO COLONS.
		for i := range len(got) {
			if got[i] == ':' {
				t.Errorf("generateRelPath(%q) = %q contains colon", tt.input, got)
			}
		}
	}
}

func TestList_NewestFirst(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	var ids []string
	for range 3 {
		manifest, err := m.Backup(src)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, manifest.ID)
	}

	// Stray entries in the root must not break listing
	if err := os.WriteFile(filepath.Join(m.rootDir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(m.rootDir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	manifests, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(manifests) != 3 {
		t.Fatalf("List() returned %d manifests, want 3", len(manifests))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if manifests[i].ID != want {
			t.Errorf("List()[%d].ID = %s, want %s", i, manifests[i].ID, want)
		}
	}
}

func TestList_Empty(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.List(); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("List() error = %v, want ErrNoBackupsFound", err)
	}
}

func TestListFor(t *testing.T) {
	m := newTestManager(t)
	dir := t.TempDir()
	global := writeConfig(t, dir, "opencode.json", "{}")
	project := writeConfig(t, dir, "opencode.jsonc", "{}")

	if _, err := m.Backup(global); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Backup(project); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Backup(global); err != nil {
		t.Fatal(err)
	}

	manifests, err := m.ListFor(global)
	if err != nil {
		t.Fatalf("ListFor() error = %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("ListFor() returned %d manifests, want 2", len(manifests))
	}
	for _, manifest := range manifests {
		if manifest.Path != global {
			t.Errorf("ListFor() included %s, want only %s", manifest.Path, global)
		}
	}

	if _, err := m.ListFor(filepath.Join(dir, "never-backed-up.json")); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("ListFor() error = %v, want ErrNoBackupsFound", err)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", `{"plugin": ["pkg@1.0.0"]}`)

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate the write that follows a backup
	if err := os.WriteFile(src, []byte(`{"plugin": ["pkg@2.0.0"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := m.Restore(manifest.ID, true); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"plugin": ["pkg@1.0.0"]}`; got != want {
		t.Errorf("restored content = %q, want %q", got, want)
	}

	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("restored mode = %04o, want 0600", info.Mode().Perm())
	}
}

func TestRestore_Conflict(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(src, []byte(`{"changed": true}`), 0o600); err != nil {
		t.Fatal(err)
	}

	err = m.Restore(manifest.ID, false)
	if !errors.Is(err, ErrRestoreConflict) {
		t.Errorf("Restore() error = %v, want ErrRestoreConflict", err)
	}

	// The modified file must be untouched after a refused restore
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"changed": true}`; got != want {
		t.Errorf("target after refused restore = %q, want %q", got, want)
	}
}

func TestRestore_UnchangedTarget(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Restore(manifest.ID, false); err != nil {
		t.Errorf("Restore() of unchanged target error = %v, want nil", err)
	}
}

func TestRestore_TargetRemoved(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", `{"plugin": []}`)

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}

	if err := m.Restore(manifest.ID, false); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("restored file missing: %v", err)
	}
	if got, want := string(data), `{"plugin": []}`; got != want {
		t.Errorf("restored content = %q, want %q", got, want)
	}
}

func TestRestore_Corrupted(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	manifest, err := m.Backup(src)
	if err != nil {
		t.Fatal(err)
	}

	// Tamper with the stored copy
	stored := filepath.Join(m.backupPath(manifest.ID), manifest.RelPath)
	if err := os.WriteFile(stored, []byte("tampered"), 0o600); err != nil {
		t.Fatal(err)
	}

	err = m.Restore(manifest.ID, true)
	if !errors.Is(err, ErrBackupCorrupted) {
		t.Errorf("Restore() error = %v, want ErrBackupCorrupted", err)
	}
}

func TestRestore_UnknownID(t *testing.T) {
	m := newTestManager(t)

	if err := m.Restore("20200101T000000", false); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("Restore() error = %v, want ErrNoBackupsFound", err)
	}
}

func TestPrune_PerFileRetention(t *testing.T) {
	m := newTestManager(t)
	dir := t.TempDir()
	global := writeConfig(t, dir, "opencode.json", "{}")
	project := writeConfig(t, dir, "opencode.jsonc", "{}")

	keepPerFile := make(map[string][]string)
	for range 3 {
		for _, src := range []string{global, project} {
			manifest, err := m.Backup(src)
			if err != nil {
				t.Fatal(err)
			}
			keepPerFile[src] = append(keepPerFile[src], manifest.ID)
		}
	}

	if err := m.Prune(2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	for src, ids := range keepPerFile {
		manifests, err := m.ListFor(src)
		if err != nil {
			t.Fatalf("ListFor(%s) error = %v", src, err)
		}
		if len(manifests) != 2 {
			t.Fatalf("ListFor(%s) returned %d manifests after prune, want 2", src, len(manifests))
		}
		// The two most recent survive
		if manifests[0].ID != ids[2] || manifests[1].ID != ids[1] {
			t.Errorf("ListFor(%s) kept %s, %s; want %s, %s",
				src, manifests[0].ID, manifests[1].ID, ids[2], ids[1])
		}
	}
}

func TestPrune_KeepZero(t *testing.T) {
	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	if _, err := m.Backup(src); err != nil {
		t.Fatal(err)
	}

	if err := m.Prune(0); err != nil {
		t.Fatalf("Prune(0) error = %v", err)
	}

	if _, err := m.List(); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("List() after Prune(0) error = %v, want ErrNoBackupsFound", err)
	}
}

func TestPrune_NoBackups(t *testing.T) {
	m := newTestManager(t)

	if err := m.Prune(5); err != nil {
		t.Errorf("Prune() with no backups error = %v, want nil", err)
	}
}

func TestGet_InvalidID(t *testing.T) {
	m := newTestManager(t)

	for _, id := range []string{"../escape", "a/b", `a\b`} {
		if _, err := m.Get(id); err == nil {
			t.Errorf("Get(%q) succeeded, want error", id)
		}
	}
}

func TestEnsureBackedUp_OncePerFile(t *testing.T) {
	t.Cleanup(ResetBackupState)
	ResetBackupState()

	m := newTestManager(t)
	src := writeConfig(t, t.TempDir(), "opencode.json", "{}")

	if err := EnsureBackedUp(m, src); err != nil {
		t.Fatalf("EnsureBackedUp() error = %v", err)
	}
	if err := EnsureBackedUp(m, src); err != nil {
		t.Fatalf("EnsureBackedUp() second call error = %v", err)
	}

	manifests, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 1 {
		t.Errorf("got %d backups after two EnsureBackedUp calls, want 1", len(manifests))
	}

	ResetPathBackupState(src)
	if err := EnsureBackedUp(m, src); err != nil {
		t.Fatalf("EnsureBackedUp() after reset error = %v", err)
	}

	manifests, err = m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 2 {
		t.Errorf("got %d backups after reset, want 2", len(manifests))
	}
}

func TestEnsureBackedUp_MissingFile(t *testing.T) {
	t.Cleanup(ResetBackupState)
	ResetBackupState()

	m := newTestManager(t)

	if err := EnsureBackedUp(m, filepath.Join(t.TempDir(), "opencode.json")); err != nil {
		t.Errorf("EnsureBackedUp() for missing file error = %v, want nil", err)
	}
	if _, err := m.List(); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("List() error = %v, want ErrNoBackupsFound", err)
	}
}
