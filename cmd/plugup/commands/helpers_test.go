package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thoreinstein/plugup/internal/config"
	"github.com/thoreinstein/plugup/internal/errors"
)

// saveSettingsState snapshots the package state currentSettings reads and
// restores it when the test finishes.
func saveSettingsState(t *testing.T) {
	t.Helper()

	origConfig := loadedConfig
	origPackage := packageFlag
	origChannel := channelFlag
	origRegistry := registryFlag
	origTimeout := timeoutFlag
	origProjectRoot := projectRootFlag
	t.Cleanup(func() {
		loadedConfig = origConfig
		packageFlag = origPackage
		channelFlag = origChannel
		registryFlag = origRegistry
		timeoutFlag = origTimeout
		projectRootFlag = origProjectRoot
	})

	loadedConfig = nil
	packageFlag = ""
	channelFlag = ""
	registryFlag = ""
	timeoutFlag = 0
	projectRootFlag = ""
}

func TestCurrentSettings_Defaults(t *testing.T) {
	saveSettingsState(t)

	s := currentSettings()

	if s.registryURL != config.DefaultRegistryURL {
		t.Errorf("registryURL = %q, want %q", s.registryURL, config.DefaultRegistryURL)
	}
	if s.timeout != config.DefaultTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, config.DefaultTimeout)
	}
	if !s.backupsEnabled {
		t.Error("backups should default to enabled")
	}
	if s.retention != config.DefaultBackupRetention {
		t.Errorf("retention = %d, want %d", s.retention, config.DefaultBackupRetention)
	}
	if s.pkg != "" {
		t.Errorf("pkg = %q, want empty", s.pkg)
	}
}

func TestCurrentSettings_FlagsOverrideConfig(t *testing.T) {
	saveSettingsState(t)

	loadedConfig = &config.Config{
		Package:     "from-config",
		Channel:     "latest",
		ProjectRoot: "/config/project",
		Registry: config.Registry{
			URL:     "https://config.example.com",
			Timeout: 5 * time.Second,
		},
		Backups: config.Backups{Enabled: true, Retention: 3},
	}
	packageFlag = "from-flag"
	channelFlag = "beta"
	registryFlag = "https://flag.example.com"
	timeoutFlag = 2 * time.Second
	projectRootFlag = "/flag/project"

	s := currentSettings()

	if s.pkg != "from-flag" {
		t.Errorf("pkg = %q, want from-flag", s.pkg)
	}
	if s.channel != "beta" {
		t.Errorf("channel = %q, want beta", s.channel)
	}
	if s.registryURL != "https://flag.example.com" {
		t.Errorf("registryURL = %q, want the flag value", s.registryURL)
	}
	if s.timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", s.timeout)
	}
	if s.projectRoot != "/flag/project" {
		t.Errorf("projectRoot = %q, want the flag value", s.projectRoot)
	}
	if s.retention != 3 {
		t.Errorf("retention = %d, want 3", s.retention)
	}
}

func TestCurrentSettings_ConfigFillsUnsetFlags(t *testing.T) {
	saveSettingsState(t)

	loadedConfig = &config.Config{
		Package: "from-config",
		Backups: config.Backups{Enabled: false},
	}

	s := currentSettings()

	if s.pkg != "from-config" {
		t.Errorf("pkg = %q, want from-config", s.pkg)
	}
	// Zero-value registry settings in the file keep the built-in defaults.
	if s.registryURL != config.DefaultRegistryURL {
		t.Errorf("registryURL = %q, want default", s.registryURL)
	}
	if s.timeout != config.DefaultTimeout {
		t.Errorf("timeout = %v, want default", s.timeout)
	}
	if s.backupsEnabled {
		t.Error("backupsEnabled = true, want false from config")
	}
}

func TestResolvePackage(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		pkg     string
		want    string
		wantErr bool
	}{
		{"positional argument wins", []string{"arg-pkg"}, "cfg-pkg", "arg-pkg", false},
		{"settings package", nil, "cfg-pkg", "cfg-pkg", false},
		{"empty args fall through", []string{}, "cfg-pkg", "cfg-pkg", false},
		{"nothing set", nil, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePackage(&settings{pkg: tt.pkg}, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolvePackage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolvePackage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePackage_ErrorIsUserError(t *testing.T) {
	_, err := resolvePackage(&settings{}, nil)

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T", err)
	}
	if exitErr.Code != errors.ExitUser {
		t.Errorf("Code = %d, want %d", exitErr.Code, errors.ExitUser)
	}
}

func TestExistingPaths(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.jsonc")
	missing := filepath.Join(dir, "missing.json")

	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := existingPaths([]string{missing, a, b})

	want := []string{a, b}
	if len(got) != len(want) {
		t.Fatalf("existingPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("existingPaths()[%d] = %q, want %q (order must follow candidates)", i, got[i], want[i])
		}
	}
}

func TestWriteDoc_PreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opencode.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := writeDoc(path, []byte(`{"plugin": []}`)); err != nil {
		t.Fatalf("writeDoc: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Errorf("mode = %04o, want 0600", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"plugin": []}` {
		t.Errorf("content = %q, want the new document", data)
	}
}

func TestWriteDoc_NewFileDefaultMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.json")

	if err := writeDoc(path, []byte("{}")); err != nil {
		t.Fatalf("writeDoc: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("mode = %04o, want 0644", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"longer than max", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
