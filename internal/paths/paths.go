// Package paths resolves host config locations and plugup's own directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// HostName is the host application whose config files carry the plugin entry.
const HostName = "opencode"

// ConfigFileName is the host's primary config file name. ConfigFileNameAlt is
// the JSONC sibling the host also accepts.
const (
	ConfigFileName    = "opencode.json"
	ConfigFileNameAlt = "opencode.jsonc"
)

// ProjectConfigDirName is the per-project directory the host reads config from.
const ProjectConfigDirName = ".opencode"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// Note: It returns an empty string on error for backward compatibility.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// CacheHome returns the XDG cache home directory.
func CacheHome() string {
	return xdg.CacheHome
}

// HostConfigDir returns the host's user-global config directory:
// $XDG_CONFIG_HOME/opencode (~/.config/opencode on Linux).
func HostConfigDir() string {
	return filepath.Join(ConfigHome(), HostName)
}

// HostProjectConfigDir returns the host's project-level config directory:
// <projectRoot>/.opencode. Returns an empty string for an empty projectRoot.
func HostProjectConfigDir(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, ProjectConfigDirName)
}

// HostAppDataConfigDir returns the platform-conventional app-data fallback
// directory for the host's config. Only Windows has one (%APPDATA%\opencode);
// every other platform returns an empty string.
func HostAppDataConfigDir() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return ""
	}
	return filepath.Join(appData, HostName)
}

// ToolConfigDir returns plugup's own config directory:
// $XDG_CONFIG_HOME/plugup.
func ToolConfigDir() string {
	return filepath.Join(ConfigHome(), "plugup")
}

// BackupsDir returns the root directory for config file backups:
// $XDG_CONFIG_HOME/plugup/backups.
func BackupsDir() string {
	return filepath.Join(ToolConfigDir(), "backups")
}
