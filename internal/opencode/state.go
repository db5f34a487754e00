package opencode

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/plugup/internal/probe"
)

// InstallState is a point-in-time snapshot of everything plugup knows about
// one package's installation. Snapshots are derived fresh on every call;
// nothing is cached between invocations.
type InstallState struct {
	// Installed reports whether any candidate file carries a plugin entry
	// for the package.
	Installed bool `json:"installed"`

	// Entry is the winning plugin entry. Nil when not installed.
	Entry *PluginEntry `json:"entry,omitempty"`

	// LocalDev is the filesystem path of a local development override.
	// Empty when the package points at the registry.
	LocalDev string `json:"local_dev,omitempty"`

	// LocalVersion is the version declared by the override's manifest.
	// Empty when there is no override or no manifest was found.
	LocalVersion string `json:"local_version,omitempty"`

	// HostDetected reports whether any candidate's directory exists: the
	// host has left config structure behind even if no file matched.
	HostDetected bool `json:"host_detected"`

	// HostBinary reports whether the host executable is on PATH.
	HostBinary bool `json:"host_binary"`

	// Tmux reports whether tmux is on PATH.
	Tmux bool `json:"tmux"`

	// ConfigPath is the first existing candidate file. Empty when none
	// exists yet.
	ConfigPath string `json:"config_path,omitempty"`
}

// Detect derives a fresh install snapshot for pkg from the candidate files.
func Detect(candidates []string, pkg string) *InstallState {
	state := &InstallState{
		HostBinary: probe.Host().Found(),
		Tmux:       probe.Tmux().Found(),
	}

	if path, ok := FirstExisting(candidates); ok {
		state.ConfigPath = path
	}

	for _, path := range candidates {
		if dirExists(filepath.Dir(path)) {
			state.HostDetected = true
			break
		}
	}

	if entry, ok := FindPluginEntry(candidates, pkg); ok {
		state.Installed = true
		state.Entry = entry
	}

	if dev, ok := ResolveLocalDevOverride(candidates, pkg); ok {
		state.LocalDev = dev
		if v, ok := ManifestVersion(dev, pkg); ok {
			state.LocalVersion = v
		}
	}

	return state
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}
