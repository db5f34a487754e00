package opencode

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/plugup/internal/paths"
)

// SearchPaths returns the host config candidates in precedence order: the
// project-local opencode.json and opencode.jsonc, the user-global pair
// under $XDG_CONFIG_HOME/opencode, and on Windows the %APPDATA% pair as a
// final fallback. An empty projectRoot skips the project-local pair.
//
// Resolvers take a candidate list rather than calling this themselves, so
// tests can run them against fake roots.
func SearchPaths(projectRoot string) []string {
	var candidates []string

	if dir := paths.HostProjectConfigDir(projectRoot); dir != "" {
		candidates = append(candidates,
			filepath.Join(dir, paths.ConfigFileName),
			filepath.Join(dir, paths.ConfigFileNameAlt),
		)
	}

	global := paths.HostConfigDir()
	candidates = append(candidates,
		filepath.Join(global, paths.ConfigFileName),
		filepath.Join(global, paths.ConfigFileNameAlt),
	)

	if dir := paths.HostAppDataConfigDir(); dir != "" {
		candidates = append(candidates,
			filepath.Join(dir, paths.ConfigFileName),
			filepath.Join(dir, paths.ConfigFileNameAlt),
		)
	}

	return candidates
}

// DefaultGlobalPath returns the user-global config file plugup creates when
// no candidate exists anywhere.
func DefaultGlobalPath() string {
	return filepath.Join(paths.HostConfigDir(), paths.ConfigFileName)
}

// firstMatch probes candidates in order and returns the first hit. A probe
// reports (value, true) to claim a candidate; rejected candidates are
// skipped regardless of why the probe rejected them.
func firstMatch[T any](candidates []string, probe func(path string) (T, bool)) (T, bool) {
	for _, path := range candidates {
		if v, ok := probe(path); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FirstExisting returns the first candidate that exists on disk.
func FirstExisting(candidates []string) (string, bool) {
	return firstMatch(candidates, func(path string) (string, bool) {
		if _, err := os.Stat(path); err != nil {
			return "", false
		}
		return path, true
	})
}
