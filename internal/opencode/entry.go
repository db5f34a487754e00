package opencode

import (
	"strings"

	"github.com/thoreinstein/plugup/internal/channel"
)

// PluginEntry is one plugin array element resolved against a package name,
// annotated with the file it came from. Entries are views: every scan
// re-reads the owning document and nothing is cached between calls.
type PluginEntry struct {
	// Raw is the element exactly as it appears in the array.
	Raw string `json:"raw"`

	// Path is the config file the element was found in.
	Path string `json:"path"`

	// Name is the package name portion of Raw.
	Name string `json:"name"`

	// Version is the pin after the last '@'. Empty for bare entries.
	Version string `json:"version,omitempty"`
}

// Pinned reports whether the entry pins a concrete version. Bare entries
// and name@latest both float: the host resolves them against the registry
// at plugin load time, so there is nothing for plugup to keep in sync.
func (e *PluginEntry) Pinned() bool {
	return e.Version != "" && e.Version != channel.Latest
}

// Channel returns the release channel the entry tracks.
func (e *PluginEntry) Channel() string {
	return channel.FromToken(e.Version)
}

// splitEntry splits a plugin element into name and version on the last '@'.
// Splitting on the last one keeps scoped names whole: "@scope/name@1.2.3"
// yields ("@scope/name", "1.2.3"), while a bare "@scope/name" has no
// version to split off.
func splitEntry(raw string) (name, version string) {
	idx := strings.LastIndex(raw, "@")
	if idx <= 0 {
		return raw, ""
	}
	return raw[:idx], raw[idx+1:]
}

// FindPluginEntry scans candidates in order and returns the first plugin
// entry naming pkg. Precedence is strict: the first file that exists,
// parses, and contains a match wins, and later files are never consulted
// or merged. Missing and malformed candidates are skipped.
func FindPluginEntry(candidates []string, pkg string) (*PluginEntry, bool) {
	return firstMatch(candidates, func(path string) (*PluginEntry, bool) {
		cfg, err := Load(path)
		if err != nil {
			return nil, false
		}
		for _, raw := range cfg.Plugin {
			name, version := splitEntry(raw)
			if name == pkg {
				return &PluginEntry{Raw: raw, Path: path, Name: name, Version: version}, true
			}
		}
		return nil, false
	})
}
