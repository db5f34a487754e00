package opencode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// localRefPrefix marks a plugin element as a filesystem reference rather
// than a registry package.
const localRefPrefix = "file://"

// maxManifestDepth bounds the upward manifest walk from a local override.
const maxManifestDepth = 10

// ResolveLocalDevOverride scans candidates in order for a plugin element
// that points pkg at a local working copy: a file:// reference whose path
// contains the package name. It returns the referenced filesystem path.
// Local overrides short-circuit registry checks; the version of a working
// copy comes from its manifest, not from a dist-tag.
func ResolveLocalDevOverride(candidates []string, pkg string) (string, bool) {
	return firstMatch(candidates, func(path string) (string, bool) {
		cfg, err := Load(path)
		if err != nil {
			return "", false
		}
		for _, raw := range cfg.Plugin {
			if ref, ok := localRef(raw, pkg); ok {
				return ref, true
			}
		}
		return "", false
	})
}

// localRef reports whether a plugin element is a local reference to pkg and
// returns the filesystem path it names.
func localRef(raw, pkg string) (string, bool) {
	if !strings.HasPrefix(raw, localRefPrefix) {
		return "", false
	}
	if !strings.Contains(raw, pkg) {
		return "", false
	}
	return strings.TrimPrefix(raw, localRefPrefix), true
}

// manifest is the slice of package.json plugup reads.
type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ManifestVersion walks upward from start through at most maxManifestDepth
// directories looking for a package.json whose name field equals pkg, and
// returns its version. start may be a file or a directory; the walk also
// stops at the filesystem root.
func ManifestVersion(start, pkg string) (string, bool) {
	dir := start
	for i := 0; i < maxManifestDepth; i++ {
		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		if err == nil {
			var m manifest
			if json.Unmarshal(data, &m) == nil && m.Name == pkg && m.Version != "" {
				return m.Version, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
