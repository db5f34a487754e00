package doctor

import (
	"fmt"

	"github.com/thoreinstein/plugup/internal/opencode"
)

// PluginEntryCheck reports whether the managed package appears in a host
// config's plugin array, and how (pinned, unpinned, which file).
type PluginEntryCheck struct {
	candidates []string
	pkg        string
}

var _ Check = (*PluginEntryCheck)(nil)

// NewPluginEntryCheck creates a plugin entry check for pkg over the given
// config file candidates.
func NewPluginEntryCheck(candidates []string, pkg string) *PluginEntryCheck {
	return &PluginEntryCheck{candidates: candidates, pkg: pkg}
}

// Name returns the unique identifier for this check.
func (c *PluginEntryCheck) Name() string {
	return "plugin-entry"
}

// Category returns the grouping for this check.
func (c *PluginEntryCheck) Category() string {
	return "plugin"
}

// Run executes the plugin entry check and returns its result.
func (c *PluginEntryCheck) Run() *CheckResult {
	if c.pkg == "" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no package configured; skipping plugin entry check",
			FixHint:  "set package in the plugup config or pass --package",
		}
	}

	entry, ok := opencode.FindPluginEntry(c.candidates, c.pkg)
	if !ok {
		details := map[string]any{"searched": c.candidates}

		if path, exists := opencode.FirstExisting(c.candidates); exists {
			details["config"] = path
			return &CheckResult{
				Name:     c.Name(),
				Category: c.Category(),
				Status:   SeverityWarning,
				Message:  fmt.Sprintf("%s is not in any plugin array", c.pkg),
				Details:  details,
				FixHint:  "run: plugup install " + c.pkg,
			}
		}

		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no host config file found",
			Details:  details,
			FixHint:  "run: plugup install " + c.pkg + " (creates the global config)",
		}
	}

	details := map[string]any{
		"entry":   entry.Raw,
		"config":  entry.Path,
		"pinned":  entry.Pinned(),
		"channel": entry.Channel(),
	}
	if entry.Version != "" {
		details["version"] = entry.Version
	}

	msg := fmt.Sprintf("%s installed (unpinned) in %s", entry.Name, entry.Path)
	if entry.Pinned() {
		msg = fmt.Sprintf("%s pinned to %s in %s", entry.Name, entry.Version, entry.Path)
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  msg,
		Details:  details,
	}
}

// LocalOverrideCheck reports whether a host config points the managed package
// at a local working copy instead of the registry.
type LocalOverrideCheck struct {
	candidates []string
	pkg        string
}

var _ Check = (*LocalOverrideCheck)(nil)

// NewLocalOverrideCheck creates a local override check for pkg over the given
// config file candidates.
func NewLocalOverrideCheck(candidates []string, pkg string) *LocalOverrideCheck {
	return &LocalOverrideCheck{candidates: candidates, pkg: pkg}
}

// Name returns the unique identifier for this check.
func (c *LocalOverrideCheck) Name() string {
	return "local-override"
}

// Category returns the grouping for this check.
func (c *LocalOverrideCheck) Category() string {
	return "plugin"
}

// Run executes the local override check and returns its result.
func (c *LocalOverrideCheck) Run() *CheckResult {
	if c.pkg == "" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no package configured; skipping local override check",
			FixHint:  "set package in the plugup config or pass --package",
		}
	}

	dir, ok := opencode.ResolveLocalDevOverride(c.candidates, c.pkg)
	if !ok {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  "no local development override",
		}
	}

	details := map[string]any{"path": dir}

	version, ok := opencode.ManifestVersion(dir, c.pkg)
	if !ok {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("local override points at %s, but no package.json there declares %s", dir, c.pkg),
			Details:  details,
			FixHint:  "check the file:// path in the plugin array, or add a package.json to the working copy",
		}
	}

	details["version"] = version
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityInfo,
		Message:  fmt.Sprintf("%s resolves to local working copy %s (version %s)", c.pkg, dir, version),
		Details:  details,
	}
}
