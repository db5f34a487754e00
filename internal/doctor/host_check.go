package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thoreinstein/plugup/internal/probe"
)

// HostCheck verifies the host application is present on this machine: the
// opencode binary on PATH, tmux as its optional companion, and at least one
// config directory a plugin entry could live in.
type HostCheck struct {
	candidates []string
}

// Ensure HostCheck implements Check interface.
var _ Check = (*HostCheck)(nil)

// NewHostCheck creates a host detection check over the given config file
// candidates.
func NewHostCheck(candidates []string) *HostCheck {
	return &HostCheck{candidates: candidates}
}

// Name returns the unique identifier for this check.
func (c *HostCheck) Name() string {
	return "host-detection"
}

// Category returns the grouping for this check.
func (c *HostCheck) Category() string {
	return "host"
}

// Run executes the host detection check and returns its result.
func (c *HostCheck) Run() *CheckResult {
	host := probe.Host()
	tmux := probe.Tmux()

	// Candidate files share directories (json and jsonc siblings), so
	// report each directory once.
	dirs := make(map[string]any)
	seen := make(map[string]bool)
	var configured int
	for _, path := range c.candidates {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		exists := dirExists(dir)
		dirs[dir] = exists
		if exists {
			configured++
		}
	}

	details := map[string]any{
		"binary":      probeDetails(host),
		"tmux":        probeDetails(tmux),
		"config_dirs": dirs,
	}

	switch {
	case !host.Found() && configured == 0:
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "opencode not detected; plugup has nothing to manage",
			Details:  details,
			FixHint:  "install opencode and run it once to create its config directory",
		}
	case !host.Found():
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("%s binary not on PATH, but %d config location(s) exist", probe.HostBinary, configured),
			Details:  details,
			FixHint:  "check that opencode is installed and PATH includes its location",
		}
	default:
		msg := fmt.Sprintf("%s found at %s", probe.HostBinary, host.Path)
		if tmux.Found() {
			msg += "; tmux available"
		}
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  msg,
			Details:  details,
		}
	}
}

// probeDetails flattens a probe result for the details map.
func probeDetails(r *probe.Result) map[string]any {
	info := map[string]any{
		"status": string(r.Status),
	}
	if r.Path != "" {
		info["path"] = r.Path
	}
	return info
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
