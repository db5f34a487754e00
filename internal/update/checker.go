// Package update implements the one-shot update check against the registry.
//
// A check is a tiny state machine: unchecked → checking → one of up_to_date,
// update_available, or check_failed. check_failed is terminal for the run —
// there are no retries within an invocation, and a failed check is a report,
// never an exit-worthy error.
package update

import (
	"context"
	"fmt"

	"github.com/thoreinstein/plugup/internal/channel"
	"github.com/thoreinstein/plugup/internal/opencode"
	"github.com/thoreinstein/plugup/internal/registry"
)

// Status is the state of an update check.
type Status string

const (
	// StatusUnchecked indicates no check has run yet.
	StatusUnchecked Status = "unchecked"

	// StatusChecking indicates a check is in flight.
	StatusChecking Status = "checking"

	// StatusUpToDate indicates the entry already matches its channel, or
	// floats and therefore has nothing to sync.
	StatusUpToDate Status = "up_to_date"

	// StatusUpdateAvailable indicates the channel points at a different
	// version than the pinned entry.
	StatusUpdateAvailable Status = "update_available"

	// StatusCheckFailed indicates the check could not complete. Terminal
	// for this run; the reason travels with the result.
	StatusCheckFailed Status = "check_failed"
)

// Result is the outcome of one check run.
type Result struct {
	// Status is the terminal state of the run.
	Status Status `json:"status"`

	// Package is the package the check was for.
	Package string `json:"package"`

	// Channel is the release channel that was consulted.
	Channel string `json:"channel"`

	// Pinned reports whether the checked entry pins a version. Only pinned
	// entries are ever patched; floating entries are reported untouched.
	Pinned bool `json:"pinned"`

	// Current is the version recorded in the entry, or the local manifest
	// version for a local-dev override. Empty for floating entries.
	Current string `json:"current,omitempty"`

	// Target is the version the channel points at.
	Target string `json:"target,omitempty"`

	// LocalDev reports that versions came from a local working copy and no
	// network call was made.
	LocalDev bool `json:"local_dev,omitempty"`

	// Reason explains a check_failed status.
	Reason string `json:"reason,omitempty"`
}

// Checker performs one update check. Create a fresh Checker per run; it is
// not safe for concurrent use.
type Checker struct {
	pkg      string
	client   *registry.Client
	entry    *opencode.PluginEntry
	channel  string
	localDev string
	status   Status
}

// NewChecker creates a checker for pkg against the given registry client.
func NewChecker(pkg string, client *registry.Client) *Checker {
	return &Checker{
		pkg:    pkg,
		client: client,
		status: StatusUnchecked,
	}
}

// WithEntry attaches the resolved plugin entry, when one exists.
func (c *Checker) WithEntry(entry *opencode.PluginEntry) *Checker {
	c.entry = entry
	return c
}

// WithChannel overrides the channel to consult. An empty override derives
// the channel from the entry's version token.
func (c *Checker) WithChannel(ch string) *Checker {
	c.channel = ch
	return c
}

// WithLocalDev points the checker at a local working copy. The check then
// reads the version from the copy's manifest and never touches the network.
func (c *Checker) WithLocalDev(path string) *Checker {
	c.localDev = path
	return c
}

// Status returns the checker's current state.
func (c *Checker) Status() Status {
	return c.status
}

// Run executes one check bounded by ctx and the client's own timeout. The
// returned result always carries a terminal status.
func (c *Checker) Run(ctx context.Context) *Result {
	c.status = StatusChecking

	ch := c.channel
	if ch == "" {
		if c.entry != nil {
			ch = c.entry.Channel()
		} else {
			ch = channel.Latest
		}
	}

	result := &Result{
		Package: c.pkg,
		Channel: ch,
	}
	if c.entry != nil {
		result.Pinned = c.entry.Pinned()
		result.Current = c.entry.Version
	}

	if c.localDev != "" {
		return c.finish(c.runLocal(result))
	}

	if c.entry == nil {
		result.Status = StatusCheckFailed
		result.Reason = fmt.Sprintf("%s is not installed", c.pkg)
		return c.finish(result)
	}

	return c.finish(c.runRemote(ctx, result))
}

// runLocal resolves the check against a local working copy's manifest.
func (c *Checker) runLocal(result *Result) *Result {
	result.LocalDev = true

	version, ok := opencode.ManifestVersion(c.localDev, c.pkg)
	if !ok {
		result.Status = StatusCheckFailed
		result.Reason = fmt.Sprintf("no package.json for %s near %s", c.pkg, c.localDev)
		return result
	}

	// A working copy is its own source of truth; there is nothing to sync.
	result.Current = version
	result.Target = version
	result.Status = StatusUpToDate
	return result
}

// runRemote resolves the check against the registry's dist-tags.
func (c *Checker) runRemote(ctx context.Context, result *Result) *Result {
	tags, err := c.client.DistTags(ctx, c.pkg)
	if err != nil {
		result.Status = StatusCheckFailed
		result.Reason = err.Error()
		return result
	}

	target, ok := tags.ForChannel(result.Channel)
	if !ok {
		result.Status = StatusCheckFailed
		result.Reason = fmt.Sprintf("registry has no version for channel %s", result.Channel)
		return result
	}
	result.Target = target

	if result.Pinned && c.entry.Version != target {
		result.Status = StatusUpdateAvailable
		return result
	}

	result.Status = StatusUpToDate
	return result
}

// finish records the terminal state on the checker and returns the result.
func (c *Checker) finish(result *Result) *Result {
	c.status = result.Status
	return result
}
