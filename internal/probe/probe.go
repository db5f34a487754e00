// Package probe detects the host toolchain on the local machine.
package probe

import "os/exec"

// Binary names plugup reports on.
const (
	// HostBinary is the host application's executable.
	HostBinary = "opencode"

	// TmuxBinary is the terminal multiplexer the host integrates with.
	TmuxBinary = "tmux"
)

// Status indicates whether a probed binary was found on PATH.
type Status string

const (
	// StatusFound indicates the binary resolved to an executable path.
	StatusFound Status = "found"

	// StatusNotFound indicates the binary is not on PATH.
	StatusNotFound Status = "not_found"
)

// Result describes one probed binary.
type Result struct {
	// Name is the binary that was probed.
	Name string `json:"name"`

	// Path is the resolved executable location. Empty when not found.
	Path string `json:"path,omitempty"`

	// Status indicates the probe outcome.
	Status Status `json:"status"`
}

// Found reports whether the binary resolved to a path.
func (r *Result) Found() bool {
	return r.Status == StatusFound
}

// Find probes PATH for a single binary by name.
func Find(name string) *Result {
	path, err := exec.LookPath(name)
	if err != nil {
		return &Result{Name: name, Status: StatusNotFound}
	}
	return &Result{Name: name, Path: path, Status: StatusFound}
}

// Host probes for the host application's binary.
func Host() *Result {
	return Find(HostBinary)
}

// Tmux probes for tmux. The host embeds its terminal UI in a tmux pane when
// one is available; absence is informational, never an error.
func Tmux() *Result {
	return Find(TmuxBinary)
}

// All probes every binary plugup reports on, in deterministic order.
func All() []*Result {
	return []*Result{Host(), Tmux()}
}
