// Package paths resolves the filesystem locations plugup cares about: the
// opencode host's configuration directories and plugup's own state
// directories.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share, ~/.cache).
//
// # Host Configuration Directories
//
// The opencode host reads its configuration from a small set of well-known
// locations:
//
//	paths.HostProjectConfigDir(root) // <root>/.opencode/
//	paths.HostConfigDir()            // ~/.config/opencode/
//	paths.HostAppDataConfigDir()     // %APPDATA%\opencode\ (Windows only)
//
// Functions return empty strings when a location does not apply (for
// example, HostAppDataConfigDir on non-Windows systems, or
// HostProjectConfigDir with an empty project root). Callers are expected to
// skip empty entries when probing candidates in order.
//
// # Tool Directories
//
// plugup keeps its own state under a dedicated XDG config subtree:
//
//	paths.ToolConfigDir() // ~/.config/plugup/
//	paths.BackupsDir()    // ~/.config/plugup/backups/
package paths
