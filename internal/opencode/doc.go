// Package opencode resolves and models the host application's configuration.
//
// The host reads its config from an ordered set of candidate files: a
// project-local pair under .opencode/, a user-global pair under
// $XDG_CONFIG_HOME/opencode/, and on Windows an %APPDATA% fallback pair.
// Precedence is strict — the first candidate that satisfies a lookup wins
// and later candidates are never merged in.
//
// # Resolution
//
// Use [SearchPaths] to build the production candidate list, then pass it to
// the resolvers. Every resolver takes the candidate list as an argument so
// tests can point them at fake roots:
//
//	candidates := opencode.SearchPaths(projectRoot)
//	if entry, ok := opencode.FindPluginEntry(candidates, pkg); ok {
//	    fmt.Printf("%s installed via %s\n", entry.Raw, entry.Path)
//	}
//
// Missing and malformed candidates are skipped, not reported: a corrupt
// project-local file must not block resolution against a valid global one.
//
// # Documents
//
// [Config] models the host document itself: the $schema and plugin members
// plugup works with, plus opaque pass-through of everything else (provider,
// agent, server, tool blocks). [Load] accepts JSONC. [WriteNew] is only for
// fresh files plugup creates and fully controls; existing documents are
// patched textually by the patch package so user formatting and comments
// survive.
//
// # Snapshots
//
// [Detect] derives an [InstallState] snapshot on every call. Nothing is
// cached: concurrent edits to a config file are resolved by re-reading it,
// never by invalidating state.
package opencode
