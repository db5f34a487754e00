package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/opencode"
	"github.com/thoreinstein/plugup/internal/patch"
	"github.com/thoreinstein/plugup/internal/registry"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

// errNoPickCandidates means --pick was passed but no config file exists yet.
var errNoPickCandidates = errors.New("no existing config files to pick from")

var (
	installPick bool
	installPin  bool
)

func init() {
	installCmd.Flags().BoolVar(&installPick, "pick", false,
		"choose the target config file interactively")
	installCmd.Flags().BoolVar(&installPin, "pin", false,
		"install pinned to the channel's current version")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install [PACKAGE]",
	Short: "Add the plugin entry to an opencode config",
	Long: `Add the plugin entry to an opencode config file.

The first existing config wins: the project's .opencode/opencode.json or
.jsonc, then the user-global pair under $XDG_CONFIG_HOME/opencode. When no
config exists anywhere, the user-global opencode.json is created. Existing
files are edited textually, so comments and formatting survive.

With --pin the entry is written as name@version, resolved from the release
channel's current dist-tag. If the registry cannot be reached the install
degrades to an unpinned entry with a warning.`,
	Example: `  # Install into the first existing config
  plugup install @scope/opencode-notify

  # Choose the target file interactively
  plugup install @scope/opencode-notify --pick

  # Install pinned to the beta channel's current version
  plugup install @scope/opencode-notify --pin --channel beta

  See Also:
    plugup pin    - Pin an installed entry to a version
    plugup status - Show where the entry lives`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}
	return installEntry(cmd.Context(), os.Stdout, s, pkg, opencode.SearchPaths(s.projectRoot))
}

func installEntry(ctx context.Context, w io.Writer, s *settings, pkg string, candidates []string) error {
	if entry, ok := opencode.FindPluginEntry(candidates, pkg); ok {
		if entry.Pinned() {
			fmt.Fprintf(w, "%s is already installed (pinned to %s) in %s\n", pkg, entry.Version, entry.Path)
		} else {
			fmt.Fprintf(w, "%s is already installed in %s\n", pkg, entry.Path)
		}
		return nil
	}

	entryText := pkg
	if installPin {
		version, err := resolveChannelVersion(ctx, s, pkg, s.channel)
		if err != nil {
			fmt.Fprintf(w, "%s⚠ could not resolve a version from the registry (%v); installing unpinned%s\n",
				colorYellow, err, colorReset)
		} else {
			entryText = pkg + "@" + version
		}
	}

	target, exists, err := installTarget(candidates)
	if err != nil {
		return err
	}
	if target == "" {
		// Interactive selection aborted.
		fmt.Fprintln(w, "Aborted; nothing installed.")
		return nil
	}

	if !exists {
		cfg := &opencode.Config{Schema: opencode.SchemaURL, Plugin: []string{entryText}}
		if err := opencode.WriteNew(target, cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s✓ Installed %s in %s (created)%s\n", colorGreen, entryText, target, colorReset)
		fmt.Fprintf(w, "%sDocs: %s%s\n", colorGray, registry.DocsURL, colorReset)
		return nil
	}

	doc, err := fileutil.ReadFileWithLimit(target)
	if err != nil {
		return errors.Wrapf(err, "reading %s", target)
	}

	if err := backupBeforeWrite(ctx, s, target); err != nil {
		return err
	}

	patched, changed, err := patch.InsertEntry(doc, pluginArrayKey, entryText)
	if errors.Is(err, patch.ErrArrayNotFound) {
		// No plugin array yet; add one at the top of the root object.
		patched, err = patch.InsertArray(doc, pluginArrayKey, []string{entryText})
		changed = err == nil
	}
	if err != nil {
		return errors.Wrapf(err, "patching %s", target)
	}
	if !changed {
		fmt.Fprintf(w, "%s is already listed in %s\n", entryText, target)
		return nil
	}

	if err := writeDoc(target, patched); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ Installed %s in %s%s\n", colorGreen, entryText, target, colorReset)
	return nil
}

// installTarget picks the file to edit. With --pick the user chooses among
// existing candidates; otherwise the first existing candidate wins, falling
// back to creating the user-global config. exists reports whether the
// returned path is already on disk; an empty path means the user aborted.
func installTarget(candidates []string) (string, bool, error) {
	if installPick {
		path, err := pickCandidate(candidates)
		if err != nil {
			return "", false, err
		}
		return path, path != "", nil
	}

	if path, ok := opencode.FirstExisting(candidates); ok {
		return path, true, nil
	}
	return opencode.DefaultGlobalPath(), false, nil
}

// pickCandidate fuzzy-selects one existing config file. Returns "" with a
// nil error when the user aborts the finder.
func pickCandidate(candidates []string) (string, error) {
	existing := existingPaths(candidates)
	if len(existing) == 0 {
		return "", errors.NewUserError(errNoPickCandidates,
			"run plugup install without --pick to create the global config")
	}
	if len(existing) == 1 {
		return existing[0], nil
	}

	idx, err := fuzzyfinder.Find(
		existing,
		func(i int) string {
			return existing[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewConfig(existing[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "selecting config file")
	}

	return existing[idx], nil
}

// previewConfig renders a candidate file for the fuzzy-finder preview pane.
func previewConfig(path string) string {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return fmt.Sprintf("%s\n\n(unreadable: %v)", path, err)
	}

	const previewLimit = 2048
	if len(data) > previewLimit {
		data = data[:previewLimit]
	}
	return fmt.Sprintf("%s\n\n%s", path, data)
}
