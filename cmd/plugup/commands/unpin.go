package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/opencode"
	"github.com/thoreinstein/plugup/internal/patch"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

func init() {
	rootCmd.AddCommand(unpinCmd)
}

var unpinCmd = &cobra.Command{
	Use:   "unpin [PACKAGE]",
	Short: "Return the plugin entry to floating",
	Long: `Rewrite a pinned name@version entry as the bare package name.

A bare entry floats: the host resolves it against the registry on plugin
load, so there is no version for plugup to keep in sync. Entries written
as name@latest float too and are normalized to the bare form.`,
	Example: `  # Unpin the configured package
  plugup unpin

  # Unpin an explicit package
  plugup unpin opencode-helper

  See Also:
    plugup pin    - Pin the entry to a concrete version
    plugup status - Show whether the entry is pinned`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUnpin,
}

func runUnpin(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}
	return unpinEntry(cmd.Context(), os.Stdout, s, pkg, opencode.SearchPaths(s.projectRoot))
}

func unpinEntry(ctx context.Context, w io.Writer, s *settings, pkg string, candidates []string) error {
	entry, ok := opencode.FindPluginEntry(candidates, pkg)
	if !ok {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotInstalled, "%s", pkg),
			"Run: plugup install "+pkg)
	}

	if entry.Raw == pkg {
		fmt.Fprintf(w, "%s is not pinned; nothing to do\n", pkg)
		return nil
	}

	doc, err := fileutil.ReadFileWithLimit(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", entry.Path)
	}

	if err := backupBeforeWrite(ctx, s, entry.Path); err != nil {
		return err
	}

	patched, _, err := patch.ReplaceEntry(doc, pluginArrayKey, entry.Raw, pkg)
	if err != nil {
		return errors.Wrapf(err, "patching %s", entry.Path)
	}

	if err := writeDoc(entry.Path, patched); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ Unpinned %s in %s%s\n", colorGreen, pkg, entry.Path, colorReset)
	return nil
}
