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
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [PACKAGE]",
	Short: "Remove the plugin entry from the opencode config",
	Long: `Remove the plugin entry from the config file that carries it.

The element is removed textually along with one adjacent comma; every other
byte of the file, comments included, is preserved. A package that is not
installed anywhere is a clean no-op.`,
	Example: `  # Remove the entry
  plugup uninstall @scope/opencode-notify

  See Also:
    plugup install - Add the entry back
    plugup status  - Show where the entry lives`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}
	return uninstallEntry(cmd.Context(), os.Stdout, s, pkg, opencode.SearchPaths(s.projectRoot))
}

func uninstallEntry(ctx context.Context, w io.Writer, s *settings, pkg string, candidates []string) error {
	entry, ok := opencode.FindPluginEntry(candidates, pkg)
	if !ok {
		fmt.Fprintf(w, "%s is not installed; nothing to do\n", pkg)
		return nil
	}

	doc, err := fileutil.ReadFileWithLimit(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", entry.Path)
	}

	if err := backupBeforeWrite(ctx, s, entry.Path); err != nil {
		return err
	}

	patched, _, err := patch.RemoveEntry(doc, pluginArrayKey, entry.Raw)
	if err != nil {
		return errors.Wrapf(err, "patching %s", entry.Path)
	}

	if err := writeDoc(entry.Path, patched); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ Removed %s from %s%s\n", colorGreen, entry.Raw, entry.Path, colorReset)
	return nil
}
