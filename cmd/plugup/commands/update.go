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
	"github.com/thoreinstein/plugup/internal/update"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [PACKAGE]",
	Short: "Re-pin the plugin entry to its channel's current version",
	Long: `Check the registry and rewrite a pinned entry when the channel moved.

Only pinned name@version entries are ever rewritten. Floating entries are
resolved by the host itself on plugin load, so update explains that there
is nothing to write; pin first if you want plugup to hold the version. A
failed check leaves the file untouched and exits cleanly.`,
	Example: `  # Update the configured package
  plugup update

  # Update an explicit package against the beta channel
  plugup update opencode-helper --channel beta

  See Also:
    plugup check - Preview without writing
    plugup pin   - Pin a floating entry first`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}
	return updatePlugin(cmd.Context(), os.Stdout, s, pkg, opencode.SearchPaths(s.projectRoot))
}

func updatePlugin(ctx context.Context, w io.Writer, s *settings, pkg string, candidates []string) error {
	entry, ok := opencode.FindPluginEntry(candidates, pkg)
	if !ok {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotInstalled, "%s", pkg),
			"Run: plugup install "+pkg)
	}

	result := runUpdateCheck(ctx, s, pkg, candidates)

	switch result.Status {
	case update.StatusCheckFailed:
		fmt.Fprintf(w, "%s✗ check failed: %s%s\n", colorYellow, truncate(result.Reason, 120), colorReset)
		fmt.Fprintln(w, "Nothing updated.")
		return nil
	case update.StatusUpToDate:
		switch {
		case result.LocalDev:
			fmt.Fprintf(w, "%s tracks a local working copy; nothing to update\n", pkg)
		case !result.Pinned:
			fmt.Fprintf(w, "%s floats on %s; the host resolves it on load, so there is nothing to write\n",
				pkg, result.Channel)
			fmt.Fprintf(w, "Run: plugup pin to hold a version plugup can keep in sync\n")
		default:
			fmt.Fprintf(w, "%s✓ %s is already up to date (%s on %s)%s\n",
				colorGreen, pkg, result.Current, result.Channel, colorReset)
		}
		return nil
	}

	// update_available: the checker only reports it for pinned entries.
	doc, err := fileutil.ReadFileWithLimit(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", entry.Path)
	}

	if err := backupBeforeWrite(ctx, s, entry.Path); err != nil {
		return err
	}

	patched, _, err := patch.ReplaceEntry(doc, pluginArrayKey, entry.Raw, pkg+"@"+result.Target)
	if err != nil {
		return errors.Wrapf(err, "patching %s", entry.Path)
	}

	if err := writeDoc(entry.Path, patched); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s✓ Updated %s: %s → %s in %s%s\n",
		colorGreen, pkg, result.Current, result.Target, entry.Path, colorReset)
	return nil
}
