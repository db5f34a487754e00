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
	rootCmd.AddCommand(pinCmd)
}

var pinCmd = &cobra.Command{
	Use:   "pin [VERSION]",
	Short: "Pin the plugin entry to a concrete version",
	Long: `Rewrite the plugin entry as name@version.

Without a VERSION argument, the version is resolved from the registry: the
release channel's current dist-tag. The channel comes from --channel, the
config file, or the entry's own version token, in that order.

Only the entry itself is rewritten; every other byte of the config file is
preserved.`,
	Example: `  # Pin to the channel's current version
  plugup pin

  # Pin to an explicit version
  plugup pin 2.1.5

  # Pin to the beta channel's current version
  plugup pin --channel beta

  See Also:
    plugup unpin  - Return the entry to floating
    plugup update - Re-sync a pinned entry with its channel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPin,
}

func runPin(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, nil)
	if err != nil {
		return err
	}

	var version string
	if len(args) > 0 {
		version = args[0]
	}
	return pinEntry(cmd.Context(), os.Stdout, s, pkg, version, opencode.SearchPaths(s.projectRoot))
}

func pinEntry(ctx context.Context, w io.Writer, s *settings, pkg, version string, candidates []string) error {
	entry, ok := opencode.FindPluginEntry(candidates, pkg)
	if !ok {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotInstalled, "%s", pkg),
			"Run: plugup install "+pkg)
	}

	if version == "" {
		ch := s.channel
		if ch == "" {
			ch = entry.Channel()
		}

		var err error
		version, err = resolveChannelVersion(ctx, s, pkg, ch)
		if err != nil {
			return errors.NewSystemError(err,
				"check the registry URL, or pass the VERSION explicitly")
		}
	}

	newRaw := pkg + "@" + version
	if entry.Raw == newRaw {
		fmt.Fprintf(w, "%s is already pinned to %s\n", pkg, version)
		return nil
	}

	doc, err := fileutil.ReadFileWithLimit(entry.Path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", entry.Path)
	}

	if err := backupBeforeWrite(ctx, s, entry.Path); err != nil {
		return err
	}

	patched, _, err := patch.ReplaceEntry(doc, pluginArrayKey, entry.Raw, newRaw)
	if err != nil {
		return errors.Wrapf(err, "patching %s", entry.Path)
	}

	if err := writeDoc(entry.Path, patched); err != nil {
		return err
	}

	if entry.Version != "" {
		fmt.Fprintf(w, "%s✓ Pinned %s: %s → %s in %s%s\n",
			colorGreen, pkg, entry.Version, version, entry.Path, colorReset)
	} else {
		fmt.Fprintf(w, "%s✓ Pinned %s to %s in %s%s\n",
			colorGreen, pkg, version, entry.Path, colorReset)
	}
	return nil
}
