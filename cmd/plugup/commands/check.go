package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/opencode"
	"github.com/thoreinstein/plugup/internal/update"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [PACKAGE]",
	Short: "Check the registry for a newer version",
	Long: `Compare the installed plugin entry against its release channel.

The check is read-only; run plugup update to apply what it finds. Floating
entries and local development overrides have nothing to sync and are
reported as such. A failed check (network down, channel without a
dist-tag) is a report, not an error: check always exits 0 once it runs.`,
	Example: `  # Check the configured package
  plugup check

  # Check an explicit package against the beta channel
  plugup check opencode-helper --channel beta

  See Also:
    plugup update - Apply an available update
    plugup status - Show the install state without touching the network`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}

	result := runUpdateCheck(cmd.Context(), s, pkg, opencode.SearchPaths(s.projectRoot))
	printCheckResult(os.Stdout, result)
	return nil
}

// runUpdateCheck assembles a checker from the current install snapshot and
// runs it once. Shared with the update command.
func runUpdateCheck(ctx context.Context, s *settings, pkg string, candidates []string) *update.Result {
	checker := update.NewChecker(pkg, newRegistryClient(s)).WithChannel(s.channel)

	if entry, ok := opencode.FindPluginEntry(candidates, pkg); ok {
		checker = checker.WithEntry(entry)
	}
	if dev, ok := opencode.ResolveLocalDevOverride(candidates, pkg); ok {
		checker = checker.WithLocalDev(dev)
	}

	return checker.Run(ctx)
}

// printCheckResult renders one check outcome.
func printCheckResult(w io.Writer, r *update.Result) {
	switch r.Status {
	case update.StatusUpdateAvailable:
		fmt.Fprintf(w, "%s⚠ %s: %s → %s available on %s%s\n",
			colorYellow, r.Package, r.Current, r.Target, r.Channel, colorReset)
		fmt.Fprintf(w, "  Run: plugup update %s\n", r.Package)
	case update.StatusCheckFailed:
		fmt.Fprintf(w, "%s✗ check failed: %s%s\n", colorYellow, truncate(r.Reason, 120), colorReset)
	case update.StatusUpToDate:
		switch {
		case r.LocalDev:
			fmt.Fprintf(w, "%s✓ %s tracks a local working copy (version %s); nothing to sync%s\n",
				colorGreen, r.Package, r.Current, colorReset)
		case r.Pinned:
			fmt.Fprintf(w, "%s✓ %s is up to date (%s on %s)%s\n",
				colorGreen, r.Package, r.Current, r.Channel, colorReset)
		default:
			fmt.Fprintf(w, "%s✓ %s floats on %s (channel at %s); the host resolves it on load%s\n",
				colorGreen, r.Package, r.Channel, r.Target, colorReset)
		}
	}
}
