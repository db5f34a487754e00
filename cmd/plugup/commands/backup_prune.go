package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/backup"
	"github.com/thoreinstein/plugup/internal/errors"
)

var backupPruneKeep int

func init() {
	backupPruneCmd.Flags().IntVar(&backupPruneKeep, "keep", -1,
		"backups to keep per file (default: the configured retention)")
	backupCmd.AddCommand(backupPruneCmd)
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long: `Remove backups beyond the retention count.

Backups are grouped by the config file they snapshot; the most recent
--keep backups of each file survive. Without --keep, the configured
backups.retention applies. A retention of 0 means keep everything, so
prune refuses to run with it.`,
	Example: `  # Prune to the configured retention
  plugup backup prune

  # Keep only the 3 most recent backups per file
  plugup backup prune --keep 3

  See Also:
    plugup backup list - List available backups`,
	RunE: runBackupPrune,
}

func runBackupPrune(_ *cobra.Command, _ []string) error {
	s := currentSettings()

	keep := backupPruneKeep
	if keep < 0 {
		keep = s.retention
	}
	return runBackupPruneWithWriter(os.Stdout, newBackupManager(s), keep)
}

// runBackupPruneWithWriter allows injecting a writer and manager for testing.
func runBackupPruneWithWriter(w io.Writer, mgr *backup.Manager, keep int) error {
	if keep <= 0 {
		fmt.Fprintln(w, "Retention 0 keeps everything; nothing pruned.")
		return nil
	}

	manifests, err := mgr.List()
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			fmt.Fprintln(w, "No backups available")
			return nil
		}
		return errors.Wrap(err, "listing backups")
	}

	// List is newest first, so within each file's group everything past the
	// keep mark is removable.
	perFile := make(map[string]int)
	toRemove := 0
	for _, m := range manifests {
		perFile[m.Path]++
		if perFile[m.Path] > keep {
			toRemove++
		}
	}

	if toRemove == 0 {
		fmt.Fprintf(w, "Nothing to prune; every file has at most %d backup(s).\n", keep)
		return nil
	}

	if err := mgr.Prune(keep); err != nil {
		return errors.Wrap(err, "pruning backups")
	}

	fmt.Fprintf(w, "%s✓ Removed %d backup(s), keeping the %d most recent per file%s\n",
		colorGreen, toRemove, keep, colorReset)

	return nil
}
