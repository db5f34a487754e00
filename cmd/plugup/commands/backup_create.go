package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/backup"
	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/opencode"
)

func init() {
	backupCmd.AddCommand(backupCreateCmd)
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a manual backup",
	Long: `Snapshot every host config candidate that exists right now.

Backups are created automatically before plugup rewrites a config file.
This command takes an additional snapshot on demand, one backup per
existing candidate file.`,
	Example: `  # Back up the global and project config files
  plugup backup create

  See Also:
    plugup backup list    - List available backups
    plugup backup restore - Restore from a backup`,
	RunE: runBackupCreate,
}

func runBackupCreate(_ *cobra.Command, _ []string) error {
	s := currentSettings()
	return runBackupCreateWithWriter(os.Stdout, newBackupManager(s), opencode.SearchPaths(s.projectRoot))
}

// runBackupCreateWithWriter allows injecting a writer and manager for testing.
func runBackupCreateWithWriter(w io.Writer, mgr *backup.Manager, candidates []string) error {
	created := 0

	for _, path := range candidates {
		manifest, err := mgr.Backup(path)
		if err != nil {
			if errors.Is(err, backup.ErrNothingToBackUp) {
				continue
			}
			return errors.Wrapf(err, "backing up %s", path)
		}

		fmt.Fprintf(w, "%s✓ %s → backup %s%s\n", colorGreen, path, manifest.ID, colorReset)
		created++
	}

	if created == 0 {
		fmt.Fprintln(w, "No config files found to back up.")
	}

	return nil
}
