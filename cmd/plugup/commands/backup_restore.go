package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/backup"
	"github.com/thoreinstein/plugup/internal/errors"
)

var backupRestoreForce bool

func init() {
	backupRestoreCmd.Flags().BoolVar(&backupRestoreForce, "force", false,
		"overwrite the target even if it changed since the backup")
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore from a backup",
	Long: `Restore a config file from a backup.

If no backup ID is provided, the most recent backup is used. The snapshot
is verified against its recorded hash before anything is written, and the
restore refuses to overwrite a target that was hand-edited since the
backup unless --force is given.`,
	Example: `  # Restore from the most recent backup
  plugup backup restore

  # Restore from a specific backup
  plugup backup restore 20260825T100712

  # List available backups first
  plugup backup list

  See Also:
    plugup backup list   - List available backups
    plugup backup create - Create a new backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupRestore,
}

func runBackupRestore(_ *cobra.Command, args []string) error {
	s := currentSettings()
	return runBackupRestoreWithWriter(os.Stdout, newBackupManager(s), args)
}

// runBackupRestoreWithWriter allows injecting a writer and manager for testing.
func runBackupRestoreWithWriter(w io.Writer, mgr *backup.Manager, args []string) error {
	var backupID string
	if len(args) > 0 {
		backupID = args[0]
	} else {
		manifests, err := mgr.List()
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.New("no backups found")
			}
			return errors.Wrap(err, "listing backups")
		}
		backupID = manifests[0].ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", backupID)
	}

	manifest, err := mgr.Get(backupID)
	if err != nil {
		return errors.Wrapf(err, "getting backup %s", backupID)
	}

	if err := mgr.Restore(backupID, backupRestoreForce); err != nil {
		if errors.Is(err, backup.ErrRestoreConflict) {
			return errors.NewUserError(err, "re-run with --force to overwrite the changed file")
		}
		return errors.Wrap(err, "restoring backup")
	}

	fmt.Fprintf(w, "%s✓ Restored %s from backup %s%s\n",
		colorGreen, manifest.Path, backupID, colorReset)

	return nil
}
