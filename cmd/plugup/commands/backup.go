package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage config file backups",
	Long: `Manage the timestamped backups plugup takes of host config files.

A backup is created automatically before plugup rewrites a pre-existing
config file, at most once per file per run. Old backups are pruned to the
configured retention count; retention 0 keeps everything.`,
	Example: `  # Back up every existing config candidate now
  plugup backup create

  # See what is available
  plugup backup list

  # Put a file back the way it was
  plugup backup restore

  See Also:
    plugup doctor - Diagnose config file problems`,
}
