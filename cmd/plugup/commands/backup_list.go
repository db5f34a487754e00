package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/backup"
	"github.com/thoreinstein/plugup/internal/errors"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")
	backupCmd.AddCommand(backupListCmd)
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List all available config file backups, most recent first.

Each backup snapshots exactly one config file; the FILE column shows the
original location the snapshot came from.`,
	Example: `  # List all backups
  plugup backup list

  # Output as JSON
  plugup backup list --json

  See Also:
    plugup backup restore - Restore from a backup
    plugup backup create  - Create a new backup`,
	RunE: runBackupList,
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Path          string    `json:"path"`
	PlugupVersion string    `json:"plugup_version"`
}

func runBackupList(_ *cobra.Command, _ []string) error {
	s := currentSettings()
	return runBackupListWithWriter(os.Stdout, newBackupManager(s))
}

// runBackupListWithWriter allows injecting a writer and manager for testing.
func runBackupListWithWriter(w io.Writer, mgr *backup.Manager) error {
	manifests, err := mgr.List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	if backupListJSON {
		return outputBackupListJSON(w, manifests)
	}
	return outputBackupListTabular(w, manifests)
}

func outputBackupListJSON(w io.Writer, manifests []backup.Manifest) error {
	output := make([]backupInfoOutput, len(manifests))
	for i, m := range manifests {
		output[i] = backupInfoOutput{
			ID:            m.ID,
			CreatedAt:     m.CreatedAt,
			Path:          m.Path,
			PlugupVersion: m.PlugupVersion,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputBackupListTabular(w io.Writer, manifests []backup.Manifest) error {
	if len(manifests) == 0 {
		fmt.Fprintln(w, "No backups available")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before plugup modifies a config file.")
		fmt.Fprintln(w, "You can also create one manually with: plugup backup create")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sID%s\t%sCREATED%s\t%sFILE%s\t%sVERSION%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for _, m := range manifests {
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s\n",
			colorGreen, m.ID, colorReset,
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Path,
			m.PlugupVersion)
	}

	return tw.Flush()
}
