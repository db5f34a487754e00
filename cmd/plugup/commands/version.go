package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/cmd"
	"github.com/thoreinstein/plugup/internal/probe"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version, commit, and build date of plugup, along with the Go
runtime and whether the host toolchain is on PATH.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("plugup version %s\n", cmd.Version)
		fmt.Printf("  commit:    %s\n", cmd.Commit)
		fmt.Printf("  built:     %s\n", cmd.Date)
		fmt.Printf("  go:        %s\n", runtime.Version())
		fmt.Printf("  host:\n")
		for _, r := range probe.All() {
			if r.Found() {
				fmt.Printf("    %s:   found (%s)\n", r.Name, r.Path)
			} else {
				fmt.Printf("    %s:   not found\n", r.Name)
			}
		}
	},
}
