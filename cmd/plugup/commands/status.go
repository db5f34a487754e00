package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/plugup/cmd"
	"github.com/thoreinstein/plugup/internal/channel"
	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/opencode"
)

var statusOutput string

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format: text, json, yaml, or toml")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [PACKAGE]",
	Short: "Show the plugin's install state",
	Long: `Show everything plugup knows about one package's installation.

The snapshot covers the winning plugin entry (file, raw text, pin), any
local development override, and whether the opencode host and tmux are
present on this machine. Nothing is cached: every run re-reads the
candidate config files.

Output formats:
  text   Human-readable overview (default)
  json   Machine-readable JSON
  yaml   Machine-readable YAML
  toml   Machine-readable TOML`,
	Example: `  # Show the configured package
  plugup status

  # Show an explicit package
  plugup status opencode-helper

  # JSON for scripting
  plugup status --output json

  See Also:
    plugup check  - Compare the entry against the registry
    plugup doctor - Diagnose installation problems`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateStatusFlags,
	RunE:    runStatus,
}

// validateStatusFlags rejects unknown --output formats before any work runs.
func validateStatusFlags(_ *cobra.Command, _ []string) error {
	switch statusOutput {
	case "text", "json", "yaml", "toml":
		return nil
	}
	return errors.Newf("unknown --output format %q (valid: text, json, yaml, toml)", statusOutput)
}

func runStatus(_ *cobra.Command, args []string) error {
	s := currentSettings()
	pkg, err := resolvePackage(s, args)
	if err != nil {
		return err
	}
	return runStatusWithWriter(os.Stdout, s, pkg, opencode.SearchPaths(s.projectRoot))
}

// runStatusWithWriter allows injecting a writer for testing.
func runStatusWithWriter(w io.Writer, s *settings, pkg string, candidates []string) error {
	report := collectStatus(s, pkg, candidates)

	switch statusOutput {
	case "json":
		return outputStatusJSON(w, report)
	case "yaml":
		return outputStatusYAML(w, report)
	case "toml":
		return outputStatusTOML(w, report)
	}
	return outputStatusText(w, report)
}

// statusReport is the serialized install snapshot. Kept flat, scalars only,
// so the one struct round-trips cleanly through JSON, YAML, and TOML.
type statusReport struct {
	Package       string `json:"package" yaml:"package" toml:"package"`
	Installed     bool   `json:"installed" yaml:"installed" toml:"installed"`
	Entry         string `json:"entry,omitempty" yaml:"entry,omitempty" toml:"entry,omitempty"`
	File          string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Pinned        bool   `json:"pinned" yaml:"pinned" toml:"pinned"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Channel       string `json:"channel" yaml:"channel" toml:"channel"`
	LocalDev      string `json:"local_dev,omitempty" yaml:"local_dev,omitempty" toml:"local_dev,omitempty"`
	LocalVersion  string `json:"local_version,omitempty" yaml:"local_version,omitempty" toml:"local_version,omitempty"`
	ConfigPath    string `json:"config_path,omitempty" yaml:"config_path,omitempty" toml:"config_path,omitempty"`
	HostDetected  bool   `json:"host_detected" yaml:"host_detected" toml:"host_detected"`
	HostBinary    bool   `json:"host_binary" yaml:"host_binary" toml:"host_binary"`
	Tmux          bool   `json:"tmux" yaml:"tmux" toml:"tmux"`
	Registry      string `json:"registry" yaml:"registry" toml:"registry"`
	PlugupVersion string `json:"plugup_version" yaml:"plugup_version" toml:"plugup_version"`
}

// collectStatus derives the report from a fresh install snapshot.
func collectStatus(s *settings, pkg string, candidates []string) *statusReport {
	state := opencode.Detect(candidates, pkg)

	report := &statusReport{
		Package:       pkg,
		Installed:     state.Installed,
		ConfigPath:    state.ConfigPath,
		LocalDev:      state.LocalDev,
		LocalVersion:  state.LocalVersion,
		HostDetected:  state.HostDetected,
		HostBinary:    state.HostBinary,
		Tmux:          state.Tmux,
		Registry:      s.registryURL,
		PlugupVersion: cmd.Version,
	}

	report.Channel = s.channel
	if report.Channel == "" {
		report.Channel = channel.Latest
	}

	if state.Entry != nil {
		report.Entry = state.Entry.Raw
		report.File = state.Entry.Path
		report.Pinned = state.Entry.Pinned()
		report.Version = state.Entry.Version
		if s.channel == "" {
			report.Channel = state.Entry.Channel()
		}
	}

	return report
}

func outputStatusText(w io.Writer, r *statusReport) error {
	fmt.Fprintf(w, "plugup version %s\n", r.PlugupVersion)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sPackage: %s%s\n", colorCyan+colorBold, r.Package, colorReset)
	switch {
	case !r.Installed:
		fmt.Fprintf(w, "  Status: %snot installed%s\n", colorGray, colorReset)
	case r.Pinned:
		fmt.Fprintf(w, "  Status: installed, pinned to %s\n", r.Version)
	default:
		fmt.Fprintf(w, "  Status: installed, floating on %s\n", r.Channel)
	}
	if r.Installed {
		fmt.Fprintf(w, "  Entry: %s\n", r.Entry)
		fmt.Fprintf(w, "  File: %s\n", r.File)
	}
	fmt.Fprintf(w, "  Channel: %s\n", r.Channel)
	if r.LocalDev != "" {
		if r.LocalVersion != "" {
			fmt.Fprintf(w, "  Local override: %s (manifest %s)\n", r.LocalDev, r.LocalVersion)
		} else {
			fmt.Fprintf(w, "  Local override: %s\n", r.LocalDev)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sHost%s\n", colorCyan+colorBold, colorReset)
	if r.ConfigPath != "" {
		fmt.Fprintf(w, "  Config: found %s(%s)%s\n", colorGray, r.ConfigPath, colorReset)
	} else {
		fmt.Fprintf(w, "  Config: %snot found%s\n", colorGray, colorReset)
	}
	fmt.Fprintf(w, "  Binary: %s\n", foundLabel(r.HostBinary))
	fmt.Fprintf(w, "  Tmux: %s\n", foundLabel(r.Tmux))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Registry: %s\n", r.Registry)
	return nil
}

func outputStatusJSON(w io.Writer, r *statusReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func outputStatusYAML(w io.Writer, r *statusReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	_, err = w.Write(data)
	return err
}

func outputStatusTOML(w io.Writer, r *statusReport) error {
	return toml.NewEncoder(w).Encode(r)
}
