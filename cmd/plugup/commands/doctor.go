package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/internal/config"
	"github.com/thoreinstein/plugup/internal/doctor"
	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/opencode"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"attempt to fix fixable issues (permissions)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose installation issues",
	Long: `Run diagnostic checks on plugup and the host configuration it manages.

Checks cover plugup's own config file, host detection, config file syntax,
file and directory permissions, the plugin entry itself, local development
overrides, and registry reachability.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Diagnose the current setup
  plugup doctor

  # Full check-by-check output
  plugup doctor --verbose

  # Fix permission issues in place
  plugup doctor --fix

  See Also:
    plugup status - Show the install state without diagnostics`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.New("flags --json, --quiet, and --verbose are mutually exclusive")
	}

	if doctorFix && (doctorJSON || doctorQuiet) {
		return errors.New("--fix requires text output")
	}

	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	s := currentSettings()
	return runDoctorWithWriter(os.Stdout, doctorChecks(s, opencode.SearchPaths(s.projectRoot)))
}

// runDoctorWithWriter allows injecting a writer and checks for testing.
func runDoctorWithWriter(w io.Writer, checks []doctor.Check) error {
	runner := doctor.NewRunner()
	for _, c := range checks {
		runner.AddCheck(c)
	}

	report := runner.Run()

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if doctorFix {
		applyDoctorFixes(w, checks)
	}

	// The exit code reflects what the checks found; after a --fix run,
	// re-running doctor confirms the remediation.
	switch {
	case report.HasErrors():
		return doctorExit(errDoctorErrors, errors.ExitSystem)
	case report.HasWarnings():
		return doctorExit(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// doctorChecks builds the check suite for the current settings. The package
// may be unset when plugup has no config yet; every check degrades to an
// informational skip rather than failing on it.
func doctorChecks(s *settings, candidates []string) []doctor.Check {
	return []doctor.Check{
		toolConfigCheck{},
		doctor.NewHostCheck(candidates),
		doctor.NewConfigSyntaxCheck(candidates, config.FileUsed()),
		doctor.NewPathPermissionCheck(candidates),
		doctor.NewPluginEntryCheck(candidates, s.pkg),
		doctor.NewLocalOverrideCheck(candidates, s.pkg),
		doctor.NewRegistryCheck(newRegistryClient(s), s.pkg, s.channel, s.timeout),
	}
}

// toolConfigCheck surfaces plugup's own config-load outcome. It lives in this
// package rather than internal/doctor because the outcome is recorded here:
// initConfig stores the load error before any command runs, and doctor is the
// one command that still runs when that load failed.
type toolConfigCheck struct{}

func (c toolConfigCheck) Name() string {
	return "plugup-config"
}

func (c toolConfigCheck) Category() string {
	return "config"
}

func (c toolConfigCheck) Run() *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	file := config.FileUsed()
	switch {
	case configLoadErr != nil:
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("plugup's own config failed to load: %v", configLoadErr)
		if file != "" {
			result.FixHint = "fix or remove " + file
		}
	case file == "":
		result.Status = doctor.SeverityInfo
		result.Message = "no plugup config file; built-in defaults in effect"
	default:
		result.Status = doctor.SeverityPass
		result.Message = "loaded " + file
	}

	return result
}

// applyDoctorFixes runs every check that implements Fixer and found fixable
// issues. The checks must have run already: fixers operate on the issues
// recorded during Run.
func applyDoctorFixes(w io.Writer, checks []doctor.Check) {
	applied := false
	for _, c := range checks {
		fixer, ok := c.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}

		if !applied {
			fmt.Fprintf(w, "\nApplying fixes:\n")
			applied = true
		}

		for _, res := range fixer.Fix() {
			if res.Fixed {
				fmt.Fprintf(w, "  %s✓ %s: %s%s\n", colorGreen, res.Path, res.Description, colorReset)
			} else {
				fmt.Fprintf(w, "  %s✗ %s: %s%s\n", colorYellow, res.Path, res.Description, colorReset)
			}
		}
	}

	if applied {
		fmt.Fprintln(w, "Re-run plugup doctor to verify.")
	}
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report)
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) error {
	// In normal mode, show only errors and warnings
	// In verbose mode, show all checks
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// doctorExit maps a report outcome to a process exit code. Quiet mode exits
// silently: the ExitError carries no inner error, so main prints nothing.
func doctorExit(err error, code int) error {
	if doctorQuiet {
		return &errors.ExitError{Code: code}
	}
	return &errors.ExitError{Err: err, Code: code}
}

// errDoctorWarnings is the sentinel behind exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is the sentinel behind exit code 2.
var errDoctorErrors = errors.New("errors found")
