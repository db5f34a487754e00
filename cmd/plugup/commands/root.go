// Package commands implements the CLI commands for plugup.
package commands

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/plugup/cmd"
	"github.com/thoreinstein/plugup/internal/config"
	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/logging"
)

// Persistent flag values shared by every command.
var (
	// cfgFile holds the value of the --config flag.
	cfgFile string

	// packageFlag holds the value of the --package flag.
	packageFlag string

	// channelFlag holds the value of the --channel flag.
	channelFlag string

	// registryFlag holds the value of the --registry flag.
	registryFlag string

	// timeoutFlag holds the value of the --timeout flag.
	timeoutFlag time.Duration

	// projectRootFlag holds the value of the --project-root flag.
	projectRootFlag string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the value of the -q/--quiet flag.
	quiet bool

	// logFormat holds the value of the --log-format flag.
	logFormat string

	// logFile holds the path to the log file.
	logFile string

	// loadedConfig is the tool config read during initialization. Nil when
	// loading failed; commands fall back to built-in defaults.
	loadedConfig *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"plugup config file (default: $XDG_CONFIG_HOME/plugup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&packageFlag, "package", "",
		"plugin package to manage (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "",
		"release channel to track, e.g. latest, beta")
	rootCmd.PersistentFlags().StringVar(&registryFlag, "registry", "",
		"registry base URL (default: https://registry.npmjs.org)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0,
		"registry request timeout, e.g. 10s")
	rootCmd.PersistentFlags().StringVar(&projectRootFlag, "project-root", "",
		"project directory whose .opencode config is preferred")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("plugup version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(cfgFile)
}

var rootCmd = &cobra.Command{
	Use:   "plugup",
	Short: "Keep an opencode plugin entry installed and up to date",
	Long: `plugup manages one plugin entry inside opencode's JSON/JSONC config file.

It installs the entry, pins it to a concrete version, and keeps a pinned
entry in sync with the release channel's current version on the registry.
Files plugup did not create are edited textually, so comments, key order,
and formatting survive every change.

The managed package, release channel, and registry endpoint come from the
plugup config file ($XDG_CONFIG_HOME/plugup/config.yaml), environment
variables prefixed PLUGUP_, or the matching flags.`,
	Example: `  # Install the plugin entry into the first existing opencode config
  plugup install @scope/opencode-notify

  # Pin the entry to the beta channel's current version
  plugup pin --channel beta

  # See whether the pinned version is behind its channel
  plugup check

  # Check system health
  plugup doctor

  See Also: plugup install, plugup status, plugup doctor`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return validateGlobalFlags(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(
			errors.New("cannot use --quiet and --verbose together"),
			"pass either --quiet or --verbose, not both")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("PLUGUP_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "check that the --log-file path is writable")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// validateGlobalFlags vets the persistent flag values and surfaces config
// load failures before any command runs.
func validateGlobalFlags(cmd *cobra.Command, _ []string) error {
	// help and version never need config; doctor diagnoses broken configs,
	// so it must run in spite of one.
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	if timeoutFlag < 0 {
		return errors.NewUserError(
			errors.New("timeout must not be negative"),
			"pass --timeout a positive duration, e.g. --timeout 10s")
	}

	if registryFlag != "" {
		u, err := url.Parse(registryFlag)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.NewUserError(
				errors.Newf("invalid registry URL %q", registryFlag),
				"pass an absolute http(s) URL, e.g. https://registry.npmjs.org")
		}
	}

	return nil
}

// Execute runs the root command. Errors are returned unwrapped so main can
// render ExitError codes and suggestions.
func Execute() error {
	return rootCmd.Execute()
}
