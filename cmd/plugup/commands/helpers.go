package commands

import (
	"context"
	"os"
	"time"

	"github.com/thoreinstein/plugup/internal/backup"
	"github.com/thoreinstein/plugup/internal/channel"
	"github.com/thoreinstein/plugup/internal/config"
	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/logging"
	"github.com/thoreinstein/plugup/internal/registry"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// pluginArrayKey is the config member plugup edits.
const pluginArrayKey = "plugin"

// settings is the effective configuration for one invocation: values from
// the config file with persistent flags layered on top.
type settings struct {
	pkg            string
	channel        string
	registryURL    string
	timeout        time.Duration
	projectRoot    string
	backupsEnabled bool
	retention      int
}

// currentSettings merges the loaded config file and the persistent flags.
// Flags win. A config that failed to load contributes nothing; built-in
// defaults fill the gaps so doctor can still run.
func currentSettings() *settings {
	s := &settings{
		registryURL:    config.DefaultRegistryURL,
		timeout:        config.DefaultTimeout,
		backupsEnabled: true,
		retention:      config.DefaultBackupRetention,
	}

	if cfg := loadedConfig; cfg != nil {
		s.pkg = cfg.Package
		s.channel = cfg.Channel
		s.projectRoot = cfg.ProjectRoot
		s.backupsEnabled = cfg.Backups.Enabled
		s.retention = cfg.Backups.Retention
		if cfg.Registry.URL != "" {
			s.registryURL = cfg.Registry.URL
		}
		if cfg.Registry.Timeout > 0 {
			s.timeout = cfg.Registry.Timeout
		}
	}

	if packageFlag != "" {
		s.pkg = packageFlag
	}
	if channelFlag != "" {
		s.channel = channelFlag
	}
	if registryFlag != "" {
		s.registryURL = registryFlag
	}
	if timeoutFlag > 0 {
		s.timeout = timeoutFlag
	}
	if projectRootFlag != "" {
		s.projectRoot = projectRootFlag
	}

	return s
}

// resolvePackage picks the package to operate on: positional argument first,
// then --package, then the config file.
func resolvePackage(s *settings, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if s.pkg != "" {
		return s.pkg, nil
	}
	return "", errors.NewUserError(
		errors.New("no package specified"),
		`pass a package argument or set "package" in the plugup config; find plugins at `+
			registry.SearchURL("opencode plugin"))
}

// newRegistryClient builds the dist-tags client for the effective settings.
func newRegistryClient(s *settings) *registry.Client {
	return registry.New(s.registryURL, s.timeout)
}

// resolveChannelVersion asks the registry which version ch currently points
// at for pkg. An empty ch means latest.
func resolveChannelVersion(ctx context.Context, s *settings, pkg, ch string) (string, error) {
	if ch == "" {
		ch = channel.Latest
	}

	tags, err := newRegistryClient(s).DistTags(ctx, pkg)
	if err != nil {
		return "", err
	}

	version, ok := tags.ForChannel(ch)
	if !ok {
		return "", errors.Newf("registry has no version for channel %s", ch)
	}
	return version, nil
}

// newBackupManager builds a backup manager honoring the retention setting.
func newBackupManager(s *settings) *backup.Manager {
	return backup.NewManager(backup.WithRetentionCount(s.retention))
}

// backupBeforeWrite snapshots path once per process when backups are
// enabled, then enforces the retention count. A failed prune only warns;
// the snapshot is what protects the user's file.
func backupBeforeWrite(ctx context.Context, s *settings, path string) error {
	if !s.backupsEnabled {
		return nil
	}

	mgr := newBackupManager(s)
	if err := backup.EnsureBackedUp(mgr, path); err != nil {
		return err
	}

	// Retention 0 keeps everything.
	if s.retention > 0 {
		if err := mgr.Prune(s.retention); err != nil {
			logging.FromContext(ctx).Warn("pruning old backups failed", "error", err)
		}
	}
	return nil
}

// writeDoc atomically replaces a config file, preserving its current mode.
func writeDoc(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return errors.Wrapf(fileutil.AtomicWriteFile(path, data, perm), "writing %s", path)
}

// existingPaths filters candidates down to the ones present on disk.
func existingPaths(candidates []string) []string {
	existing := make([]string, 0, len(candidates))
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	return existing
}

// foundLabel renders a probe outcome.
func foundLabel(found bool) string {
	if found {
		return "found"
	}
	return "not found"
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
