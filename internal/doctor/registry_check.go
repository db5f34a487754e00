package doctor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/thoreinstein/plugup/internal/channel"
	"github.com/thoreinstein/plugup/internal/registry"
)

// registryEnvVars are the environment variables that influence how plugup and
// npm tooling reach the registry. Present ones surface in the details map,
// masked, so a diagnostic report can explain a surprising endpoint without
// leaking the token that authenticates against it.
var registryEnvVars = []string{
	"PLUGUP_REGISTRY_URL",
	"NPM_CONFIG_REGISTRY",
	"npm_config_registry",
	"NPM_TOKEN",
	"NODE_AUTH_TOKEN",
}

// RegistryCheck verifies the package registry answers dist-tag queries for
// the managed package within the configured timeout.
type RegistryCheck struct {
	client  *registry.Client
	pkg     string
	channel string
	timeout time.Duration
}

var _ Check = (*RegistryCheck)(nil)

// NewRegistryCheck creates a registry reachability check. An empty channel
// means latest; a non-positive timeout falls back to the client default.
func NewRegistryCheck(client *registry.Client, pkg, ch string, timeout time.Duration) *RegistryCheck {
	if timeout <= 0 {
		timeout = registry.DefaultTimeout
	}
	return &RegistryCheck{client: client, pkg: pkg, channel: ch, timeout: timeout}
}

// Name returns the unique identifier for this check.
func (c *RegistryCheck) Name() string {
	return "registry"
}

// Category returns the grouping for this check.
func (c *RegistryCheck) Category() string {
	return "registry"
}

// Run executes the registry reachability check and returns its result.
// A failure here is a warning, not an error: an unreachable registry stops
// update checks but never the host or the installed plugin.
func (c *RegistryCheck) Run() *CheckResult {
	details := map[string]any{
		"registry": MaskURL(c.client.BaseURL()),
		"timeout":  c.timeout.String(),
	}
	if env := registryEnv(); len(env) > 0 {
		masked := MaskSecrets(env)
		for k, v := range masked {
			masked[k] = MaskURL(v)
		}
		details["env"] = masked
	}

	if c.pkg == "" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no package configured; skipping registry probe",
			Details:  details,
			FixHint:  "set package in the plugup config or pass --package",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	tags, err := c.client.DistTags(ctx, c.pkg)
	if err != nil {
		details["reason"] = err.Error()
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("registry did not answer for %s", c.pkg),
			Details:  details,
			FixHint:  "check network connectivity and the configured registry URL",
		}
	}

	details["tags"] = tags

	ch := c.channel
	if ch == "" {
		ch = channel.Latest
	}
	version, ok := tags.ForChannel(ch)
	if !ok {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  fmt.Sprintf("registry has no version for channel %s", ch),
			Details:  details,
			FixHint:  "pick a published channel or publish a dist-tag for " + ch,
		}
	}

	details["channel"] = ch
	details["version"] = version
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("registry reachable; %s@%s resolves to %s", c.pkg, ch, version),
		Details:  details,
	}
}

// registryEnv collects the registry-related environment variables that are set.
func registryEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range registryEnvVars {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}
