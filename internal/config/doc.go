// Package config provides configuration management for the plugup CLI.
//
// This package handles loading and validating plugup's own configuration
// file. It is distinct from the opencode host configuration, which is
// resolved and edited by the opencode package.
//
// # Configuration File
//
// The default configuration file location is ~/.config/plugup/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	version: 1
//	package: "@scope/my-plugin"  # plugin managed by default
//	channel: beta                # release channel override
//	project_root: /work/app      # optional, for project-local configs
//	registry:
//	  url: https://registry.npmjs.org
//	  timeout: 10s
//	backups:
//	  enabled: true
//	  retention: 10
//
// Every key can also be supplied through the environment with the PLUGUP
// prefix; nested keys use underscores (PLUGUP_REGISTRY_URL).
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load(flagConfigPath)
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// An empty path searches the default locations and falls back to defaults
// when no file exists; an explicit path must exist.
//
// # Validation
//
// Load validates automatically and returns the first problem. Use
// [Validate] directly to collect every problem at once:
//
//	errs := config.Validate(cfg)
//	for _, e := range errs {
//	    fmt.Println(e)
//	}
package config
