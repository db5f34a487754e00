package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// CurrentVersion is the newest config schema version this build understands.
const CurrentVersion = 1

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrVersionUnsupported indicates the version field is newer than this build.
	ErrVersionUnsupported = errors.New("unsupported config version")

	// ErrInvalidPackage indicates a malformed package name.
	ErrInvalidPackage = errors.New("invalid package name")

	// ErrInvalidChannel indicates a malformed release channel name.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrInvalidRegistryURL indicates the registry URL is not an absolute http(s) URL.
	ErrInvalidRegistryURL = errors.New("invalid registry url")

	// ErrInvalidTimeout indicates a negative registry timeout.
	ErrInvalidTimeout = errors.New("timeout must not be negative")

	// ErrInvalidRetention indicates a negative backup retention count.
	ErrInvalidRetention = errors.New("retention must be >= 0")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	} else if cfg.Version > CurrentVersion {
		errs = append(errs, fmt.Errorf("%w: %d", ErrVersionUnsupported, cfg.Version))
	}

	// Empty package means "take it from the flag or positional argument".
	if cfg.Package != "" {
		if err := validatePackageName(cfg.Package); err != nil {
			errs = append(errs, &ValueError{
				Field: "package",
				Value: cfg.Package,
				Err:   err,
			})
		}
	}

	// Any dist-tag is a legal channel, so only the shape is checked.
	if cfg.Channel != "" && strings.ContainsAny(cfg.Channel, " \t\n") {
		errs = append(errs, &ValueError{
			Field: "channel",
			Value: cfg.Channel,
			Err:   ErrInvalidChannel,
		})
	}

	if cfg.Registry.URL != "" {
		if err := validateRegistryURL(cfg.Registry.URL); err != nil {
			errs = append(errs, &ValueError{
				Field: "registry.url",
				Value: cfg.Registry.URL,
				Err:   err,
			})
		}
	}

	// Zero means "use the default"; only negative values are rejected.
	if cfg.Registry.Timeout < 0 {
		errs = append(errs, &ValueError{
			Field: "registry.timeout",
			Value: cfg.Registry.Timeout.String(),
			Err:   ErrInvalidTimeout,
		})
	}

	// Zero retention means "keep everything".
	if cfg.Backups.Retention < 0 {
		errs = append(errs, &ValueError{
			Field: "backups.retention",
			Value: strconv.Itoa(cfg.Backups.Retention),
			Err:   ErrInvalidRetention,
		})
	}

	if cfg.ProjectRoot != "" {
		if err := validatePath(cfg.ProjectRoot); err != nil {
			errs = append(errs, &PathError{
				Field: "project_root",
				Path:  cfg.ProjectRoot,
				Err:   err,
			})
		}
	}

	return errs
}

// validatePackageName checks the rough shape of a registry package name:
// optionally scoped (@scope/name), no whitespace, and a name part that does
// not start with a dot or underscore. Registry-side rules beyond that are
// left to the registry.
func validatePackageName(name string) error {
	if strings.ContainsAny(name, " \t\n\x00") {
		return ErrInvalidPackage
	}

	rest := name
	if strings.HasPrefix(name, "@") {
		scope, after, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" {
			return ErrInvalidPackage
		}
		rest = after
	}

	if rest == "" || strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, "_") {
		return ErrInvalidPackage
	}
	if strings.Contains(rest, "/") {
		return ErrInvalidPackage
	}

	return nil
}

// validateRegistryURL checks that the value is an absolute http or https URL.
func validateRegistryURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidRegistryURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidRegistryURL
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// ValueError represents an error for a specific configuration field value.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
