package doctor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/plugup/internal/jsonc"
)

// maxSecureFilePerm is the maximum secure permission for config files (-rw-r--r--).
const maxSecureFilePerm os.FileMode = 0644

// PathPermissionCheck validates permissions on the host config candidates and
// the directories that hold them. Host configs can carry provider credentials
// in members plugup passes through untouched, so permissive modes matter.
type PathPermissionCheck struct {
	PermissionFixer

	candidates []string
}

var _ Check = (*PathPermissionCheck)(nil)
var _ Fixer = (*PathPermissionCheck)(nil)

// NewPathPermissionCheck creates a new path permission check over the given
// config file candidates.
func NewPathPermissionCheck(candidates []string) *PathPermissionCheck {
	return &PathPermissionCheck{candidates: candidates}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string {
	return "path-permissions"
}

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string {
	return "filesystem"
}

// Run executes the path and permission diagnostic check.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	var checked int

	seenDir := make(map[string]bool)
	for _, path := range c.candidates {
		issues = append(issues, c.checkFile(path)...)
		checked++

		// Candidate files share directories (json and jsonc siblings),
		// so check each directory once.
		dir := filepath.Dir(path)
		if seenDir[dir] {
			continue
		}
		seenDir[dir] = true

		issues = append(issues, c.checkDirectory(dir)...)
		checked++
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string // octal representation if available
	Fixable     bool
	FixHint     string
}

// checkFile validates a config file path and permissions.
func (c *PathPermissionCheck) checkFile(path string) []pathIssue {
	var issues []pathIssue

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// File doesn't exist is not an error - the host may not be configured
		return nil
	}
	if err != nil {
		issues = append(issues, pathIssue{
			Path:     path,
			Type:     "file",
			Problem:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		})
		return issues
	}

	// Check if file is readable
	f, err := os.Open(path)
	if err != nil {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "file",
			Problem:     "file is not readable",
			Severity:    SeverityError,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod 644 " + path,
		})
		return issues
	}
	f.Close()

	// Check permissions (skip on Windows where Unix permissions don't apply)
	if runtime.GOOS != "windows" {
		issues = append(issues, c.checkFilePermissions(path, info.Mode())...)
	}

	return issues
}

// checkDirectory validates a config directory path and permissions.
func (c *PathPermissionCheck) checkDirectory(path string) []pathIssue {
	var issues []pathIssue

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// Directory doesn't exist is not an error - the host may not be installed
		return nil
	}
	if err != nil {
		issues = append(issues, pathIssue{
			Path:     path,
			Type:     "directory",
			Problem:  fmt.Sprintf("cannot stat directory: %v", err),
			Severity: SeverityError,
		})
		return issues
	}

	if !info.IsDir() {
		issues = append(issues, pathIssue{
			Path:     path,
			Type:     "directory",
			Problem:  "expected directory but found file",
			Severity: SeverityError,
		})
		return issues
	}

	// Check if directory is writable by creating a temp file
	writable, err := c.isDirectoryWritable(path)
	if err != nil || !writable {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}

	// Check permissions (skip on Windows where Unix permissions don't apply)
	if runtime.GOOS != "windows" {
		issues = append(issues, c.checkDirectoryPermissions(path, info.Mode())...)
	}

	return issues
}

// checkFilePermissions validates file permissions for security concerns.
// Every file this check sees is a host config, and a host config may hold
// API keys in its provider block, so there is no "may contain secrets"
// heuristic here: more permissive than 0644 is always flagged.
func (c *PathPermissionCheck) checkFilePermissions(path string, mode os.FileMode) []pathIssue {
	var issues []pathIssue
	perm := mode.Perm()

	// World-writable is always a security concern
	if perm&0002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "file",
			Problem:     "file is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 644 " + path,
		})
	}

	if perm > maxSecureFilePerm {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "file",
			Problem:     fmt.Sprintf("file has overly permissive permissions (mode %s, expected %s or less)", formatPermissions(mode), formatOctal(maxSecureFilePerm)),
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 644 " + path,
		})
	}

	return issues
}

// checkDirectoryPermissions validates directory permissions for security concerns.
func (c *PathPermissionCheck) checkDirectoryPermissions(path string, mode os.FileMode) []pathIssue {
	var issues []pathIssue
	perm := mode.Perm()

	// World-writable directories are always a security concern
	if perm&0002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        "directory",
			Problem:     "directory is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(mode),
			Fixable:     true,
			FixHint:     "chmod 755 " + path,
		})
	}

	return issues
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func (c *PathPermissionCheck) isDirectoryWritable(path string) (bool, error) {
	tmpFile, err := os.CreateTemp(path, ".plugup-doctor-test-*")
	if err != nil {
		return false, err
	}

	// Clean up the test file
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)

	return true, nil
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	// Find the highest severity among all issues
	highestSeverity := SeverityPass
	var hasError, hasWarning bool
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			hasError = true
		}
		if issue.Severity == SeverityWarning {
			hasWarning = true
		}
	}

	if hasError {
		highestSeverity = SeverityError
	} else if hasWarning {
		highestSeverity = SeverityWarning
	}

	// Build details map
	details := make(map[string]any)
	details["checked_paths"] = checked
	details["issue_count"] = len(issues)

	// Convert issues to a slice of maps for JSON serialization
	issueDetails := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		issueMap := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			issueMap["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			issueMap["fix_hint"] = issue.FixHint
		}
		issueDetails = append(issueDetails, issueMap)
	}
	details["issues"] = issueDetails

	// Check if any issues are fixable
	fixable := false
	var fixHints []string
	for _, issue := range issues {
		if issue.Fixable {
			fixable = true
			if issue.FixHint != "" {
				fixHints = append(fixHints, issue.FixHint)
			}
		}
	}

	message := fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked)

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   highestSeverity,
		Message:  message,
		Details:  details,
		Fixable:  fixable,
	}

	if len(fixHints) > 0 {
		result.FixHint = strings.Join(fixHints, "; ")
	}

	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// formatOctal returns the octal representation of a file mode.
func formatOctal(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode)
}

// ConfigSyntaxCheck validates configuration file syntax: host config
// candidates as JSONC, plugup's own config file as YAML.
type ConfigSyntaxCheck struct {
	candidates []string
	toolConfig string
}

var _ Check = (*ConfigSyntaxCheck)(nil)

// NewConfigSyntaxCheck creates a syntax check over the host config candidates
// and, when toolConfig is non-empty, plugup's own config file.
func NewConfigSyntaxCheck(candidates []string, toolConfig string) *ConfigSyntaxCheck {
	return &ConfigSyntaxCheck{candidates: candidates, toolConfig: toolConfig}
}

// Name returns the unique identifier for this check.
func (c *ConfigSyntaxCheck) Name() string {
	return "config-syntax"
}

// Category returns the grouping for this check.
func (c *ConfigSyntaxCheck) Category() string {
	return "config"
}

// syntaxFileResult represents the validation result for a single file.
type syntaxFileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Run executes the syntax validation check across all config files.
func (c *ConfigSyntaxCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  make(map[string]any),
	}

	paths := make([]string, 0, len(c.candidates)+1)
	paths = append(paths, c.candidates...)
	if c.toolConfig != "" {
		paths = append(paths, c.toolConfig)
	}

	var fileResults []syntaxFileResult
	var errorCount, passCount, infoCount int

	for _, path := range paths {
		fr := c.validateFile(path)
		fileResults = append(fileResults, fr)
		switch fr.Status {
		case "pass":
			passCount++
		case "error":
			errorCount++
		case "info":
			infoCount++
		}
	}

	result.Details["files"] = fileResults
	result.Details["checked"] = len(fileResults)
	result.Details["passed"] = passCount
	result.Details["errors"] = errorCount
	result.Details["missing"] = infoCount

	// Determine overall status
	switch {
	case errorCount > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d config file(s) have syntax errors", errorCount)
		result.Fixable = false
		result.FixHint = "review the error details and fix the syntax in each file"
	case passCount > 0:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d config file(s) validated successfully", passCount)
	default:
		result.Status = SeverityInfo
		result.Message = "no config files found to validate"
	}

	return result
}

// validateFile checks if a file is syntactically valid.
func (c *ConfigSyntaxCheck) validateFile(filePath string) syntaxFileResult {
	fr := syntaxFileResult{Path: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fr.Status = "info"
			fr.Message = "file does not exist (not configured)"
			return fr
		}
		if errors.Is(err, os.ErrPermission) {
			fr.Status = "error"
			fr.Message = fmt.Sprintf("permission denied: %v", err)
			return fr
		}
		fr.Status = "error"
		fr.Message = fmt.Sprintf("read error: %v", err)
		return fr
	}

	// Empty files are valid (no content to parse)
	if len(data) == 0 {
		fr.Status = "pass"
		fr.Message = "empty file"
		return fr
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".json", ".jsonc":
		fr = c.validateJSONC(data, fr)
	case ".yaml", ".yml":
		fr = c.validateYAML(data, fr)
	default:
		// For unknown extensions, try JSONC first (host configs), then YAML
		fr = c.validateJSONC(data, fr)
		if fr.Status == "error" {
			yamlResult := c.validateYAML(data, syntaxFileResult{Path: filePath})
			if yamlResult.Status == "pass" {
				fr = yamlResult
			}
		}
	}

	return fr
}

// validateJSONC validates JSONC syntax and returns position info on errors.
// Validation parses exactly what the config loader parses: the stripped
// text. Positions are reported against that text; Strip keeps the newline
// of every line comment, so line numbers still line up after them.
func (c *ConfigSyntaxCheck) validateJSONC(data []byte, fr syntaxFileResult) syntaxFileResult {
	stripped := jsonc.Strip(data)
	var v any
	if err := json.Unmarshal(stripped, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatJSONError(err, stripped)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// validateYAML validates YAML syntax.
func (c *ConfigSyntaxCheck) validateYAML(data []byte, fr syntaxFileResult) syntaxFileResult {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatYAMLError(err)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(data, int(typeErr.Offset))
		return fmt.Sprintf("JSON type error at line %d, column %d: %s", line, col, typeErr.Error())
	}

	return fmt.Sprintf("JSON error: %v", err)
}

// formatYAMLError normalizes YAML parse errors. yaml.v3 already embeds line
// information in its messages ("yaml: line 3: ..."), so there is no offset
// to translate.
func formatYAMLError(err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return "YAML type error: " + strings.Join(typeErr.Errors, "; ")
	}
	return fmt.Sprintf("YAML error: %v", err)
}

// offsetToLineCol converts a byte offset to line and column numbers.
// Lines and columns are 1-indexed.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}

	line = 1
	lineStart := 0

	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	col = offset - lineStart + 1
	return line, col
}
