package opencode

import (
	"encoding/json"
	"path/filepath"

	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/jsonc"
	"github.com/thoreinstein/plugup/internal/paths"
	"github.com/thoreinstein/plugup/pkg/fileutil"
)

// SchemaURL is the JSON schema reference written into configs plugup creates.
const SchemaURL = "https://opencode.ai/config.json"

// Config represents the host's configuration document. Only the members
// plugup works with are modeled; every other member passes through a
// read-modify-write cycle untouched.
type Config struct {
	// Schema is the document's optional "$schema" member.
	Schema string `json:"$schema,omitempty"`

	// Plugin is the ordered plugin list. Each element is a bare package
	// name, a name@version pin, or a file:// reference to a working copy.
	Plugin []string `json:"plugin,omitempty"`

	// unknownFields stores JSON members not explicitly defined in this
	// struct (provider, agent, server, tool blocks). This keeps plugup from
	// dropping host settings it does not understand.
	unknownFields map[string]json.RawMessage
}

// MarshalJSON implements json.Marshaler to include unknown members in output.
func (c *Config) MarshalJSON() ([]byte, error) {
	// Build a map with all fields
	result := make(map[string]any)

	// Copy unknown fields first (so known fields take precedence)
	for k, v := range c.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}

	// Add known fields (only if non-zero to match omitempty behavior)
	if c.Schema != "" {
		result["$schema"] = c.Schema
	}
	if len(c.Plugin) > 0 {
		result["plugin"] = c.Plugin
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown members.
func (c *Config) UnmarshalJSON(data []byte) error {
	// First, unmarshal into a generic map to capture all fields
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Extract known fields
	if v, ok := raw["$schema"]; ok {
		if err := json.Unmarshal(v, &c.Schema); err != nil {
			return err
		}
		delete(raw, "$schema")
	}
	if v, ok := raw["plugin"]; ok {
		if err := json.Unmarshal(v, &c.Plugin); err != nil {
			return err
		}
		delete(raw, "plugin")
	}

	// Store remaining fields as unknown
	if len(raw) > 0 {
		c.unknownFields = raw
	}

	return nil
}

// Load reads and parses one host config file. JSONC input is accepted:
// comments and trailing commas are stripped before parsing.
func Load(path string) (*Config, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading host config %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.Strip(data), &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing host config %s", path)
	}

	return &cfg, nil
}

// WriteNew writes a fresh config document to path, creating parent
// directories as needed. The write is atomic: pretty-printed two-space JSON
// with a single trailing newline. It is only for files plugup creates and
// fully controls; existing documents are patched textually instead so user
// formatting and comments survive.
func WriteNew(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := paths.EnsureDir(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	return errors.Wrap(fileutil.AtomicWriteJSON(path, cfg), "writing host config")
}
