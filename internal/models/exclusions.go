package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CommonToggle is one of the fixed, well-known exclusion switches. The key
// set is closed so a typoed key is rejected instead of silently ignored.
type CommonToggle string

const (
	TogglePycache        CommonToggle = "__pycache__"
	ToggleTestFiles      CommonToggle = "test_files"
	ToggleInitFiles      CommonToggle = "__init__"
	TogglePrivateMethods CommonToggle = "private_methods"
	ToggleImports        CommonToggle = "import_statements"
)

// CommonToggles lists all known toggles in stable order.
func CommonToggles() []CommonToggle {
	return []CommonToggle{
		TogglePycache,
		ToggleTestFiles,
		ToggleInitFiles,
		TogglePrivateMethods,
		ToggleImports,
	}
}

// IsValid checks if the toggle is one of the known keys
func (t CommonToggle) IsValid() bool {
	switch t {
	case TogglePycache, ToggleTestFiles, ToggleInitFiles, TogglePrivateMethods, ToggleImports:
		return true
	default:
		return false
	}
}

// ExclusionConfig describes what the generation stage should skip: named
// functions (case-insensitive), files, directories, and the common
// toggles. Entries are deduplicated on insert and the original casing of
// the first insert is preserved. The config is only persisted through an
// explicit save, never implicitly.
type ExclusionConfig struct {
	functions   map[string]string // lowercased name -> original casing
	files       map[string]struct{}
	directories map[string]struct{}
	common      map[CommonToggle]bool
}

// NewExclusionConfig creates an empty exclusion config.
func NewExclusionConfig() *ExclusionConfig {
	return &ExclusionConfig{
		functions:   make(map[string]string),
		files:       make(map[string]struct{}),
		directories: make(map[string]struct{}),
		common:      make(map[CommonToggle]bool),
	}
}

// AddFunction adds a function name to the exclusion set. Matching is
// case-insensitive; re-adding an existing name in different casing is a
// no-op and the first casing wins.
func (c *ExclusionConfig) AddFunction(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if _, exists := c.functions[key]; !exists {
		c.functions[key] = name
	}
}

// RemoveFunction removes a function name, case-insensitively.
func (c *ExclusionConfig) RemoveFunction(name string) {
	delete(c.functions, strings.ToLower(strings.TrimSpace(name)))
}

// HasFunction checks membership case-insensitively.
func (c *ExclusionConfig) HasFunction(name string) bool {
	_, exists := c.functions[strings.ToLower(strings.TrimSpace(name))]
	return exists
}

// AddFile adds a file path to the exclusion set.
func (c *ExclusionConfig) AddFile(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	c.files[path] = struct{}{}
}

// RemoveFile removes a file path from the exclusion set.
func (c *ExclusionConfig) RemoveFile(path string) {
	delete(c.files, strings.TrimSpace(path))
}

// AddDirectory adds a directory to the exclusion set.
func (c *ExclusionConfig) AddDirectory(dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	c.directories[dir] = struct{}{}
}

// RemoveDirectory removes a directory from the exclusion set.
func (c *ExclusionConfig) RemoveDirectory(dir string) {
	delete(c.directories, strings.TrimSpace(dir))
}

// SetCommon enables or disables a common toggle. Unknown keys are
// rejected.
func (c *ExclusionConfig) SetCommon(toggle CommonToggle, enabled bool) error {
	if !toggle.IsValid() {
		return fmt.Errorf("unknown exclusion toggle: %s", toggle)
	}
	c.common[toggle] = enabled
	return nil
}

// Common returns the state of a toggle; unset toggles are disabled.
func (c *ExclusionConfig) Common(toggle CommonToggle) bool {
	return c.common[toggle]
}

// Functions returns the excluded function names, original casing, sorted.
func (c *ExclusionConfig) Functions() []string {
	names := make([]string, 0, len(c.functions))
	for _, original := range c.functions {
		names = append(names, original)
	}
	sort.Strings(names)
	return names
}

// Files returns the excluded file paths, sorted.
func (c *ExclusionConfig) Files() []string {
	return sortedKeys(c.files)
}

// Directories returns the excluded directories, sorted.
func (c *ExclusionConfig) Directories() []string {
	return sortedKeys(c.directories)
}

// IsEmpty reports whether nothing is excluded.
func (c *ExclusionConfig) IsEmpty() bool {
	if len(c.functions) > 0 || len(c.files) > 0 || len(c.directories) > 0 {
		return false
	}
	for _, enabled := range c.common {
		if enabled {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the config.
func (c *ExclusionConfig) Clone() *ExclusionConfig {
	clone := NewExclusionConfig()
	for k, v := range c.functions {
		clone.functions[k] = v
	}
	for k := range c.files {
		clone.files[k] = struct{}{}
	}
	for k := range c.directories {
		clone.directories[k] = struct{}{}
	}
	for k, v := range c.common {
		clone.common[k] = v
	}
	return clone
}

// exclusionConfigWire is the JSON shape used by the exclusions endpoints.
type exclusionConfigWire struct {
	Functions   []string        `json:"functions"`
	Files       []string        `json:"files"`
	Directories []string        `json:"directories"`
	Common      map[string]bool `json:"common"`
}

// MarshalJSON encodes the config in its wire shape.
func (c *ExclusionConfig) MarshalJSON() ([]byte, error) {
	wire := exclusionConfigWire{
		Functions:   c.Functions(),
		Files:       c.Files(),
		Directories: c.Directories(),
		Common:      make(map[string]bool, len(c.common)),
	}
	for toggle, enabled := range c.common {
		wire.Common[string(toggle)] = enabled
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the wire shape, deduplicating entries. Unknown
// common toggles fail the decode rather than being dropped silently.
func (c *ExclusionConfig) UnmarshalJSON(data []byte) error {
	var wire exclusionConfigWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*c = *NewExclusionConfig()
	for _, name := range wire.Functions {
		c.AddFunction(name)
	}
	for _, path := range wire.Files {
		c.AddFile(path)
	}
	for _, dir := range wire.Directories {
		c.AddDirectory(dir)
	}
	for key, enabled := range wire.Common {
		if err := c.SetCommon(CommonToggle(key), enabled); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
