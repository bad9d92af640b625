// Package evalconfig loads the evaluator's tuning knobs from a YAML file,
// grounded on the teacher's internal/ext.Config (funxy.yaml via
// gopkg.in/yaml.v3): same LoadConfig/FindConfig/setDefaults shape, a much
// smaller field set.
package evalconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file the dialect's host looks for, analogous to
// funxy.yaml.
const FileName = "drift.yaml"

// Config holds the tuning knobs spec.md leaves to the runtime: the
// array-map/hash-map cutover threshold (§4.3), the JIT module cache
// location and the remote-compile arity threshold (§3 domain stack), and
// the positional arity fast-path cutoff (§4.4).
type Config struct {
	// MaxArrayMapSize is the map literal element-count threshold below
	// which a packed array-map is built instead of a hash-map (spec.md
	// §4.3). Must match the runtime's own cutoff.
	MaxArrayMapSize int `yaml:"max_array_map_size"`

	// ArityFastPathCutoff is N in "N <= 10 invoke fixed-arity fast path"
	// (spec.md §4.4). Exposed as a knob rather than hardcoded so a host
	// embedding this evaluator can tune it without a rebuild.
	ArityFastPathCutoff int `yaml:"arity_fast_path_cutoff"`

	// JITCachePath is the sqlite database internal/modcache opens to
	// persist compiled module artifacts across process restarts.
	JITCachePath string `yaml:"jit_cache_path"`

	// RemoteCompile is the remote-compile toggle. It is loaded and
	// defaulted here, but no package in this module reads it: wrapped forms
	// are compiled by whichever JITHost the caller passes to Evaluator.Eval.
	RemoteCompile bool `yaml:"remote_compile"`

	// RemoteCompileThreshold is the arity-count cutoff paired with
	// RemoteCompile. Like RemoteCompile, no package in this module reads it.
	RemoteCompileThreshold int `yaml:"remote_compile_threshold"`

	// TraceEnabled is the trace toggle. evaluate.New and jit.NewEngine take
	// a *trace.Logger directly and do not read this field.
	TraceEnabled bool `yaml:"trace_enabled"`
}

// Defaults matches spec.md §4.3/§4.4's stated defaults (array-map cutoff,
// 10-positional fast path) when no config file is present.
func Defaults() *Config {
	return &Config{
		MaxArrayMapSize:        8,
		ArityFastPathCutoff:    10,
		JITCachePath:           "drift-modcache.sqlite",
		RemoteCompile:          false,
		RemoteCompileThreshold: 6,
		TraceEnabled:           false,
	}
}

// LoadConfig reads and parses a drift.yaml file, filling unset fields with
// Defaults().
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses drift.yaml content from bytes, applying defaults for
// any zero-valued field. The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	d := Defaults()
	if c.MaxArrayMapSize == 0 {
		c.MaxArrayMapSize = d.MaxArrayMapSize
	}
	if c.ArityFastPathCutoff == 0 {
		c.ArityFastPathCutoff = d.ArityFastPathCutoff
	}
	if c.JITCachePath == "" {
		c.JITCachePath = d.JITCachePath
	}
	if c.RemoteCompileThreshold == 0 {
		c.RemoteCompileThreshold = d.RemoteCompileThreshold
	}
}

// FindConfig searches for drift.yaml starting from dir and walking up to
// parent directories, the way the teacher's FindConfig locates funxy.yaml.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
