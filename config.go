package swiftflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/podhmo/swiftflow/cache"
)

// Config holds settings shared by the command line tool and embedders. It
// is read from swiftflow.toml or a YAML file with the same keys.
type Config struct {
	// ImportPaths are searched by import statements. Relative entries are
	// resolved against the directory of the config file.
	ImportPaths []string `toml:"import_paths" yaml:"import_paths"`

	// MaxDepth bounds active function calls. Zero uses the default.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`

	// MaxLoopIterations bounds each loop. Zero uses the default and a
	// negative value disables the check.
	MaxLoopIterations int `toml:"max_loop_iterations" yaml:"max_loop_iterations"`

	// Optimize enables constant folding.
	Optimize bool `toml:"optimize" yaml:"optimize"`

	// CacheFile persists import resolution between runs. Relative to the
	// config file's directory.
	CacheFile string `toml:"cache_file" yaml:"cache_file"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Timeout bounds a whole run, for example "30s". Empty means no limit.
	Timeout string `toml:"timeout" yaml:"timeout"`

	// Globals are defined in the global environment of every session.
	Globals map[string]any `toml:"globals" yaml:"globals"`

	// Dir is the directory of the file the config was loaded from.
	Dir string `toml:"-" yaml:"-"`
}

// LoadConfig reads a config file. The format is chosen by extension:
// .toml, or .yaml and .yml. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(absPath)); ext {
	case ".toml":
		md, err := toml.DecodeFile(absPath, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config: %s: unknown keys %s", absPath, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		file, err := os.Open(absPath)
		if err != nil {
			return nil, fmt.Errorf("config: open %s: %w", absPath, err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}

	cfg.Dir = filepath.Dir(absPath)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", absPath, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	if c.MaxDepth < 0 {
		issues = append(issues, "max_depth must not be negative")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("timeout: %v", err))
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log_level: unknown level %q", c.LogLevel))
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

// TimeoutDuration returns the parsed Timeout, zero when unset.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Options converts the config into interpreter options. The import cache,
// if configured, is loaded from disk and owned by the one session built from
// the options.
func (c *Config) Options() ([]Option, error) {
	ic, err := c.ImportCache()
	if err != nil {
		return nil, err
	}
	return c.SessionOptions(ic), nil
}

// ImportCache loads the configured cache file. It returns nil when no cache
// file is configured. Sessions running concurrently should share the
// returned cache through SessionOptions and save it once.
func (c *Config) ImportCache() (*cache.ImportCache, error) {
	if c.CacheFile == "" {
		return nil, nil
	}
	ic := cache.NewImportCache(c.Dir, c.resolve(c.CacheFile))
	if err := ic.Load(); err != nil {
		return nil, fmt.Errorf("loading import cache: %w", err)
	}
	return ic, nil
}

// SessionOptions is like Options but uses ic, which may be nil, instead of
// loading the cache file.
func (c *Config) SessionOptions(ic *cache.ImportCache) []Option {
	var opts []Option
	for _, p := range c.ImportPaths {
		opts = append(opts, WithImportPaths(c.resolve(p)))
	}
	if c.MaxDepth != 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}
	if c.MaxLoopIterations != 0 {
		opts = append(opts, WithMaxLoopIterations(c.MaxLoopIterations))
	}
	if c.Optimize {
		opts = append(opts, WithOptimize(true))
	}
	if len(c.Globals) > 0 {
		opts = append(opts, WithGlobals(c.Globals))
	}
	if ic != nil {
		opts = append(opts, WithImportCache(ic))
	}
	return opts
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
