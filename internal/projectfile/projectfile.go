// Package projectfile loads the optional lambdapi.yaml project
// configuration, grounded on funxy's internal/ext/config.go: the same
// gopkg.in/yaml.v3 load/validate/defaults shape, pared down to what
// spec.md 4.12 actually needs (import search paths, the eval step
// budget, and check-warning verbosity) instead of funxy's Go-binding
// dependency declarations.
package projectfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/lambdapi/internal/config"
)

// Config is the top-level lambdapi.yaml configuration.
type Config struct {
	// SearchPaths lists directories searched, in order, for a module
	// referenced by an `import` directive whose path is not already
	// loaded.
	SearchPaths []string `yaml:"search_paths,omitempty"`

	// StepBudget overrides config.DefaultStepBudget for every `eval`
	// directive.
	StepBudget int `yaml:"step_budget,omitempty"`

	// QuietChecks suppresses the warning a non-asserting `check`
	// directive would otherwise print to stderr on failure.
	QuietChecks bool `yaml:"quiet_checks,omitempty"`

	// CacheFile is the internal/objstore sqlite file used for the
	// persistent object cache. Empty means "no cache, compile from
	// source every time".
	CacheFile string `yaml:"cache_file,omitempty"`
}

// LoadConfig reads and parses a lambdapi.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses lambdapi.yaml content from bytes. path is used
// only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for config.ProjectFileName starting from dir
// and walking up to parent directories, mirroring ext.FindConfig's
// .gitignore-style search. Returns "" with a nil error if no project
// file is found -- its absence is not an error (spec.md 4.12).
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, config.ProjectFileName)
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

func (c *Config) validate(path string) error {
	if c.StepBudget < 0 {
		return fmt.Errorf("%s: step_budget must not be negative, got %d", path, c.StepBudget)
	}
	for i, p := range c.SearchPaths {
		if p == "" {
			return fmt.Errorf("%s: search_paths[%d] is empty", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.StepBudget == 0 {
		c.StepBudget = config.DefaultStepBudget
	}
	if len(c.SearchPaths) == 0 {
		c.SearchPaths = []string{"."}
	}
}

// ResolveImport searches SearchPaths (relative to projectDir) for a
// source file named modulePath with any of config.SourceFileExtensions,
// in search-path order.
func (c *Config) ResolveImport(projectDir, modulePath string) (string, bool) {
	for _, sp := range c.SearchPaths {
		base := sp
		if !filepath.IsAbs(base) {
			base = filepath.Join(projectDir, base)
		}
		for _, ext := range config.SourceFileExtensions {
			candidate := filepath.Join(base, modulePath+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}
