// Package config loads the techmap build configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"techmap/internal/resolve"
)

// Defaults applied to fields left empty.
const (
	DefaultVersion  = "2.2"
	DefaultLogLevel = "info"
	DefaultFileName = "techmap.yaml"
)

// Config is the build configuration. Relative paths in a loaded file are
// resolved against the file's directory.
type Config struct {
	// SpecsDir holds one specification file per criterion.
	SpecsDir string `yaml:"specs_dir"`
	// CriteriaFile lists the guideline nodes.
	CriteriaFile string `yaml:"criteria_file"`
	// TechniquesFile is the technique registry, used by check.
	TechniquesFile string `yaml:"techniques_file"`
	// Version selects the guideline version to resolve.
	Version string `yaml:"version"`
	// Output is where the YAML index is written; empty means stdout.
	Output string `yaml:"output"`
	// StoreDir is the BadgerDB directory; empty disables persistence.
	StoreDir string `yaml:"store_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// SingularQuantities overrides the usingQuantity words phrased in the singular.
	SingularQuantities []string `yaml:"singular_quantities"`
}

// Default returns a configuration with defaults applied.
func Default() Config {
	return Config{
		Version:  DefaultVersion,
		LogLevel: DefaultLogLevel,
	}
}

// Parse parses a configuration document. Unknown keys and multiple
// documents are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("parse config: multiple YAML documents are not supported")
	}

	cfg.applyDefaults()

	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}

	cfg.ResolvePaths(filepath.Dir(path))

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Version) == "" {
		c.Version = DefaultVersion
	}

	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// ResolvePaths makes every relative path absolute against base.
func (c *Config) ResolvePaths(base string) {
	for _, p := range []*string{&c.SpecsDir, &c.CriteriaFile, &c.TechniquesFile, &c.Output, &c.StoreDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}

	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}

	return strings.Join(lines, "\n")
}

// Validate checks field formats and that the named inputs exist. The
// fields listed in required must also be set.
func (c Config) Validate(required ...string) error {
	var issues []Issue

	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	values := map[string]string{
		"specs_dir":       c.SpecsDir,
		"criteria_file":   c.CriteriaFile,
		"techniques_file": c.TechniquesFile,
		"output":          c.Output,
		"store_dir":       c.StoreDir,
	}

	for _, field := range required {
		if strings.TrimSpace(values[field]) == "" {
			add(field, "is required")
		}
	}

	checkPath := func(field, path string, wantDir bool) {
		if path == "" {
			return
		}

		info, err := os.Stat(path)

		switch {
		case err != nil:
			add(field, fmt.Sprintf("%s: %v", path, errors.Unwrap(err)))
		case wantDir && !info.IsDir():
			add(field, fmt.Sprintf("%s is not a directory", path))
		case !wantDir && info.IsDir():
			add(field, fmt.Sprintf("%s is a directory", path))
		}
	}

	checkPath("specs_dir", c.SpecsDir, true)
	checkPath("criteria_file", c.CriteriaFile, false)
	checkPath("techniques_file", c.TechniquesFile, false)

	if c.Version == "" || strings.Contains(c.Version, "/") {
		add("version", fmt.Sprintf("invalid guideline version %q", c.Version))
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		add("log_level", err.Error())
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	return nil
}

// SlogLevel maps LogLevel onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}

	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ResolveConfig builds the resolution configuration for logger.
func (c Config) ResolveConfig(logger *slog.Logger) resolve.Config {
	rc := resolve.DefaultConfig()
	rc.Logger = logger

	if len(c.SingularQuantities) > 0 {
		rc.SingularQuantities = c.SingularQuantities
	}

	return rc
}
