package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.contractlens.yaml",               // Project-specific config (highest priority)
	"~/.config/contractlens/config.yaml", // User config
	"/etc/contractlens/config.yaml",      // System config (lowest priority)
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "CONTRACTLENS_"

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	warn        func(format string, args ...interface{})
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables, including a local .env file loaded by main
// 3. ./.contractlens.yaml
// 4. ~/.config/contractlens/config.yaml
// 5. /etc/contractlens/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				l.warn("failed to load config from %s: %v", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile layers a YAML file over config. Keys absent from the file keep their current values.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// decode into a copy so a parse error leaves config untouched
	layered := *config
	layered.Upload.AllowedExtensions = append([]string(nil), config.Upload.AllowedExtensions...)
	if err := yaml.Unmarshal(data, &layered); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	*config = layered

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Analyzer
		"ANALYZER_ENDPOINT":         func(v string) error { config.Analyzer.Endpoint = v; return nil },
		"ANALYZER_FIELD_NAME":       func(v string) error { config.Analyzer.FieldName = v; return nil },
		"ANALYZER_DEFAULT_FILENAME": func(v string) error { config.Analyzer.DefaultFilename = v; return nil },
		"ANALYZER_TIMEOUT":          func(v string) error { return parseDuration(v, &config.Analyzer.Timeout) },
		"ANALYZER_USER_AGENT":       func(v string) error { config.Analyzer.UserAgent = v; return nil },

		// Upload
		"UPLOAD_MAX_BYTES":          func(v string) error { return parseInt64(v, &config.Upload.MaxBytes) },
		"UPLOAD_ALLOWED_EXTENSIONS": func(v string) error { config.Upload.AllowedExtensions = splitList(v); return nil },

		// GitHub
		"GITHUB_HOST":      func(v string) error { config.GitHub.Host = v; return nil },
		"GITHUB_RAW_HOST":  func(v string) error { config.GitHub.RawHost = v; return nil },
		"GITHUB_TOKEN":     func(v string) error { config.GitHub.Token = v; return nil },
		"GITHUB_TIMEOUT":   func(v string) error { return parseDuration(v, &config.GitHub.Timeout) },
		"GITHUB_MAX_BYTES": func(v string) error { return parseInt64(v, &config.GitHub.MaxBytes) },

		// Editor and UI
		"EDITOR_PLACEHOLDER": func(v string) error { config.Editor.Placeholder = v; return nil },
		"UI_THEME":           func(v string) error { config.UI.Theme = v; return nil },
		"UI_TOAST_DURATION":  func(v string) error { return parseDuration(v, &config.UI.ToastDuration) },
		"UI_LOG_FILE":        func(v string) error { config.UI.LogFile = v; return nil },

		// Output
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },

		// Analysis and watch
		"ANALYSIS_CONCURRENCY": func(v string) error { return parseInt(v, &config.Analysis.Concurrency) },
		"WATCH_DEBOUNCE":       func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// splitList splits a comma-separated list, trimming whitespace and dropping empty items
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
