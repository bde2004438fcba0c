package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yildizm/ContractLens/internal/analysis"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/github"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Analyzer AnalyzerConfig `yaml:"analyzer" json:"analyzer"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	GitHub   GitHubConfig   `yaml:"github" json:"github"`
	Editor   EditorConfig   `yaml:"editor" json:"editor"`
	UI       UIConfig       `yaml:"ui" json:"ui"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// AnalyzerConfig configures the remote analysis service
type AnalyzerConfig struct {
	Endpoint        string        `yaml:"endpoint" json:"endpoint" validate:"required,url"`
	FieldName       string        `yaml:"field_name" json:"field_name" validate:"required"`
	DefaultFilename string        `yaml:"default_filename" json:"default_filename" validate:"required"` // name used for typed text
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`                                       // 0 waits indefinitely
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
}

// UploadConfig configures which local files may be chosen
type UploadConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions" validate:"min=1,dive,required"`
	MaxBytes          int64    `yaml:"max_bytes" json:"max_bytes" validate:"min=1"`
}

// GitHubConfig configures imports from GitHub
type GitHubConfig struct {
	Host     string        `yaml:"host" json:"host" validate:"required"`
	RawHost  string        `yaml:"raw_host" json:"raw_host" validate:"required"`
	Token    string        `yaml:"token" json:"-"` // optional, sent as a bearer token
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	MaxBytes int64         `yaml:"max_bytes" json:"max_bytes" validate:"min=1"`
}

// EditorConfig configures the editor widget
type EditorConfig struct {
	Placeholder string `yaml:"placeholder" json:"placeholder"`
}

// UIConfig configures the interactive interface
type UIConfig struct {
	Theme         string        `yaml:"theme" json:"theme" validate:"omitempty,oneof=default high-contrast minimal"`
	ToastDuration time.Duration `yaml:"toast_duration" json:"toast_duration"`
	LogFile       string        `yaml:"log_file" json:"log_file"` // where logs go while the TUI owns the terminal
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format" validate:"omitempty,oneof=text json markdown csv sarif"`
	ColorMode     string `yaml:"color_mode" json:"color_mode" validate:"omitempty,oneof=auto always never"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// AnalysisConfig configures batch analysis from the CLI
type AnalysisConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"min=1,max=64"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analyzer: AnalyzerConfig{
			Endpoint:        analysis.DefaultEndpoint,
			FieldName:       analysis.DefaultFieldName,
			DefaultFilename: contract.DefaultFileName,
			Timeout:         0,
			UserAgent:       analysis.DefaultUserAgent,
		},
		Upload: UploadConfig{
			AllowedExtensions: append([]string(nil), contract.DefaultAllowedExtensions...),
			MaxBytes:          contract.MaxUploadBytes,
		},
		GitHub: GitHubConfig{
			Host:     github.DefaultHost,
			RawHost:  github.DefaultRawHost,
			Timeout:  0,
			MaxBytes: github.DefaultMaxBytes,
		},
		Editor: EditorConfig{
			Placeholder: "Paste your smart contract here...",
		},
		UI: UIConfig{
			Theme:         "default",
			ToastDuration: 4 * time.Second,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		Analysis: AnalysisConfig{
			Concurrency: 4,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

var validate = newValidator()

// newValidator reports field names by their yaml keys
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}
	if err := c.validateTimeoutConfig(); err != nil {
		return err
	}
	if err := c.validateUploadConfig(); err != nil {
		return err
	}
	if err := c.validateGitHubConfig(); err != nil {
		return err
	}
	return nil
}

// describeValidationError turns the first validator failure into a readable message
func describeValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fe := validationErrors[0]
	// drop the root struct name from config.analyzer.endpoint
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "url":
		return fmt.Errorf("%s must be a valid URL, got %q", field, fe.Value())
	case "oneof":
		return fmt.Errorf("invalid %s: %v (must be one of: %s)", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
}

// validateTimeoutConfig validates timeout-related configuration
func (c *Config) validateTimeoutConfig() error {
	if c.Analyzer.Timeout < 0 {
		return fmt.Errorf("analyzer.timeout must be non-negative")
	}
	if c.GitHub.Timeout < 0 {
		return fmt.Errorf("github.timeout must be non-negative")
	}
	if c.UI.ToastDuration < 0 {
		return fmt.Errorf("ui.toast_duration must be non-negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be non-negative")
	}
	return nil
}

// validateUploadConfig validates the upload allow-list
func (c *Config) validateUploadConfig() error {
	for _, ext := range c.Upload.AllowedExtensions {
		trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if trimmed == "" || strings.ContainsAny(trimmed, `/\ .`) {
			return fmt.Errorf("invalid upload extension: %q", ext)
		}
	}
	return nil
}

// validateGitHubConfig validates the import hosts
func (c *Config) validateGitHubConfig() error {
	if strings.EqualFold(c.GitHub.Host, c.GitHub.RawHost) {
		return fmt.Errorf("github.host and github.raw_host must differ")
	}
	return nil
}

// FileRules returns the upload rules shared by the picker, the error messages and the session
func (c *Config) FileRules() contract.FileRules {
	return contract.FileRules{
		AllowedExtensions: c.Upload.AllowedExtensions,
		MaxBytes:          c.Upload.MaxBytes,
	}
}

// AnalyzerClientConfig returns the analysis client configuration
func (c *Config) AnalyzerClientConfig() *analysis.Config {
	return &analysis.Config{
		Endpoint:         c.Analyzer.Endpoint,
		FieldName:        c.Analyzer.FieldName,
		UserAgent:        c.Analyzer.UserAgent,
		Timeout:          c.Analyzer.Timeout,
		MaxResponseBytes: analysis.DefaultMaxResponseBytes,
	}
}

// GitHubClientConfig returns the importer configuration
func (c *Config) GitHubClientConfig() *github.Config {
	return &github.Config{
		Host:     c.GitHub.Host,
		RawHost:  c.GitHub.RawHost,
		Token:    c.GitHub.Token,
		Timeout:  c.GitHub.Timeout,
		MaxBytes: c.GitHub.MaxBytes,
	}
}
