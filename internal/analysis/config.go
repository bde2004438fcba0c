package analysis

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/ContractLens/internal/contract"
)

const (
	DefaultEndpoint  = "http://localhost:8080/analyze"
	DefaultFieldName = "file"
	DefaultUserAgent = "contractlens"
	// DefaultMaxResponseBytes caps how much of a response body is read
	DefaultMaxResponseBytes = 10 * 1024 * 1024
)

// Config configures the analysis client
type Config struct {
	Endpoint  string        `json:"endpoint"`
	FieldName string        `json:"field_name"`
	UserAgent string        `json:"user_agent"`
	Timeout   time.Duration `json:"timeout"` // 0 disables the client timeout
	// MaxResponseBytes caps the response body
	MaxResponseBytes int64 `json:"max_response_bytes"`
}

// DefaultConfig returns a config pointing at a local analysis service
func DefaultConfig() *Config {
	return &Config{
		Endpoint:         DefaultEndpoint,
		FieldName:        DefaultFieldName,
		UserAgent:        DefaultUserAgent,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Validate checks the client configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return contract.NewValidationError("config", "analysis endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return contract.NewValidationError("config", fmt.Sprintf("invalid analysis endpoint: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return contract.NewValidationError("config", fmt.Sprintf("analysis endpoint must be http or https, got %q", u.Scheme))
	}
	if c.FieldName == "" {
		return contract.NewValidationError("config", "multipart field name is required")
	}
	if c.Timeout < 0 {
		return contract.NewValidationError("config", "timeout must be non-negative")
	}
	return nil
}
