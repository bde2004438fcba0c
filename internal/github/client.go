package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/logger"
)

// DefaultMaxBytes caps an imported file
const DefaultMaxBytes int64 = contract.MaxUploadBytes

// Config configures the importer
type Config struct {
	Host     string        `json:"host"`
	RawHost  string        `json:"raw_host"`
	Token    string        `json:"-"`
	Timeout  time.Duration `json:"timeout"`
	MaxBytes int64         `json:"max_bytes"`
}

// DefaultConfig returns the public GitHub hosts with no timeout
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		RawHost:  DefaultRawHost,
		MaxBytes: DefaultMaxBytes,
	}
}

// Client fetches raw file content
type Client struct {
	config *Config
	client *http.Client
	log    *logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent("github") }
}

// New creates an importer
func New(config *Config, opts ...Option) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.RawHost == "" {
		config.RawHost = DefaultRawHost
	}

	c := &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    logger.New("github", nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RawURL transforms raw using the configured hosts
func (c *Client) RawURL(raw string) (string, error) {
	return rawURL(raw, c.config.Host, c.config.RawHost)
}

// Fetch downloads the raw content behind a blob URL as text
func (c *Client) Fetch(ctx context.Context, blobURL string) (string, error) {
	target, err := c.RawURL(blobURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", contract.NewNetworkError("import", "failed to create request", err)
	}
	req.Header.Set("Accept", "text/plain")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	c.log.DebugWithFields("fetching raw content", []logger.Field{logger.F("url", target)})

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", contract.NewCanceledError("import", ctxErr)
		}
		return "", contract.NewNetworkError("import", "failed to fetch from GitHub", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", contract.NewStatusError("import", resp.StatusCode,
			fmt.Sprintf("failed to fetch from GitHub: %s", strings.TrimSpace(http.StatusText(resp.StatusCode))))
	}

	limit := c.maxBytes()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", contract.NewCanceledError("import", ctxErr)
		}
		return "", contract.NewNetworkError("import", "failed to read response", err)
	}
	if int64(len(data)) > limit {
		return "", contract.NewValidationError("import", fmt.Sprintf("imported file exceeds %d bytes", limit))
	}

	text, err := contract.DecodeText(data)
	if err != nil {
		return "", err
	}

	c.log.InfoWithFields("imported contract", []logger.Field{
		logger.F("url", target),
		logger.F("bytes", len(data)),
		logger.Duration(time.Since(start)),
	})
	return text, nil
}

func (c *Client) maxBytes() int64 {
	if c.config.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return c.config.MaxBytes
}
