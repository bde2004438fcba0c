// Package analysis submits contract source to the remote analysis service and
// decodes the returned issues.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"github.com/yildizm/ContractLens/internal/contract"
	"github.com/yildizm/ContractLens/internal/logger"
)

// Client posts payloads to the analysis endpoint
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
	return func(c *Client) { c.log = l.WithComponent("analysis") }
}

// New creates an analysis client
func New(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    logger.New("analysis", nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured endpoint
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Analyze submits p as a single multipart file part and decodes the result
func (c *Client) Analyze(ctx context.Context, p *contract.Payload) (*Result, error) {
	if p == nil {
		return nil, contract.NewValidationError("submit", "payload is required")
	}

	body, contentType, err := c.encode(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return nil, contract.NewNetworkError("submit", "failed to create request", err)
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.log.DebugWithFields("submitting %s", []logger.Field{
		logger.F("request_id", requestID),
		logger.F("bytes", p.Size()),
		logger.F("origin", p.Origin),
	}, p.FileName)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, contract.NewCanceledError("submit", ctxErr)
		}
		return nil, contract.NewNetworkError("submit", "analysis service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes()+1))
	if err != nil {
		return nil, contract.NewNetworkError("submit", "failed to read response", err)
	}
	if int64(len(data)) > c.maxResponseBytes() {
		return nil, contract.NewParseError("submit", fmt.Sprintf("response exceeds %d bytes", c.maxResponseBytes()), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contract.NewStatusError("submit", resp.StatusCode, statusMessage(data))
	}

	result, err := DecodeResult(data)
	if err != nil {
		return nil, err
	}

	c.log.InfoWithFields("analysis complete", []logger.Field{
		logger.F("request_id", requestID),
		logger.Count(result.Count()),
	})
	return result, nil
}

// DecodeResult validates and decodes a response body
func DecodeResult(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, contract.NewParseError("submit", "empty response body", nil)
	}
	if err := validateResponse(data); err != nil {
		return nil, contract.NewParseError("submit", "malformed analysis response", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, contract.NewParseError("submit", "malformed analysis response", err)
	}
	if result.Issues == nil {
		result.Issues = []Issue{}
	}
	return &result, nil
}

// encode writes exactly one file part carrying the payload
func (c *Client) encode(p *contract.Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(c.config.FieldName), escapeQuotes(p.FileName)))
	header.Set("Content-Type", p.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", contract.NewParseError("submit", "failed to build request body", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return nil, "", contract.NewParseError("submit", "failed to build request body", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", contract.NewParseError("submit", "failed to build request body", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func (c *Client) maxResponseBytes() int64 {
	if c.config.MaxResponseBytes <= 0 {
		return DefaultMaxResponseBytes
	}
	return c.config.MaxResponseBytes
}

// statusMessage extracts a short description from an error body
func statusMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "analysis service returned an error"
	}
	if len(text) > 200 {
		text = text[:197] + "..."
	}
	return text
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that Analyze sends as X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID attached to ctx
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
