// Package github turns GitHub blob URLs into raw-content URLs and fetches them.
package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yildizm/ContractLens/internal/contract"
)

const (
	DefaultHost    = "github.com"
	DefaultRawHost = "raw.githubusercontent.com"
)

// RawURL rewrites a github.com blob URL to its raw.githubusercontent.com form
// using the default hosts
func RawURL(raw string) (string, error) {
	return rawURL(raw, DefaultHost, DefaultRawHost)
}

// rawURL replaces host with rawHost and drops the /blob/ segment.
// URLs already on rawHost are returned unchanged.
func rawURL(raw, host, rawHost string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", contract.NewValidationError("import", "please enter a GitHub URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", contract.NewValidationError("import", fmt.Sprintf("invalid URL: %v", err))
	}
	if u.Scheme == "" || u.Host == "" {
		return "", contract.NewValidationError("import", fmt.Sprintf("invalid URL %q: scheme and host are required", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", contract.NewValidationError("import", fmt.Sprintf("unsupported URL scheme %q", u.Scheme))
	}

	switch {
	case strings.EqualFold(u.Host, rawHost):
		return u.String(), nil
	case strings.EqualFold(u.Host, host):
		u.Host = rawHost
		u.Path = strings.Replace(u.Path, "/blob/", "/", 1)
		if u.RawPath != "" {
			u.RawPath = strings.Replace(u.RawPath, "/blob/", "/", 1)
		}
		return u.String(), nil
	default:
		return "", contract.NewValidationError("import",
			fmt.Sprintf("unsupported host %q: expected %s or %s", u.Host, host, rawHost))
	}
}
