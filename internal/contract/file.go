package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes is the largest accepted upload (5 MiB, inclusive)
const MaxUploadBytes int64 = 5 * 1024 * 1024

// DefaultAllowedExtensions is the canonical upload allow-list
var DefaultAllowedExtensions = []string{".cpp", ".hpp", ".h", ".c", ".sol", ".vy", ".rs", ".move", ".txt"}

// SelectedFile is a chosen upload, kept verbatim for submission
type SelectedFile struct {
	Name        string
	Path        string
	Ext         string
	Size        int64
	ContentType string
	Data        []byte
}

// FileRules validates upload candidates
type FileRules struct {
	AllowedExtensions []string
	MaxBytes          int64
}

// DefaultFileRules returns the canonical allow-list and the 5 MiB limit
func DefaultFileRules() FileRules {
	return FileRules{
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		MaxBytes:          MaxUploadBytes,
	}
}

// Allows reports whether name carries an allowed extension
func (r FileRules) Allows(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range r.AllowedExtensions {
		if normalizeExt(allowed) == ext {
			return true
		}
	}
	return false
}

// Check validates a candidate by name and size without reading it
func (r FileRules) Check(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("select", "no file chosen")
	}
	if !r.Allows(name) {
		return NewValidationError("select", fmt.Sprintf("unsupported file type %q. %s", filepath.Ext(name), r.Describe()))
	}
	if size > r.maxBytes() {
		return NewValidationError("select", fmt.Sprintf("file is %s, larger than the %s limit", HumanBytes(size), HumanBytes(r.maxBytes())))
	}
	return nil
}

// Describe renders the allow-list for pickers and error messages
func (r FileRules) Describe() string {
	return "Allowed file types: " + strings.Join(r.Extensions(), ", ")
}

// Extensions returns the normalized, sorted allow-list
func (r FileRules) Extensions() []string {
	exts := make([]string, 0, len(r.AllowedExtensions))
	seen := make(map[string]bool, len(r.AllowedExtensions))
	for _, e := range r.AllowedExtensions {
		n := normalizeExt(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		exts = append(exts, n)
	}
	sort.Strings(exts)
	return exts
}

func (r FileRules) maxBytes() int64 {
	if r.MaxBytes <= 0 {
		return MaxUploadBytes
	}
	return r.MaxBytes
}

// OpenFile validates path against the rules and reads it.
// Nothing is read when validation fails.
func OpenFile(path string, rules FileRules) (*SelectedFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewValidationError("select", "no file chosen")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewValidationError("select", fmt.Sprintf("file does not exist: %s", cleanPath))
		}
		return nil, &Error{Kind: ErrKindValidation, Op: "select", Message: "cannot access file", Cause: err}
	}
	if info.IsDir() {
		return nil, NewValidationError("select", fmt.Sprintf("path is a directory, not a file: %s", cleanPath))
	}

	if err := rules.Check(info.Name(), info.Size()); err != nil {
		return nil, err
	}

	// #nosec G304 - path is validated above
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, NewParseError("select", "failed to read file", err)
	}

	// the file may have grown between stat and read
	if err := rules.Check(info.Name(), int64(len(data))); err != nil {
		return nil, err
	}

	return NewSelectedFile(info.Name(), cleanPath, data), nil
}

// NewSelectedFile wraps in-memory bytes as an upload
func NewSelectedFile(name, path string, data []byte) *SelectedFile {
	return &SelectedFile{
		Name:        name,
		Path:        path,
		Ext:         strings.ToLower(filepath.Ext(name)),
		Size:        int64(len(data)),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// DecodeText decodes file bytes for display
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", NewParseError("decode", "file is not valid UTF-8 text", nil)
	}
	text := string(data)
	// strip a UTF-8 byte order mark
	return strings.TrimPrefix(text, "\ufeff"), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// HumanBytes renders a byte count as B, KiB, MiB...
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
