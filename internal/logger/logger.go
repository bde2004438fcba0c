package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// VerboseChecker reports whether debug and info lines should be written
type VerboseChecker interface {
	IsVerbose() bool
}

// sink is shared by every logger derived from the same root so SetOutput
// redirects them all at once
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Logger writes component-tagged lines; Debug and Info only when verbose
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	out            *sink
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// New creates a logger writing to stderr
func New(component string, verboseChecker VerboseChecker) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		out:            &sink{w: os.Stderr},
	}
}

// NewWithCallback creates a logger whose verbosity is read from verboseCheck on every call
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, &callbackChecker{callback: verboseCheck})
}

// WithComponent derives a logger sharing the same output and verbosity
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		out:            l.out,
	}
}

// SetOutput redirects this logger and every logger derived from it.
// The TUI uses it to keep log lines off the alternate screen.
func (l *Logger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	l.out.mu.Lock()
	l.out.w = w
	l.out.mu.Unlock()
}

type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

func (l *Logger) verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

// Debug logs debug messages (only when verbose=true)
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.verbose() {
		l.logWithFields("DEBUG", msg, nil, args...)
	}
}

// Info logs informational messages (only when verbose=true)
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.verbose() {
		l.logWithFields("INFO", msg, nil, args...)
	}
}

// Warn logs warning messages (always shown)
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logWithFields("WARN", msg, nil, args...)
}

// Error logs error messages (always shown)
func (l *Logger) Error(msg string, args ...interface{}) {
	l.logWithFields("ERROR", msg, nil, args...)
}

// DebugWithFields logs debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.logWithFields("DEBUG", msg, fields, args...)
	}
}

// InfoWithFields logs info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	if l.verbose() {
		l.logWithFields("INFO", msg, fields, args...)
	}
}

// WarnWithFields logs a warning with structured fields
func (l *Logger) WarnWithFields(msg string, fields []Field, args ...interface{}) {
	l.logWithFields("WARN", msg, fields, args...)
}

func (l *Logger) logWithFields(level, msg string, fields []Field, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	component := l.component
	if component == "" {
		component = "main"
	}

	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}

	var fieldsStr string
	if len(fields) > 0 {
		fieldStrings := make([]string, 0, len(fields))
		for _, field := range fields {
			fieldStrings = append(fieldStrings, fmt.Sprintf("%s=%v", field.Key, field.Value))
		}
		fieldsStr = fmt.Sprintf(" [%s]", strings.Join(fieldStrings, " "))
	}

	line := fmt.Sprintf("[%s] %s [%s] %s%s\n", timestamp, level, component, formattedMsg, fieldsStr)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	// nothing useful can be done when the log sink itself fails
	_, _ = io.WriteString(l.out.w, line)
}

// F builds a field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
