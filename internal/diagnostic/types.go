package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/instancio/instancio-sub017/internal/common"
)

// Diagnostic codes.
const (
	CodeUnusedSelector   = "unused_selector"
	CodeUnresolvedType   = "unresolved_type"
	CodeSelectorTie      = "selector_tie"
	CodeMapKeyRetries    = "map_key_retries"
	CodeFeedColumn       = "feed_column"
	CodeSkippedDirective = "skipped_directive"
)

// Diagnostics holds all diagnostic information from a creation request.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Subject identifies the selector or type this relates to (if any).
	Subject string
	// Path identifies the node this relates to (if any).
	Path string
	// Cause is the error behind the diagnostic (if any).
	Cause error
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, subject, path string, cause error) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Path:     path,
		Cause:    cause,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, subject, path string, cause error) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Path:     path,
		Cause:    cause,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, subject, path string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Path:     path,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Promote turns all warnings into errors, as strict mode requires.
func (d *Diagnostics) Promote() {
	for _, w := range d.Warnings {
		w.Severity = DiagnosticError
		d.Errors = append(d.Errors, w)
	}

	d.Warnings = nil
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
// The result wraps the causes of the individual diagnostics.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var (
		parts  []string
		causes []error
	)

	for _, e := range d.Errors {
		parts = append(parts, e.String())
		if e.Cause != nil {
			causes = append(causes, e.Cause)
		}
	}

	return &combinedError{msg: strings.Join(parts, "; "), causes: causes}
}

type combinedError struct {
	msg    string
	causes []error
}

func (e *combinedError) Error() string   { return e.msg }
func (e *combinedError) Unwrap() []error { return e.causes }

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Subject != "" {
		prefix = append(prefix, "["+d.Subject+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// Err returns the diagnostic as an error wrapping its cause.
func (d Diagnostic) Err() error {
	if d.Cause == nil {
		return errors.New(d.String())
	}

	return fmt.Errorf("%s: %w", d.String(), d.Cause)
}
