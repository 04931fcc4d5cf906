package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of a diagnostic.
type ErrorCode string

const (
	// ErrMalformedInput indicates the document is not well-formed markup.
	ErrMalformedInput ErrorCode = "malformed-input"
	// ErrPrematureEOFCode indicates the token stream ended inside an open element.
	ErrPrematureEOFCode ErrorCode = "premature-eof"

	// ErrUnknownElement indicates an element the active handler does not recognize.
	ErrUnknownElement ErrorCode = "unknown-element"
	// ErrUnknownAttribute indicates an attribute the active handler does not recognize.
	ErrUnknownAttribute ErrorCode = "unknown-attribute"
	// ErrUnknownStereotype indicates a stereotype outside the well-known vocabulary.
	ErrUnknownStereotype ErrorCode = "unknown-stereotype"
	// ErrDuplicateID indicates two entities share one identifier.
	ErrDuplicateID ErrorCode = "duplicate-id"
	// ErrDuplicateSequenceKey indicates two sibling properties share a sequence key.
	ErrDuplicateSequenceKey ErrorCode = "duplicate-sequence-key"
	// ErrInvalidValue indicates a leaf value could not be parsed.
	ErrInvalidValue ErrorCode = "invalid-value"
	// ErrNonNavigableIgnored indicates a non-navigable class property was dropped.
	ErrNonNavigableIgnored ErrorCode = "non-navigable-ignored"

	// ErrUnresolvedReference indicates an identifier that names no registered entity.
	ErrUnresolvedReference ErrorCode = "unresolved-reference"
	// ErrInheritedConstraintRemoved indicates an over-attached inherited constraint was dropped.
	ErrInheritedConstraintRemoved ErrorCode = "inherited-constraint-removed"

	// ErrInvalidConfiguration indicates a missing or syntactically invalid unit parameter.
	ErrInvalidConfiguration ErrorCode = "invalid-configuration"
	// ErrUnknownRule indicates a rule name no unit declares.
	ErrUnknownRule ErrorCode = "unknown-rule"
	// ErrTransformation indicates a unit could not apply a change to one element.
	ErrTransformation ErrorCode = "transformation"
	// ErrAssociationClassRemoved indicates an association class was dropped with its association.
	ErrAssociationClassRemoved ErrorCode = "association-class-removed"

	// ErrProfileInconsistency indicates inconsistent profile declarations.
	ErrProfileInconsistency ErrorCode = "profile-inconsistency"
	// ErrModelDifference indicates a structural difference between two snapshots.
	ErrModelDifference ErrorCode = "model-difference"
	// ErrFileSkipped indicates a file was skipped during a nested load.
	ErrFileSkipped ErrorCode = "file-skipped"
)

var (
	// ErrMalformed is wrapped by every fatal error caused by ill-formed markup.
	ErrMalformed = errors.New("malformed model document")
	// ErrPrematureEOF is wrapped when the stream ends before the root element closes.
	ErrPrematureEOF = errors.New("premature end of model document")
)

// Severity orders diagnostics from informational to fatal.
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Diagnostic describes a recoverable condition found while loading or
// transforming a model. Subject names the entity or element concerned.
//
//nolint:errname // public API name uses the domain term.
type Diagnostic struct {
	Code     string
	Message  string
	Subject  string
	Severity Severity
	Line     int
	Column   int
}

// DiagnosticList is an error that wraps one or more diagnostics.
type DiagnosticList []Diagnostic //nolint:errname // public API name, keep for compatibility.

// Error returns a compact summary of the diagnostics.
func (d DiagnosticList) Error() string {
	switch len(d) {
	case 0:
		return "no diagnostics"
	case 1:
		return d[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", d[0].Error(), len(d)-1)
	}
}

// Filter returns the diagnostics at or above minimum.
func (d DiagnosticList) Filter(minimum Severity) DiagnosticList {
	var out DiagnosticList
	for _, diag := range d {
		if diag.Severity >= minimum {
			out = append(out, diag)
		}
	}
	return out
}

// WithCode returns the diagnostics carrying code.
func (d DiagnosticList) WithCode(code ErrorCode) DiagnosticList {
	var out DiagnosticList
	for _, diag := range d {
		if diag.Code == string(code) {
			out = append(out, diag)
		}
	}
	return out
}

// Error formats the diagnostic for display, including severity, code and context.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "diagnostic <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message))
	if d.Subject != "" {
		b.WriteString(fmt.Sprintf(" (subject: %s)", d.Subject))
	}
	if d.Line > 0 && d.Column > 0 {
		b.WriteString(fmt.Sprintf(" at line %d, column %d", d.Line, d.Column))
	}
	return b.String()
}

// NewDiagnostic builds a Diagnostic with a code, severity, message and subject.
func NewDiagnostic(code ErrorCode, sev Severity, msg, subject string) Diagnostic {
	return Diagnostic{Code: string(code), Severity: sev, Message: msg, Subject: subject}
}

// NewDiagnosticf formats a message and builds a Diagnostic.
func NewDiagnosticf(code ErrorCode, sev Severity, subject, format string, args ...any) Diagnostic {
	return NewDiagnostic(code, sev, fmt.Sprintf(format, args...), subject)
}

// AsDiagnostics extracts diagnostics from an error returned by Sink.Err.
func AsDiagnostics(err error) ([]Diagnostic, bool) {
	if err == nil {
		return nil, false
	}
	var list DiagnosticList
	if errors.As(err, &list) {
		return []Diagnostic(list), true
	}
	var listPtr *DiagnosticList
	if errors.As(err, &listPtr) && listPtr != nil {
		return []Diagnostic(*listPtr), true
	}
	return nil, false
}
