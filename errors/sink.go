package errors

import (
	"fmt"

	"github.com/go-logr/logr"
)

// Sink accumulates diagnostics for one load or pipeline run. Diagnostics
// are mirrored to Logger as they arrive and returned to the caller once the
// run completes. The zero value is ready to use and discards log output.
type Sink struct {
	Logger logr.Logger
	list   DiagnosticList
}

// NewSink returns a sink mirroring diagnostics to logger.
func NewSink(logger logr.Logger) *Sink {
	return &Sink{Logger: logger}
}

// Add records d.
func (s *Sink) Add(d Diagnostic) {
	if s == nil {
		return
	}
	s.list = append(s.list, d)
	s.log(d)
}

// Addf records a diagnostic built from a format string.
func (s *Sink) Addf(code ErrorCode, sev Severity, subject, format string, args ...any) {
	s.Add(NewDiagnostic(code, sev, fmt.Sprintf(format, args...), subject))
}

// Debugf records a debug diagnostic.
func (s *Sink) Debugf(code ErrorCode, subject, format string, args ...any) {
	s.Addf(code, SeverityDebug, subject, format, args...)
}

// Infof records an info diagnostic.
func (s *Sink) Infof(code ErrorCode, subject, format string, args ...any) {
	s.Addf(code, SeverityInfo, subject, format, args...)
}

// Warnf records a warning diagnostic.
func (s *Sink) Warnf(code ErrorCode, subject, format string, args ...any) {
	s.Addf(code, SeverityWarning, subject, format, args...)
}

// Errorf records an error diagnostic.
func (s *Sink) Errorf(code ErrorCode, subject, format string, args ...any) {
	s.Addf(code, SeverityError, subject, format, args...)
}

// Diagnostics returns a copy of the recorded diagnostics in arrival order.
func (s *Sink) Diagnostics() DiagnosticList {
	if s == nil || len(s.list) == 0 {
		return nil
	}
	out := make(DiagnosticList, len(s.list))
	copy(out, s.list)
	return out
}

// Len reports the number of recorded diagnostics.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.list)
}

// Err returns the diagnostics at or above minimum as an error, or nil.
func (s *Sink) Err(minimum Severity) error {
	if s == nil {
		return nil
	}
	filtered := s.list.Filter(minimum)
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

func (s *Sink) log(d Diagnostic) {
	if s.Logger.GetSink() == nil {
		return
	}
	kv := []any{"code", d.Code}
	if d.Subject != "" {
		kv = append(kv, "subject", d.Subject)
	}
	if d.Line > 0 {
		kv = append(kv, "line", d.Line, "column", d.Column)
	}
	switch d.Severity {
	case SeverityDebug:
		s.Logger.V(2).Info(d.Message, kv...)
	case SeverityInfo:
		s.Logger.V(1).Info(d.Message, kv...)
	case SeverityWarning:
		s.Logger.Info(d.Message, append(kv, "severity", "warning")...)
	default:
		s.Logger.Error(nil, d.Message, kv...)
	}
}
