package domain

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured validation finding raised at the IR ingestion
// boundary. The core engine never produces diagnostics of its own.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Location *SourceLocation
}

func (d Diagnostic) String() string {
	if d.Location != nil {
		return fmt.Sprintf("%s %s: %s (%s:%d:%d)", d.Severity, d.Code, d.Message, d.Location.File, d.Location.Line, d.Location.Column)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// ValidationResult aggregates diagnostics for one pipeline document.
type ValidationResult struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Valid reports whether validation found no errors. Warnings do not make a
// document invalid.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) addError(code, message string, loc *SourceLocation) {
	r.Errors = append(r.Errors, Diagnostic{Severity: SeverityError, Code: code, Message: message, Location: loc})
}
