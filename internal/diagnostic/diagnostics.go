package diagnostic

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"techmap/internal/common"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return common.UnknownStr
	}

	return severityNames[s]
}

// Diagnostic is one coded finding.
type Diagnostic struct {
	Severity Severity
	// Code is stable and machine-readable, e.g. "unknown_field".
	Code    string
	Message string
	// Subject is the criterion or technique id the finding is about, if any.
	Subject string
	// Path locates the entry inside the subject's document, if any.
	Path string
}

// String renders "[subject] path: [code] message", omitting empty parts.
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Subject != "" {
		b.WriteString("[" + d.Subject + "]")
	}

	if d.Path != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(d.Path)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	return b.String()
}

// Diagnostics holds findings grouped by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

func (d *Diagnostics) add(severity Severity, code, message, subject, path string) {
	diag := Diagnostic{Severity: severity, Code: code, Message: message, Subject: subject, Path: path}

	switch severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError records a finding that fails the run.
func (d *Diagnostics) AddError(code, message, subject, path string) {
	d.add(SeverityError, code, message, subject, path)
}

// AddWarning records a finding worth fixing that does not fail the run.
func (d *Diagnostics) AddWarning(code, message, subject, path string) {
	d.add(SeverityWarning, code, message, subject, path)
}

// AddInfo records a purely informational finding.
func (d *Diagnostics) AddInfo(code, message, subject, path string) {
	d.add(SeverityInfo, code, message, subject, path)
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Sort orders every severity bucket by subject, then path, then code.
func (d *Diagnostics) Sort() {
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		slices.SortStableFunc(list, func(a, b Diagnostic) int {
			return cmp.Or(
				cmp.Compare(a.Subject, b.Subject),
				cmp.Compare(a.Path, b.Path),
				cmp.Compare(a.Code, b.Code),
			)
		})
	}
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	return slices.Concat(d.Errors, d.Warnings, d.Infos)
}

// Error joins the error findings into one error, or returns nil when there are none.
func (d *Diagnostics) Error() error {
	errs := make([]error, 0, len(d.Errors))
	for _, e := range d.Errors {
		errs = append(errs, errors.New(e.String()))
	}

	return errors.Join(errs...)
}
