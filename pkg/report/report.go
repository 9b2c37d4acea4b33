// Package report collects semantic diagnostics as values. The checker and
// type analysis write into an ErrorReport; the driver renders it once all
// passes have run.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"loam/frontend-go/pkg/ast"
)

// Severity distinguishes blocking errors from informational warnings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "Warning"
	}
	return "Error"
}

// Message is one line of a diagnostic, optionally anchored to a location.
type Message struct {
	Text string
	Loc  ast.SrcLocation
}

func Msg(text string) Message {
	return Message{Text: text}
}

func MsgAt(text string, loc ast.SrcLocation) Message {
	return Message{Text: text, Loc: loc}
}

func (m Message) String() string {
	if m.Loc.IsSet() {
		return fmt.Sprintf("%s in %s", m.Text, m.Loc)
	}
	return m.Text
}

// Diagnostic is a primary message plus any number of notes.
type Diagnostic struct {
	Severity Severity
	Primary  Message
	Notes    []Message
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(d.Primary.String())
	for _, note := range d.Notes {
		sb.WriteString("\n")
		sb.WriteString(note.String())
	}
	return sb.String()
}

// ErrorReport is the diagnostic sink shared by all semantic passes. It is
// written to sequentially and never read back by the passes themselves.
type ErrorReport struct {
	diagnostics []Diagnostic
}

func NewErrorReport() *ErrorReport {
	return &ErrorReport{}
}

// AddError records an error at a location.
func (r *ErrorReport) AddError(text string, loc ast.SrcLocation) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Severity: SeverityError, Primary: MsgAt(text, loc)})
}

// AddGlobalError records an error with no particular location.
func (r *ErrorReport) AddGlobalError(text string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Severity: SeverityError, Primary: Msg(text)})
}

// AddWarning records a warning at a location.
func (r *ErrorReport) AddWarning(text string, loc ast.SrcLocation) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Severity: SeverityWarning, Primary: MsgAt(text, loc)})
}

// AddDiagnostic records a composite diagnostic.
func (r *ErrorReport) AddDiagnostic(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns the recorded diagnostics in insertion order.
func (r *ErrorReport) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// NumErrors counts the error-severity diagnostics.
func (r *ErrorReport) NumErrors() int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// NumWarnings counts the warning-severity diagnostics.
func (r *ErrorReport) NumWarnings() int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Print renders the report sorted by source location, errors and warnings
// interleaved the way they appear in the source.
func (r *ErrorReport) Print(w io.Writer) {
	sorted := make([]Diagnostic, len(r.diagnostics))
	copy(sorted, r.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Primary.Loc.Before(sorted[j].Primary.Loc)
	})
	for _, d := range sorted {
		fmt.Fprintln(w, d)
	}
}
