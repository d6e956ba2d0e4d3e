package binding

import (
	"fmt"

	"cppbind/internal/engine/ast"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

type DiagnosticKind string

const (
	DiagIgnoredEntity        DiagnosticKind = "ignored_entity"
	DiagUnresolvedBase       DiagnosticKind = "unresolved_base"
	DiagUnresolvedTemplate   DiagnosticKind = "unresolved_template"
	DiagTemplateArity        DiagnosticKind = "template_arity"
	DiagRvalueReference      DiagnosticKind = "rvalue_reference"
	DiagProtectedPureVirtual DiagnosticKind = "protected_pure_virtual"
	DiagUnorderedClass       DiagnosticKind = "unordered_class"
	DiagNonPublicBase        DiagnosticKind = "non_public_base"
)

// Diagnostic is a recovered problem. The engine never logs; callers decide how
// to present these.
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind
	Location ast.Location
	Message  string
}

func (d Diagnostic) String() string {
	if d.Location.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	if d.Location.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", d.Location.File, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.Location.File, d.Location.Line, d.Severity, d.Message)
}

// diagnostics collects diagnostics, dropping exact repeats. Base classes are
// rebuilt for every derived class, which would otherwise repeat their warnings.
type diagnostics struct {
	list []Diagnostic
	seen map[Diagnostic]bool
}

func (d *diagnostics) add(sev Severity, kind DiagnosticKind, loc ast.Location, format string, args ...any) {
	diag := Diagnostic{Severity: sev, Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
	if d.seen == nil {
		d.seen = make(map[Diagnostic]bool)
	}
	if d.seen[diag] {
		return
	}
	d.seen[diag] = true
	d.list = append(d.list, diag)
}

func (d *diagnostics) warn(kind DiagnosticKind, loc ast.Location, format string, args ...any) {
	d.add(SeverityWarning, kind, loc, format, args...)
}

func (d *diagnostics) info(kind DiagnosticKind, loc ast.Location, format string, args ...any) {
	d.add(SeverityInfo, kind, loc, format, args...)
}

func (d *diagnostics) take() []Diagnostic {
	out := d.list
	d.list = nil
	d.seen = nil
	return out
}

// CountWarnings returns how many diagnostics are warnings.
func CountWarnings(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
