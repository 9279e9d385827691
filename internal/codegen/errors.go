package codegen

import (
	"fmt"

	"classgen/internal/diag"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
)

// Severity distinguishes spec.md §7's two diagnostic classes.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one accumulated compiler message, generalized from the
// teacher's CodegenError (internal/codegen/errors.go: Message, Context,
// Line, Column) into a uniform Position since every sexpr.Node carries
// one via Pos(), unlike the teacher's per-struct tokenFromNode switch.
type Diagnostic struct {
	Severity Severity
	Message  string
	Context  string
	Pos      diag.Position
	Scope    string
}

func (d Diagnostic) String() string {
	prefix := d.Severity.String() + ":"
	if d.Pos.IsKnown() {
		prefix = d.Pos.String() + ": " + prefix
	}
	if d.Context != "" {
		return fmt.Sprintf("%s %s (at `%s`)", prefix, d.Message, d.Context)
	}
	return fmt.Sprintf("%s %s", prefix, d.Message)
}

func scopeName(sc scope.Scope) string {
	if sc == nil {
		return "<none>"
	}
	switch v := sc.(type) {
	case *scope.Global:
		return "global"
	case *scope.Class:
		return "class " + v.Info.Name
	case *scope.Function:
		return "function " + v.Name
	case *scope.LocalLet:
		return "let"
	case *scope.SExpr:
		return "sexpr"
	default:
		return "unknown scope"
	}
}

// addWarning records a non-fatal diagnostic; compilation continues.
func (d *Driver) addWarning(sc scope.Scope, node sexpr.Node, format string, args ...interface{}) {
	d.diagnostics = append(d.diagnostics, Diagnostic{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Context:  contextOf(node),
		Pos:      positionOf(node),
		Scope:    scopeName(sc),
	})
}

// addFatal records a fatal diagnostic. The four error classes spec.md §7
// names (unresolvable static dereference, malformed hash literal, missing
// assignment target, unknown leaf in argument resolution) all funnel
// through here.
func (d *Driver) addFatal(sc scope.Scope, node sexpr.Node, format string, args ...interface{}) {
	d.diagnostics = append(d.diagnostics, Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Context:  contextOf(node),
		Pos:      positionOf(node),
		Scope:    scopeName(sc),
	})
}

// HasErrors reports whether any fatal diagnostic was recorded.
func (d *Driver) HasErrors() bool {
	for _, diagnostic := range d.diagnostics {
		if diagnostic.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns every accumulated diagnostic in emission order.
func (d *Driver) Diagnostics() []Diagnostic {
	return d.diagnostics
}

func positionOf(node sexpr.Node) diag.Position {
	if node == nil {
		return diag.Position{}
	}
	return node.Pos()
}

func contextOf(node sexpr.Node) string {
	if node == nil {
		return ""
	}
	return node.String()
}
