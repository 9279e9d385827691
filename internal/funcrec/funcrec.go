// Package funcrec holds the compiled-function record spec.md §3.4 names:
// the metadata internal/codegen accumulates about a defun/defm/lambda/proc
// body before it is queued for emission. It is grounded on the teacher's
// compiledFunction struct (internal/codegen/codegen_functions.go), widened
// from a single-language-feature Key/Label/Literal/Captures shape to the
// param-defaults/rest/arity/var-frequency metadata spec.md's core needs.
package funcrec

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
)

// Param is one formal parameter, optionally with a default-value
// expression (spec.md §4.3's "missing trailing arguments fall back to
// their declared default").
type Param struct {
	Name    string
	Default sexpr.Node // nil if this parameter has no default
}

// Function is the record internal/codegen builds for every defun, defm,
// lambda and proc form it encounters, and queues for emission after the
// form that defines it has been lowered (spec.md §4's "function queue").
type Function struct {
	// Label is the emitted assembly symbol, already cleaned of Lisp-legal
	// characters gcc's assembler chokes on.
	Label string

	// Name is the source-level name: a bare identifier for defun, the bare
	// method name for defm (the owning class is in Class), or a synthesized
	// anonymous name for lambda/proc.
	Name string

	// IsMethod is true for defm, lambda and proc records (all take the
	// self/__closure__ prefix); Class names the owning class of a defm.
	IsMethod bool
	Class    string

	// NonLocalReturn is true for proc (spec.md's lambda/proc split): its
	// body may execute a preturn that unwinds to the frame that created
	// it, via the saved frame pointer in __env__ slot 0.
	NonLocalReturn bool

	Params []Param
	Rest   bool // true if the final parameter collects extra args

	MinArgs int // len(Params) minus how many carry a Default
	MaxArgs int // len(Params), or unbounded (MaxArgs < 0) when Rest is set

	Body     sexpr.Node
	Enclosing scope.Scope

	// Captures is the set of enclosing-scope names this function's body
	// reads or writes that are not its own parameters or locals — the
	// closure-capture list spec.md's [EXPANSION] adds, grounded on the
	// teacher's computeCaptures.
	Captures []string

	// VarFreq counts how many times each local/arg name is referenced in
	// Body, feeding the register cache's decision about which single slot
	// is worth caching (spec.md §4's "usage-frequency pass").
	VarFreq map[string]int
}

// NewFunction builds a record and derives MinArgs/MaxArgs from params/rest.
func NewFunction(name string, params []Param, rest bool, body sexpr.Node, enclosing scope.Scope) *Function {
	f := &Function{
		Name:      name,
		Params:    params,
		Rest:      rest,
		Body:      body,
		Enclosing: enclosing,
		VarFreq:   map[string]int{},
	}
	min := 0
	for _, p := range params {
		if p.Default == nil {
			min++
		}
	}
	f.MinArgs = min
	if rest {
		f.MaxArgs = -1
	} else {
		f.MaxArgs = len(params)
	}
	return f
}

// AcceptsArgc reports whether calling this function with argc positional
// arguments satisfies its arity (spec.md §4.3's arity guard).
func (f *Function) AcceptsArgc(argc int) bool {
	if argc < f.MinArgs {
		return false
	}
	if f.MaxArgs >= 0 && argc > f.MaxArgs {
		return false
	}
	return true
}

// Bump increments name's reference count in VarFreq.
func (f *Function) Bump(name string) {
	f.VarFreq[name]++
}

// MostFrequent returns the local/arg name referenced most often in Body,
// or "" if VarFreq is empty. Ties break on name (the lexically smallest
// wins), so the result does not depend on Go's map iteration order.
func (f *Function) MostFrequent() string {
	best, bestCount := "", 0
	for name, count := range f.VarFreq {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	return best
}
