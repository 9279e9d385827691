// freq.go implements the lightweight local/arg use-frequency pass
// SPEC_FULL.md's funcrec.Function.VarFreq field documents: a single pass
// over a function's body counting how often each resolvable name is
// referenced, feeding the register cache's decision about which one name
// is worth pre-loading before the body runs. Grounded on the teacher's
// codegen_infer.go value-inference walk (one recursive pass over the body
// annotating each node), generalized from type inference to a plain
// reference count since this core's register cache holds at most one
// name at a time and has no type lattice to populate.
package codegen

import (
	"classgen/internal/funcrec"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
)

// computeVarFreq walks fn.Body once, bumping fn.VarFreq for every symbol
// atom that resolves to an argument or a local slot in sc (the function's
// own frame scope). Names that resolve to ivars/globals/functions, or that
// don't resolve at all, are not counted: those never go through the
// register cache's single-name slot.
func computeVarFreq(sc scope.Scope, fn *funcrec.Function) {
	var walk func(n sexpr.Node)
	walk = func(n sexpr.Node) {
		switch v := n.(type) {
		case *sexpr.Atom:
			if v.Kind != sexpr.AtomSymbol {
				return
			}
			b, ok := scope.Resolve(sc, v.Str)
			if !ok {
				return
			}
			if b.Kind == scope.BindArg || b.Kind == scope.BindLocal {
				fn.Bump(v.Str)
			}
		case *sexpr.List:
			for _, it := range v.Items {
				walk(it)
			}
		}
	}
	walk(fn.Body)
}

// primeRegisterCache pre-loads fn's most frequently referenced argument
// into a scratch register and marks it cached, so the first several reads
// of a hot parameter hit the register cache instead of re-reading the
// stack frame. Only BindArg names are primed here: a BindLocal slot may
// not have been assigned yet at function entry (its owning `let` hasn't
// run), so priming one this early would cache a stale value.
func (d *Driver) primeRegisterCache(sc scope.Scope, fn *funcrec.Function) {
	name := fn.MostFrequent()
	if name == "" {
		return
	}
	b, ok := scope.Resolve(sc, name)
	if !ok || b.Kind != scope.BindArg {
		return
	}
	d.em.Emit("    mov %d(%%ebp), %%ecx", argOffset(b.Slot))
	d.em.CacheReg(name, "ecx")
}
