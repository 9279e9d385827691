package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("let", lowerLet)
	register("stackframe", lowerLet)
}

// lowerLet implements spec.md §4.1's let: introduce a local-variable
// scope with consecutive indices, evict any cached registers aliasing
// the new bindings on entry and exit, reserve a stack slot block, then
// lower the body sequentially. Bindings are `(let ((a 1) (b 2)) body...)`.
func lowerLet(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "let requires a bindings list")
		return value.Immediate(0)
	}
	bindingsList, ok := args[0].(*sexpr.List)
	if !ok {
		d.addFatal(sc, form, "let bindings must be a list")
		return value.Immediate(0)
	}

	inner := scope.NewLocalLet(sc, frameBase(sc))
	type pending struct {
		name string
		init sexpr.Node
	}
	var bindings []pending
	for _, b := range bindingsList.Items {
		pair, ok := b.(*sexpr.List)
		if !ok || len(pair.Items) != 2 {
			d.addFatal(sc, b, "malformed let binding")
			continue
		}
		nameAtom, ok := pair.Items[0].(*sexpr.Atom)
		if !ok {
			d.addFatal(sc, b, "let binding name must be a symbol")
			continue
		}
		inner.Declare(nameAtom.Str)
		d.em.EvictRegsFor(nameAtom.Str)
		bindings = append(bindings, pending{nameAtom.Str, pair.Items[1]})
	}

	var result value.Value = value.Immediate(0)
	d.em.WithStack(inner.Count(), func() {
		for _, b := range bindings {
			d.materialize(inner, b.init)
			slot, _ := scope.Resolve(inner, b.name)
			d.em.Emit("    mov %%eax, %d(%%ebp)", localOffset(slot.Slot))
		}
		result = d.compileBody(inner, args[1:])
	})

	for _, b := range bindings {
		d.em.EvictRegsFor(b.name)
	}
	d.em.EvictAll()
	return result
}

// frameBase returns the next free local-slot index for a nested let,
// walking outward until it finds the enclosing LocalLet (if any) or a
// Function boundary, so nested lets stack their slots rather than
// colliding.
func frameBase(sc scope.Scope) int {
	for s := sc; s != nil; s = s.Parent() {
		if ll, ok := s.(*scope.LocalLet); ok {
			return ll.Base() + ll.Count()
		}
		if _, ok := s.(*scope.Function); ok {
			return 0
		}
	}
	return 0
}
