package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("index", lowerIndex)
	register("bindex", lowerBindex)
}

// lowerIndex computes `[a + i*4]` (spec.md §4.1's 32-bit slot indexing),
// returning an Indirect Value valid both as a read and as an assignment
// target.
func lowerIndex(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.lowerIndexed(sc, form, value.WordSize, false)
}

// lowerBindex computes `[a + i]` (byte indexing).
func lowerBindex(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.lowerIndexed(sc, form, 1, true)
}

func (d *Driver) lowerIndexed(sc scope.Scope, form *sexpr.List, scale int, isByte bool) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "index requires exactly a base and an offset")
		return value.Immediate(0)
	}
	// The computed address must survive past this call (the caller reads
	// or stores through it next), so it is left directly in ebx rather
	// than through WithRegister's push/pop-scoped scratch, which would
	// restore ebx to its prior value before the address could be used.
	d.materialize(sc, args[0])
	d.em.Emit("    mov %%eax, %%ebx")
	d.em.Emit("    push %%ebx")
	d.materialize(sc, args[1])
	if scale != 1 {
		d.em.Emit("    imul $%d, %%eax", scale)
	}
	d.em.Emit("    pop %%ebx")
	d.em.Emit("    add %%eax, %%ebx")
	if isByte {
		return value.Indirect8Via("ebx")
	}
	return value.IndirectVia("ebx")
}
