package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

// arithOps maps each arithmetic keyword to the two-operand instruction
// spec.md §4.1 says it lowers to.
var arithOps = map[string]string{
	"add": "add",
	"sub": "sub",
	"mul": "imul",
}

// cmpOps maps each comparison keyword to the conditional-set suffix used
// after `cmp` (spec.md's eq/ne/lt/le/gt/ge).
var cmpOps = map[string]string{
	"eq": "e",
	"ne": "ne",
	"lt": "l",
	"le": "le",
	"gt": "g",
	"ge": "ge",
}

func init() {
	for k := range arithOps {
		register(k, lowerArith)
	}
	register("div", lowerDiv)
	for k := range cmpOps {
		register(k, lowerCompare)
	}
}

// lowerArith lowers both operands then emits the matching two-operand
// instruction, leaving the result in eax.
func lowerArith(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	op, args, ok := binaryOperands(d, sc, form)
	if !ok {
		return value.Immediate(0)
	}
	d.materialize(sc, args[0])
	d.em.Emit("    push %%eax")
	d.materialize(sc, args[1])
	d.em.Emit("    mov %%eax, %%ecx")
	d.em.Emit("    pop %%eax")
	d.em.Emit("    %s %%ecx, %%eax", arithOps[op])
	return value.InResultReg()
}

// lowerDiv is separated out because idiv needs edx:eax and a sign
// extension the other three arithmetic ops don't.
func lowerDiv(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	_, args, ok := binaryOperands(d, sc, form)
	if !ok {
		return value.Immediate(0)
	}
	d.materialize(sc, args[0])
	d.em.Emit("    push %%eax")
	d.materialize(sc, args[1])
	d.em.Emit("    mov %%eax, %%ecx")
	d.em.Emit("    pop %%eax")
	d.em.Emit("    cdq")
	d.em.Emit("    idiv %%ecx")
	return value.InResultReg()
}

// lowerCompare lowers both operands, compares them, and materializes a
// boolean 0/1 result in eax via setCC.
func lowerCompare(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	op, args, ok := binaryOperands(d, sc, form)
	if !ok {
		return value.Immediate(0)
	}
	suffix := cmpOps[op]
	d.materialize(sc, args[0])
	d.em.Emit("    push %%eax")
	d.materialize(sc, args[1])
	d.em.Emit("    mov %%eax, %%ecx")
	d.em.Emit("    pop %%eax")
	d.em.Emit("    cmp %%ecx, %%eax")
	d.em.Emit("    set%s %%al", suffix)
	d.em.Emit("    movzbl %%al, %%eax")
	return value.InResultReg()
}

func binaryOperands(d *Driver, sc scope.Scope, form *sexpr.List) (string, []sexpr.Node, bool) {
	head, _ := form.HeadSymbol()
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "%s takes exactly two operands", head)
		return head, nil, false
	}
	return head, args, true
}

// materialize lowers node and ensures its Value ends up loaded into eax,
// the conventional result register (spec.md §3's "subexpr" invariant).
func (d *Driver) materialize(sc scope.Scope, node sexpr.Node) value.Value {
	v := d.compileExp(sc, node)
	d.loadIntoEax(sc, v)
	return v
}

// loadIntoEax emits whatever instruction is needed to bring v's residence
// into eax; Subexpr means it is already there.
func (d *Driver) loadIntoEax(sc scope.Scope, v value.Value) {
	switch v.Kind {
	case value.Subexpr:
		// already in eax
	case value.Int:
		d.em.Emit("    mov $%d, %%eax", v.Int)
	case value.Reg:
		if v.Reg != "eax" {
			d.em.Emit("    mov %%%s, %%eax", v.Reg)
		}
	case value.LVar:
		d.em.Emit("    mov %d(%%ebp), %%eax", localOffset(v.Slot))
	case value.Arg:
		d.em.Emit("    mov %d(%%ebp), %%eax", argOffset(v.Slot))
	case value.IVar:
		d.em.Emit("    mov %d(%%esi), %%eax", v.Slot*value.WordSize)
	case value.Global:
		d.em.Emit("    mov %s, %%eax", v.Name)
	case value.Addr:
		d.em.Emit("    lea %s, %%eax", v.Label)
	case value.Indirect:
		d.em.Emit("    mov (%%%s), %%eax", v.Reg)
	case value.Indirect8:
		d.em.Emit("    movzbl (%%%s), %%eax", v.Reg)
	case value.PossibleCallm:
		d.emitPossibleCallm(sc, v.Name)
	}
}

// localOffset/argOffset compute the frame-relative byte offsets for local
// slot k / argument slot k, following the cdecl layout the emitter's Func
// prologue establishes: arguments live above the saved ebp/return address
// (starting at +8), locals live below ebp (starting at -4).
func localOffset(k int) int { return -(k + 1) * value.WordSize }
func argOffset(k int) int   { return (k + 2) * value.WordSize }
