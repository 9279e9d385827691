package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("assign", lowerAssign)
	register("ivar", lowerIvarRead)
}

// lowerIvarRead implements the read side of spec.md §4.1's `@ivar`: a bare
// `(ivar k)` resolves to the instance-variable slot itself rather than an
// implicit self-send, matching the assignment side's `lowerIvarAssign`.
func lowerIvarRead(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 1 {
		d.addFatal(sc, form, "ivar requires exactly one slot argument")
		return value.Immediate(0)
	}
	slotAtom, ok := args[0].(*sexpr.Atom)
	if !ok || slotAtom.Kind != sexpr.AtomInt {
		d.addFatal(sc, form, "ivar slot must be an integer")
		return value.Immediate(0)
	}
	return value.IVarSlot(int(slotAtom.Int))
}

// lowerAssign implements spec.md §4.1's three assignment shapes.
func lowerAssign(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "assign requires exactly a target and a value")
		return value.Immediate(0)
	}
	target, rhs := args[0], args[1]

	if l, ok := target.(*sexpr.List); ok {
		if head, ok := l.HeadSymbol(); ok && head == "ivar" {
			return d.lowerIvarAssign(sc, l, rhs)
		}
		if head, ok := l.HeadSymbol(); ok && head == "dot" {
			return d.lowerDotAssign(sc, l, rhs)
		}
	}

	atom, ok := target.(*sexpr.Atom)
	if !ok || atom.Kind != sexpr.AtomSymbol {
		d.addFatal(sc, form, "missing assignment target")
		return value.Immediate(0)
	}

	d.materialize(sc, rhs)
	slot := d.getArgSave(sc, atom, true)
	d.storeFrom(slot, "eax")
	return value.InResultReg()
}

// lowerIvarAssign evaluates the value into eax and stores it with a single
// mov into self's instance-variable slot at slot*4(%esi) (spec.md §4.1's
// "@ivar = v"); the value is not pushed around the store.
func (d *Driver) lowerIvarAssign(sc scope.Scope, ivarForm *sexpr.List, rhs sexpr.Node) value.Value {
	args := ivarForm.Args()
	if len(args) != 1 {
		d.addFatal(sc, ivarForm, "ivar requires exactly one slot argument")
		return value.Immediate(0)
	}
	slotAtom, ok := args[0].(*sexpr.Atom)
	if !ok || slotAtom.Kind != sexpr.AtomInt {
		d.addFatal(sc, ivarForm, "ivar slot must be an integer")
		return value.Immediate(0)
	}
	d.materialize(sc, rhs)
	d.em.Emit("    mov %%eax, %d(%%esi)", slotAtom.Int*value.WordSize)
	return value.InResultReg()
}

// lowerDotAssign rewrites `foo.bar = v` inline to `foo.bar=(v)`, per
// spec.md §4.1: a callm to the cleaned setter-name method.
func (d *Driver) lowerDotAssign(sc scope.Scope, dotForm *sexpr.List, rhs sexpr.Node) value.Value {
	args := dotForm.Args()
	if len(args) != 2 {
		d.addFatal(sc, dotForm, "dot-assignment requires a receiver and a field name")
		return value.Immediate(0)
	}
	recv := args[0]
	fieldAtom, ok := args[1].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, dotForm, "dot-assignment field name must be a symbol")
		return value.Immediate(0)
	}
	setterName := fieldAtom.Str + "="
	rewritten := &sexpr.List{Items: []sexpr.Node{
		sexpr.Sym("callm"), recv, sexpr.SymLit(setterName), &sexpr.List{Items: []sexpr.Node{rhs}},
	}, PosVal: dotForm.PosVal}
	return d.dispatchMethod(sc, rewritten, false)
}

// storeFrom emits a move from register src into dst's residence. Only
// the residences assignment can legally target are handled; anything
// else is a caller bug (getArgSave never returns them for save=true).
func (d *Driver) storeFrom(dst value.Value, src string) {
	switch dst.Kind {
	case value.LVar:
		d.em.Emit("    mov %%%s, %d(%%ebp)", src, localOffset(dst.Slot))
	case value.Arg:
		d.em.Emit("    mov %%%s, %d(%%ebp)", src, argOffset(dst.Slot))
	case value.IVar:
		d.em.Emit("    mov %%%s, %d(%%esi)", src, dst.Slot*value.WordSize)
	case value.Global, value.Addr:
		label := dst.Name
		if label == "" {
			label = dst.Label
		}
		d.em.Emit("    mov %%%s, %s", src, label)
	case value.Indirect:
		d.em.Emit("    mov %%%s, (%%%s)", src, dst.Reg)
	case value.Indirect8:
		d.em.Emit("    movb %%%s, (%%%s)", lowByte(src), dst.Reg)
	}
}

// lowByte returns the 8-bit sub-register name for one of the four
// 32-bit registers that have one (eax/ebx/ecx/edx).
func lowByte(reg32 string) string {
	switch reg32 {
	case "eax":
		return "al"
	case "ebx":
		return "bl"
	case "ecx":
		return "cl"
	case "edx":
		return "dl"
	default:
		return reg32
	}
}
