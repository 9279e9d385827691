package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("do", lowerDo)
	register("block", lowerDo)
	register("if", lowerIf)
	register("while", lowerWhile)
	register("and", lowerAnd)
	register("or", lowerOr)
	register("case", lowerCase)
	register("ternif", lowerTernif)
}

// lowerDo lowers a sequence of forms, returning the last one's Value
// (spec.md's `do`/`block` forms are sequencing constructs; grounded on
// the teacher's ExpressionStatement-list handling in generateStatement).
func lowerDo(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.compileBody(sc, form.Args())
}

// lowerIf implements spec.md §4.1's if: an `object`-typed condition must
// be compared against both nil and false; anything else uses a generic
// jump-on-false. Register cache is invalidated wholesale after both arms.
func lowerIf(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "if requires a condition and a then-branch")
		return value.Immediate(0)
	}
	cond := d.materialize(sc, args[0])
	elseLabel := d.em.Local()
	endLabel := d.em.Local()

	if cond.IsObject() {
		d.em.Emit("    cmp $0, %%eax") // nil
		d.em.Emit("    je %s", elseLabel)
		d.em.Emit("    cmp $__false_singleton, %%eax")
		d.em.Emit("    je %s", elseLabel)
	} else {
		d.em.Emit("    cmp $0, %%eax")
		d.em.Emit("    je %s", elseLabel)
	}

	thenVal := d.compileExp(sc, args[1])
	d.em.Emit("    jmp %s", endLabel)
	d.em.Label(elseLabel)
	var elseVal value.Value = value.Immediate(0)
	if len(args) > 2 {
		elseVal = d.compileBody(sc, args[2:])
	}
	d.em.Label(endLabel)
	d.em.EvictAll()

	if sameType(thenVal, elseVal) {
		return thenVal
	}
	return value.InResultReg()
}

func sameType(a, b value.Value) bool {
	return a.Type == b.Type
}

// lowerWhile wraps the same conditional lowering as if in a backward
// branch: test, body, jump back to test.
func lowerWhile(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "while requires a condition")
		return value.Immediate(0)
	}
	testLabel := d.em.Local()
	endLabel := d.em.Local()
	d.em.Label(testLabel)
	cond := d.materialize(sc, args[0])
	if cond.IsObject() {
		d.em.Emit("    cmp $0, %%eax") // nil
		d.em.Emit("    je %s", endLabel)
		d.em.Emit("    cmp $__false_singleton, %%eax")
		d.em.Emit("    je %s", endLabel)
	} else {
		d.em.Emit("    cmp $0, %%eax")
		d.em.Emit("    je %s", endLabel)
	}
	if len(args) > 1 {
		d.compileBody(sc, args[1:])
	}
	d.em.Emit("    jmp %s", testLabel)
	d.em.Label(endLabel)
	d.em.EvictAll()
	return value.Immediate(0)
}

// lowerAnd implements `(a && b)` as `if a then b`, per spec.md §4.1.
func lowerAnd(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "and takes exactly two operands")
		return value.Immediate(0)
	}
	skip := d.em.Local()
	d.materialize(sc, args[0])
	d.em.Emit("    cmp $0, %%eax")
	d.em.Emit("    je %s", skip)
	d.materialize(sc, args[1])
	d.em.Label(skip)
	d.em.EvictAll()
	return value.InResultReg()
}

// lowerOr stores the left operand into a reserved temporary (__left) and
// returns it when truthy, else evaluates and returns the right operand.
func lowerOr(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "or takes exactly two operands")
		return value.Immediate(0)
	}
	rightLabel := d.em.Local()
	endLabel := d.em.Local()
	d.materialize(sc, args[0])
	d.em.Emit("    mov %%eax, __left")
	d.em.Emit("    cmp $0, %%eax")
	d.em.Emit("    je %s", rightLabel)
	d.em.Emit("    mov __left, %%eax")
	d.em.Emit("    jmp %s", endLabel)
	d.em.Label(rightLabel)
	d.materialize(sc, args[1])
	d.em.Label(endLabel)
	d.em.EvictAll()
	return value.InResultReg()
}

// lowerCase rewrites each `when v` clause into `if (compare_exp == v)
// then body` (spec.md §4.1), comparing by identity: a `cmp` of the two
// word values, with no `===` method send.
func lowerCase(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "case requires a subject expression")
		return value.Immediate(0)
	}
	subject := args[0]
	endLabel := d.em.Local()
	var result value.Value = value.Immediate(0)
	for _, clause := range args[1:] {
		whenForm, ok := clause.(*sexpr.List)
		if !ok {
			continue
		}
		head, _ := whenForm.HeadSymbol()
		wargs := whenForm.Args()
		if head != "when" || len(wargs) < 2 {
			continue
		}
		nextLabel := d.em.Local()
		d.materialize(sc, subject)
		d.em.Emit("    push %%eax")
		d.materialize(sc, wargs[0])
		d.em.Emit("    pop %%ecx")
		d.em.Emit("    cmp %%eax, %%ecx")
		d.em.Emit("    jne %s", nextLabel)
		result = d.compileBody(sc, wargs[1:])
		d.em.Emit("    jmp %s", endLabel)
		d.em.Label(nextLabel)
	}
	d.em.Label(endLabel)
	d.em.EvictAll()
	return result
}

// lowerTernif rewrites to if; the else arm is carried by an optional
// `ternalt` sibling as the third argument.
func lowerTernif(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "ternif requires a condition and a then-branch")
		return value.Immediate(0)
	}
	if len(args) == 3 {
		if alt, ok := args[2].(*sexpr.List); ok {
			if head, _ := alt.HeadSymbol(); head == "ternalt" && len(alt.Args()) == 1 {
				args = []sexpr.Node{args[0], args[1], alt.Args()[0]}
			}
		}
	}
	rewritten := &sexpr.List{Items: append([]sexpr.Node{sexpr.Sym("if")}, args...), PosVal: form.PosVal}
	return lowerIf(d, sc, rewritten)
}
