// lower_misc.go covers the remaining keyword-table entries spec.md §4.1
// lists that don't share a file with a larger family: hash literals,
// return/preturn, the sexp scope-suppression wrapper, the rescue
// open-question stub, incr, required, saveregs and the static-dereference
// operator deref.
package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("hash", lowerHash)
	register("return", lowerReturn)
	register("sexp", lowerSexp)
	register("rescue", lowerRescue)
	register("incr", lowerIncr)
	register("required", lowerRequired)
	register("saveregs", lowerSaveregs)
	register("preturn", lowerPreturn)
	register("deref", lowerDeref)
}

// lowerHash builds a hash literal by sending `new` to the `Hash` class and
// inserting each entry with the `[]=` operator method — object
// construction in this language always goes through method dispatch, so a
// literal is sugar for the same calls a hand-written builder would make.
// Every entry must be a two-element pair; anything else is spec.md §7's
// "malformed hash literal" fatal error class.
func lowerHash(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	for _, entry := range args {
		pair, ok := entry.(*sexpr.List)
		if !ok || len(pair.Items) != 2 {
			d.addFatal(sc, entry, "malformed hash literal: expected a (key value) pair")
			return value.Immediate(0)
		}
	}

	inner := scope.NewLocalLet(sc, frameBase(sc))
	slot := inner.Declare("__h")
	var result value.Value = value.Immediate(0)
	d.em.WithStack(inner.Count(), func() {
		newForm := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("Hash"), sexpr.SymLit("new"), sexpr.L())
		d.materialize(inner, newForm)
		d.em.Emit("    mov %%eax, %d(%%ebp)", localOffset(slot))

		for _, entry := range args {
			pair := entry.(*sexpr.List)
			ins := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("__h"), sexpr.SymLit("[]="),
				sexpr.L(pair.Items[0], pair.Items[1]))
			d.compileExp(inner, ins)
		}

		d.materialize(inner, sexpr.Sym("__h"))
		result = value.InResultReg()
	})
	d.em.EvictAll()
	return result
}

// lowerReturn materializes its operand (or 0) and emits the ordinary cdecl
// epilogue directly, matching the teacher's early-return-inside-a-block
// convention rather than deferring to Func's trailing epilogue.
func lowerReturn(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) > 0 {
		d.materialize(sc, args[0])
	} else {
		d.em.Emit("    mov $0, %%eax")
	}
	d.em.Emit("    mov %%ebp, %%esp")
	d.em.Emit("    pop %%ebp")
	d.em.Emit("    ret")
	return value.InResultReg()
}

// lowerSexp wraps its body in an SExpr scope, spec.md §3's transparent
// scope used to suppress certain rewrites (its Resolve always misses, so
// the body's names still see every enclosing binding, just not any this
// wrapper itself would introduce).
func lowerSexp(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.compileBody(scope.NewSExpr(sc), form.Args())
}

// lowerRescue implements spec.md §9's open-question decision: lower only
// the protected body and record a warning; handler clauses are parsed
// (accepted syntactically) but discarded, since "any program relying on
// it will silently run without handlers."
func lowerRescue(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "rescue requires a protected body")
		return value.Immediate(0)
	}
	d.addWarning(sc, form, "rescue has no handler support; running the protected body unguarded")
	return d.compileExp(sc, args[0])
}

// lowerIncr rewrites `(incr target)` to `(assign target (add target 1))`.
func lowerIncr(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 1 {
		d.addFatal(sc, form, "incr takes exactly one operand")
		return value.Immediate(0)
	}
	rewritten := sexpr.L(sexpr.Sym("assign"), args[0], sexpr.L(sexpr.Sym("add"), args[0], sexpr.Int(1)))
	return lowerAssign(d, sc, rewritten)
}

// lowerRequired is the default-value placeholder for a parameter that has
// no real default: if a body ever evaluates it, the caller omitted a
// required argument. It reuses the arity guard's printf-then-divide-by-zero
// abort (spec.md §4.2/§7) rather than inventing a second error mechanism.
func lowerRequired(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	label := d.pool.Intern("ArgumentError: required argument missing\n")
	d.em.Emit("    push %s", label)
	d.em.Emit("    call printf")
	d.em.Emit("    add $%d, %%esp", value.WordSize)
	d.em.Emit("    xor %%ecx, %%ecx")
	d.em.Emit("    mov $1, %%eax")
	d.em.Emit("    idiv %%ecx")
	return value.Immediate(0)
}

// lowerSaveregs empties the register cache now (EvictAll), a manual
// synchronization point ahead of code the core doesn't itself model as a
// call (e.g. inline runtime hooks). Nothing is written back: the cache
// only ever holds copies of values already in their frame slots.
func lowerSaveregs(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	d.em.EvictAll()
	return value.Immediate(0)
}

// lowerPreturn implements spec.md §4.2's non-local return: load the raw
// frame pointer saved in __env__ slot 0 (the __closure__ argument), then
// unwind directly to the frame that created the block, rather than
// returning to whoever called the block itself.
func lowerPreturn(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) > 0 {
		d.materialize(sc, args[0])
	} else {
		d.em.Emit("    mov $0, %%eax")
	}
	d.em.Emit("    push %%eax")
	closure := d.getArg(sc, sexpr.Sym("__closure__"))
	d.loadIntoEax(sc, closure)
	d.em.Emit("    mov %%eax, %%ebx")
	d.em.Emit("    pop %%eax")
	d.em.Emit("    mov (%%ebx), %%ebp")
	d.em.Emit("    mov %%ebp, %%esp")
	d.em.Emit("    pop %%ebp")
	d.em.Emit("    ret")
	return value.InResultReg()
}

// lowerDeref implements `A::B` static dereference: A must be a known
// class, in which case B resolves to that class's class-variable global;
// otherwise this is spec.md §7's "unresolvable static dereference" fatal
// error class.
func lowerDeref(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "deref requires exactly a class and a field name")
		return value.Immediate(0)
	}
	classAtom, ok := args[0].(*sexpr.Atom)
	if !ok || classAtom.Kind != sexpr.AtomSymbol {
		d.addFatal(sc, form, "unresolvable static dereference: left side must name a class")
		return value.Immediate(0)
	}
	fieldAtom, ok := args[1].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "deref field name must be a symbol")
		return value.Immediate(0)
	}
	info, known := d.Global.Classes[classAtom.Str]
	if !known {
		d.addFatal(sc, form, "unresolvable static dereference: %q is not a class", classAtom.Str)
		return value.Immediate(0)
	}
	name := info.Name + "::" + fieldAtom.Str
	d.globals.Add(name)
	return value.GlobalNamed(globalLabel(name))
}
