// funcdef.go implements spec.md §4.2's function and method definition
// forms: defun, defm, lambda, proc. All four build a funcrec.Function,
// enqueue it on the driver's drain queue, and yield an addr Value; the
// body itself is emitted later by emitFunctionBody when the queue drains
// (spec.md §4.5 step 3), so a function can be referenced before its own
// definition is fully lowered.
package codegen

import (
	"strconv"

	"classgen/internal/funcrec"
	"classgen/internal/runtime"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("defun", lowerDefun)
	register("defm", lowerDefm)
	register("lambda", lowerLambda)
	register("proc", lowerProc)
}

// lowerDefun implements a plain top-level function: no self/__closure__
// prefix, recorded in the global-function table under its source name and
// emitted under the label "fn_" plus its cleaned name.
func lowerDefun(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "defun requires a name and a parameter list")
		return value.Immediate(0)
	}
	nameAtom, ok := args[0].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "defun name must be a symbol")
		return value.Immediate(0)
	}
	paramsList, ok := args[1].(*sexpr.List)
	if !ok {
		d.addFatal(sc, form, "defun parameter list must be a list")
		return value.Immediate(0)
	}
	params, rest := parseParams(d, sc, paramsList)

	fn := funcrec.NewFunction(nameAtom.Str, params, rest, sexpr.L(append([]sexpr.Node{sexpr.Sym("do")}, args[2:]...)...), sc)
	fn.Label = "fn_" + cleanName(nameAtom.Str)
	d.Global.Functions[nameAtom.Str] = true
	d.enqueueFunction(fn)
	return value.AddrOf(fn.Label)
}

// lowerDefm implements a method definition: it enqueues the body exactly
// like defun (with the implicit self/__closure__ prefix) and additionally
// emits __set_vtable(self, offset, label) at the point the class body is
// being lowered, per spec.md §4.2.
func lowerDefm(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "defm requires a name and a parameter list")
		return value.Immediate(0)
	}
	nameAtom, ok := args[0].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "defm name must be a symbol")
		return value.Immediate(0)
	}
	paramsList, ok := args[1].(*sexpr.List)
	if !ok {
		d.addFatal(sc, form, "defm parameter list must be a list")
		return value.Immediate(0)
	}
	params, rest := parseParams(d, sc, paramsList)

	classScope, ok := sc.(*scope.Class)
	if !ok {
		// A defm outside a class body has no vtable entry to write; still
		// enqueue the body so partial programs (and tests) keep working.
		classScope = nil
	}

	fn := funcrec.NewFunction(nameAtom.Str, params, rest, sexpr.L(append([]sexpr.Node{sexpr.Sym("do")}, args[2:]...)...), sc)
	fn.IsMethod = true
	if classScope != nil {
		fn.Class = classScope.Info.Name
	}
	fn.Label = methodLabel(fn.Class, nameAtom.Str)
	d.enqueueFunction(fn)

	if classScope != nil {
		off := d.VTable.OffsetFor(nameAtom.Str)
		d.em.CallerSave(func() {
			d.em.Emit("    push $%s", fn.Label)
			d.em.Emit("    push $%d", off*value.WordSize)
			d.materialize(sc, sexpr.Sym(classScope.Info.Name))
			d.em.Emit("    push %%eax")
			d.em.Emit("    call %s", runtime.SetVtable)
			d.em.Emit("    add $%d, %%esp", 3*value.WordSize)
		})
	}
	return value.AddrOf(fn.Label)
}

// lowerLambda and lowerProc build an anonymous closure record. Their body
// is wrapped in an empty let to establish a fresh local scope (spec.md
// §4.2). proc differs only in marking the record NonLocalReturn; neither
// emits code that stores a frame pointer into __env__ slot 0.
func lowerLambda(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.lowerClosureLiteral(sc, form, false)
}

func lowerProc(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.lowerClosureLiteral(sc, form, true)
}

func (d *Driver) lowerClosureLiteral(sc scope.Scope, form *sexpr.List, nonLocalReturn bool) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "lambda/proc requires a parameter list")
		return value.Immediate(0)
	}
	paramsList, ok := args[0].(*sexpr.List)
	if !ok {
		d.addFatal(sc, form, "lambda/proc parameter list must be a list")
		return value.Immediate(0)
	}
	params, rest := parseParams(d, sc, paramsList)
	body := sexpr.L(sexpr.Sym("let"), sexpr.L(), sexpr.L(append([]sexpr.Node{sexpr.Sym("do")}, args[1:]...)...))

	d.anonCount++
	label := "__closure_" + strconv.Itoa(d.anonCount)

	fn := funcrec.NewFunction(label, params, rest, body, sc)
	fn.IsMethod = true // shares the self/__closure__ prefix, not vtable-dispatched
	fn.NonLocalReturn = nonLocalReturn
	fn.Label = label
	fn.Captures = d.computeCaptures(sc, params, body)
	d.enqueueFunction(fn)

	// Building the environment record and allocating the closure object
	// itself is runtime-allocator work outside this core's scope (spec.md
	// §1); the core only emits the address of the function and lets the
	// runtime pair it with a captured-environment record when it boxes
	// the closure value, mirroring how class instantiation is left to
	// __new_class_object rather than inline field-by-field stores here.
	return value.AddrOf(fn.Label)
}

// parseParams reads a parameter list of bare-symbol atoms, `(name
// default)` pairs, or a trailing `(rest name)` marker.
func parseParams(d *Driver, sc scope.Scope, list *sexpr.List) ([]funcrec.Param, bool) {
	var params []funcrec.Param
	rest := false
	for i, item := range list.Items {
		if l, ok := item.(*sexpr.List); ok {
			head, _ := l.HeadSymbol()
			if head == "rest" {
				if i != len(list.Items)-1 {
					d.addFatal(sc, item, "rest parameter must be last")
					continue
				}
				rargs := l.Args()
				if len(rargs) != 1 {
					d.addFatal(sc, item, "rest marker takes exactly one name")
					continue
				}
				nameAtom, ok := rargs[0].(*sexpr.Atom)
				if !ok {
					d.addFatal(sc, item, "rest parameter name must be a symbol")
					continue
				}
				params = append(params, funcrec.Param{Name: nameAtom.Str})
				rest = true
				continue
			}
			if len(l.Items) == 2 {
				nameAtom, ok := l.Items[0].(*sexpr.Atom)
				if !ok {
					d.addFatal(sc, item, "parameter name must be a symbol")
					continue
				}
				params = append(params, funcrec.Param{Name: nameAtom.Str, Default: l.Items[1]})
				continue
			}
			d.addFatal(sc, item, "malformed parameter entry")
			continue
		}
		nameAtom, ok := item.(*sexpr.Atom)
		if !ok {
			d.addFatal(sc, item, "parameter name must be a symbol")
			continue
		}
		params = append(params, funcrec.Param{Name: nameAtom.Str})
	}
	return params, rest
}

// frameParamNames returns the full ordered list of names bound to argument
// slots at function entry, in slot order: dispatchMethod pushes self last,
// so self is slot 0, then user params in order, then __closure__, for
// method-shaped functions (defm/lambda/proc); plain defun functions take
// no implicit prefix.
func frameParamNames(fn *funcrec.Function) []string {
	names := make([]string, 0, len(fn.Params)+2)
	if fn.IsMethod {
		names = append(names, "self")
	}
	for _, p := range fn.Params {
		names = append(names, p.Name)
	}
	if fn.IsMethod {
		names = append(names, "__closure__")
	}
	return names
}

// emitFunctionBody is the drain-queue's per-function emission routine: it
// wraps the body in a Func prologue/epilogue, emits the two arity guards,
// applies defaults for any missing trailing arguments, then lowers the
// body in a fresh Function scope.
func (d *Driver) emitFunctionBody(fn *funcrec.Function) {
	names := frameParamNames(fn)
	funcScope := scope.NewFunction(fn.Name, names, fn.Rest, fn.Enclosing)

	computeVarFreq(funcScope, fn)

	d.em.Func(fn.Label, 0, func() {
		d.emitArityGuard(fn)
		d.emitDefaults(funcScope, fn)
		d.primeRegisterCache(funcScope, fn)
		d.compileExp(funcScope, fn.Body)
	})
}

// emitArityGuard compares the runtime argument count (pushed by the
// caller as an extra word ahead of the fixed arguments, per lowerCall) to
// fn's minargs/maxargs, aborting via printf+divide-by-zero on mismatch,
// exactly as spec.md §4.2 specifies. Method dispatch always supplies a
// statically-known argument count, so the guard is a defensive check
// against a __send__-mediated call. The guard reads the runtime argc off
// the same fixed offset lowerCall's leading count push establishes.
func (d *Driver) emitArityGuard(fn *funcrec.Function) {
	argcOffset := argOffset(len(frameParamNames(fn)))
	failLabel := d.em.Local()
	okLabel := d.em.Local()
	label := d.pool.Intern("ArgumentError: wrong number of arguments\n")

	d.em.Emit("    mov %d(%%ebp), %%eax", argcOffset)
	d.em.Emit("    cmp $%d, %%eax", fn.MinArgs)
	d.em.Emit("    jl %s", failLabel)
	if !fn.Rest {
		d.em.Emit("    cmp $%d, %%eax", fn.MaxArgs)
		d.em.Emit("    jg %s", failLabel)
	}
	d.em.Emit("    jmp %s", okLabel)
	d.em.Label(failLabel)
	d.em.Emit("    push %s", label)
	d.em.Emit("    call printf")
	d.em.Emit("    add $%d, %%esp", value.WordSize)
	d.em.Emit("    xor %%ecx, %%ecx")
	d.em.Emit("    idiv %%ecx")
	d.em.Label(okLabel)
}

// emitDefaults tests the runtime argument count against each default
// parameter's position and assigns its default expression into the slot
// when the caller omitted it.
func (d *Driver) emitDefaults(funcScope *scope.Function, fn *funcrec.Function) {
	argcOffset := argOffset(len(frameParamNames(fn)))
	base := 0
	if fn.IsMethod {
		base = 1 // self occupies slot 0; user params start at slot 1
	}
	for i, p := range fn.Params {
		if p.Default == nil {
			continue
		}
		skip := d.em.Local()
		d.em.Emit("    mov %d(%%ebp), %%eax", argcOffset)
		d.em.Emit("    cmp $%d, %%eax", i+1)
		d.em.Emit("    jge %s", skip)
		d.materialize(funcScope, p.Default)
		d.em.Emit("    mov %%eax, %d(%%ebp)", argOffset(base+i))
		d.em.Label(skip)
	}
}

// computeCaptures walks body collecting every free name that resolves to
// an enclosing function or let scope at definition time (spec.md §4.2's
// [EXPANSION] closure rule), skipping names shadowed by params or by a
// nested let's own bindings.
func (d *Driver) computeCaptures(sc scope.Scope, params []funcrec.Param, body sexpr.Node) []string {
	bound := map[string]bool{}
	for _, p := range params {
		bound[p.Name] = true
	}
	seen := map[string]bool{}
	var captures []string

	var walk func(n sexpr.Node, bound map[string]bool)
	walk = func(n sexpr.Node, bound map[string]bool) {
		switch v := n.(type) {
		case *sexpr.Atom:
			if v.Kind != sexpr.AtomSymbol || bound[v.Str] || seen[v.Str] {
				return
			}
			if b, ok := scope.Resolve(sc, v.Str); ok && (b.Kind == scope.BindLocal || b.Kind == scope.BindArg) {
				seen[v.Str] = true
				captures = append(captures, v.Str)
			}
		case *sexpr.List:
			if head, ok := v.HeadSymbol(); ok && (head == "let" || head == "stackframe") {
				largs := v.Args()
				inner := copyBoundSet(bound)
				if len(largs) > 0 {
					if bindings, ok := largs[0].(*sexpr.List); ok {
						for _, b := range bindings.Items {
							pair, ok := b.(*sexpr.List)
							if !ok || len(pair.Items) != 2 {
								continue
							}
							walk(pair.Items[1], bound)
							if nameAtom, ok := pair.Items[0].(*sexpr.Atom); ok {
								inner[nameAtom.Str] = true
							}
						}
					}
					for _, f := range largs[1:] {
						walk(f, inner)
					}
				}
				return
			}
			for _, it := range v.Items {
				walk(it, bound)
			}
		}
	}
	walk(body, bound)
	return captures
}

func copyBoundSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
