// call.go implements spec.md §4.3's four call shapes (call, callm, super,
// yield) plus the implicit-call and implicit-self-send paths §4.1
// mentions. Grounded on the teacher's generateCallExpression shape in
// codegen_generate.go/codegen_functions.go (argument push, caller-save
// wrapping, user-function-vs-builtin dispatch), generalized to vtable
// dispatch through a resolved method offset instead of a fixed builtin
// table.
package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("call", lowerCall)
	register("callm", lowerCallm)
	register("super", lowerSuper)
	register("yield", lowerYield)
}

// pushArgsRightToLeft lowers and pushes each argument in reverse order
// (spec.md §4.3's "pushes arguments right-to-left"), returning the count
// of fixed arguments pushed. A splat (a trailing `(splat expr)` form) is
// pushed by a runtime call to __push_splat; its length is not known
// statically and is not added to the returned count, and no register
// carries it to the argument count the caller pushes.
func (d *Driver) pushArgsRightToLeft(sc scope.Scope, args []sexpr.Node) int {
	fixed := 0
	for i := len(args) - 1; i >= 0; i-- {
		if isSplat(args[i]) {
			d.lowerSplatPush(sc, args[i])
			continue
		}
		d.materialize(sc, args[i])
		d.em.Emit("    push %%eax")
		fixed++
	}
	return fixed
}

func isSplat(node sexpr.Node) bool {
	l, ok := node.(*sexpr.List)
	if !ok {
		return false
	}
	head, ok := l.HeadSymbol()
	return ok && head == "splat"
}

func (d *Driver) lowerSplatPush(sc scope.Scope, node sexpr.Node) {
	l := node.(*sexpr.List)
	args := l.Args()
	if len(args) != 1 {
		d.addFatal(sc, node, "splat takes exactly one operand")
		return
	}
	// The splat's runtime length is not known statically; emit a
	// variable-size push loop over the collection's backing slots.
	d.materialize(sc, args[0])
	d.em.Emit("    call __push_splat")
}

// staticArgc counts the non-splat entries of args, the runtime argument
// count a callee's arity guard reads (spec.md §4.2); a splat's dynamic
// contribution is handled by __push_splat at the call site and is not
// reflected here.
func staticArgc(args []sexpr.Node) int {
	n := 0
	for _, a := range args {
		if !isSplat(a) {
			n++
		}
	}
	return n
}

// lowerCall implements plain `call`: the head names a directly-addressed
// function, not a receiver method. The argument count is pushed first (so
// it lands at the highest, last-read stack offset) and the fixed
// arguments follow right-to-left, so a callee's first parameter always
// reads from argOffset(0) regardless of how many fixed arguments it took.
func lowerCall(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 1 {
		d.addFatal(sc, form, "call requires a callee")
		return value.Immediate(0)
	}
	callee := d.getArg(sc, args[0])
	var result value.Value = value.Immediate(0)
	d.em.CallerSave(func() {
		fixed := staticArgc(args[1:])
		d.em.Emit("    mov $%d, %%eax", fixed)
		d.em.Emit("    push %%eax")
		d.pushArgsRightToLeft(sc, args[1:])
		switch callee.Kind {
		case value.Addr:
			d.em.Emit("    call %s", callee.Label)
		default:
			d.loadIntoEax(sc, callee)
			d.em.Emit("    call *%%eax")
		}
		d.em.Emit("    add $%d, %%esp", (fixed+1)*value.WordSize)
		result = value.InResultReg()
	})
	return result
}

// lowerCallm implements spec.md §4.3's callm: obj.method(args, block).
// args() is (obj, method-symbol-atom, args-list, [block]).
func lowerCallm(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.dispatchMethod(sc, form, false)
}

// lowerSuper re-invokes the current method name on self with dispatch
// forced through the superclass's vtable.
func lowerSuper(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	return d.dispatchMethod(sc, form, true)
}

// lowerYield is `callm(__closure__, :call, args)`: invoke the block passed
// to the enclosing method.
func lowerYield(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	rewritten := &sexpr.List{
		Items: []sexpr.Node{
			sexpr.Sym("callm"),
			sexpr.Sym("__closure__"),
			sexpr.SymLit("call"),
			&sexpr.List{Items: form.Args()},
		},
		PosVal: form.PosVal,
	}
	return d.dispatchMethod(sc, rewritten, false)
}

// dispatchMethod resolves the method's global vtable offset, wraps the
// call in caller_save, and evicts the register cache for self afterward.
func (d *Driver) dispatchMethod(sc scope.Scope, form *sexpr.List, superCall bool) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "callm requires a receiver and a method name")
		return value.Immediate(0)
	}
	recv := args[0]
	methodAtom, ok := args[1].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "callm method name must be a symbol")
		return value.Immediate(0)
	}
	methodName := methodAtom.Str
	var callArgs []sexpr.Node
	var block sexpr.Node
	if len(args) > 2 {
		if lst, ok := args[2].(*sexpr.List); ok {
			callArgs = lst.Items
			if len(args) > 3 {
				block = args[3]
			}
		} else {
			callArgs = args[2:]
		}
	}

	off, known := d.VTable.Lookup(methodName)
	if !known {
		d.addWarning(sc, form, "unknown method %q on statically unresolved receiver, rewriting to __send__", methodName)
		return d.emitSendFallback(sc, recv, methodName, callArgs)
	}

	recvIsSelf := isSelfExpr(recv)
	var result value.Value = value.Immediate(0)
	d.em.CallerSave(func() {
		// argc first (highest, last-read offset), then the implicit
		// __closure__ argument, then arguments, then self last (lowest
		// offset, argOffset(0)) — matching frameParamNames' self, params...,
		// __closure__ read order.
		d.em.Emit("    push $%d", staticArgc(callArgs))
		if block != nil {
			d.materialize(sc, block)
			d.em.Emit("    push %%eax")
		} else {
			d.em.Emit("    push $0")
		}
		d.pushArgsRightToLeft(sc, callArgs)
		d.materialize(sc, recv)
		d.em.Emit("    mov %%eax, %%esi") // load receiver into self
		d.em.Emit("    push %%esi")
		d.em.Emit("    mov (%%esi), %%eax") // class pointer, header slot 0
		if superCall {
			d.em.Emit("    mov %d(%%eax), %%eax", vtable_HeaderSlotSuperclass()*value.WordSize)
		}
		d.em.Emit("    call *%d(%%eax)", off*value.WordSize)
		total := len(callArgs) + 3 // args + implicit closure + self + argc
		d.em.Emit("    add $%d, %%esp", total*value.WordSize)
		result = value.InResultReg()
	})
	d.em.EvictRegsFor("self")
	if !recvIsSelf {
		d.em.EvictAll()
		// The dispatch above repointed esi at the receiver we just called
		// out to; reload it from our own frame's self argument so any
		// ivar access following this callm still reads our own instance.
		if b, ok := scope.Resolve(sc, "self"); ok && b.Kind == scope.BindArg {
			d.em.Emit("    mov %d(%%ebp), %%esi", argOffset(b.Slot))
		}
	}
	return result
}

func vtable_HeaderSlotSuperclass() int { return 3 }

func isSelfExpr(node sexpr.Node) bool {
	a, ok := node.(*sexpr.Atom)
	return ok && a.Kind == sexpr.AtomSymbol && a.Str == "self"
}

// emitSendFallback rewrites an unresolvable callm to a __send__ call with
// a leading symbol argument, per spec.md §4.3 step 1's warning path.
func (d *Driver) emitSendFallback(sc scope.Scope, recv sexpr.Node, methodName string, callArgs []sexpr.Node) value.Value {
	slot := d.symbols.Slot(methodName)
	d.emitSymbolIntern(slot)
	var result value.Value = value.Immediate(0)
	d.em.CallerSave(func() {
		d.pushArgsRightToLeft(sc, callArgs)
		d.em.Emit("    mov %s, %%eax", slot.SymbolLabel)
		d.em.Emit("    push %%eax")
		d.materialize(sc, recv)
		d.em.Emit("    push %%eax")
		d.em.Emit("    call __send__")
		d.em.Emit("    add $%d, %%esp", (len(callArgs)+2)*value.WordSize)
		result = value.InResultReg()
	})
	d.em.EvictAll()
	return result
}

// emitPossibleCallm materializes an unresolved bare read as an implicit
// self-send with no arguments (spec.md's possible_callm).
func (d *Driver) emitPossibleCallm(sc scope.Scope, name string) {
	form := &sexpr.List{Items: []sexpr.Node{
		sexpr.Sym("callm"), sexpr.Sym("self"), sexpr.SymLit(name), &sexpr.List{},
	}}
	d.dispatchMethod(sc, form, false)
}

// lowerImplicitCall handles a list whose head is a non-keyword,
// non-operator-method symbol: the head names the callee directly.
func (d *Driver) lowerImplicitCall(sc scope.Scope, form *sexpr.List) value.Value {
	rewritten := &sexpr.List{Items: append([]sexpr.Node{sexpr.Sym("call")}, form.Items...), PosVal: form.PosVal}
	return lowerCall(d, sc, rewritten)
}

// lowerOperatorMethod lowers an operator-method form (currently just
// `<<`) as callm with the operator symbol as method name.
func (d *Driver) lowerOperatorMethod(sc scope.Scope, form *sexpr.List, op string) value.Value {
	args := form.Args()
	if len(args) != 2 {
		d.addFatal(sc, form, "%s takes exactly two operands", op)
		return value.Immediate(0)
	}
	rewritten := &sexpr.List{Items: []sexpr.Node{
		sexpr.Sym("callm"), args[0], sexpr.SymLit(op), &sexpr.List{Items: args[1:]},
	}, PosVal: form.PosVal}
	return d.dispatchMethod(sc, rewritten, false)
}
