package codegen

import (
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

// getArg implements spec.md §4.1's argument resolution: map a raw leaf
// node to a Value, consulting the scope chain and this driver's pools for
// anything that isn't a plain immediate.
func (d *Driver) getArg(sc scope.Scope, node sexpr.Node) value.Value {
	return d.getArgSave(sc, node, false)
}

// getArgSave is getArg with save=true when the caller intends to write
// through the resolved Value (spec.md's "get_arg(..., save)" used by
// assignment lowering). With save, a local or argument cached in a
// register is evicted and its frame slot returned, so the store goes to
// memory.
func (d *Driver) getArgSave(sc scope.Scope, node sexpr.Node, save bool) value.Value {
	atom, ok := node.(*sexpr.Atom)
	if !ok {
		// A list in argument position is a subexpression; lower it fully.
		return d.compileExp(sc, node)
	}

	switch atom.Kind {
	case sexpr.AtomInt:
		return value.Immediate(atom.Int)
	case sexpr.AtomFloat:
		// spec.md §9 open question: float literals truncate to integers
		// in argument resolution, kept as an unchecked placeholder.
		return value.Immediate(int64(atom.Float))
	case sexpr.AtomString:
		label := d.pool.Intern(atom.Str)
		return value.AddrOf(label)
	case sexpr.AtomSymbolLiteral:
		slot := d.symbols.Slot(atom.Str)
		d.emitSymbolIntern(slot)
		return value.GlobalNamed(slot.SymbolLabel)
	case sexpr.AtomSymbol:
		return d.resolveSymbol(sc, atom, save)
	default:
		d.addFatal(sc, node, "unknown leaf in argument resolution")
		return value.Immediate(0)
	}
}

// resolveSymbol handles the bareword case of getArg: booleans, scope
// lookups (locals/args/ivars/globals/functions), and the possible_callm
// fallback.
func (d *Driver) resolveSymbol(sc scope.Scope, atom *sexpr.Atom, save bool) value.Value {
	name := atom.Str
	if name == "true" || name == "false" {
		d.globals.Add(name)
		return value.GlobalNamed(globalLabel(name))
	}

	b, ok := scope.Resolve(sc, name)
	if !ok {
		if save {
			// Unresolved write target inside a method body: the first
			// assignment to a bare name declares it as an instance
			// variable of the enclosing class, in source order (spec.md
			// §3's "per-class instance-variable map... offsets assigned
			// in source order"), rather than promoting it to a global.
			if cs, ok := enclosingClass(sc); ok {
				off := cs.DeclareIvar(name)
				return value.IVarSlot(off)
			}
			// Outside any class: promote to a new global constant
			// (spec.md §3/§4.1) rather than emitting a call.
			d.globals.Add(name)
			d.Global.Declare(name)
			return value.AddrOf(globalLabel(name))
		}
		if name == "self" {
			// Outside a method frame self has no argument slot; esi holds it.
			return value.InReg("esi")
		}
		// Unresolved read: implicit self-send.
		return value.PossibleSend(name)
	}

	switch b.Kind {
	case scope.BindLocal:
		v := value.LocalSlot(b.Slot)
		if save {
			d.em.EvictRegsFor(name)
			return v
		}
		if reg, cached := d.em.CachedReg(name); cached {
			return value.InReg(reg)
		}
		return v
	case scope.BindArg:
		if save {
			d.em.EvictRegsFor(name)
			return value.ArgSlot(b.Slot)
		}
		if reg, cached := d.em.CachedReg(name); cached {
			return value.InReg(reg)
		}
		return value.ArgSlot(b.Slot)
	case scope.BindIVar:
		return value.IVarSlot(b.Slot)
	case scope.BindGlobal:
		return value.GlobalNamed(globalLabel(name))
	case scope.BindFunction:
		return value.AddrOf("fn_" + cleanName(name))
	default:
		return value.PossibleSend(name)
	}
}

// enclosingClass walks outward from sc looking for the nearest *scope.Class,
// stopping at the first Function/LocalLet chain that doesn't lead to one.
// A name unresolved anywhere in that chain but reached from inside a method
// body belongs to that class, not the global namespace.
func enclosingClass(sc scope.Scope) (*scope.Class, bool) {
	for s := sc; s != nil; s = s.Parent() {
		if cs, ok := s.(*scope.Class); ok {
			return cs, true
		}
	}
	return nil, false
}
