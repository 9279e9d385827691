// class.go implements spec.md §4.4's class definition form. `module` is
// aliased to `class` verbatim, per §9's open-question decision: no
// separate marking of the resulting class object as a module.
package codegen

import (
	"classgen/internal/runtime"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func init() {
	register("class", lowerClass)
	register("module", lowerClass)
}

// lowerClass resolves or creates the named class's scope, computes its
// inherited instance size (0 for the `Class`/`Kernel` bootstrap case, per
// §9's kept-verbatim fragility), emits the __new_class_object allocation
// and the instance-size/raw-name slot writes, then lowers the body in the
// class's own scope.
func lowerClass(d *Driver, sc scope.Scope, form *sexpr.List) value.Value {
	args := form.Args()
	if len(args) < 2 {
		d.addFatal(sc, form, "class requires a name and a superclass")
		return value.Immediate(0)
	}
	nameAtom, ok := args[0].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "class name must be a symbol")
		return value.Immediate(0)
	}
	superAtom, ok := args[1].(*sexpr.Atom)
	if !ok {
		d.addFatal(sc, form, "superclass name must be a symbol")
		return value.Immediate(0)
	}
	name, superName := nameAtom.Str, superAtom.Str

	info, exists := d.Global.Classes[name]
	if !exists {
		info = &scope.ClassInfo{Name: name, SuperName: superName, IvarOffsets: map[string]int{}}
		if superInfo, ok := d.Global.Classes[superName]; ok {
			for k, v := range superInfo.IvarOffsets {
				info.IvarOffsets[k] = v
			}
			info.InstanceSize = superInfo.InstanceSize
		}
		d.Global.Classes[name] = info
	}
	classScope := scope.NewClass(info, sc)
	info.Scope = classScope

	// name == Class or name == Kernel skips superclass-size lookup during
	// bootstrap, kept exactly as flagged fragile in §9 rather than
	// redesigned.
	bootstrap := name == "Class" || name == "Kernel"
	ssize := info.InstanceSize
	if bootstrap {
		ssize = 0
	}

	d.globals.Add(name)
	d.em.CallerSave(func() {
		d.em.Emit("    push $%d", ssize)
		if _, ok := d.Global.Classes[superName]; ok {
			d.materialize(sc, sexpr.Sym(superName))
		} else {
			d.em.Emit("    mov $0, %%eax")
		}
		d.em.Emit("    push %%eax")
		d.em.Emit("    push $%d", d.VTable.Size())
		d.em.Emit("    call %s", runtime.NewClassObject)
		d.em.Emit("    add $%d, %%esp", 3*value.WordSize)
		d.em.Emit("    mov %%eax, %s", globalLabel(name))
	})

	// Instance size and raw name are written with raw byte strings, since
	// String itself may not be initialised yet this early in bootstrap
	// (spec.md §4.4).
	nameLabel := d.pool.Intern(name)
	d.em.Emit("    mov %s, %%eax", globalLabel(name))
	d.em.Emit("    mov $%d, %d(%%eax)", info.InstanceSize, 1*value.WordSize)
	d.em.Emit("    lea %s, %%ecx", nameLabel)
	d.em.Emit("    mov %%ecx, %d(%%eax)", 2*value.WordSize)

	return d.compileBody(classScope, args[2:])
}
