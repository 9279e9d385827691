// thunks.go implements spec.md §4.5 step 4: emit a method-missing thunk
// for every allocated vtable slot, then the padded base vtable every new
// class object starts out pointing at (spec.md §6's "Emitted globals").
package codegen

import (
	"classgen/internal/runtime"
	"classgen/internal/value"
	"classgen/internal/vtable"
)

// emitVtableThunksAndBaseVtable is step 4 of Driver.Compile.
func (d *Driver) emitVtableThunksAndBaseVtable() {
	names := d.VTable.Names()

	d.em.Section("text")
	for _, name := range names {
		d.emitMissingThunk(name)
	}

	d.em.Section("rodata")
	d.em.Label("__base_vtable")
	for i := 0; i < vtable.HeaderSlots; i++ {
		d.em.Emit("    .long 0")
	}
	for _, name := range names {
		d.em.Emit("    .long %s", missingThunkLabel(name))
	}
}

// emitMissingThunk builds the body a slot points to until its owning
// class fills it in with a real method: prepend the method's symbol to
// the argument list and hand off to the runtime's __method_missing.
func (d *Driver) emitMissingThunk(name string) {
	label := missingThunkLabel(name)
	slot := d.symbols.Slot(name)
	d.em.Func(label, 0, func() {
		d.emitSymbolIntern(slot)
		d.em.Emit("    mov %s, %%eax", slot.SymbolLabel)
		d.em.Emit("    push %%eax")
		d.em.Emit("    call %s", runtime.MethodMissing)
		d.em.Emit("    add $%d, %%esp", value.WordSize)
	})
}
