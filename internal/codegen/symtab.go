package codegen

import (
	"strconv"

	"classgen/internal/runtime"
	"classgen/internal/value"
)

// symbolTable caches the runtime Symbol objects allocated for `:name`
// literals (spec.md §4.1's "allocates (and caches) a runtime Symbol via
// __get_symbol(__get_string(bytes))"): each distinct symbol gets one
// backing string label and one BSS slot holding the interned Symbol
// pointer, populated lazily the first time it is referenced.
type symbolTable struct {
	slots map[string]symbolSlot
	order []string
	next  int
}

type symbolSlot struct {
	StringLabel string
	SymbolLabel string
	Name        string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{slots: map[string]symbolSlot{}}
}

// Slot returns the (string label, symbol BSS label) pair for name,
// allocating both the first time name is seen.
func (t *symbolTable) Slot(name string) symbolSlot {
	if s, ok := t.slots[name]; ok {
		return s
	}
	id := strconv.Itoa(t.next)
	t.next++
	s := symbolSlot{
		StringLabel: "__symstr_" + id,
		SymbolLabel: "__sym_" + id,
		Name:        name,
	}
	t.slots[name] = s
	t.order = append(t.order, name)
	return s
}

// Entries returns every allocated symbol slot in allocation order, for
// flushing the string bytes and the BSS placeholder at the end of
// compilation.
func (t *symbolTable) Entries() []symbolSlot {
	out := make([]symbolSlot, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.slots[name])
	}
	return out
}

// emitSymbolIntern emits spec.md §4.1's `:sym` allocation,
// `__get_symbol(__get_string(bytes))`, guarded by the BSS slot itself: the
// slot starts zeroed, so the first evaluation of the literal interns it and
// every later evaluation (a second occurrence in source, or the same
// literal reached again by a loop) just reads the cached pointer.
func (d *Driver) emitSymbolIntern(slot symbolSlot) {
	skip := d.em.Local()
	d.em.Emit("    mov %s, %%eax", slot.SymbolLabel)
	d.em.Emit("    cmp $0, %%eax")
	d.em.Emit("    jne %s", skip)
	d.em.CallerSave(func() {
		d.em.Emit("    push %s", slot.StringLabel)
		d.em.Emit("    call %s", runtime.GetString)
		d.em.Emit("    add $%d, %%esp", value.WordSize)
		d.em.Emit("    push %%eax")
		d.em.Emit("    call %s", runtime.GetSymbol)
		d.em.Emit("    add $%d, %%esp", value.WordSize)
		d.em.Emit("    mov %%eax, %s", slot.SymbolLabel)
	})
	d.em.Label(skip)
}
