// Package vtable implements the single, program-wide method-name-to-slot
// map spec.md §3 describes: every class's vtable shares the same layout, so
// a method name occupies the same offset in every object's vtable
// regardless of which class defines it.
package vtable

// HeaderSlots is the number of fixed slots at the start of every object's
// vtable, before the first allocated method slot (spec.md §6): slot 0
// class pointer, slot 1 instance_size, slot 2 raw name, slot 3 superclass
// pointer. Only class objects populate 1-3 meaningfully; instances only
// ever read slot 0.
const HeaderSlots = 4

// Table is the append-only, program-wide method-name -> slot allocator.
// Allocation happens once, in a pre-pass over every defm form before any
// code is emitted (spec.md §4's "vtable pre-pass"); after that the map
// never changes size, only the per-class fill-in of which function pointer
// occupies which class's copy of a given slot.
type Table struct {
	offsets map[string]int
	order   []string
}

func New() *Table {
	return &Table{offsets: map[string]int{}}
}

// OffsetFor returns name's slot, allocating the next free one (starting at
// HeaderSlots) the first time name is seen. Calling this after the
// pre-pass has closed is a caller bug; Table does not enforce closing
// itself, matching the driver's single-pass discipline.
func (t *Table) OffsetFor(name string) int {
	if off, ok := t.offsets[name]; ok {
		return off
	}
	off := HeaderSlots + len(t.order)
	t.offsets[name] = off
	t.order = append(t.order, name)
	return off
}

// Lookup reports name's slot without allocating one.
func (t *Table) Lookup(name string) (int, bool) {
	off, ok := t.offsets[name]
	return off, ok
}

// Size is the total number of slots a class's vtable must reserve,
// including the header.
func (t *Table) Size() int {
	return HeaderSlots + len(t.order)
}

// Names returns method names in allocation order, for deterministic
// thunk-table emission (method-missing fill-in, spec.md §4's warning path).
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
