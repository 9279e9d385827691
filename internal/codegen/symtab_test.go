package codegen

import "testing"

func TestSymbolTableSlotIsStableAndDistinct(t *testing.T) {
	st := newSymbolTable()
	a := st.Slot("foo")
	b := st.Slot("foo")
	c := st.Slot("bar")
	if a != b {
		t.Fatalf("expected repeated Slot(%q) to be stable, got %+v then %+v", "foo", a, b)
	}
	if a.SymbolLabel == c.SymbolLabel {
		t.Fatalf("expected distinct symbols to get distinct labels")
	}
}

func TestSymbolTableEntriesPreserveOrder(t *testing.T) {
	st := newSymbolTable()
	st.Slot("a")
	st.Slot("b")
	st.Slot("a")
	entries := st.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "a" || entries[1].Name != "b" {
		t.Fatalf("got %+v", entries)
	}
}
