package vtable

import "testing"

func TestOffsetForAllocatesStartingAtHeaderSlots(t *testing.T) {
	tb := New()
	if got := tb.OffsetFor("foo"); got != HeaderSlots {
		t.Fatalf("got %d want %d", got, HeaderSlots)
	}
	if got := tb.OffsetFor("bar"); got != HeaderSlots+1 {
		t.Fatalf("got %d want %d", got, HeaderSlots+1)
	}
}

func TestOffsetForIsStableAcrossCalls(t *testing.T) {
	tb := New()
	first := tb.OffsetFor("foo")
	tb.OffsetFor("bar")
	second := tb.OffsetFor("foo")
	if first != second {
		t.Fatalf("expected stable offset for repeated name, got %d then %d", first, second)
	}
}

func TestLookupDoesNotAllocate(t *testing.T) {
	tb := New()
	if _, ok := tb.Lookup("nope"); ok {
		t.Fatalf("expected Lookup to report miss without allocating")
	}
	if tb.Size() != HeaderSlots {
		t.Fatalf("Lookup must not allocate a slot, size=%d", tb.Size())
	}
}

func TestSizeAndNamesTrackAllocationOrder(t *testing.T) {
	tb := New()
	tb.OffsetFor("foo")
	tb.OffsetFor("bar")
	tb.OffsetFor("baz")
	if tb.Size() != HeaderSlots+3 {
		t.Fatalf("got size=%d", tb.Size())
	}
	names := tb.Names()
	want := []string{"foo", "bar", "baz"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names[%d]=%q want %q", i, names[i], n)
		}
	}
}
