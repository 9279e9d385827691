package codegen

import (
	"strings"
	"testing"

	"classgen/internal/emitter"
	"classgen/internal/runtime"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
	"classgen/internal/value"
)

func newTestDriver() *Driver {
	return NewDriver(emitter.NewGASEmitter())
}

func TestGetArgImmediate(t *testing.T) {
	d := newTestDriver()
	v := d.getArg(d.Global, sexpr.Int(42))
	if v.Kind != value.Int || v.Int != 42 {
		t.Fatalf("got %+v", v)
	}
}

func TestGetArgStringInternsIntoPool(t *testing.T) {
	d := newTestDriver()
	v := d.getArg(d.Global, sexpr.Str("hi"))
	if v.Kind != value.Addr {
		t.Fatalf("got %+v", v)
	}
	entries := d.pool.Entries()
	if len(entries) != 1 || entries[0].Value != "hi" {
		t.Fatalf("expected pool to intern the literal, got %+v", entries)
	}
}

func TestGetArgSymbolLiteralAllocatesSymbolSlot(t *testing.T) {
	d := newTestDriver()
	v := d.getArg(d.Global, sexpr.SymLit("foo"))
	if v.Kind != value.Global {
		t.Fatalf("got %+v", v)
	}
	if len(d.symbols.Entries()) != 1 {
		t.Fatalf("expected one symbol slot allocated")
	}
	out := d.em.String()
	if !strings.Contains(out, "call "+string(runtime.GetString)) || !strings.Contains(out, "call "+string(runtime.GetSymbol)) {
		t.Fatalf("expected a guarded interning call sequence, got:\n%s", out)
	}
}

func TestGetArgUnresolvedReadIsPossibleCallm(t *testing.T) {
	d := newTestDriver()
	v := d.getArg(d.Global, sexpr.Sym("mystery"))
	if v.Kind != value.PossibleCallm || v.Name != "mystery" {
		t.Fatalf("got %+v", v)
	}
}

func TestGetArgSaveUnresolvedWritePromotesToGlobal(t *testing.T) {
	d := newTestDriver()
	v := d.getArgSave(d.Global, sexpr.Sym("NewConst"), true)
	if v.Kind != value.Addr {
		t.Fatalf("got %+v", v)
	}
	if !d.globals.Has("NewConst") {
		t.Fatalf("expected NewConst promoted to the global set")
	}
}

func TestGetArgResolvesLocalThroughScope(t *testing.T) {
	d := newTestDriver()
	f := scope.NewFunction("f", nil, false, d.Global)
	let := scope.NewLocalLet(f, 0)
	let.Declare("x")
	v := d.getArg(let, sexpr.Sym("x"))
	if v.Kind != value.LVar || v.Slot != 0 {
		t.Fatalf("got %+v", v)
	}
}

func TestGetArgResolvesArgByPosition(t *testing.T) {
	d := newTestDriver()
	f := scope.NewFunction("f", []string{"a", "b"}, false, d.Global)
	v := d.getArg(f, sexpr.Sym("b"))
	if v.Kind != value.Arg || v.Slot != 1 {
		t.Fatalf("got %+v", v)
	}
}

func TestGetArgTrueFalseAreGlobals(t *testing.T) {
	d := newTestDriver()
	v := d.getArg(d.Global, sexpr.Sym("true"))
	if v.Kind != value.Global {
		t.Fatalf("got %+v", v)
	}
}
