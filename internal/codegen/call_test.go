package codegen

import (
	"strings"
	"testing"

	"classgen/internal/scope"
	"classgen/internal/sexpr"
)

func TestDispatchMethodDispatchesThroughResolvedOffset(t *testing.T) {
	d := newTestDriver()
	off := d.VTable.OffsetFor("bar")
	form := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("self"), sexpr.SymLit("bar"), sexpr.L(sexpr.Int(1), sexpr.Int(2)))
	lowerCallm(d, d.Global, form)
	out := d.em.String()
	if !strings.Contains(out, "call *") {
		t.Fatalf("expected an indirect call through the vtable, got:\n%s", out)
	}
	_ = off
}

func TestDispatchMethodWarnsAndFallsBackToSendForUnknownMethod(t *testing.T) {
	d := newTestDriver()
	form := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("obj"), sexpr.SymLit("nonexistent"), sexpr.L())
	lowerCallm(d, d.Global, form)
	out := d.em.String()
	if !strings.Contains(out, "call __send__") {
		t.Fatalf("expected __send__ fallback, got:\n%s", out)
	}
	found := false
	for _, diagnostic := range d.Diagnostics() {
		if diagnostic.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning diagnostic for the unresolved method")
	}
}

func TestSuperDispatchesThroughSuperclassPointer(t *testing.T) {
	d := newTestDriver()
	d.VTable.OffsetFor("x")
	form := sexpr.L(sexpr.Sym("super"), sexpr.Sym("self"), sexpr.SymLit("x"), sexpr.L())
	lowerSuper(d, d.Global, form)
	out := d.em.String()
	if !strings.Contains(out, "12(%eax)") { // header slot 3 * 4 bytes
		t.Fatalf("expected superclass-slot load, got:\n%s", out)
	}
}

func TestYieldRewritesToClosureCall(t *testing.T) {
	d := newTestDriver()
	d.VTable.OffsetFor("call")
	form := sexpr.L(sexpr.Sym("yield"), sexpr.Int(1))
	lowerYield(d, d.Global, form)
	out := d.em.String()
	if !strings.Contains(out, "call *") {
		t.Fatalf("expected yield to dispatch like a callm, got:\n%s", out)
	}
}

func TestDispatchMethodReloadsSelfAfterNonSelfReceiver(t *testing.T) {
	d := newTestDriver()
	d.VTable.OffsetFor("bar")
	methodScope := scope.NewFunction("m", []string{"self", "other", "__closure__"}, false, d.Global)
	form := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("other"), sexpr.SymLit("bar"), sexpr.L())
	lowerCallm(d, methodScope, form)
	out := d.em.String()
	if !strings.Contains(out, "mov 8(%ebp), %esi") {
		t.Fatalf("expected self to be reloaded into esi after dispatching to a non-self receiver, got:\n%s", out)
	}
}

func TestDispatchMethodDoesNotReloadSelfForSelfReceiver(t *testing.T) {
	d := newTestDriver()
	d.VTable.OffsetFor("bar")
	methodScope := scope.NewFunction("m", []string{"self", "__closure__"}, false, d.Global)
	form := sexpr.L(sexpr.Sym("callm"), sexpr.Sym("self"), sexpr.SymLit("bar"), sexpr.L())
	lowerCallm(d, methodScope, form)
	out := d.em.String()
	if strings.Contains(out, "mov 8(%ebp), %esi") {
		t.Fatalf("did not expect a self reload when the receiver is already self, got:\n%s", out)
	}
}

func TestVtableOffsetsAreAssignedInFirstEncounterOrder(t *testing.T) {
	d := newTestDriver()
	program := sexpr.L(
		sexpr.Sym("do"),
		sexpr.L(sexpr.Sym("class"), sexpr.Sym("A"), sexpr.Sym("Object"),
			sexpr.L(sexpr.Sym("defm"), sexpr.Sym("x"), sexpr.L(), sexpr.L(sexpr.Sym("return"), sexpr.Int(1)))),
		sexpr.L(sexpr.Sym("class"), sexpr.Sym("B"), sexpr.Sym("A"),
			sexpr.L(sexpr.Sym("defm"), sexpr.Sym("y"), sexpr.L(), sexpr.L(sexpr.Sym("return"), sexpr.Int(2)))),
	)
	d.prepassVtable(program)
	xOff, _ := d.VTable.Lookup("x")
	yOff, _ := d.VTable.Lookup("y")
	if xOff == yOff {
		t.Fatalf("expected distinct offsets for distinct methods")
	}
}
