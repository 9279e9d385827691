package codegen

import (
	"strings"
	"testing"

	"classgen/internal/sexpr"
)

func TestLowerLetReservesStackAndStoresBindings(t *testing.T) {
	d := newTestDriver()
	form := sexpr.L(sexpr.Sym("let"),
		sexpr.L(sexpr.L(sexpr.Sym("x"), sexpr.Int(1)), sexpr.L(sexpr.Sym("y"), sexpr.Int(2))),
		sexpr.Sym("x"),
	)
	lowerLet(d, d.Global, form)
	out := d.em.String()
	if !strings.Contains(out, "sub $8, %esp") {
		t.Fatalf("expected two words reserved, got:\n%s", out)
	}
	if !strings.Contains(out, "add $8, %esp") {
		t.Fatalf("expected stack restored, got:\n%s", out)
	}
}

func TestLowerLetEvictsAliasingRegistersOnEntry(t *testing.T) {
	d := newTestDriver()
	d.em.CacheReg("x", "ebx")
	form := sexpr.L(sexpr.Sym("let"), sexpr.L(sexpr.L(sexpr.Sym("x"), sexpr.Int(5))), sexpr.Int(0))
	lowerLet(d, d.Global, form)
	if _, ok := d.em.CachedReg("x"); ok {
		t.Fatalf("expected let to evict a register cached under a shadowed name")
	}
}

func TestLowerLetMalformedBindingIsFatal(t *testing.T) {
	d := newTestDriver()
	form := sexpr.L(sexpr.Sym("let"), sexpr.L(sexpr.Int(1)), sexpr.Int(0))
	lowerLet(d, d.Global, form)
	if !d.HasErrors() {
		t.Fatalf("expected a fatal diagnostic for a malformed binding")
	}
}
