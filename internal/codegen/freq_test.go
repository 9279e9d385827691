package codegen

import (
	"strings"
	"testing"

	"classgen/internal/funcrec"
	"classgen/internal/scope"
	"classgen/internal/sexpr"
)

func TestComputeVarFreqCountsArgAndLocalReferencesOnly(t *testing.T) {
	d := newTestDriver()
	f := scope.NewFunction("f", []string{"a", "b"}, false, d.Global)
	body := sexpr.L(sexpr.Sym("do"), sexpr.Sym("a"), sexpr.Sym("a"), sexpr.Sym("b"), sexpr.Sym("Unresolved"))
	fn := funcrec.NewFunction("f", nil, false, body, d.Global)

	computeVarFreq(f, fn)

	if fn.VarFreq["a"] != 2 {
		t.Fatalf("expected a to be counted twice, got %+v", fn.VarFreq)
	}
	if fn.VarFreq["b"] != 1 {
		t.Fatalf("expected b to be counted once, got %+v", fn.VarFreq)
	}
	if _, ok := fn.VarFreq["Unresolved"]; ok {
		t.Fatalf("expected an unresolved name not to be counted, got %+v", fn.VarFreq)
	}
	if fn.MostFrequent() != "a" {
		t.Fatalf("expected a to be most frequent, got %q", fn.MostFrequent())
	}
}

func TestPrimeRegisterCacheLoadsMostFrequentArgIntoEcx(t *testing.T) {
	d := newTestDriver()
	f := scope.NewFunction("f", []string{"a", "b"}, false, d.Global)
	fn := funcrec.NewFunction("f", nil, false, sexpr.L(), d.Global)
	fn.Bump("b")
	fn.Bump("b")
	fn.Bump("a")

	d.primeRegisterCache(f, fn)

	if !strings.Contains(d.em.String(), "mov 12(%ebp), %ecx") {
		t.Fatalf("expected b's arg slot to be loaded into ecx, got:\n%s", d.em.String())
	}
	if reg, ok := d.em.CachedReg("b"); !ok || reg != "ecx" {
		t.Fatalf("expected b to be cached in ecx, got reg=%q ok=%v", reg, ok)
	}
}

func TestPrimeRegisterCacheNoopsWithNoUsage(t *testing.T) {
	d := newTestDriver()
	f := scope.NewFunction("f", []string{"a"}, false, d.Global)
	fn := funcrec.NewFunction("f", nil, false, sexpr.L(), d.Global)

	d.primeRegisterCache(f, fn)

	if d.em.String() != "" {
		t.Fatalf("expected no emission with an empty VarFreq, got:\n%s", d.em.String())
	}
}
