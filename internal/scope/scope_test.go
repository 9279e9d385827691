package scope

import "testing"

func TestGlobalResolvesFunctionsAndConstants(t *testing.T) {
	g := NewGlobal()
	g.Functions["main"] = true
	g.Declare("$counter")

	if _, ok := Resolve(g, "missing"); ok {
		t.Fatalf("expected missing name to be unresolved")
	}
	b, ok := Resolve(g, "main")
	if !ok || b.Kind != BindFunction {
		t.Fatalf("got %+v, %v", b, ok)
	}
	b, ok = Resolve(g, "$counter")
	if !ok || b.Kind != BindGlobal {
		t.Fatalf("got %+v, %v", b, ok)
	}
}

func TestClassResolvesIvarsAndFallsThroughToGlobal(t *testing.T) {
	g := NewGlobal()
	g.Declare("Kernel")
	info := &ClassInfo{Name: "Point", IvarOffsets: map[string]int{}}
	c := NewClass(info, g)
	c.DeclareIvar("x")
	c.DeclareIvar("y")

	b, ok := Resolve(c, "y")
	if !ok || b.Kind != BindIVar || b.Slot != 1 {
		t.Fatalf("got %+v, %v", b, ok)
	}
	if _, ok := Resolve(c, "Kernel"); !ok {
		t.Fatalf("expected class scope to fall through to global")
	}
	if _, ok := Resolve(c, "z"); ok {
		t.Fatalf("expected unresolved ivar to miss")
	}
}

func TestDeclareIvarIsIdempotent(t *testing.T) {
	info := &ClassInfo{Name: "Point", IvarOffsets: map[string]int{}}
	c := NewClass(info, NewGlobal())
	first := c.DeclareIvar("x")
	second := c.DeclareIvar("x")
	if first != second {
		t.Fatalf("expected stable offset, got %d then %d", first, second)
	}
	if got := c.DeclareIvar("y"); got != 1 {
		t.Fatalf("expected next offset 1, got %d", got)
	}
}

func TestFunctionResolvesParamsByPosition(t *testing.T) {
	f := NewFunction("add", []string{"a", "b"}, false, NewGlobal())
	b, ok := Resolve(f, "b")
	if !ok || b.Kind != BindArg || b.Slot != 1 {
		t.Fatalf("got %+v, %v", b, ok)
	}
	if _, ok := Resolve(f, "c"); ok {
		t.Fatalf("expected unresolved param to miss")
	}
}

func TestLocalLetDeclaresConsecutiveSlotsAboveBase(t *testing.T) {
	f := NewFunction("f", []string{"a"}, false, NewGlobal())
	l := NewLocalLet(f, 3)
	if got := l.Declare("x"); got != 3 {
		t.Fatalf("got %d want 3", got)
	}
	if got := l.Declare("y"); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
	if got := l.Declare("x"); got != 3 {
		t.Fatalf("re-declaring x should return its existing slot, got %d", got)
	}
	if l.Count() != 2 {
		t.Fatalf("expected 2 distinct locals, got %d", l.Count())
	}
}

func TestLocalLetExposesItsBaseForNesting(t *testing.T) {
	f := NewFunction("f", nil, false, NewGlobal())
	outer := NewLocalLet(f, 0)
	outer.Declare("a")
	inner := NewLocalLet(outer, outer.Base()+outer.Count())
	if inner.Base() != 1 {
		t.Fatalf("got base=%d want 1", inner.Base())
	}
}

func TestChainWalksInwardToOutward(t *testing.T) {
	g := NewGlobal()
	g.Declare("shadowed")
	f := NewFunction("f", []string{"shadowed"}, false, g)
	l := NewLocalLet(f, 0)
	l.Declare("shadowed")

	b, ok := Resolve(l, "shadowed")
	if !ok || b.Kind != BindLocal {
		t.Fatalf("expected innermost binding to win, got %+v", b)
	}
}

func TestSExprScopeIsTransparent(t *testing.T) {
	g := NewGlobal()
	g.Declare("x")
	s := NewSExpr(g)
	b, ok := Resolve(s, "x")
	if !ok || b.Owner != Scope(g) {
		t.Fatalf("expected SExpr to defer to global, got %+v, %v", b, ok)
	}
}

func TestUnresolvedNameReturnsNotFound(t *testing.T) {
	g := NewGlobal()
	f := NewFunction("f", nil, false, g)
	if _, ok := Resolve(f, "nope"); ok {
		t.Fatalf("expected NotFound for an unbound name across the whole chain")
	}
}
