package reader

import (
	"testing"

	"classgen/internal/lexer"
	"classgen/internal/sexpr"
)

func readAll(t *testing.T, input string) *sexpr.List {
	t.Helper()
	r := New(lexer.New(input), "test.tw")
	prog := r.ReadProgram()
	if len(r.Errors()) != 0 {
		t.Fatalf("unexpected reader errors: %v", r.Errors())
	}
	return prog
}

func TestReadSimpleCall(t *testing.T) {
	prog := readAll(t, `(callm self bar (1 2))`)
	// prog is (do <form>)
	if len(prog.Items) != 2 {
		t.Fatalf("expected 1 top-level form, got %d", len(prog.Items)-1)
	}
	call, ok := prog.Items[1].(*sexpr.List)
	if !ok {
		t.Fatalf("expected a list, got %T", prog.Items[1])
	}
	head, ok := call.HeadSymbol()
	if !ok || head != "callm" {
		t.Fatalf("got head=(%q,%v)", head, ok)
	}
	if len(call.Args()) != 3 {
		t.Fatalf("expected 3 args, got %d", len(call.Args()))
	}
}

func TestReadNestedClassAndDefm(t *testing.T) {
	prog := readAll(t, `
(class A Object
  (defm foo (x y)
    (return 42)))
`)
	classForm := prog.Items[1].(*sexpr.List)
	head, _ := classForm.HeadSymbol()
	if head != "class" {
		t.Fatalf("got=%q", head)
	}
	args := classForm.Args()
	if len(args) != 3 {
		t.Fatalf("expected 3 args (name, super, defm), got %d", len(args))
	}
	name := args[0].(*sexpr.Atom)
	if name.Str != "A" {
		t.Fatalf("got=%q", name.Str)
	}
}

func TestReadAtoms(t *testing.T) {
	prog := readAll(t, `42 3.14 "hi" :sym bareword`)
	kinds := []sexpr.AtomKind{sexpr.AtomInt, sexpr.AtomFloat, sexpr.AtomString, sexpr.AtomSymbolLiteral, sexpr.AtomSymbol}
	for i, k := range kinds {
		a, ok := prog.Items[i+1].(*sexpr.Atom)
		if !ok {
			t.Fatalf("item %d: expected atom, got %T", i, prog.Items[i+1])
		}
		if a.Kind != k {
			t.Fatalf("item %d: got kind=%v want=%v", i, a.Kind, k)
		}
	}
}

func TestUnterminatedListReportsError(t *testing.T) {
	r := New(lexer.New("(callm self bar"), "test.tw")
	r.ReadProgram()
	if len(r.Errors()) == 0 {
		t.Fatalf("expected an unterminated-list error")
	}
}

func TestUnexpectedCloseParenReportsError(t *testing.T) {
	r := New(lexer.New(")"), "test.tw")
	r.ReadProgram()
	if len(r.Errors()) == 0 {
		t.Fatalf("expected an unexpected-) error")
	}
}

func TestPositionsAreStamped(t *testing.T) {
	prog := readAll(t, "\n\n  (return 1)")
	form := prog.Items[1].(*sexpr.List)
	if form.Pos().Line != 3 {
		t.Fatalf("expected line 3, got %d", form.Pos().Line)
	}
	if form.Pos().File != "test.tw" {
		t.Fatalf("expected file stamped, got %q", form.Pos().File)
	}
}
