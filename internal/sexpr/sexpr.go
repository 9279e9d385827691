// Package sexpr defines the tree shape the codegen core consumes: a
// generic, tagged-list s-expression, exactly the input contract spec.md §6
// describes ("a nested tagged list ... Each node is either an atom ... or a
// list whose head is a keyword symbol"). Unlike a typed-per-construct AST,
// one Node shape (Atom or List) covers every construct; the core's
// dispatch table (internal/codegen) is what gives a List its meaning.
package sexpr

import (
	"strconv"
	"strings"

	"classgen/internal/diag"
)

// Node is the common interface for every s-expression tree element.
type Node interface {
	Pos() diag.Position
	String() string
}

// AtomKind distinguishes the five leaf shapes an Atom can take.
type AtomKind int

const (
	AtomInt AtomKind = iota
	AtomFloat
	AtomString
	AtomSymbol       // bare word: identifier, keyword head, operator name
	AtomSymbolLiteral // :name — a runtime Symbol literal
)

// Atom is a leaf node.
type Atom struct {
	Kind   AtomKind
	Int    int64
	Float  float64
	Str    string // AtomString and AtomSymbol/AtomSymbolLiteral payload
	PosVal diag.Position
}

func (a *Atom) Pos() diag.Position { return a.PosVal }

func (a *Atom) String() string {
	switch a.Kind {
	case AtomInt:
		return strconv.FormatInt(a.Int, 10)
	case AtomFloat:
		return strconv.FormatFloat(a.Float, 'g', -1, 64)
	case AtomString:
		return strconv.Quote(a.Str)
	case AtomSymbolLiteral:
		return ":" + a.Str
	default:
		return a.Str
	}
}

// IsSymbol reports whether this atom is a bare symbol equal to name.
func (a *Atom) IsSymbol(name string) bool {
	return a.Kind == AtomSymbol && a.Str == name
}

// List is an interior node: a parenthesized sequence of Nodes. By
// convention Items[0] is the head — a keyword symbol for the fixed
// dispatch set in spec.md §4.1, an operator-method name, or (for a
// non-keyword head) the callee expression of an implicit call.
type List struct {
	Items  []Node
	PosVal diag.Position
}

func (l *List) Pos() diag.Position { return l.PosVal }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Head returns the head node, or nil for an empty list.
func (l *List) Head() Node {
	if len(l.Items) == 0 {
		return nil
	}
	return l.Items[0]
}

// HeadSymbol returns the head's symbol text and whether the head is a bare
// AtomSymbol at all (as opposed to a nested expression, meaning this list
// is a non-keyword implicit call).
func (l *List) HeadSymbol() (string, bool) {
	if len(l.Items) == 0 {
		return "", false
	}
	if a, ok := l.Items[0].(*Atom); ok && a.Kind == AtomSymbol {
		return a.Str, true
	}
	return "", false
}

// Args returns every item after the head.
func (l *List) Args() []Node {
	if len(l.Items) == 0 {
		return nil
	}
	return l.Items[1:]
}

// Sym constructs a bare-symbol atom, useful for building synthetic nodes
// during lowering (e.g. rewriting `foo.bar = v` into `(callm foo bar= (v))`).
func Sym(name string) *Atom { return &Atom{Kind: AtomSymbol, Str: name} }

// SymLit constructs a :name symbol-literal atom.
func SymLit(name string) *Atom { return &Atom{Kind: AtomSymbolLiteral, Str: name} }

// Int constructs an integer literal atom.
func Int(n int64) *Atom { return &Atom{Kind: AtomInt, Int: n} }

// Str constructs a byte-string literal atom.
func Str(s string) *Atom { return &Atom{Kind: AtomString, Str: s} }

// L constructs a list from the given items, head first.
func L(items ...Node) *List { return &List{Items: items} }
