// Package scope implements the lexical scope chain of spec.md §3: a linked
// chain of Global, Class, Function, LocalLet and SExpr scopes. Lookup walks
// inward-to-outward; the first scope that owns a name wins.
package scope

// Kind identifies which of the five scope variants spec.md §3 names.
type Kind int

const (
	KindGlobal Kind = iota
	KindClass
	KindFunction
	KindLocalLet
	KindSExpr
)

// Binding is what a successful Resolve call returns: which scope owns the
// name and what residence it names there. internal/codegen turns this into
// a value.Value; scope itself stays value-agnostic so it has no import
// cycle with internal/value's Value construction helpers for slots that
// don't exist until the owning scope is built (e.g. a not-yet-assigned
// global constant).
type Binding struct {
	Owner Scope
	Kind  BindingKind
	Slot  int // meaningful for BindLocal, BindArg, BindIVar
	Name  string
}

type BindingKind int

const (
	BindLocal BindingKind = iota
	BindArg
	BindIVar
	BindGlobal
	BindFunction // a top-level or captured function name
)

// Scope is implemented by every scope variant.
type Scope interface {
	Kind() Kind
	Parent() Scope
	// Resolve looks up name in this scope only (no walking to Parent).
	// The second return value is false if this scope does not own name.
	Resolve(name string) (Binding, bool)
}

// Resolve walks sc and its ancestors outward, returning the first binding
// found. NotFound (ok=false) means the name is unresolved anywhere in the
// chain — codegen turns that into a PossibleCallm on read or a global
// promotion on write, per spec.md §3.
func Resolve(sc Scope, name string) (Binding, bool) {
	for s := sc; s != nil; s = s.Parent() {
		if b, ok := s.Resolve(name); ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Global is the top-level scope: global functions, top-level constants and
// the class registry. There is exactly one per compilation, and it is the
// root of every scope chain (its Parent is nil).
type Global struct {
	Constants map[string]bool         // names known to exist as BSS globals
	Classes   map[string]*ClassInfo   // class name -> class scope info
	Functions map[string]bool         // top-level function names
}

func NewGlobal() *Global {
	return &Global{
		Constants: map[string]bool{},
		Classes:   map[string]*ClassInfo{},
		Functions: map[string]bool{},
	}
}

func (g *Global) Kind() Kind    { return KindGlobal }
func (g *Global) Parent() Scope { return nil }

func (g *Global) Resolve(name string) (Binding, bool) {
	if g.Functions[name] {
		return Binding{Owner: g, Kind: BindFunction, Name: name}, true
	}
	if g.Constants[name] || g.Classes[name] != nil {
		return Binding{Owner: g, Kind: BindGlobal, Name: name}, true
	}
	return Binding{}, false
}

// Declare registers name as a global constant (spec.md §4.1's "promoted to
// a new global constant" write path, and §8's "every bare name assigned at
// top level").
func (g *Global) Declare(name string) {
	g.Constants[name] = true
}

// ClassInfo is the per-class data the Global scope indexes classes by name
// with — arena-style, per DESIGN.md's cyclic-ownership note: cross-class
// references (superclass) are name keys, never owning pointers.
type ClassInfo struct {
	Name         string
	SuperName    string
	InstanceSize int
	IvarOffsets  map[string]int
	Scope        *Class
}

// Class scope owns a class's instance-variable map (offsets assigned in
// source order, inherited base first) and class-ivar constants.
type Class struct {
	Info      *ClassInfo
	parent    Scope
	classVars map[string]bool
}

func NewClass(info *ClassInfo, parent Scope) *Class {
	return &Class{Info: info, parent: parent, classVars: map[string]bool{}}
}

func (c *Class) Kind() Kind    { return KindClass }
func (c *Class) Parent() Scope { return c.parent }

func (c *Class) Resolve(name string) (Binding, bool) {
	if off, ok := c.Info.IvarOffsets[name]; ok {
		return Binding{Owner: c, Kind: BindIVar, Slot: off, Name: name}, true
	}
	if c.classVars[name] {
		return Binding{Owner: c, Kind: BindGlobal, Name: c.Info.Name + "::" + name}, true
	}
	return Binding{}, false
}

// DeclareIvar assigns the next free offset (in source order) to name if it
// isn't already owned by this class or an ancestor.
func (c *Class) DeclareIvar(name string) int {
	if off, ok := c.Info.IvarOffsets[name]; ok {
		return off
	}
	off := len(c.Info.IvarOffsets)
	c.Info.IvarOffsets[name] = off
	return off
}

func (c *Class) DeclareClassVar(name string) { c.classVars[name] = true }

// Function scope owns formal argument positions and, transitively (via its
// LocalLet children created for `let` forms and the implicit top-level
// let), the body's locals.
type Function struct {
	Name     string
	Params   []string
	Rest     bool
	parent   Scope
	argIndex map[string]int
}

func NewFunction(name string, params []string, rest bool, parent Scope) *Function {
	idx := make(map[string]int, len(params))
	for i, p := range params {
		idx[p] = i
	}
	return &Function{Name: name, Params: params, Rest: rest, parent: parent, argIndex: idx}
}

func (f *Function) Kind() Kind    { return KindFunction }
func (f *Function) Parent() Scope { return f.parent }

func (f *Function) Resolve(name string) (Binding, bool) {
	if i, ok := f.argIndex[name]; ok {
		return Binding{Owner: f, Kind: BindArg, Slot: i, Name: name}, true
	}
	return Binding{}, false
}

// LocalLet is a flat block of let-bound locals with consecutive indices,
// relative to a base offset supplied by the enclosing function's frame
// layout (internal/codegen owns that arithmetic; LocalLet only tracks
// name -> index within its own block, per spec.md §3).
type LocalLet struct {
	parent Scope
	base   int
	names  map[string]int
	next   int
}

func NewLocalLet(parent Scope, base int) *LocalLet {
	return &LocalLet{parent: parent, base: base, names: map[string]int{}}
}

func (l *LocalLet) Kind() Kind    { return KindLocalLet }
func (l *LocalLet) Parent() Scope { return l.parent }

func (l *LocalLet) Resolve(name string) (Binding, bool) {
	if i, ok := l.names[name]; ok {
		return Binding{Owner: l, Kind: BindLocal, Slot: l.base + i, Name: name}, true
	}
	return Binding{}, false
}

// Declare binds name to the next free slot in this block and returns its
// absolute slot index (base + local index).
func (l *LocalLet) Declare(name string) int {
	if i, ok := l.names[name]; ok {
		return l.base + i
	}
	i := l.next
	l.names[name] = i
	l.next++
	return l.base + i
}

func (l *LocalLet) Count() int { return l.next }

// Base returns the frame-slot index this block's own slots start counting
// from, so a nested LocalLet can stack its own block on top.
func (l *LocalLet) Base() int { return l.base }

// SExpr is a transparent pass-through scope used to suppress certain
// rewrites (spec.md §3); it owns nothing and defers every Resolve to its
// parent via the normal chain walk (its own Resolve always misses).
type SExpr struct {
	parent Scope
}

func NewSExpr(parent Scope) *SExpr { return &SExpr{parent: parent} }

func (s *SExpr) Kind() Kind             { return KindSExpr }
func (s *SExpr) Parent() Scope          { return s.parent }
func (s *SExpr) Resolve(string) (Binding, bool) { return Binding{}, false }
