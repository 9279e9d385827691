// Package value defines the lowered-operand descriptor every codegen
// lowering routine returns (spec.md §3, "Lowered operand (Value)").
package value

// Kind identifies where a lowered operand's value currently resides.
type Kind int

const (
	// Int is an immediate integer literal.
	Int Kind = iota
	// Addr is the absolute address of a label (function, string constant).
	Addr
	// Reg is a value currently held in a named machine register.
	Reg
	// LVar is a local-slot k relative to the current frame.
	LVar
	// Arg is an argument-slot k relative to the current frame.
	Arg
	// IVar is instance slot k of self.
	IVar
	// Global is the address of a named BSS long.
	Global
	// Indirect is 32-bit memory addressed through a register.
	Indirect
	// Indirect8 is 8-bit memory addressed through a register.
	Indirect8
	// PossibleCallm is a resolution-ambiguous bare identifier.
	PossibleCallm
	// Subexpr means "the result register holds it now."
	Subexpr
)

// TypeHint is the optional semantic type carried alongside a Value.
type TypeHint int

const (
	TypeUnspecified TypeHint = iota
	TypeObject
)

// WordSize is the size in bytes of one 32-bit long / vtable slot / ivar
// slot, fixed by SPEC_FULL.md §6.
const WordSize = 4

// Value is the tagged descriptor every lowering routine in
// internal/codegen returns: either it names a concrete residence, or it is
// Subexpr, meaning the conventional result register holds the value now.
type Value struct {
	Kind Kind

	Int   int64  // Int
	Label string // Addr
	Reg   string // Reg, Indirect, Indirect8 (base register)
	Slot  int    // LVar, Arg, IVar
	Name  string // Global, PossibleCallm

	Type TypeHint
}

func (v Value) IsObject() bool { return v.Type == TypeObject }

// WithType returns a copy of v with its type hint set.
func (v Value) WithType(t TypeHint) Value {
	v.Type = t
	return v
}

func Immediate(n int64) Value            { return Value{Kind: Int, Int: n} }
func AddrOf(label string) Value          { return Value{Kind: Addr, Label: label} }
func InReg(reg string) Value             { return Value{Kind: Reg, Reg: reg} }
func LocalSlot(k int) Value              { return Value{Kind: LVar, Slot: k} }
func ArgSlot(k int) Value                { return Value{Kind: Arg, Slot: k} }
func IVarSlot(k int) Value               { return Value{Kind: IVar, Slot: k} }
func GlobalNamed(name string) Value      { return Value{Kind: Global, Name: name} }
func IndirectVia(reg string) Value       { return Value{Kind: Indirect, Reg: reg} }
func Indirect8Via(reg string) Value      { return Value{Kind: Indirect8, Reg: reg} }
func PossibleSend(name string) Value     { return Value{Kind: PossibleCallm, Name: name} }
func InResultReg() Value                 { return Value{Kind: Subexpr} }

// String renders a Value for diagnostics and tests.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return "int"
	case Addr:
		return "addr:" + v.Label
	case Reg:
		return "reg:" + v.Reg
	case LVar:
		return "lvar"
	case Arg:
		return "arg"
	case IVar:
		return "ivar"
	case Global:
		return "global:" + v.Name
	case Indirect:
		return "indirect:" + v.Reg
	case Indirect8:
		return "indirect8:" + v.Reg
	case PossibleCallm:
		return "possible_callm:" + v.Name
	case Subexpr:
		return "subexpr"
	default:
		return "unknown"
	}
}
