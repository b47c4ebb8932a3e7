// Package tac implements the three-address code intermediate
// representation of spec §4.2 and the typed-AST-to-TAC lowering that
// produces it. Every pseudo-register is a symtab.SymbolID, the same
// identity space as named variables, so later stages (internal/
// optimize, internal/codegen, internal/regalloc) never need a second
// naming scheme for compiler-introduced temporaries.
package tac

import (
	"fmt"

	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/types"
)

// BinOp mirrors the arithmetic/relational opcode family of spec §4.2.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
)

// UnOp is the unary opcode family.
type UnOp int

const (
	Neg UnOp = iota
	BitNot
	Not
)

// Value is a TAC operand: either a compile-time constant or a named
// storage location (a declared variable or a compiler-generated
// temporary, both living in the shared symtab.Table).
type Value interface {
	Type() types.Type
	valueNode()
}

// Const is a typed compile-time scalar.
type Const struct {
	Ty types.Type
	C  symtab.ScalarConst
}

func (c Const) Type() types.Type { return c.Ty }
func (Const) valueNode()         {}

// Var names a storage location: a declared variable, a parameter, or
// a temporary minted by the lowering pass (Builder.newTemp).
type Var struct {
	Ty     types.Type
	Symbol symtab.SymbolID
	Name   string
}

func (v Var) Type() types.Type { return v.Ty }
func (Var) valueNode()         {}

// Instr is one TAC instruction.
type Instr interface {
	instrNode()
}

type Label struct{ Name string }

func (Label) instrNode() {}

type Jump struct{ Target string }

func (Jump) instrNode() {}

type JumpIfZero struct {
	Cond   Value
	Target string
}

func (JumpIfZero) instrNode() {}

type JumpIfNotZero struct {
	Cond   Value
	Target string
}

func (JumpIfNotZero) instrNode() {}

// Copy moves Src into Dst. When both operands have an aggregate
// (struct) type it denotes a whole-object copy; internal/codegen
// lowers that case into a per-eightbyte move sequence.
type Copy struct{ Dst, Src Value }

func (Copy) instrNode() {}

// GetAddress computes the address of a named object (Src must be a
// Var referring to a declared object, not a temporary scalar).
type GetAddress struct{ Dst, Src Value }

func (GetAddress) instrNode() {}

// Load reads through a pointer value into a scalar destination.
type Load struct{ Dst, Src Value }

func (Load) instrNode() {}

// Store writes a scalar value through a pointer destination.
type Store struct{ Dst, Src Value }

func (Store) instrNode() {}

// AddPtr computes Base + Index*Scale, the lowering of pointer
// arithmetic and array subscripting (spec §4.2).
type AddPtr struct {
	Dst, Base, Index Value
	Scale            int64
}

func (AddPtr) instrNode() {}

// CopyToOffset stores Src at byte Offset within the aggregate object
// named by Dst (a Var, not a pointer) — the lowering of a struct-
// member or array-element store inside an initializer or assignment.
type CopyToOffset struct {
	Dst    Value
	Offset int64
	Src    Value
}

func (CopyToOffset) instrNode() {}

// CopyFromOffset is CopyToOffset's read-side counterpart.
type CopyFromOffset struct {
	Dst    Value
	Src    Value
	Offset int64
}

func (CopyFromOffset) instrNode() {}

// ZeroOut zeroes Length bytes at byte Offset within the aggregate
// object named by Dst (the tail-padding half of initializer
// flattening, spec §4.1/§4.2).
type ZeroOut struct {
	Dst          Value
	Offset       int64
	Length       int64
}

func (ZeroOut) instrNode() {}

type Unary struct {
	Op       UnOp
	Dst, Src Value
}

func (Unary) instrNode() {}

type Binary struct {
	Op          BinOp
	Dst, L, R   Value
}

func (Binary) instrNode() {}

// Truncate, SignExtend, and ZeroExtend implement spec §4.1's integer
// conversion rules once they reach TAC; which one applies was already
// decided by internal/sema's Cast node and internal/types.
// ClassifyIntConversion, so the lowering pass simply picks the right
// TAC op by source/destination width and signedness.
type Truncate struct{ Dst, Src Value }

func (Truncate) instrNode() {}

type SignExtend struct{ Dst, Src Value }

func (SignExtend) instrNode() {}

type ZeroExtend struct{ Dst, Src Value }

func (ZeroExtend) instrNode() {}

// DoubleToInt / DoubleToUInt / IntToDouble / UIntToDouble are the
// scalar<->floating conversions of spec §4.4 (the unsigned variants
// need the extra sequences codegen applies, subtract-2^63 for
// DoubleToUInt and halve-and-round-to-odd for UIntToDouble; TAC only
// records that the conversion is unsigned-flavored).
type DoubleToInt struct{ Dst, Src Value }

func (DoubleToInt) instrNode() {}

type DoubleToUInt struct{ Dst, Src Value }

func (DoubleToUInt) instrNode() {}

type IntToDouble struct{ Dst, Src Value }

func (IntToDouble) instrNode() {}

type UIntToDouble struct{ Dst, Src Value }

func (UIntToDouble) instrNode() {}

// Call invokes Func (a function symbol) with Args; Dst is nil for a
// void call or one whose result is discarded.
type Call struct {
	Dst  Value
	Func symtab.SymbolID
	Name string
	Args []Value
}

func (Call) instrNode() {}

// Return exits the current function; Value is nil for `return;` or a
// void function falling off its end.
type Return struct{ Value Value }

func (Return) instrNode() {}

// Function is one compiled function body in TAC form.
type Function struct {
	Name   string
	Symbol symtab.SymbolID
	Params []symtab.SymbolID
	Body   []Instr

	// Locals lists every automatic-storage object and every temporary
	// this function's body references, in declaration/creation order,
	// which internal/codegen and internal/regalloc use to size and
	// assign stack slots and pseudo-registers.
	Locals []symtab.SymbolID
}

// StaticObject is one file-scope or block-static object's layout and
// initializer (spec §3 "Static objects" / §6 "Static object layout").
type StaticObject struct {
	Symbol   symtab.SymbolID
	Name     string
	Global   bool // true for external linkage, false for internal/static
	ReadOnly bool // true for deduplicated string-literal rodata
	Size     int64
	Align    int64
	Init     []symtab.StaticInit // nil means a zero-initialized tentative definition
}

// Program is the whole translation unit in TAC form, ready for
// internal/optimize and internal/codegen.
type Program struct {
	Functions []*Function
	Statics   []*StaticObject
	Symbols   *symtab.Table
	Tags      *symtab.TagTable
}

func (op BinOp) String() string {
	names := [...]string{"add", "sub", "mul", "div", "mod", "and", "or", "xor", "shl", "shr", "lt", "le", "gt", "ge", "eq", "ne"}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

func (op UnOp) String() string {
	names := [...]string{"neg", "not", "lnot"}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("UnOp(%d)", int(op))
}
