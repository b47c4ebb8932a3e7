package tast

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/symtab"
)

type IntLit struct {
	ExprBase
	Value uint64
}

func (*IntLit) exprNode() {}

type FloatLit struct {
	ExprBase
	Value float64
}

func (*FloatLit) exprNode() {}

// StringLit is still a standalone expression node (used inline, e.g.
// as a call argument) even though most occurrences initialize a char
// array and get flattened into InitItem by internal/sema.
type StringLit struct {
	ExprBase
	Value string
}

func (*StringLit) exprNode() {}

// VarRef is a resolved use of a variable or function name. Name is
// kept in addition to Symbol; internal/tac uses it for Var names,
// call targets and function-address labels.
type VarRef struct {
	ExprBase
	Symbol symtab.SymbolID
	Name   string
}

func (*VarRef) exprNode() {}

type Unary struct {
	ExprBase
	Op ast.UnaryOp
	X  Expr
}

func (*Unary) exprNode() {}

type Binary struct {
	ExprBase
	Op   ast.BinaryOp
	X, Y Expr
}

func (*Binary) exprNode() {}

type Assign struct {
	ExprBase
	LHS, RHS Expr
}

func (*Assign) exprNode() {}

// CompoundAssign keeps `a op= b` as one node (rather than desugaring
// to Assign{LHS, Binary{...}}) because spec §4.2 lowers it as a single
// load/compute/convert/store sequence and the conversions involved
//(operand's type -> Common -> back to LHS's type) need to be named
// explicitly rather than reconstructed from two generic nodes.
type CompoundAssign struct {
	ExprBase
	Op         ast.BinaryOp
	LHS, RHS   Expr
	CommonType ExprBase // unused fields ignored; CommonType.Ty is the op's working type
}

func (*CompoundAssign) exprNode() {}

type IncDec struct {
	ExprBase
	Op     ast.IncDecOp
	Prefix bool
	X      Expr
}

func (*IncDec) exprNode() {}

type Ternary struct {
	ExprBase
	Cond, Then, Else Expr
}

func (*Ternary) exprNode() {}

type Call struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// Cast is both the explicit C cast and every implicit "conversion as
// if by assignment" spec §4.1 inserts; ExprBase.Ty is the target type.
type Cast struct {
	ExprBase
	X Expr
}

func (*Cast) exprNode() {}

type Subscript struct {
	ExprBase
	X, Index Expr
}

func (*Subscript) exprNode() {}

// Member accesses field Name of struct-typed lvalue/rvalue X at the
// given byte Offset (resolved by internal/sema from the type table).
// `e->m` is desugared by internal/sema into Member{X: Deref{X: e}}.
type Member struct {
	ExprBase
	X      Expr
	Name   string
	Offset int64
}

func (*Member) exprNode() {}

type AddrOf struct {
	ExprBase
	X Expr
}

func (*AddrOf) exprNode() {}

type Deref struct {
	ExprBase
	X Expr
}

func (*Deref) exprNode() {}

type Comma struct {
	ExprBase
	X, Y Expr
}

func (*Comma) exprNode() {}
