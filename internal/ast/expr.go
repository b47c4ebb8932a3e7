package ast

type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot           // !
	UnaryBitNot        // ~
)

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinLogAnd
	BinLogOr
)

type IncDecOp int

const (
	IncOp IncDecOp = iota
	DecOp
)

type IntLit struct {
	Pos    Pos
	Value  uint64
	Type   TypeSpec // literal suffix/magnitude determines int/long/unsigned
}

func (e *IntLit) NodePos() Pos { return e.Pos }
func (*IntLit) exprNode()      {}

type FloatLit struct {
	Pos   Pos
	Value float64
}

func (e *FloatLit) NodePos() Pos { return e.Pos }
func (*FloatLit) exprNode()      {}

// StringLit is a `char` string literal; its AST-level type is
// `array of N char` with N including the trailing NUL (spec §4.1).
type StringLit struct {
	Pos   Pos
	Value string
}

func (e *StringLit) NodePos() Pos { return e.Pos }
func (*StringLit) exprNode()      {}

type Ident struct {
	Pos  Pos
	Name string
}

func (e *Ident) NodePos() Pos { return e.Pos }
func (*Ident) exprNode()      {}

type Unary struct {
	Pos Pos
	Op  UnaryOp
	X   Expr
}

func (e *Unary) NodePos() Pos { return e.Pos }
func (*Unary) exprNode()      {}

type Binary struct {
	Pos  Pos
	Op   BinaryOp
	X, Y Expr
}

func (e *Binary) NodePos() Pos { return e.Pos }
func (*Binary) exprNode()      {}

type Assign struct {
	Pos      Pos
	LHS, RHS Expr
}

func (e *Assign) NodePos() Pos { return e.Pos }
func (*Assign) exprNode()      {}

type CompoundAssign struct {
	Pos      Pos
	Op       BinaryOp
	LHS, RHS Expr
}

func (e *CompoundAssign) NodePos() Pos { return e.Pos }
func (*CompoundAssign) exprNode()      {}

type IncDec struct {
	Pos    Pos
	Op     IncDecOp
	Prefix bool
	X      Expr
}

func (e *IncDec) NodePos() Pos { return e.Pos }
func (*IncDec) exprNode()      {}

type Ternary struct {
	Pos              Pos
	Cond, Then, Else Expr
}

func (e *Ternary) NodePos() Pos { return e.Pos }
func (*Ternary) exprNode()      {}

type Call struct {
	Pos    Pos
	Callee Expr
	Args   []Expr
}

func (e *Call) NodePos() Pos { return e.Pos }
func (*Call) exprNode()      {}

type Cast struct {
	Pos  Pos
	Type TypeSpec
	X    Expr
}

func (e *Cast) NodePos() Pos { return e.Pos }
func (*Cast) exprNode()      {}

type SizeofExpr struct {
	Pos Pos
	X   Expr
}

func (e *SizeofExpr) NodePos() Pos { return e.Pos }
func (*SizeofExpr) exprNode()      {}

type SizeofType struct {
	Pos  Pos
	Type TypeSpec
}

func (e *SizeofType) NodePos() Pos { return e.Pos }
func (*SizeofType) exprNode()      {}

type Subscript struct {
	Pos      Pos
	X, Index Expr
}

func (e *Subscript) NodePos() Pos { return e.Pos }
func (*Subscript) exprNode()      {}

type Member struct {
	Pos  Pos
	X    Expr
	Name string
}

func (e *Member) NodePos() Pos { return e.Pos }
func (*Member) exprNode()      {}

type Arrow struct {
	Pos  Pos
	X    Expr
	Name string
}

func (e *Arrow) NodePos() Pos { return e.Pos }
func (*Arrow) exprNode()      {}

type AddrOf struct {
	Pos Pos
	X   Expr
}

func (e *AddrOf) NodePos() Pos { return e.Pos }
func (*AddrOf) exprNode()      {}

type Deref struct {
	Pos Pos
	X   Expr
}

func (e *Deref) NodePos() Pos { return e.Pos }
func (*Deref) exprNode()      {}

// CompoundInit is a brace-enclosed initializer; elements are flattened
// by internal/sema per spec §4.1. An element may itself be a
// *CompoundInit for nested aggregates.
type CompoundInit struct {
	Pos      Pos
	Elements []Expr
}

func (e *CompoundInit) NodePos() Pos { return e.Pos }
func (*CompoundInit) exprNode()      {}

type Comma struct {
	Pos  Pos
	X, Y Expr
}

func (e *Comma) NodePos() Pos { return e.Pos }
func (*Comma) exprNode()      {}
