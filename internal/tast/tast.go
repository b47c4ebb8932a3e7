// Package tast is the typed AST internal/sema produces: the same
// shapes as internal/ast, but every expression carries its resolved
// internal/types.Type and lvalue status, every identifier is linked
// to its internal/symtab.SymbolID, and every implicit conversion from
// spec §4.1 has been made an explicit Cast node.
package tast

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/types"
)

type Node interface {
	NodePos() ast.Pos
}

type Decl interface {
	Node
	declNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	Type() types.Type
	Lvalue() bool
	exprNode()
}

// ExprBase carries the fields every typed expression needs; embed it
// and the Node/Expr interface methods come along for free.
type ExprBase struct {
	Pos ast.Pos
	Ty  types.Type
	LV  bool
}

func (b ExprBase) NodePos() ast.Pos  { return b.Pos }
func (b ExprBase) Type() types.Type  { return b.Ty }
func (b ExprBase) Lvalue() bool      { return b.LV }

type Program struct {
	Decls []Decl
}

// VarDecl is a local variable's initialization; Init is the flattened
// (offset, value) sequence spec §4.1 describes for compound
// initializers, emitted as copy-to-offset TAC (a plain Copy for a
// scalar at offset 0, a ZeroOut for a zero run).
type VarDecl struct {
	Pos    ast.Pos
	Symbol symtab.SymbolID
	Init   []InitItem
}

func (d *VarDecl) NodePos() ast.Pos { return d.Pos }
func (*VarDecl) declNode()          {}

type InitItem struct {
	Offset int64
	Value  Expr // nil for an explicit zero run
	Zero   int64
}

type FuncDecl struct {
	Pos    ast.Pos
	Symbol symtab.SymbolID
	Params []symtab.SymbolID
	Body   *CompoundStmt // nil for a declaration only
}

func (d *FuncDecl) NodePos() ast.Pos { return d.Pos }
func (*FuncDecl) declNode()          {}
