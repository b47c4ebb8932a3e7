package ast

// VarDecl declares (and optionally defines) an object.
type VarDecl struct {
	Pos     Pos
	Name    string
	Type    TypeSpec
	Storage StorageClass
	Init    Expr // nil if none; *CompoundInit for aggregates
}

func (d *VarDecl) NodePos() Pos { return d.Pos }
func (*VarDecl) declNode()      {}

// FuncDecl declares (and optionally defines) a function.
type FuncDecl struct {
	Pos        Pos
	Name       string
	ParamNames []string
	ParamTypes []TypeSpec
	Variadic   bool
	Return     TypeSpec
	Storage    StorageClass
	Body       *CompoundStmt // nil if this is a declaration only
}

func (d *FuncDecl) NodePos() Pos { return d.Pos }
func (*FuncDecl) declNode()      {}

// StructDeclStmt is a bare `struct S;` or `struct S { ... };` appearing
// as a declaration (as opposed to inline inside another type specifier).
type StructDeclStmt struct {
	Pos  Pos
	Spec StructSpec
}

func (d *StructDeclStmt) NodePos() Pos { return d.Pos }
func (*StructDeclStmt) declNode()      {}
