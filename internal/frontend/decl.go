package frontend

import (
	"modernc.org/cc/v4"

	"github.com/cc-core/cc/internal/ast"
)

// convertExternalDeclaration handles one top-level ExternalDeclaration
// node, the same dispatch parseSource performs before calling
// convertFunction, generalized to also accept plain declarations
// (global variables, struct definitions, prototypes) alongside
// function definitions.
func (c *converter) convertExternalDeclaration(ed *cc.ExternalDeclaration) ([]ast.Decl, error) {
	switch ed.Case {
	case cc.ExternalDeclarationFuncDef:
		fn, err := c.convertFunctionDefinition(ed.FunctionDefinition)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, nil
		}
		return []ast.Decl{fn}, nil
	case cc.ExternalDeclarationDecl:
		return c.convertDeclaration(ed.Declaration)
	case cc.ExternalDeclarationEmpty, cc.ExternalDeclarationAsmStmt, cc.ExternalDeclarationPragma, cc.ExternalDeclarationAsm:
		return nil, nil
	default:
		return nil, errorf(ed.Position(), "unsupported top-level declaration")
	}
}

// convertFunctionDefinition mirrors ajroetker-goat/main.go's
// convertFunction: reject anything whose declarator isn't a direct
// function declarator, skip inline functions, then also convert the
// body compound statement the teacher never needed.
func (c *converter) convertFunctionDefinition(fd *cc.FunctionDefinition) (*ast.FuncDecl, error) {
	if fs := fd.DeclarationSpecifiers.FunctionSpecifier; fs != nil && fs.Case == cc.FunctionSpecifierInline {
		return nil, nil
	}
	returnType, storage, err := c.convertDeclarationSpecifiers(fd.DeclarationSpecifiers)
	if err != nil {
		return nil, err
	}
	dd := fd.Declarator.DirectDeclarator
	if dd.Case != cc.DirectDeclaratorFuncParam && dd.Case != cc.DirectDeclaratorFuncIdent && dd.Case != cc.DirectDeclaratorFuncAny {
		return nil, errorf(fd.Declarator.Position(), "function definition must use a function declarator")
	}
	name, _, params, variadic, err := c.convertDeclarator(fd.Declarator, returnType)
	if err != nil {
		return nil, err
	}
	var paramNames []string
	var paramTypes []ast.TypeSpec
	if params != nil {
		paramNames, paramTypes, err = c.convertParameterList(params)
		if err != nil {
			return nil, err
		}
	}
	body, err := c.convertCompoundStatement(fd.CompoundStatement)
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{
		Pos:        toPos(fd.Position()),
		Name:       name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		Variadic:   variadic,
		Return:     returnType,
		Storage:    storage,
		Body:       body,
	}, nil
}

// convertDeclaration handles both top-level and block-scope
// Declaration nodes: a bare `struct S { ... };` becomes a
// StructDeclStmt, and an InitDeclaratorList becomes one VarDecl per
// comma-separated declarator (`int a, *b, c[4];` declares three
// distinct objects sharing one base type).
func (c *converter) convertDeclaration(d *cc.Declaration) ([]ast.Decl, error) {
	if d.Case != cc.DeclarationDecl {
		return nil, nil
	}
	base, storage, err := c.convertDeclarationSpecifiers(d.DeclarationSpecifiers)
	if err != nil {
		return nil, err
	}
	if d.InitDeclaratorList == nil {
		if ss, ok := base.(ast.StructSpec); ok && ss.Members != nil {
			return []ast.Decl{&ast.StructDeclStmt{Pos: toPos(d.Position()), Spec: ss}}, nil
		}
		return nil, nil
	}

	var decls []ast.Decl
	for l := d.InitDeclaratorList; l != nil; l = l.InitDeclaratorList {
		id := l.InitDeclarator
		var declarator *cc.Declarator
		var initExpr ast.Expr
		switch id.Case {
		case cc.InitDeclaratorDecl:
			declarator = id.Declarator
		case cc.InitDeclaratorInit:
			declarator = id.Declarator
			initExpr, err = c.convertInitializer(id.Initializer)
			if err != nil {
				return nil, err
			}
		default:
			return nil, errorf(id.Position(), "unsupported init-declarator form")
		}
		r, err := c.declarator(declarator, base)
		if err != nil {
			return nil, err
		}
		if r.isFunc {
			// a function prototype (`int foo(int);`); internal/sema
			// only needs definitions, so prototypes are dropped.
			continue
		}
		decls = append(decls, &ast.VarDecl{
			Pos:     toPos(id.Position()),
			Name:    r.name,
			Type:    r.typ,
			Storage: storage,
			Init:    initExpr,
		})
	}
	return decls, nil
}

func (c *converter) convertInitializer(init *cc.Initializer) (ast.Expr, error) {
	pos := toPos(init.Position())
	switch init.Case {
	case cc.InitializerExpr:
		return c.convertAssign(init.AssignmentExpression)
	case cc.InitializerInitList:
		var elems []ast.Expr
		for l := init.InitializerList; l != nil; l = l.InitializerList {
			if l.Designation != nil {
				return nil, errorf(l.Position(), "designated initializers are not supported")
			}
			e, err := c.convertInitializer(l.Initializer)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return &ast.CompoundInit{Pos: pos, Elements: elems}, nil
	default:
		return nil, errorf(init.Position(), "unsupported initializer form")
	}
}
