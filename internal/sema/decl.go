package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

func (a *analyzer) fileDecl(d ast.Decl) (tast.Decl, error) {
	switch d := d.(type) {
	case *ast.VarDecl:
		return a.fileVarDecl(d)
	case *ast.FuncDecl:
		return a.fileFuncDecl(d)
	case *ast.StructDeclStmt:
		_, err := a.resolveType(d.Pos, d.Spec)
		return nil, err
	default:
		return nil, errf(ccerr.InternalError, d.NodePos(), "unhandled file-scope decl %T", d)
	}
}

// linkageForFileScope implements the storage-class/linkage table of spec §4.1
// for file scope.
func linkageForFileScope(storage ast.StorageClass) symtab.Linkage {
	if storage == ast.StorageStatic {
		return symtab.InternalLinkage
	}
	return symtab.ExternalLinkage
}

// bindLinked finds or creates the single shared entry for a
// linked (non-automatic, non-block-static) identifier, validating
// type and linkage compatibility against any prior declaration
// (spec §4.1 "Redeclaration..." / "Linkage conflict...").
func (a *analyzer) bindLinked(p ast.Pos, name string, ty types.Type, linkage symtab.Linkage, isFunc bool) (*symtab.Entry, error) {
	if id, ok := a.linked[name]; ok {
		e := a.syms.Get(id)
		if !types.Equal(e.Type, ty) {
			return nil, errf(ccerr.RedeclarationConflict, p, "conflicting types for %q", name)
		}
		if e.Linkage != linkage {
			return nil, errf(ccerr.LinkageConflict, p, "conflicting linkage for %q", name)
		}
		return e, nil
	}
	e := a.syms.New(name, ty)
	e.Linkage = linkage
	e.Storage = symtab.Static
	e.IsFunc = isFunc
	a.linked[name] = e.ID
	return e, nil
}

func (a *analyzer) fileVarDecl(d *ast.VarDecl) (tast.Decl, error) {
	ty, err := a.resolveType(d.Pos, d.Type)
	if err != nil {
		return nil, err
	}
	linkage := linkageForFileScope(d.Storage)
	e, err := a.bindLinked(d.Pos, d.Name, ty, linkage, false)
	if err != nil {
		return nil, err
	}
	if !a.scope.DeclareSymbol(d.Name, e.ID) {
		// Already declared in this exact (file) scope: fine as long as
		// it is the same entity, which bindLinked already verified.
	}

	if d.Init != nil {
		init, err := a.flattenStaticInit(d.Pos, ty, d.Init)
		if err != nil {
			return nil, err
		}
		if e.Defined {
			return nil, errf(ccerr.RedeclarationConflict, d.Pos, "redefinition of %q", d.Name)
		}
		e.StaticIn = init
		e.Defined = true
	}
	if d.Storage != ast.StorageExtern {
		// Tentative definition: reserves zero-initialized storage even
		// if no initializer ever appears anywhere in the translation
		// unit. A later real initializer (caught above) still wins.
		e.TentativeDef = true
	}
	return nil, nil
}

func (a *analyzer) fileFuncDecl(d *ast.FuncDecl) (tast.Decl, error) {
	paramTypes := make([]types.Type, len(d.ParamTypes))
	for i, pt := range d.ParamTypes {
		rt, err := a.resolveType(d.Pos, pt)
		if err != nil {
			return nil, err
		}
		paramTypes[i] = rt
	}
	ret, err := a.resolveType(d.Pos, d.Return)
	if err != nil {
		return nil, err
	}
	fty := types.Func{Params: paramTypes, Return: ret, Variadic: d.Variadic}

	linkage := linkageForFileScope(d.Storage)
	e, err := a.bindLinked(d.Pos, d.Name, fty, linkage, true)
	if err != nil {
		return nil, err
	}
	a.scope.DeclareSymbol(d.Name, e.ID)

	if d.Body == nil {
		return nil, nil
	}
	if e.Defined {
		return nil, errf(ccerr.RedeclarationConflict, d.Pos, "redefinition of function %q", d.Name)
	}
	e.Defined = true

	a.scope = a.scope.Enter()
	a.tagScope = a.tagScope.Enter()
	prevReturn := a.fnReturn
	a.fnReturn = ret
	defer func() {
		a.scope = a.scope.Exit()
		a.tagScope = a.tagScope.Exit()
		a.fnReturn = prevReturn
	}()

	paramSyms := make([]symtab.SymbolID, len(d.ParamNames))
	for i, name := range d.ParamNames {
		pe := a.syms.New(name, paramTypes[i])
		pe.Storage = symtab.Automatic
		pe.Linkage = symtab.NoLinkage
		if !a.scope.DeclareSymbol(name, pe.ID) {
			return nil, errf(ccerr.RedeclarationConflict, d.Pos, "duplicate parameter %q", name)
		}
		paramSyms[i] = pe.ID
	}

	body, err := a.compoundStmt(d.Body)
	if err != nil {
		return nil, err
	}
	return &tast.FuncDecl{Pos: d.Pos, Symbol: e.ID, Params: paramSyms, Body: body}, nil
}

// blockVarDecl implements the block-scope column of spec §4.1's
// storage-class table.
func (a *analyzer) blockVarDecl(d *ast.VarDecl) (tast.Decl, error) {
	ty, err := a.resolveType(d.Pos, d.Type)
	if err != nil {
		return nil, err
	}

	switch d.Storage {
	case ast.StorageNone:
		if _, ok := a.scope.LookupSymbolCurrent(d.Name); ok {
			return nil, errf(ccerr.RedeclarationConflict, d.Pos, "redeclaration of %q in this scope", d.Name)
		}
		e := a.syms.New(d.Name, ty)
		e.Storage = symtab.Automatic
		e.Linkage = symtab.NoLinkage
		a.scope.DeclareSymbol(d.Name, e.ID)
		var items []tast.InitItem
		if d.Init != nil {
			items, err = a.flattenRuntimeInit(d.Pos, ty, d.Init)
			if err != nil {
				return nil, err
			}
		}
		return &tast.VarDecl{Pos: d.Pos, Symbol: e.ID, Init: items}, nil

	case ast.StorageStatic:
		if _, ok := a.scope.LookupSymbolCurrent(d.Name); ok {
			return nil, errf(ccerr.RedeclarationConflict, d.Pos, "redeclaration of %q in this scope", d.Name)
		}
		e := a.syms.New(d.Name, ty)
		e.Storage = symtab.Static
		e.Linkage = symtab.NoLinkage
		a.scope.DeclareSymbol(d.Name, e.ID)
		if d.Init != nil {
			init, err := a.flattenStaticInit(d.Pos, ty, d.Init)
			if err != nil {
				return nil, err
			}
			e.StaticIn = init
		}
		e.Defined = true
		// Block-static objects carry no runtime initializer TAC; the
		// value is baked into the static object layout at compile time.
		return &tast.VarDecl{Pos: d.Pos, Symbol: e.ID}, nil

	case ast.StorageExtern:
		var e *symtab.Entry
		if sid, ok := a.scope.LookupSymbol(d.Name); ok {
			e = a.syms.Get(sid)
			if !types.Equal(e.Type, ty) {
				return nil, errf(ccerr.RedeclarationConflict, d.Pos, "conflicting types for %q", d.Name)
			}
		} else {
			var err error
			e, err = a.bindLinked(d.Pos, d.Name, ty, symtab.ExternalLinkage, false)
			if err != nil {
				return nil, err
			}
		}
		a.scope.DeclareSymbol(d.Name, e.ID)
		if d.Init != nil {
			return nil, errf(ccerr.InvalidInitializer, d.Pos, "block-scope extern %q may not have an initializer", d.Name)
		}
		return &tast.VarDecl{Pos: d.Pos, Symbol: e.ID}, nil
	}
	return nil, errf(ccerr.InternalError, d.Pos, "unhandled storage class")
}
