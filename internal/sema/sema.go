// Package sema implements semantic analysis (spec §4.1): identifier
// and tag resolution, storage-class/linkage validation, type checking
// with the usual conversions, and initializer flattening. It produces
// a typed AST (internal/tast) plus the symbol and type tables that
// every later stage consults read-only (spec §3, §5).
package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

// Result bundles a typed AST with the tables later stages consult.
type Result struct {
	Program *tast.Program
	Symbols *symtab.Table
	Tags    *symtab.TagTable
}

type analyzer struct {
	syms     *symtab.Table
	tags     *symtab.TagTable
	scope    *symtab.Scope
	tagScope *symtab.TagScope

	// linked maps every identifier that currently has internal or
	// external linkage to its single shared symbol entry, independent
	// of lexical scope (spec §4.1: "all declarations ... resolve to
	// the same symbol entry"). Plain lexical shadowing is handled by
	// symtab.Scope; this map is how a block-scope `extern` finds (or
	// creates) the file-scope object it refers to.
	linked map[string]symtab.SymbolID

	// fnReturn is the enclosing function's return type, used to
	// convert `return e;` by assignment rules.
	fnReturn types.Type

	// aliased records every name ever appearing as the operand of `&`
	// (spec §9 glossary "Aliased variable"); internal/sema sets
	// Entry.Aliased for every symbol in this set once analysis of the
	// whole translation unit completes (a conservative, flow- and
	// order-insensitive over-approximation, as the optimizer requires).
	aliased map[symtab.SymbolID]bool

	// breakDepth counts enclosing loops and switches; continueDepth
	// counts enclosing loops only (a switch does not give continue
	// anywhere to go).
	breakDepth    int
	continueDepth int
}

// Analyze runs semantic analysis over an entire translation unit. It
// returns the first error encountered and does not attempt recovery
// (spec §4.1 "Failure model").
func Analyze(prog *ast.Program) (*Result, error) {
	a := &analyzer{
		syms:     symtab.NewTable(),
		tags:     symtab.NewTagTable(),
		scope:    symtab.NewFileScope(),
		tagScope: symtab.NewFileTagScope(),
		linked:   map[string]symtab.SymbolID{},
		aliased:  map[symtab.SymbolID]bool{},
	}
	out := &tast.Program{}
	for _, d := range prog.Decls {
		td, err := a.fileDecl(d)
		if err != nil {
			return nil, err
		}
		if td != nil {
			out.Decls = append(out.Decls, td)
		}
	}
	for id := range a.aliased {
		a.syms.Get(id).Aliased = true
	}
	return &Result{Program: out, Symbols: a.syms, Tags: a.tags}, nil
}

func pos(p ast.Pos) ccerr.Position {
	return ccerr.Position{File: p.File, Line: p.Line, Col: p.Col}
}

func errf(kind ccerr.Kind, p ast.Pos, format string, args ...any) error {
	return ccerr.New(kind, pos(p), format, args...)
}

// resolveType turns an AST-level type specifier into a resolved
// types.Type, resolving struct tags through the innermost visible
// scope (spec §4.1 "Resolution of structure tags") and completing a
// tag's layout the first time its member list is present.
func (a *analyzer) resolveType(p ast.Pos, ts ast.TypeSpec) (types.Type, error) {
	switch t := ts.(type) {
	case ast.VoidSpec:
		return types.Void{}, nil
	case ast.IntSpec:
		return types.Int{Width: t.Width, Signed: t.Signed}, nil
	case ast.DoubleSpec:
		return types.Double{}, nil
	case ast.PointerSpec:
		elem, err := a.resolveType(p, t.Elem)
		if err != nil {
			return nil, err
		}
		return types.Pointer{Elem: elem}, nil
	case ast.ArraySpec:
		elem, err := a.resolveType(p, t.Elem)
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: elem, N: t.N}, nil
	case ast.FuncSpec:
		params := make([]types.Type, len(t.Params))
		for i, pt := range t.Params {
			rt, err := a.resolveType(p, pt)
			if err != nil {
				return nil, err
			}
			params[i] = rt
		}
		ret, err := a.resolveType(p, t.Return)
		if err != nil {
			return nil, err
		}
		return types.Func{Params: params, Return: ret, Variadic: t.Variadic}, nil
	case ast.StructSpec:
		return a.resolveStructSpec(p, t)
	default:
		return nil, errf(ccerr.InternalError, p, "unhandled type specifier %T", ts)
	}
}

func (a *analyzer) resolveStructSpec(p ast.Pos, spec ast.StructSpec) (types.Type, error) {
	if spec.Members == nil {
		// A reference, not a definition: resolve through the innermost
		// visible scope, or declare a fresh incomplete tag if none
		// exists yet at any visible scope.
		if id, ok := a.tagScope.Lookup(spec.Tag); ok {
			return types.Struct{Tag: spec.Tag, Info: a.tags.Info(id)}, nil
		}
		id := a.tags.New(spec.Tag)
		a.tagScope.Declare(spec.Tag, id)
		return types.Struct{Tag: spec.Tag, Info: nil}, nil
	}

	// A defining occurrence always introduces a *new* binding in the
	// current scope (even if an outer scope already has this tag),
	// which is how an inner completion shadows an outer declaration
	// without completing it (spec §4.1).
	members := make([]struct {
		Name string
		Type types.Type
	}, len(spec.Members))
	for i, m := range spec.Members {
		mt, err := a.resolveType(p, m.Type)
		if err != nil {
			return nil, err
		}
		if !types.IsComplete(mt) {
			return nil, errf(ccerr.IncompleteType, p, "member %q of struct %s has incomplete type", m.Name, spec.Tag)
		}
		members[i] = struct {
			Name string
			Type types.Type
		}{m.Name, mt}
	}
	info := types.BuildStructLayout(spec.Tag, members)

	id, existedHere := a.tagScope.LookupCurrent(spec.Tag)
	if !existedHere {
		id = a.tags.New(spec.Tag)
		a.tagScope.Declare(spec.Tag, id)
	}
	a.tags.Complete(id, info)
	return types.Struct{Tag: spec.Tag, Info: info}, nil
}

