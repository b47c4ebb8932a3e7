package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

// compoundStmt type-checks a `{ ... }` block in its own scope.
func (a *analyzer) compoundStmt(cs *ast.CompoundStmt) (*tast.CompoundStmt, error) {
	a.scope = a.scope.Enter()
	a.tagScope = a.tagScope.Enter()
	defer func() {
		a.scope = a.scope.Exit()
		a.tagScope = a.tagScope.Exit()
	}()
	return a.compoundStmtNoScope(cs)
}

// compoundStmtNoScope type-checks a block's items in the *current*
// scope; compoundStmt calls it after pushing a fresh one.
func (a *analyzer) compoundStmtNoScope(cs *ast.CompoundStmt) (*tast.CompoundStmt, error) {
	out := &tast.CompoundStmt{Pos: cs.Pos}
	for _, item := range cs.Items {
		n, err := a.blockItem(item)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out.Items = append(out.Items, n)
		}
	}
	return out, nil
}

func (a *analyzer) blockItem(item ast.Node) (tast.Node, error) {
	switch n := item.(type) {
	case *ast.VarDecl:
		return a.blockVarDecl(n)
	case *ast.FuncDecl:
		return a.fileFuncDecl(n)
	case *ast.StructDeclStmt:
		_, err := a.resolveType(n.Pos, n.Spec)
		return nil, err
	case ast.Stmt:
		return a.stmt(n)
	default:
		return nil, errf(ccerr.InternalError, item.NodePos(), "unhandled block item %T", item)
	}
}

func (a *analyzer) stmt(s ast.Stmt) (tast.Stmt, error) {
	switch s := s.(type) {
	case *ast.CompoundStmt:
		return a.compoundStmt(s)

	case *ast.IfStmt:
		cond, err := a.typeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		cond = toBool(decay(cond))
		then, err := a.stmt(s.Then)
		if err != nil {
			return nil, err
		}
		var els tast.Stmt
		if s.Else != nil {
			els, err = a.stmt(s.Else)
			if err != nil {
				return nil, err
			}
		}
		return &tast.IfStmt{Pos: s.Pos, Cond: cond, Then: then, Else: els}, nil

	case *ast.ForStmt:
		return a.forStmt(s)

	case *ast.WhileStmt:
		cond, err := a.typeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		cond = toBool(decay(cond))
		a.breakDepth++
		a.continueDepth++
		body, err := a.stmt(s.Body)
		a.breakDepth--
		a.continueDepth--
		if err != nil {
			return nil, err
		}
		return &tast.WhileStmt{Pos: s.Pos, Cond: cond, Body: body}, nil

	case *ast.DoWhileStmt:
		a.breakDepth++
		a.continueDepth++
		body, err := a.stmt(s.Body)
		a.breakDepth--
		a.continueDepth--
		if err != nil {
			return nil, err
		}
		cond, err := a.typeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		cond = toBool(decay(cond))
		return &tast.DoWhileStmt{Pos: s.Pos, Body: body, Cond: cond}, nil

	case *ast.SwitchStmt:
		return a.switchStmt(s)

	case *ast.CaseStmt:
		if a.breakDepth == 0 {
			return nil, errf(ccerr.TypeMismatch, s.Pos, "case label not within a switch statement")
		}
		te, err := a.typeExpr(s.Value)
		if err != nil {
			return nil, err
		}
		c, ok := evalConst(te)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, s.Pos, "case label is not a compile-time constant")
		}
		inner, err := a.stmt(s.Stmt)
		if err != nil {
			return nil, err
		}
		return &tast.CaseStmt{Pos: s.Pos, Value: c.Int, Stmt: inner}, nil

	case *ast.DefaultStmt:
		if a.breakDepth == 0 {
			return nil, errf(ccerr.TypeMismatch, s.Pos, "default label not within a switch statement")
		}
		inner, err := a.stmt(s.Stmt)
		if err != nil {
			return nil, err
		}
		return &tast.DefaultStmt{Pos: s.Pos, Stmt: inner}, nil

	case *ast.BreakStmt:
		if a.breakDepth == 0 {
			return nil, errf(ccerr.TypeMismatch, s.Pos, "break statement not within a loop or switch")
		}
		return &tast.BreakStmt{Pos: s.Pos}, nil

	case *ast.ContinueStmt:
		if a.continueDepth == 0 {
			return nil, errf(ccerr.TypeMismatch, s.Pos, "continue statement not within a loop")
		}
		return &tast.ContinueStmt{Pos: s.Pos}, nil

	case *ast.GotoStmt:
		return &tast.GotoStmt{Pos: s.Pos, Label: s.Label}, nil

	case *ast.LabeledStmt:
		inner, err := a.stmt(s.Stmt)
		if err != nil {
			return nil, err
		}
		return &tast.LabeledStmt{Pos: s.Pos, Label: s.Label, Stmt: inner}, nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			return &tast.ReturnStmt{Pos: s.Pos}, nil
		}
		val, err := a.convertAssign(s.Pos, a.fnReturn, s.Value)
		if err != nil {
			return nil, err
		}
		return &tast.ReturnStmt{Pos: s.Pos, Value: val}, nil

	case *ast.ExprStmt:
		x, err := a.typeExpr(s.X)
		if err != nil {
			return nil, err
		}
		return &tast.ExprStmt{Pos: s.Pos, X: x}, nil

	case *ast.NullStmt:
		return &tast.NullStmt{Pos: s.Pos}, nil

	default:
		return nil, errf(ccerr.InternalError, s.NodePos(), "unhandled statement %T", s)
	}
}

func (a *analyzer) forStmt(s *ast.ForStmt) (*tast.ForStmt, error) {
	// A for-loop's own scope holds its Init declaration (if any), so
	// that a `for (int i = 0; ...)` counter does not leak into the
	// enclosing block (spec §4.1).
	a.scope = a.scope.Enter()
	a.tagScope = a.tagScope.Enter()
	defer func() {
		a.scope = a.scope.Exit()
		a.tagScope = a.tagScope.Exit()
	}()

	var init tast.Node
	switch n := s.Init.(type) {
	case nil:
	case *ast.VarDecl:
		d, err := a.blockVarDecl(n)
		if err != nil {
			return nil, err
		}
		init = d
	case *ast.ExprStmt:
		x, err := a.typeExpr(n.X)
		if err != nil {
			return nil, err
		}
		init = &tast.ExprStmt{Pos: n.Pos, X: x}
	default:
		return nil, errf(ccerr.InternalError, s.Pos, "unhandled for-init %T", s.Init)
	}

	var cond tast.Expr
	if s.Cond != nil {
		c, err := a.typeExpr(s.Cond)
		if err != nil {
			return nil, err
		}
		cond = toBool(decay(c))
	}
	var post tast.Expr
	if s.Post != nil {
		p, err := a.typeExpr(s.Post)
		if err != nil {
			return nil, err
		}
		post = p
	}

	a.breakDepth++
	a.continueDepth++
	body, err := a.stmt(s.Body)
	a.breakDepth--
	a.continueDepth--
	if err != nil {
		return nil, err
	}
	return &tast.ForStmt{Pos: s.Pos, Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (a *analyzer) switchStmt(s *ast.SwitchStmt) (*tast.SwitchStmt, error) {
	tag, err := a.typeExpr(s.Tag)
	if err != nil {
		return nil, err
	}
	tag = decay(tag)
	if !types.IsInteger(tag.Type()) {
		return nil, errf(ccerr.TypeMismatch, s.Pos, "switch expression must have integer type")
	}
	tag = insertCast(types.PromoteInt(tag.Type()), tag)
	a.breakDepth++
	body, err := a.stmt(s.Body)
	a.breakDepth--
	if err != nil {
		return nil, err
	}
	return &tast.SwitchStmt{Pos: s.Pos, Tag: tag, Body: body}, nil
}
