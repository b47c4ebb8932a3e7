package frontend

import (
	"modernc.org/cc/v4"

	"github.com/cc-core/cc/internal/ast"
)

// convertCompoundStatement converts a `{ ... }` block; each BlockItem
// is either a Declaration (itself possibly multiple ast.Decl, for
// `int a, b;`) or a Statement, mirroring how internal/ast.CompoundStmt
// interleaves Decl and Stmt values in source order.
func (c *converter) convertCompoundStatement(cs *cc.CompoundStatement) (*ast.CompoundStmt, error) {
	out := &ast.CompoundStmt{Pos: toPos(cs.Position())}
	for bl := cs.BlockItemList; bl != nil; bl = bl.BlockItemList {
		item := bl.BlockItem
		switch item.Case {
		case cc.BlockItemDecl:
			decls, err := c.convertDeclaration(item.Declaration)
			if err != nil {
				return nil, err
			}
			for _, d := range decls {
				out.Items = append(out.Items, d)
			}
		case cc.BlockItemStmt:
			stmt, err := c.convertStatement(item.Statement)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, stmt)
		case cc.BlockItemLabel:
			// a label attached to a declaration (`l: int x;`, a rare
			// GNU extension) - the label itself is dropped since
			// nothing in this front end's scope ever jumps to it.
			decls, err := c.convertDeclaration(item.Declaration)
			if err != nil {
				return nil, err
			}
			for _, d := range decls {
				out.Items = append(out.Items, d)
			}
		default:
			return nil, errorf(item.Position(), "unsupported block item")
		}
	}
	return out, nil
}

func (c *converter) convertStatement(s *cc.Statement) (ast.Stmt, error) {
	switch s.Case {
	case cc.StatementLabeled:
		return c.convertLabeledStatement(s.LabeledStatement)
	case cc.StatementCompound:
		return c.convertCompoundStatement(s.CompoundStatement)
	case cc.StatementExpr:
		return c.convertExpressionStatement(s.ExpressionStatement)
	case cc.StatementSelection:
		return c.convertSelectionStatement(s.SelectionStatement)
	case cc.StatementIteration:
		return c.convertIterationStatement(s.IterationStatement)
	case cc.StatementJump:
		return c.convertJumpStatement(s.JumpStatement)
	default:
		return nil, errorf(s.Position(), "unsupported statement form (inline asm is not supported)")
	}
}

func (c *converter) convertExpressionStatement(es *cc.ExpressionStatement) (ast.Stmt, error) {
	pos := toPos(es.Position())
	if es.Expression == nil {
		return &ast.NullStmt{Pos: pos}, nil
	}
	x, err := c.convertExpr(es.Expression)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: pos, X: x}, nil
}

func (c *converter) convertLabeledStatement(ls *cc.LabeledStatement) (ast.Stmt, error) {
	pos := toPos(ls.Position())
	inner, err := c.convertStatement(ls.Statement)
	if err != nil {
		return nil, err
	}
	switch ls.Case {
	case cc.LabeledStatementLabel:
		return &ast.LabeledStmt{Pos: pos, Label: ls.Token.SrcStr(), Stmt: inner}, nil
	case cc.LabeledStatementCaseLabel:
		val, err := c.convertConstantExpression(ls.ConstantExpression)
		if err != nil {
			return nil, err
		}
		return &ast.CaseStmt{Pos: pos, Value: val, Stmt: inner}, nil
	case cc.LabeledStatementDefault:
		return &ast.DefaultStmt{Pos: pos, Stmt: inner}, nil
	default:
		return nil, errorf(ls.Position(), "unsupported labeled statement form")
	}
}

func (c *converter) convertConstantExpression(ce *cc.ConstantExpression) (ast.Expr, error) {
	return c.convertCond(ce.ConditionalExpression)
}

func (c *converter) convertSelectionStatement(ss *cc.SelectionStatement) (ast.Stmt, error) {
	pos := toPos(ss.Position())
	cond, err := c.convertExpr(ss.Expression)
	if err != nil {
		return nil, err
	}
	switch ss.Case {
	case cc.SelectionStatementIf:
		then, err := c.convertStatement(ss.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Pos: pos, Cond: cond, Then: then}, nil
	case cc.SelectionStatementIfElse:
		then, err := c.convertStatement(ss.Statement)
		if err != nil {
			return nil, err
		}
		els, err := c.convertStatement(ss.Statement2)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Pos: pos, Cond: cond, Then: then, Else: els}, nil
	case cc.SelectionStatementSwitch:
		body, err := c.convertStatement(ss.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.SwitchStmt{Pos: pos, Tag: cond, Body: body}, nil
	default:
		return nil, errorf(ss.Position(), "unsupported selection statement form")
	}
}

func (c *converter) convertIterationStatement(is *cc.IterationStatement) (ast.Stmt, error) {
	pos := toPos(is.Position())
	switch is.Case {
	case cc.IterationStatementWhile:
		cond, err := c.convertExpr(is.Expression)
		if err != nil {
			return nil, err
		}
		body, err := c.convertStatement(is.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}, nil

	case cc.IterationStatementDo:
		cond, err := c.convertExpr(is.Expression)
		if err != nil {
			return nil, err
		}
		body, err := c.convertStatement(is.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.DoWhileStmt{Pos: pos, Body: body, Cond: cond}, nil

	case cc.IterationStatementFor:
		var init ast.Node
		if is.Expression != nil {
			x, err := c.convertExpr(is.Expression)
			if err != nil {
				return nil, err
			}
			init = &ast.ExprStmt{Pos: toPos(is.Position()), X: x}
		}
		cond, err := c.optExpr(is.Expression2)
		if err != nil {
			return nil, err
		}
		post, err := c.optExpr(is.Expression3)
		if err != nil {
			return nil, err
		}
		body, err := c.convertStatement(is.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Pos: pos, Init: init, Cond: cond, Post: post, Body: body}, nil

	case cc.IterationStatementForDecl:
		decls, err := c.convertDeclaration(is.Declaration)
		if err != nil {
			return nil, err
		}
		if len(decls) != 1 {
			return nil, errorf(is.Position(), "a for-loop init declaration must declare exactly one variable")
		}
		varDecl, ok := decls[0].(*ast.VarDecl)
		if !ok {
			return nil, errorf(is.Position(), "a for-loop init declaration must declare a variable")
		}
		cond, err := c.optExpr(is.Expression)
		if err != nil {
			return nil, err
		}
		post, err := c.optExpr(is.Expression2)
		if err != nil {
			return nil, err
		}
		body, err := c.convertStatement(is.Statement)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Pos: pos, Init: varDecl, Cond: cond, Post: post, Body: body}, nil

	default:
		return nil, errorf(is.Position(), "unsupported iteration statement form")
	}
}

func (c *converter) optExpr(e *cc.Expression) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return c.convertExpr(e)
}

func (c *converter) convertJumpStatement(js *cc.JumpStatement) (ast.Stmt, error) {
	pos := toPos(js.Position())
	switch js.Case {
	case cc.JumpStatementGoto:
		return &ast.GotoStmt{Pos: pos, Label: js.Token2.SrcStr()}, nil
	case cc.JumpStatementContinue:
		return &ast.ContinueStmt{Pos: pos}, nil
	case cc.JumpStatementBreak:
		return &ast.BreakStmt{Pos: pos}, nil
	case cc.JumpStatementReturn:
		if js.Expression == nil {
			return &ast.ReturnStmt{Pos: pos}, nil
		}
		x, err := c.convertExpr(js.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Pos: pos, Value: x}, nil
	default:
		return nil, errorf(js.Position(), "unsupported jump statement form (computed goto is not supported)")
	}
}
