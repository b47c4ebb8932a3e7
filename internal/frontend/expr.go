package frontend

import (
	"strconv"
	"strings"

	"modernc.org/cc/v4"
	"modernc.org/token"

	"github.com/cc-core/cc/internal/ast"
)

// convertExpr walks cc/v4's comma-operator production, the root of
// every expression grammar. Every precedence level below it follows
// the same two-case shape: a pass-through to the next-tighter level,
// or a binary/ternary combination of this level with itself and the
// next-tighter level - the same Case-dispatch idiom
// convertFunctionParameters uses for a single DeclarationSpecifiers
// link, just repeated once per C operator-precedence level.
func (c *converter) convertExpr(e *cc.Expression) (ast.Expr, error) {
	switch e.Case {
	case cc.ExpressionAssign:
		return c.convertAssign(e.AssignmentExpression)
	case cc.ExpressionComma:
		x, err := c.convertExpr(e.Expression)
		if err != nil {
			return nil, err
		}
		y, err := c.convertAssign(e.AssignmentExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Comma{Pos: toPos(e.Position()), X: x, Y: y}, nil
	default:
		return nil, errorf(e.Position(), "unsupported expression form")
	}
}

func (c *converter) convertAssign(e *cc.AssignmentExpression) (ast.Expr, error) {
	pos := toPos(e.Position())
	if e.Case == cc.AssignmentExpressionCond {
		return c.convertCond(e.ConditionalExpression)
	}
	lhs, err := c.convertUnary(e.UnaryExpression)
	if err != nil {
		return nil, err
	}
	rhs, err := c.convertAssign(e.AssignmentExpression)
	if err != nil {
		return nil, err
	}
	if e.Case == cc.AssignmentExpressionAssign {
		return &ast.Assign{Pos: pos, LHS: lhs, RHS: rhs}, nil
	}
	op, ok := compoundAssignOps[e.Case]
	if !ok {
		return nil, errorf(e.Position(), "unsupported assignment operator")
	}
	return &ast.CompoundAssign{Pos: pos, Op: op, LHS: lhs, RHS: rhs}, nil
}

var compoundAssignOps = map[cc.AssignmentExpressionCase]ast.BinaryOp{
	cc.AssignmentExpressionMul: ast.BinMul,
	cc.AssignmentExpressionDiv: ast.BinDiv,
	cc.AssignmentExpressionMod: ast.BinMod,
	cc.AssignmentExpressionAdd: ast.BinAdd,
	cc.AssignmentExpressionSub: ast.BinSub,
	cc.AssignmentExpressionLsh: ast.BinShl,
	cc.AssignmentExpressionRsh: ast.BinShr,
	cc.AssignmentExpressionAnd: ast.BinBitAnd,
	cc.AssignmentExpressionXor: ast.BinBitXor,
	cc.AssignmentExpressionOr:  ast.BinBitOr,
}

func (c *converter) convertCond(e *cc.ConditionalExpression) (ast.Expr, error) {
	if e.Case == cc.ConditionalExpressionLOr {
		return c.convertLogOr(e.LogicalOrExpression)
	}
	cond, err := c.convertLogOr(e.LogicalOrExpression)
	if err != nil {
		return nil, err
	}
	then, err := c.convertExpr(e.Expression)
	if err != nil {
		return nil, err
	}
	els, err := c.convertCond(e.ConditionalExpression)
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Pos: toPos(e.Position()), Cond: cond, Then: then, Else: els}, nil
}

func (c *converter) convertLogOr(e *cc.LogicalOrExpression) (ast.Expr, error) {
	if e.Case == cc.LogicalOrExpressionLAnd {
		return c.convertLogAnd(e.LogicalAndExpression)
	}
	return c.binary(ast.BinLogOr, e.Position(),
		func() (ast.Expr, error) { return c.convertLogOr(e.LogicalOrExpression) },
		func() (ast.Expr, error) { return c.convertLogAnd(e.LogicalAndExpression) })
}

func (c *converter) convertLogAnd(e *cc.LogicalAndExpression) (ast.Expr, error) {
	if e.Case == cc.LogicalAndExpressionOr {
		return c.convertIncOr(e.InclusiveOrExpression)
	}
	return c.binary(ast.BinLogAnd, e.Position(),
		func() (ast.Expr, error) { return c.convertLogAnd(e.LogicalAndExpression) },
		func() (ast.Expr, error) { return c.convertIncOr(e.InclusiveOrExpression) })
}

func (c *converter) convertIncOr(e *cc.InclusiveOrExpression) (ast.Expr, error) {
	if e.Case == cc.InclusiveOrExpressionXor {
		return c.convertExclOr(e.ExclusiveOrExpression)
	}
	return c.binary(ast.BinBitOr, e.Position(),
		func() (ast.Expr, error) { return c.convertIncOr(e.InclusiveOrExpression) },
		func() (ast.Expr, error) { return c.convertExclOr(e.ExclusiveOrExpression) })
}

func (c *converter) convertExclOr(e *cc.ExclusiveOrExpression) (ast.Expr, error) {
	if e.Case == cc.ExclusiveOrExpressionAnd {
		return c.convertAnd(e.AndExpression)
	}
	return c.binary(ast.BinBitXor, e.Position(),
		func() (ast.Expr, error) { return c.convertExclOr(e.ExclusiveOrExpression) },
		func() (ast.Expr, error) { return c.convertAnd(e.AndExpression) })
}

func (c *converter) convertAnd(e *cc.AndExpression) (ast.Expr, error) {
	if e.Case == cc.AndExpressionEq {
		return c.convertEq(e.EqualityExpression)
	}
	return c.binary(ast.BinBitAnd, e.Position(),
		func() (ast.Expr, error) { return c.convertAnd(e.AndExpression) },
		func() (ast.Expr, error) { return c.convertEq(e.EqualityExpression) })
}

func (c *converter) convertEq(e *cc.EqualityExpression) (ast.Expr, error) {
	switch e.Case {
	case cc.EqualityExpressionRel:
		return c.convertRel(e.RelationalExpression)
	case cc.EqualityExpressionEq:
		return c.binary(ast.BinEq, e.Position(),
			func() (ast.Expr, error) { return c.convertEq(e.EqualityExpression) },
			func() (ast.Expr, error) { return c.convertRel(e.RelationalExpression) })
	case cc.EqualityExpressionNeq:
		return c.binary(ast.BinNe, e.Position(),
			func() (ast.Expr, error) { return c.convertEq(e.EqualityExpression) },
			func() (ast.Expr, error) { return c.convertRel(e.RelationalExpression) })
	default:
		return nil, errorf(e.Position(), "unsupported equality operator")
	}
}

func (c *converter) convertRel(e *cc.RelationalExpression) (ast.Expr, error) {
	next := func() (ast.Expr, error) { return c.convertShift(e.ShiftExpression) }
	self := func() (ast.Expr, error) { return c.convertRel(e.RelationalExpression) }
	switch e.Case {
	case cc.RelationalExpressionShift:
		return next()
	case cc.RelationalExpressionLt:
		return c.binary(ast.BinLt, e.Position(), self, next)
	case cc.RelationalExpressionGt:
		return c.binary(ast.BinGt, e.Position(), self, next)
	case cc.RelationalExpressionLeq:
		return c.binary(ast.BinLe, e.Position(), self, next)
	case cc.RelationalExpressionGeq:
		return c.binary(ast.BinGe, e.Position(), self, next)
	default:
		return nil, errorf(e.Position(), "unsupported relational operator")
	}
}

func (c *converter) convertShift(e *cc.ShiftExpression) (ast.Expr, error) {
	next := func() (ast.Expr, error) { return c.convertAdd(e.AdditiveExpression) }
	self := func() (ast.Expr, error) { return c.convertShift(e.ShiftExpression) }
	switch e.Case {
	case cc.ShiftExpressionAdd:
		return next()
	case cc.ShiftExpressionLsh:
		return c.binary(ast.BinShl, e.Position(), self, next)
	case cc.ShiftExpressionRsh:
		return c.binary(ast.BinShr, e.Position(), self, next)
	default:
		return nil, errorf(e.Position(), "unsupported shift operator")
	}
}

func (c *converter) convertAdd(e *cc.AdditiveExpression) (ast.Expr, error) {
	next := func() (ast.Expr, error) { return c.convertMul(e.MultiplicativeExpression) }
	self := func() (ast.Expr, error) { return c.convertAdd(e.AdditiveExpression) }
	switch e.Case {
	case cc.AdditiveExpressionMul:
		return next()
	case cc.AdditiveExpressionAdd:
		return c.binary(ast.BinAdd, e.Position(), self, next)
	case cc.AdditiveExpressionSub:
		return c.binary(ast.BinSub, e.Position(), self, next)
	default:
		return nil, errorf(e.Position(), "unsupported additive operator")
	}
}

func (c *converter) convertMul(e *cc.MultiplicativeExpression) (ast.Expr, error) {
	next := func() (ast.Expr, error) { return c.convertCast(e.CastExpression) }
	self := func() (ast.Expr, error) { return c.convertMul(e.MultiplicativeExpression) }
	switch e.Case {
	case cc.MultiplicativeExpressionCast:
		return next()
	case cc.MultiplicativeExpressionMul:
		return c.binary(ast.BinMul, e.Position(), self, next)
	case cc.MultiplicativeExpressionDiv:
		return c.binary(ast.BinDiv, e.Position(), self, next)
	case cc.MultiplicativeExpressionMod:
		return c.binary(ast.BinMod, e.Position(), self, next)
	default:
		return nil, errorf(e.Position(), "unsupported multiplicative operator")
	}
}

func (c *converter) convertCast(e *cc.CastExpression) (ast.Expr, error) {
	switch e.Case {
	case cc.CastExpressionUnary:
		return c.convertUnary(e.UnaryExpression)
	case cc.CastExpressionCast:
		ty, err := c.convertTypeName(e.TypeName)
		if err != nil {
			return nil, err
		}
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Cast{Pos: toPos(e.Position()), Type: ty, X: x}, nil
	default:
		return nil, errorf(e.Position(), "unsupported cast expression form")
	}
}

func (c *converter) convertUnary(e *cc.UnaryExpression) (ast.Expr, error) {
	pos := toPos(e.Position())
	switch e.Case {
	case cc.UnaryExpressionPostfix:
		return c.convertPostfix(e.PostfixExpression)
	case cc.UnaryExpressionInc:
		x, err := c.convertUnary(e.UnaryExpression)
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Pos: pos, Op: ast.IncOp, Prefix: true, X: x}, nil
	case cc.UnaryExpressionDec:
		x, err := c.convertUnary(e.UnaryExpression)
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Pos: pos, Op: ast.DecOp, Prefix: true, X: x}, nil
	case cc.UnaryExpressionAddrOf:
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.AddrOf{Pos: pos, X: x}, nil
	case cc.UnaryExpressionDeref:
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Deref{Pos: pos, X: x}, nil
	case cc.UnaryExpressionPlus:
		return c.convertCast(e.CastExpression)
	case cc.UnaryExpressionNeg:
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: pos, Op: ast.UnaryNeg, X: x}, nil
	case cc.UnaryExpressionCpl:
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: pos, Op: ast.UnaryBitNot, X: x}, nil
	case cc.UnaryExpressionNot:
		x, err := c.convertCast(e.CastExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: pos, Op: ast.UnaryNot, X: x}, nil
	case cc.UnaryExpressionSizeofExpr:
		x, err := c.convertUnary(e.UnaryExpression)
		if err != nil {
			return nil, err
		}
		return &ast.SizeofExpr{Pos: pos, X: x}, nil
	case cc.UnaryExpressionSizeofType:
		ty, err := c.convertTypeName(e.TypeName)
		if err != nil {
			return nil, err
		}
		return &ast.SizeofType{Pos: pos, Type: ty}, nil
	default:
		return nil, errorf(e.Position(), "unsupported unary expression form")
	}
}

func (c *converter) convertPostfix(e *cc.PostfixExpression) (ast.Expr, error) {
	pos := toPos(e.Position())
	switch e.Case {
	case cc.PostfixExpressionPrimary:
		return c.convertPrimary(e.PrimaryExpression)
	case cc.PostfixExpressionIndex:
		x, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		idx, err := c.convertExpr(e.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.Subscript{Pos: pos, X: x, Index: idx}, nil
	case cc.PostfixExpressionCall:
		callee, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		var args []ast.Expr
		for al := e.ArgumentExpressionList; al != nil; al = al.ArgumentExpressionList {
			arg, err := c.convertAssign(al.AssignmentExpression)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.Call{Pos: pos, Callee: callee, Args: args}, nil
	case cc.PostfixExpressionSelect:
		x, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Member{Pos: pos, X: x, Name: e.Token2.SrcStr()}, nil
	case cc.PostfixExpressionPSelect:
		x, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		return &ast.Arrow{Pos: pos, X: x, Name: e.Token2.SrcStr()}, nil
	case cc.PostfixExpressionInc:
		x, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Pos: pos, Op: ast.IncOp, Prefix: false, X: x}, nil
	case cc.PostfixExpressionDec:
		x, err := c.convertPostfix(e.PostfixExpression)
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Pos: pos, Op: ast.DecOp, Prefix: false, X: x}, nil
	default:
		return nil, errorf(e.Position(), "unsupported postfix expression form (compound literals are not supported)")
	}
}

func (c *converter) convertPrimary(e *cc.PrimaryExpression) (ast.Expr, error) {
	pos := toPos(e.Position())
	switch e.Case {
	case cc.PrimaryExpressionIdent:
		return &ast.Ident{Pos: pos, Name: e.Token.SrcStr()}, nil
	case cc.PrimaryExpressionInt:
		v, ty, err := parseIntLiteral(e.Token.SrcStr())
		if err != nil {
			return nil, errorf(e.Position(), "%v", err)
		}
		return &ast.IntLit{Pos: pos, Value: v, Type: ty}, nil
	case cc.PrimaryExpressionFloat:
		v, err := strconv.ParseFloat(trimFloatSuffix(e.Token.SrcStr()), 64)
		if err != nil {
			return nil, errorf(e.Position(), "%v", err)
		}
		return &ast.FloatLit{Pos: pos, Value: v}, nil
	case cc.PrimaryExpressionChar:
		v, _, err := parseIntLiteral(e.Token.SrcStr())
		if err != nil {
			return nil, errorf(e.Position(), "%v", err)
		}
		return &ast.IntLit{Pos: pos, Value: v, Type: ast.IntSpec{Width: 4, Signed: true}}, nil
	case cc.PrimaryExpressionString:
		s, err := unquoteCString(e.Token.SrcStr())
		if err != nil {
			return nil, errorf(e.Position(), "%v", err)
		}
		return &ast.StringLit{Pos: pos, Value: s}, nil
	case cc.PrimaryExpressionExpr:
		return c.convertExpr(e.Expression)
	default:
		return nil, errorf(e.Position(), "unsupported primary expression form")
	}
}

// binary evaluates lhs/rhs (each a closure so the caller doesn't need
// to duplicate its own recursive-call expression) and combines them.
func (c *converter) binary(op ast.BinaryOp, pos token.Position, lhs, rhs func() (ast.Expr, error)) (ast.Expr, error) {
	x, err := lhs()
	if err != nil {
		return nil, err
	}
	y, err := rhs()
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Pos: toPos(pos), Op: op, X: x, Y: y}, nil
}

// constInt evaluates an expression that must be an integer constant
// (array dimensions); only a bare integer literal is supported.
func (c *converter) constInt(e *cc.AssignmentExpression) (int64, error) {
	expr, err := c.convertAssign(e)
	if err != nil {
		return 0, err
	}
	lit, ok := expr.(*ast.IntLit)
	if !ok {
		return 0, errorf(e.Position(), "unsupported non-literal array dimension")
	}
	return int64(lit.Value), nil
}

// parseIntLiteral strips a C integer literal's base prefix and
// u/U/l/L/ll/LL suffix, returning its value and the ast type implied
// by its suffix (spec §4.1 treats every integer literal as `int`
// unless suffixed or too wide to fit, which internal/sema refines
// further against the target's actual ranges).
func parseIntLiteral(src string) (uint64, ast.TypeSpec, error) {
	s := src
	unsigned := false
	long := false
	for len(s) > 0 {
		c := s[len(s)-1]
		switch c {
		case 'u', 'U':
			unsigned = true
		case 'l', 'L':
			long = true
		default:
			goto done
		}
		s = s[:len(s)-1]
	}
done:
	if strings.HasPrefix(s, "'") {
		return parseCharLiteral(s)
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, nil, err
	}
	width := 4
	if long || v > 1<<31-1 {
		width = 8
	}
	return v, ast.IntSpec{Width: width, Signed: !unsigned}, nil
}

func parseCharLiteral(s string) (uint64, ast.TypeSpec, error) {
	u, err := unquoteCString(strings.Replace(s, "'", "\"", -1))
	if err != nil || len(u) == 0 {
		return 0, nil, err
	}
	return uint64(u[0]), ast.IntSpec{Width: 4, Signed: true}, nil
}

func trimFloatSuffix(s string) string {
	return strings.TrimRight(s, "fFlL")
}

// unquoteCString strips the surrounding quotes from a C string-literal
// token and resolves its backslash escapes via strconv.Unquote, whose
// Go-string escape grammar covers every escape spec §4.1's string
// literals need (\n \t \\ \" \xHH and \NNN octal).
func unquoteCString(src string) (string, error) {
	return strconv.Unquote(src)
}
