package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

// decay implements array-to-pointer and function-to-pointer decay:
// applied in every context except sizeof/&, and except when the
// expression is itself the initializer of a matching array (handled
// by the caller before decay is applied there).
func decay(e tast.Expr) tast.Expr {
	switch t := e.Type().(type) {
	case types.Array:
		return &tast.Cast{
			ExprBase: tast.ExprBase{Pos: e.NodePos(), Ty: types.Pointer{Elem: t.Elem}, LV: false},
			X:        &tast.AddrOf{ExprBase: tast.ExprBase{Pos: e.NodePos(), Ty: types.Pointer{Elem: t.Elem}}, X: e},
		}
	case types.Func:
		return &tast.AddrOf{ExprBase: tast.ExprBase{Pos: e.NodePos(), Ty: types.Pointer{Elem: t}}, X: e}
	default:
		return e
	}
}

// insertCast wraps e in an explicit Cast to target unless it is
// already of that type, implementing "conversions as if by
// assignment" (spec §4.1) as an AST rewrite so internal/tac never has
// to guess where a conversion belongs.
func insertCast(target types.Type, e tast.Expr) tast.Expr {
	if types.Equal(e.Type(), target) {
		return e
	}
	return &tast.Cast{ExprBase: tast.ExprBase{Pos: e.NodePos(), Ty: target}, X: e}
}

// convertAssignExpr converts a typed expression to target by
// assignment rules (spec §4.1), after array/function decay.
func (a *analyzer) convertAssignExpr(p ast.Pos, target types.Type, e tast.Expr) (tast.Expr, error) {
	e = decay(e)
	src := e.Type()
	if types.Equal(src, target) {
		return e, nil
	}
	switch {
	case types.IsArithmetic(src) && types.IsArithmetic(target):
		return insertCast(target, e), nil
	case target.Kind() == types.KindPointer && src.Kind() == types.KindPointer:
		tp, sp := target.(types.Pointer), src.(types.Pointer)
		if tp.Elem.Kind() == types.KindVoid || sp.Elem.Kind() == types.KindVoid || types.Equal(tp.Elem, sp.Elem) {
			return insertCast(target, e), nil
		}
		return nil, errf(ccerr.TypeMismatch, p, "incompatible pointer types in assignment")
	case target.Kind() == types.KindPointer && types.IsInteger(src):
		if lit, ok := e.(*tast.IntLit); ok && lit.Value == 0 {
			return insertCast(target, e), nil
		}
		return nil, errf(ccerr.TypeMismatch, p, "cannot implicitly convert integer to pointer")
	case target.Kind() == types.KindStruct && src.Kind() == types.KindStruct:
		if !types.Equal(src, target) {
			return nil, errf(ccerr.TypeMismatch, p, "incompatible struct types in assignment")
		}
		return e, nil
	default:
		return nil, errf(ccerr.TypeMismatch, p, "cannot convert %s to %s", src, target)
	}
}

// convertAssign type-checks an untyped initializer/argument expression
// and converts it to target in one step.
func (a *analyzer) convertAssign(p ast.Pos, target types.Type, e ast.Expr) (tast.Expr, error) {
	te, err := a.typeExpr(e)
	if err != nil {
		return nil, err
	}
	return a.convertAssignExpr(p, target, te)
}

// toBool converts e "as if by != 0" for a controlling expression or
// a logical operator's operand (spec §4.1).
func toBool(e tast.Expr) tast.Expr {
	zero := zeroOf(e.NodePos(), e.Type())
	return &tast.Binary{
		ExprBase: tast.ExprBase{Pos: e.NodePos(), Ty: types.Int{Width: 4, Signed: true}},
		Op:       ast.BinNe,
		X:        e,
		Y:        zero,
	}
}

func zeroOf(p ast.Pos, t types.Type) tast.Expr {
	if t.Kind() == types.KindDouble {
		return &tast.FloatLit{ExprBase: tast.ExprBase{Pos: p, Ty: t}, Value: 0}
	}
	if t.Kind() == types.KindPointer {
		return insertCast(t, &tast.IntLit{ExprBase: tast.ExprBase{Pos: p, Ty: types.Int{Width: 8, Signed: false}}, Value: 0})
	}
	return &tast.IntLit{ExprBase: tast.ExprBase{Pos: p, Ty: t}, Value: 0}
}

// usualArith applies integer promotion/usual arithmetic conversions to
// a binary operator's already-decayed operands and returns both
// converted to their common type, plus that type.
func usualArith(x, y tast.Expr) (tast.Expr, tast.Expr, types.Type) {
	ct := types.CommonType(x.Type(), y.Type())
	return insertCast(ct, x), insertCast(ct, y), ct
}
