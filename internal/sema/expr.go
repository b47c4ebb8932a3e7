package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

func (a *analyzer) typeExpr(e ast.Expr) (tast.Expr, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		ty, err := a.resolveType(e.Pos, e.Type)
		if err != nil {
			return nil, err
		}
		return &tast.IntLit{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: ty}, Value: e.Value}, nil

	case *ast.FloatLit:
		return &tast.FloatLit{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Double{}}, Value: e.Value}, nil

	case *ast.StringLit:
		ty := types.Array{Elem: types.Int{Width: 1, Signed: true}, N: int64(len(e.Value)) + 1}
		return &tast.StringLit{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: ty, LV: true}, Value: e.Value}, nil

	case *ast.Ident:
		id, ok := a.scope.LookupSymbol(e.Name)
		if !ok {
			return nil, errf(ccerr.Undeclared, e.Pos, "use of undeclared identifier %q", e.Name)
		}
		entry := a.syms.Get(id)
		isLvalue := !entry.IsFunc
		return &tast.VarRef{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: entry.Type, LV: isLvalue}, Symbol: id, Name: e.Name}, nil

	case *ast.Unary:
		return a.typeUnary(e)

	case *ast.Binary:
		return a.typeBinary(e)

	case *ast.Assign:
		return a.typeAssign(e)

	case *ast.CompoundAssign:
		return a.typeCompoundAssign(e)

	case *ast.IncDec:
		return a.typeIncDec(e)

	case *ast.Ternary:
		return a.typeTernary(e)

	case *ast.Call:
		return a.typeCall(e)

	case *ast.Cast:
		return a.typeCast(e)

	case *ast.SizeofExpr:
		inner, err := a.typeExpr(e.X)
		if err != nil {
			return nil, err
		}
		if !types.IsComplete(inner.Type()) {
			return nil, errf(ccerr.IncompleteType, e.Pos, "sizeof applied to incomplete type")
		}
		sz := types.SizeOf(inner.Type())
		return &tast.IntLit{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Int{Width: 8, Signed: false}}, Value: uint64(sz)}, nil

	case *ast.SizeofType:
		ty, err := a.resolveType(e.Pos, e.Type)
		if err != nil {
			return nil, err
		}
		if !types.IsComplete(ty) {
			return nil, errf(ccerr.IncompleteType, e.Pos, "sizeof applied to incomplete type")
		}
		return &tast.IntLit{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Int{Width: 8, Signed: false}}, Value: uint64(types.SizeOf(ty))}, nil

	case *ast.Subscript:
		return a.typeSubscript(e)

	case *ast.Member:
		return a.typeMember(e)

	case *ast.Arrow:
		// `e->m` desugars to `(*e).m` before member resolution (spec §4.1).
		deref := &ast.Deref{Pos: e.Pos, X: e.X}
		return a.typeMember(&ast.Member{Pos: e.Pos, X: deref, Name: e.Name})

	case *ast.AddrOf:
		return a.typeAddrOf(e)

	case *ast.Deref:
		return a.typeDeref(e)

	case *ast.Comma:
		x, err := a.typeExpr(e.X)
		if err != nil {
			return nil, err
		}
		y, err := a.typeExpr(e.Y)
		if err != nil {
			return nil, err
		}
		return &tast.Comma{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: y.Type(), LV: y.Lvalue()}, X: x, Y: y}, nil

	case *ast.CompoundInit:
		return nil, errf(ccerr.InvalidInitializer, e.Pos, "brace-enclosed initializer is not a valid expression here")

	default:
		return nil, errf(ccerr.InternalError, e.NodePos(), "unhandled expression %T", e)
	}
}

func requireLvalue(p ast.Pos, e tast.Expr) error {
	if !e.Lvalue() {
		return errf(ccerr.NotAnLvalue, p, "expression is not an lvalue")
	}
	return nil
}

func (a *analyzer) typeUnary(e *ast.Unary) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	x = decay(x)
	switch e.Op {
	case ast.UnaryNot:
		x = toBool(x)
		return &tast.Unary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Int{Width: 4, Signed: true}}, Op: ast.UnaryNot, X: x}, nil
	case ast.UnaryBitNot:
		if !types.IsInteger(x.Type()) {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "operand of ~ must be an integer")
		}
		rt := types.PromoteInt(x.Type())
		x = insertCast(rt, x)
		return &tast.Unary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: rt}, Op: e.Op, X: x}, nil
	case ast.UnaryNeg:
		if !types.IsArithmetic(x.Type()) {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "operand of unary - must be arithmetic")
		}
		rt := types.PromoteInt(x.Type())
		if x.Type().Kind() == types.KindDouble {
			rt = types.Double{}
		}
		x = insertCast(rt, x)
		return &tast.Unary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: rt}, Op: e.Op, X: x}, nil
	}
	return nil, errf(ccerr.InternalError, e.Pos, "unhandled unary operator")
}

func isLogical(op ast.BinaryOp) bool { return op == ast.BinLogAnd || op == ast.BinLogOr }
func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe, ast.BinEq, ast.BinNe:
		return true
	}
	return false
}
func isShift(op ast.BinaryOp) bool { return op == ast.BinShl || op == ast.BinShr }

func (a *analyzer) typeBinary(e *ast.Binary) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	y, err := a.typeExpr(e.Y)
	if err != nil {
		return nil, err
	}
	x, y = decay(x), decay(y)

	if isLogical(e.Op) {
		x, y = toBool(x), toBool(y)
		return &tast.Binary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Int{Width: 4, Signed: true}}, Op: e.Op, X: x, Y: y}, nil
	}

	// Pointer arithmetic: ptr +/- int, ptr - ptr.
	if (e.Op == ast.BinAdd || e.Op == ast.BinSub) && (x.Type().Kind() == types.KindPointer || y.Type().Kind() == types.KindPointer) {
		return a.typePointerArith(e, x, y)
	}

	if !types.IsArithmetic(x.Type()) || !types.IsArithmetic(y.Type()) {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "operands of %v must be arithmetic", e.Op)
	}

	if isShift(e.Op) {
		xp := insertCast(types.PromoteInt(x.Type()), x)
		yp := insertCast(types.PromoteInt(y.Type()), y)
		return &tast.Binary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: xp.Type()}, Op: e.Op, X: xp, Y: yp}, nil
	}

	cx, cy, ct := usualArith(x, y)
	resultType := ct
	if isComparison(e.Op) {
		resultType = types.Int{Width: 4, Signed: true}
	}
	return &tast.Binary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: resultType}, Op: e.Op, X: cx, Y: cy}, nil
}

func (a *analyzer) typePointerArith(e *ast.Binary, x, y tast.Expr) (tast.Expr, error) {
	if x.Type().Kind() == types.KindPointer && y.Type().Kind() == types.KindPointer {
		if e.Op != ast.BinSub {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "cannot add two pointers")
		}
		if !types.Equal(x.Type(), y.Type()) {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "subtracting pointers to different types")
		}
		return &tast.Binary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Int{Width: 8, Signed: true}}, Op: e.Op, X: x, Y: y}, nil
	}
	ptr, idx := x, y
	if idx.Type().Kind() == types.KindPointer {
		ptr, idx = y, x
	}
	if !types.IsInteger(idx.Type()) {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "pointer arithmetic requires an integer operand")
	}
	idx = insertCast(types.Int{Width: 8, Signed: true}, idx)
	return &tast.Binary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: ptr.Type()}, Op: e.Op, X: ptr, Y: idx}, nil
}

func (a *analyzer) typeAssign(e *ast.Assign) (tast.Expr, error) {
	lhs, err := a.typeExpr(e.LHS)
	if err != nil {
		return nil, err
	}
	if err := requireLvalue(e.Pos, lhs); err != nil {
		return nil, err
	}
	rhs, err := a.convertAssign(e.Pos, lhs.Type(), e.RHS)
	if err != nil {
		return nil, err
	}
	return &tast.Assign{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: lhs.Type(), LV: true}, LHS: lhs, RHS: rhs}, nil
}

func (a *analyzer) typeCompoundAssign(e *ast.CompoundAssign) (tast.Expr, error) {
	lhs, err := a.typeExpr(e.LHS)
	if err != nil {
		return nil, err
	}
	if err := requireLvalue(e.Pos, lhs); err != nil {
		return nil, err
	}
	rhs, err := a.typeExpr(e.RHS)
	if err != nil {
		return nil, err
	}
	rhs = decay(rhs)
	var ct types.Type
	if lhs.Type().Kind() == types.KindPointer {
		if !types.IsInteger(rhs.Type()) {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "pointer compound assignment requires an integer operand")
		}
		ct = lhs.Type()
		rhs = insertCast(types.Int{Width: 8, Signed: true}, rhs)
	} else {
		if !types.IsArithmetic(lhs.Type()) || !types.IsArithmetic(rhs.Type()) {
			return nil, errf(ccerr.TypeMismatch, e.Pos, "operands of compound assignment must be arithmetic")
		}
		ct = types.CommonType(lhs.Type(), rhs.Type())
		rhs = insertCast(ct, rhs)
	}
	return &tast.CompoundAssign{
		ExprBase:   tast.ExprBase{Pos: e.Pos, Ty: lhs.Type(), LV: true},
		Op:         e.Op,
		LHS:        lhs,
		RHS:        rhs,
		CommonType: tast.ExprBase{Ty: ct},
	}, nil
}

func (a *analyzer) typeIncDec(e *ast.IncDec) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	if err := requireLvalue(e.Pos, x); err != nil {
		return nil, err
	}
	if !types.IsArithmetic(x.Type()) && x.Type().Kind() != types.KindPointer {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "operand of ++/-- must be arithmetic or pointer")
	}
	return &tast.IncDec{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: x.Type()}, Op: e.Op, Prefix: e.Prefix, X: x}, nil
}

func (a *analyzer) typeTernary(e *ast.Ternary) (tast.Expr, error) {
	cond, err := a.typeExpr(e.Cond)
	if err != nil {
		return nil, err
	}
	cond = toBool(decay(cond))
	then, err := a.typeExpr(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := a.typeExpr(e.Else)
	if err != nil {
		return nil, err
	}
	then, els = decay(then), decay(els)
	var ct types.Type
	switch {
	case types.Equal(then.Type(), els.Type()):
		ct = then.Type()
	case types.IsArithmetic(then.Type()) && types.IsArithmetic(els.Type()):
		ct = types.CommonType(then.Type(), els.Type())
	case then.Type().Kind() == types.KindPointer && isNullConst(els):
		ct = then.Type()
	case els.Type().Kind() == types.KindPointer && isNullConst(then):
		ct = els.Type()
	case then.Type().Kind() == types.KindPointer && els.Type().Kind() == types.KindPointer:
		tp := then.Type().(types.Pointer)
		if tp.Elem.Kind() == types.KindVoid {
			ct = then.Type()
		} else {
			ct = els.Type()
		}
	default:
		return nil, errf(ccerr.TypeMismatch, e.Pos, "incompatible types in ?: branches")
	}
	then, els = insertCast(ct, then), insertCast(ct, els)
	return &tast.Ternary{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: ct}, Cond: cond, Then: then, Else: els}, nil
}

func isNullConst(e tast.Expr) bool {
	lit, ok := e.(*tast.IntLit)
	return ok && lit.Value == 0 && types.IsInteger(lit.Type())
}

func (a *analyzer) typeCall(e *ast.Call) (tast.Expr, error) {
	ident, ok := e.Callee.(*ast.Ident)
	if !ok {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "indirect calls through function pointers are not supported")
	}
	id, ok := a.scope.LookupSymbol(ident.Name)
	if !ok {
		return nil, errf(ccerr.Undeclared, e.Pos, "call to undeclared function %q", ident.Name)
	}
	entry := a.syms.Get(id)
	fty, ok := entry.Type.(types.Func)
	if !ok {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "%q is not a function", ident.Name)
	}
	if !fty.Variadic && len(e.Args) != len(fty.Params) {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "%q expects %d arguments, got %d", ident.Name, len(fty.Params), len(e.Args))
	}
	if len(e.Args) < len(fty.Params) {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "%q expects at least %d arguments, got %d", ident.Name, len(fty.Params), len(e.Args))
	}
	args := make([]tast.Expr, len(e.Args))
	for i, argExpr := range e.Args {
		if i < len(fty.Params) {
			converted, err := a.convertAssign(e.Pos, fty.Params[i], argExpr)
			if err != nil {
				return nil, err
			}
			args[i] = converted
		} else {
			// Variadic tail argument: default argument promotions only.
			te, err := a.typeExpr(argExpr)
			if err != nil {
				return nil, err
			}
			te = decay(te)
			if te.Type().Kind() == types.KindInt {
				te = insertCast(types.PromoteInt(te.Type()), te)
			}
			args[i] = te
		}
	}
	callee := &tast.VarRef{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: fty}, Symbol: id, Name: ident.Name}
	return &tast.Call{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: fty.Return}, Callee: callee, Args: args}, nil
}

func (a *analyzer) typeCast(e *ast.Cast) (tast.Expr, error) {
	target, err := a.resolveType(e.Pos, e.Type)
	if err != nil {
		return nil, err
	}
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	x = decay(x)
	if target.Kind() == types.KindVoid {
		return &tast.Cast{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: target}, X: x}, nil
	}
	if !types.IsScalar(target) || !types.IsScalar(x.Type()) {
		return nil, errf(ccerr.InvalidCast, e.Pos, "cast requires scalar source and target types")
	}
	return &tast.Cast{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: target}, X: x}, nil
}

func (a *analyzer) typeSubscript(e *ast.Subscript) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	idx, err := a.typeExpr(e.Index)
	if err != nil {
		return nil, err
	}
	x, idx = decay(x), decay(idx)
	if x.Type().Kind() != types.KindPointer {
		x, idx = idx, x // C permits `index[array]`
	}
	if x.Type().Kind() != types.KindPointer {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "subscripted value is not an array or pointer")
	}
	if !types.IsInteger(idx.Type()) {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "array subscript is not an integer")
	}
	elem := x.Type().(types.Pointer).Elem
	idx = insertCast(types.Int{Width: 8, Signed: true}, idx)
	return &tast.Subscript{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: elem, LV: true}, X: x, Index: idx}, nil
}

func (a *analyzer) typeMember(e *ast.Member) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	st, ok := x.Type().(types.Struct)
	if !ok {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "member reference requires a struct operand")
	}
	if st.Info == nil {
		return nil, errf(ccerr.IncompleteType, e.Pos, "member access on incomplete struct %s", st.Tag)
	}
	for _, m := range st.Info.Members {
		if m.Name == e.Name {
			return &tast.Member{
				ExprBase: tast.ExprBase{Pos: e.Pos, Ty: m.Type, LV: x.Lvalue()},
				X:        x, Name: e.Name, Offset: m.Offset,
			}, nil
		}
	}
	return nil, errf(ccerr.TypeMismatch, e.Pos, "struct %s has no member %q", st.Tag, e.Name)
}

func (a *analyzer) typeAddrOf(e *ast.AddrOf) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	if _, ok := x.Type().(types.Func); ok {
		return &tast.AddrOf{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Pointer{Elem: x.Type()}}, X: x}, nil
	}
	if err := requireLvalue(e.Pos, x); err != nil {
		return nil, err
	}
	if ref, ok := x.(*tast.VarRef); ok {
		a.aliased[ref.Symbol] = true
	}
	return &tast.AddrOf{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: types.Pointer{Elem: x.Type()}}, X: x}, nil
}

func (a *analyzer) typeDeref(e *ast.Deref) (tast.Expr, error) {
	x, err := a.typeExpr(e.X)
	if err != nil {
		return nil, err
	}
	x = decay(x)
	pt, ok := x.Type().(types.Pointer)
	if !ok {
		return nil, errf(ccerr.TypeMismatch, e.Pos, "dereferenced value is not a pointer")
	}
	return &tast.Deref{ExprBase: tast.ExprBase{Pos: e.Pos, Ty: pt.Elem, LV: true}, X: x}, nil
}
