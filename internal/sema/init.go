package sema

import (
	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/ccerr"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

// flattenStaticInit implements spec §4.1 "Initializers" for the
// static (compile-time) case: scalar initializers are converted by
// assignment rules now; compound initializers are flattened into a
// sequence of (offset, typed-constant) pairs with missing elements
// implicitly zero.
func (a *analyzer) flattenStaticInit(p ast.Pos, ty types.Type, init ast.Expr) ([]symtab.StaticInit, error) {
	switch t := ty.(type) {
	case types.Array:
		if t.Elem.Kind() == types.KindInt && t.Elem.(types.Int).Width == 1 {
			if sl, ok := init.(*ast.StringLit); ok {
				return a.flattenStringInit(t, sl.Value), nil
			}
		}
		ci, ok := init.(*ast.CompoundInit)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, p, "array initializer must be a brace-enclosed list or string literal")
		}
		elemSize := types.SizeOf(t.Elem)
		var out []symtab.StaticInit
		for i, el := range ci.Elements {
			sub, err := a.flattenStaticInit(p, t.Elem, el)
			if err != nil {
				return nil, err
			}
			off := int64(i) * elemSize
			for _, s := range sub {
				s.Offset += off
				out = append(out, s)
			}
		}
		return out, nil

	case types.Struct:
		if t.Info == nil {
			return nil, errf(ccerr.IncompleteType, p, "initializing incomplete struct %s", t.Tag)
		}
		ci, ok := init.(*ast.CompoundInit)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, p, "struct initializer must be a brace-enclosed list")
		}
		var out []symtab.StaticInit
		for i, el := range ci.Elements {
			if i >= len(t.Info.Members) {
				break
			}
			m := t.Info.Members[i]
			sub, err := a.flattenStaticInit(p, m.Type, el)
			if err != nil {
				return nil, err
			}
			for _, s := range sub {
				s.Offset += m.Offset
				out = append(out, s)
			}
		}
		return out, nil

	default:
		te, err := a.typeExpr(init)
		if err != nil {
			return nil, err
		}
		c, ok := evalConst(te)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, p, "static initializer is not a compile-time constant")
		}
		c = convertScalarConst(ty, c)
		return []symtab.StaticInit{{Offset: 0, Value: c}}, nil
	}
}

// flattenStringInit implements "a string literal may initialize a char
// array": excess bytes discarded if the array is shorter, remaining
// bytes zeroed if longer (spec §4.1).
func (a *analyzer) flattenStringInit(arr types.Array, s string) []symtab.StaticInit {
	bytes := append([]byte(s), 0) // the trailing NUL the literal always carries
	n := arr.N
	if n < 0 {
		n = int64(len(bytes))
	}
	var out []symtab.StaticInit
	for i := int64(0); i < n && i < int64(len(bytes)); i++ {
		out = append(out, symtab.StaticInit{
			Offset: i,
			Value:  &symtab.ScalarConst{Type: types.Int{Width: 1, Signed: true}, Int: uint64(bytes[i])},
		})
	}
	if n > int64(len(bytes)) {
		out = append(out, symtab.StaticInit{Offset: int64(len(bytes)), Zero: n - int64(len(bytes))})
	}
	return out
}

// flattenRuntimeInit implements the automatic-object half of spec
// §4.1's initializer flattening: the same (offset, value) shape, but
// Value is a converted expression evaluated at run time rather than a
// compile-time constant.
func (a *analyzer) flattenRuntimeInit(p ast.Pos, ty types.Type, init ast.Expr) ([]tast.InitItem, error) {
	switch t := ty.(type) {
	case types.Array:
		if t.Elem.Kind() == types.KindInt && t.Elem.(types.Int).Width == 1 {
			if sl, ok := init.(*ast.StringLit); ok {
				return a.runtimeStringInit(t, sl), nil
			}
		}
		ci, ok := init.(*ast.CompoundInit)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, p, "array initializer must be a brace-enclosed list or string literal")
		}
		elemSize := types.SizeOf(t.Elem)
		var out []tast.InitItem
		for i, el := range ci.Elements {
			sub, err := a.flattenRuntimeInit(p, t.Elem, el)
			if err != nil {
				return nil, err
			}
			off := int64(i) * elemSize
			for _, s := range sub {
				s.Offset += off
				out = append(out, s)
			}
		}
		return out, nil

	case types.Struct:
		if t.Info == nil {
			return nil, errf(ccerr.IncompleteType, p, "initializing incomplete struct %s", t.Tag)
		}
		ci, ok := init.(*ast.CompoundInit)
		if !ok {
			return nil, errf(ccerr.InvalidInitializer, p, "struct initializer must be a brace-enclosed list")
		}
		var out []tast.InitItem
		for i, el := range ci.Elements {
			if i >= len(t.Info.Members) {
				break
			}
			m := t.Info.Members[i]
			sub, err := a.flattenRuntimeInit(p, m.Type, el)
			if err != nil {
				return nil, err
			}
			for _, s := range sub {
				s.Offset += m.Offset
				out = append(out, s)
			}
		}
		return out, nil

	default:
		val, err := a.convertAssign(p, ty, init)
		if err != nil {
			return nil, err
		}
		return []tast.InitItem{{Offset: 0, Value: val}}, nil
	}
}

func (a *analyzer) runtimeStringInit(arr types.Array, sl *ast.StringLit) []tast.InitItem {
	bytes := append([]byte(sl.Value), 0)
	n := arr.N
	if n < 0 {
		n = int64(len(bytes))
	}
	var out []tast.InitItem
	for i := int64(0); i < n && i < int64(len(bytes)); i++ {
		out = append(out, tast.InitItem{
			Offset: i,
			Value: &tast.IntLit{
				ExprBase: tast.ExprBase{Pos: sl.Pos, Ty: types.Int{Width: 1, Signed: true}},
				Value:    uint64(bytes[i]),
			},
		})
	}
	if n > int64(len(bytes)) {
		out = append(out, tast.InitItem{Offset: int64(len(bytes)), Zero: n - int64(len(bytes))})
	}
	return out
}

// evalConst folds a typed expression to a compile-time scalar
// constant, supporting exactly the forms spec §4.1 requires of a
// static initializer: literals, casts between scalar types, unary
// negation, and the address of a (file-scope or static) object.
func evalConst(e tast.Expr) (*symtab.ScalarConst, bool) {
	switch e := e.(type) {
	case *tast.IntLit:
		return &symtab.ScalarConst{Type: e.Ty, Int: e.Value}, true
	case *tast.FloatLit:
		return &symtab.ScalarConst{Type: e.Ty, Double: e.Value}, true
	case *tast.Cast:
		c, ok := evalConst(e.X)
		if !ok {
			return nil, false
		}
		return convertScalarConst(e.Ty, c), true
	case *tast.Unary:
		c, ok := evalConst(e.X)
		if !ok {
			return nil, false
		}
		switch e.Op {
		case ast.UnaryNeg:
			if e.Ty.Kind() == types.KindDouble {
				return &symtab.ScalarConst{Type: e.Ty, Double: -c.Double}, true
			}
			return &symtab.ScalarConst{Type: e.Ty, Int: -c.Int}, true
		case ast.UnaryBitNot:
			return &symtab.ScalarConst{Type: e.Ty, Int: ^c.Int}, true
		}
		return nil, false
	case *tast.AddrOf:
		ref, ok := e.X.(*tast.VarRef)
		if !ok {
			return nil, false
		}
		return &symtab.ScalarConst{Type: e.Ty, Label: ref.Name}, true
	default:
		return nil, false
	}
}

// convertScalarConst implements the compile-time half of "conversions
// as if by assignment" (spec §4.1) over constants.
func convertScalarConst(target types.Type, c *symtab.ScalarConst) *symtab.ScalarConst {
	if c.Label != "" {
		return &symtab.ScalarConst{Type: target, Label: c.Label}
	}
	switch tt := target.(type) {
	case types.Int:
		var bits uint64
		if c.Type.Kind() == types.KindDouble {
			bits = uint64(int64(c.Double)) // truncation toward zero
		} else {
			bits = c.Int
		}
		bits = truncateOrExtend(bits, c.Type, tt)
		return &symtab.ScalarConst{Type: target, Int: bits}
	case types.Double:
		if c.Type.Kind() == types.KindDouble {
			return &symtab.ScalarConst{Type: target, Double: c.Double}
		}
		srcInt := c.Type.(types.Int)
		if srcInt.Signed {
			return &symtab.ScalarConst{Type: target, Double: float64(int64(c.Int))}
		}
		return &symtab.ScalarConst{Type: target, Double: uint64ToDouble(c.Int)}
	case types.Pointer:
		return &symtab.ScalarConst{Type: target, Int: c.Int}
	default:
		return c
	}
}

func truncateOrExtend(v uint64, from types.Type, to types.Int) uint64 {
	fi, ok := from.(types.Int)
	if !ok {
		fi = types.Int{Width: 8, Signed: true}
	}
	switch types.ClassifyIntConversion(fi, to) {
	case types.ConvTruncate:
		return maskWidth(v, to.Width)
	case types.ConvSignExtend:
		return signExtend(v, fi.Width)
	case types.ConvZeroExtend:
		return maskWidth(v, fi.Width)
	default:
		return v
	}
}

func maskWidth(v uint64, width int) uint64 {
	if width >= 8 {
		return v
	}
	return v & ((1 << (uint(width) * 8)) - 1)
}

func signExtend(v uint64, fromWidth int) uint64 {
	if fromWidth >= 8 {
		return v
	}
	shift := uint(64 - fromWidth*8)
	return uint64(int64(v<<shift) >> shift)
}

// uint64ToDouble implements the "round-to-odd" sequence spec §4.1
// calls for when converting an unsigned long with the high bit set to
// double, avoiding the double rounding a naive int64 round trip would
// introduce.
func uint64ToDouble(v uint64) float64 {
	if v>>63 == 0 {
		return float64(int64(v))
	}
	// Split off the low bit as a rounding hint ("round to odd"): if any
	// of the low bits are set, force the lowest bit of the shifted
	// value on so the subsequent float64 rounding cannot round down
	// past a value that had a nonzero remainder.
	low := v & 1
	v >>= 1
	if low != 0 {
		v |= 1
	}
	return float64(v) * 2
}
