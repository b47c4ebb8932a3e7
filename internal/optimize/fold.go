package optimize

import (
	"math"

	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

// ConstantFold evaluates arithmetic and comparisons whose operands
// are compile-time constants (spec §4.3 "Constant folding") and
// simplifies a conditional jump whose condition folds to a known
// value into an unconditional Jump (or removes it outright when the
// branch can never be taken), leaving actual block removal to
// UnreachableElim.
//
// Analysis resets at every label: a join point may be reached from a
// predecessor this linear scan hasn't accounted for, so treating
// every Var as unknown there is the conservative, correct choice.
type ConstantFold struct{}

func (ConstantFold) Name() string { return "constant-fold" }

func (cf ConstantFold) Run(fn *tac.Function) bool {
	changed := false
	known := map[symtab.SymbolID]tac.Const{}

	resolve := func(v tac.Value) (tac.Const, bool) {
		switch v := v.(type) {
		case tac.Const:
			return v, true
		case tac.Var:
			c, ok := known[v.Symbol]
			return c, ok
		default:
			return tac.Const{}, false
		}
	}

	out := make([]tac.Instr, 0, len(fn.Body))
	for _, instr := range fn.Body {
		switch i := instr.(type) {
		case tac.Label:
			known = map[symtab.SymbolID]tac.Const{}
			out = append(out, i)

		case tac.Binary:
			l, lok := resolve(i.L)
			r, rok := resolve(i.R)
			if lok && rok {
				if c, ok := evalBinary(i.Op, l, r); ok {
					delete(known, dstSymbol(i.Dst))
					if dst, ok := i.Dst.(tac.Var); ok {
						known[dst.Symbol] = c
					}
					out = append(out, tac.Copy{Dst: i.Dst, Src: c})
					changed = true
					continue
				}
			}
			invalidate(known, i.Dst)
			out = append(out, i)

		case tac.Unary:
			s, sok := resolve(i.Src)
			if sok {
				if c, ok := evalUnary(i.Op, s); ok {
					if dst, ok := i.Dst.(tac.Var); ok {
						known[dst.Symbol] = c
					}
					out = append(out, tac.Copy{Dst: i.Dst, Src: c})
					changed = true
					continue
				}
			}
			invalidate(known, i.Dst)
			out = append(out, i)

		case tac.Copy:
			if c, ok := resolve(i.Src); ok {
				if dst, ok := i.Dst.(tac.Var); ok {
					known[dst.Symbol] = c
				}
				out = append(out, tac.Copy{Dst: i.Dst, Src: c})
			} else {
				invalidate(known, i.Dst)
				out = append(out, i)
			}

		case tac.JumpIfZero:
			if c, ok := resolve(i.Cond); ok {
				changed = true
				if isZero(c) {
					out = append(out, tac.Jump{Target: i.Target})
				}
				// else: branch never taken, drop the instruction entirely
				continue
			}
			out = append(out, i)

		case tac.JumpIfNotZero:
			if c, ok := resolve(i.Cond); ok {
				changed = true
				if !isZero(c) {
					out = append(out, tac.Jump{Target: i.Target})
				}
				continue
			}
			out = append(out, i)

		case tac.Call:
			// A call may write through any aliased pointer argument; drop
			// everything folding has learned rather than reason about it.
			known = map[symtab.SymbolID]tac.Const{}
			out = append(out, i)

		default:
			if dst := instrDst(instr); dst != nil {
				invalidate(known, dst)
			}
			out = append(out, instr)
		}
	}
	fn.Body = out
	return changed
}

func invalidate(known map[symtab.SymbolID]tac.Const, dst tac.Value) {
	if v, ok := dst.(tac.Var); ok {
		delete(known, v.Symbol)
	}
}

func dstSymbol(dst tac.Value) symtab.SymbolID {
	if v, ok := dst.(tac.Var); ok {
		return v.Symbol
	}
	return -1
}

// instrDst reports the Var, if any, that an instruction writes,
// letting ConstantFold and the other linear-scan passes invalidate
// stale facts without a type switch over every instruction kind.
func instrDst(instr tac.Instr) tac.Value {
	switch i := instr.(type) {
	case tac.Copy:
		return i.Dst
	case tac.GetAddress:
		return i.Dst
	case tac.Load:
		return i.Dst
	case tac.AddPtr:
		return i.Dst
	case tac.Unary:
		return i.Dst
	case tac.Binary:
		return i.Dst
	case tac.Truncate:
		return i.Dst
	case tac.SignExtend:
		return i.Dst
	case tac.ZeroExtend:
		return i.Dst
	case tac.DoubleToInt:
		return i.Dst
	case tac.DoubleToUInt:
		return i.Dst
	case tac.IntToDouble:
		return i.Dst
	case tac.UIntToDouble:
		return i.Dst
	case tac.Call:
		return i.Dst
	default:
		return nil
	}
}

func isZero(c tac.Const) bool {
	if c.Ty.Kind() == types.KindDouble {
		return c.C.Double == 0
	}
	return c.C.Int == 0
}

func maskTo(width int, signed bool, v uint64) uint64 {
	if width >= 8 {
		return v
	}
	bits := uint(width * 8)
	masked := v & ((uint64(1) << bits) - 1)
	if signed && masked&(uint64(1)<<(bits-1)) != 0 {
		// sign-extend back to 64 bits so comparisons/arithmetic on the
		// stored uint64 behave like the narrower signed type would.
		masked |= ^uint64(0) << bits
	}
	return masked
}

func evalBinary(op tac.BinOp, l, r tac.Const) (tac.Const, bool) {
	ty := l.Ty
	if ty.Kind() == types.KindDouble {
		return evalBinaryDouble(op, l, r)
	}
	it, ok := ty.(types.Int)
	if !ok {
		return tac.Const{}, false
	}
	a, b := l.C.Int, r.C.Int
	var res uint64
	switch op {
	case tac.Add:
		res = a + b
	case tac.Sub:
		res = a - b
	case tac.Mul:
		res = a * b
	case tac.Div:
		if b == 0 {
			return tac.Const{}, false
		}
		if it.Signed {
			res = uint64(int64(a) / int64(b))
		} else {
			res = a / b
		}
	case tac.Mod:
		if b == 0 {
			return tac.Const{}, false
		}
		if it.Signed {
			res = uint64(int64(a) % int64(b))
		} else {
			res = a % b
		}
	case tac.BitAnd:
		res = a & b
	case tac.BitOr:
		res = a | b
	case tac.BitXor:
		res = a ^ b
	case tac.Shl:
		res = a << (b & 63)
	case tac.Shr:
		if it.Signed {
			res = uint64(int64(a) >> (b & 63))
		} else {
			res = a >> (b & 63)
		}
	case tac.Lt, tac.Le, tac.Gt, tac.Ge, tac.Eq, tac.Ne:
		var truth bool
		if it.Signed {
			truth = compareSigned(op, int64(a), int64(b))
		} else {
			truth = compareUnsigned(op, a, b)
		}
		return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: boolToUint64(truth)}}, true
	default:
		return tac.Const{}, false
	}
	res = maskTo(it.Width, it.Signed, res)
	return tac.Const{Ty: ty, C: symtab.ScalarConst{Type: ty, Int: res}}, true
}

func compareSigned(op tac.BinOp, a, b int64) bool {
	switch op {
	case tac.Lt:
		return a < b
	case tac.Le:
		return a <= b
	case tac.Gt:
		return a > b
	case tac.Ge:
		return a >= b
	case tac.Eq:
		return a == b
	default:
		return a != b
	}
}

func compareUnsigned(op tac.BinOp, a, b uint64) bool {
	switch op {
	case tac.Lt:
		return a < b
	case tac.Le:
		return a <= b
	case tac.Gt:
		return a > b
	case tac.Ge:
		return a >= b
	case tac.Eq:
		return a == b
	default:
		return a != b
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// evalBinaryDouble follows IEEE 754 semantics exactly via Go's native
// float64 arithmetic (spec §4.4's "NaN and signed-zero rules"): a
// comparison with a NaN operand folds to its IEEE result (unordered:
// only != is true), arithmetic with a NaN operand is left unfolded,
// and arithmetic that produces a NaN (0.0/0.0) folds like any other.
func evalBinaryDouble(op tac.BinOp, l, r tac.Const) (tac.Const, bool) {
	a, b := l.C.Double, r.C.Double
	if math.IsNaN(a) || math.IsNaN(b) {
		if op == tac.Eq || op == tac.Ne {
			return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: boolToUint64(op == tac.Ne)}}, true
		}
		if op == tac.Lt || op == tac.Le || op == tac.Gt || op == tac.Ge {
			return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: 0}}, true
		}
		return tac.Const{}, false
	}
	switch op {
	case tac.Add:
		return tac.Const{Ty: l.Ty, C: symtab.ScalarConst{Type: l.Ty, Double: a + b}}, true
	case tac.Sub:
		return tac.Const{Ty: l.Ty, C: symtab.ScalarConst{Type: l.Ty, Double: a - b}}, true
	case tac.Mul:
		return tac.Const{Ty: l.Ty, C: symtab.ScalarConst{Type: l.Ty, Double: a * b}}, true
	case tac.Div:
		return tac.Const{Ty: l.Ty, C: symtab.ScalarConst{Type: l.Ty, Double: a / b}}, true
	case tac.Lt, tac.Le, tac.Gt, tac.Ge, tac.Eq, tac.Ne:
		var truth bool
		switch op {
		case tac.Lt:
			truth = a < b
		case tac.Le:
			truth = a <= b
		case tac.Gt:
			truth = a > b
		case tac.Ge:
			truth = a >= b
		case tac.Eq:
			truth = a == b
		default:
			truth = a != b
		}
		return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: boolToUint64(truth)}}, true
	default:
		return tac.Const{}, false
	}
}

func evalUnary(op tac.UnOp, src tac.Const) (tac.Const, bool) {
	if src.Ty.Kind() == types.KindDouble {
		switch op {
		case tac.Neg:
			return tac.Const{Ty: src.Ty, C: symtab.ScalarConst{Type: src.Ty, Double: -src.C.Double}}, true
		case tac.Not:
			return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: boolToUint64(src.C.Double == 0)}}, true
		default:
			return tac.Const{}, false
		}
	}
	it, ok := src.Ty.(types.Int)
	if !ok {
		return tac.Const{}, false
	}
	switch op {
	case tac.Neg:
		v := maskTo(it.Width, it.Signed, uint64(-int64(src.C.Int)))
		return tac.Const{Ty: src.Ty, C: symtab.ScalarConst{Type: src.Ty, Int: v}}, true
	case tac.BitNot:
		v := maskTo(it.Width, it.Signed, ^src.C.Int)
		return tac.Const{Ty: src.Ty, C: symtab.ScalarConst{Type: src.Ty, Int: v}}, true
	case tac.Not:
		return tac.Const{Ty: types.Int{Width: 4, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: boolToUint64(src.C.Int == 0)}}, true
	default:
		return tac.Const{}, false
	}
}
