package codegen

import (
	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

func (f *fb) operand(v tac.Value) asmir.Operand {
	switch val := v.(type) {
	case tac.Const:
		if val.Ty.Kind() == types.KindDouble {
			return f.floatConst(val.C.Double)
		}
		if val.C.Label != "" {
			return asmir.PCRel{Label: val.C.Label}
		}
		return asmir.Imm{Value: int64(val.C.Int)}
	case tac.Var:
		return f.slot[val.Symbol]
	default:
		return asmir.Imm{Value: 0}
	}
}

func (f *fb) isDouble(v tac.Value) bool { return v.Type().Kind() == types.KindDouble }

func (f *fb) lowerInstr(instr tac.Instr) {
	switch i := instr.(type) {
	case tac.Label:
		f.emit(asmir.Label{Name: i.Name})
	case tac.Jump:
		f.emit(asmir.Jmp{Target: i.Target})
	case tac.JumpIfZero:
		f.lowerBranch(i.Cond, i.Target, true)
	case tac.JumpIfNotZero:
		f.lowerBranch(i.Cond, i.Target, false)
	case tac.Copy:
		f.lowerCopy(i.Dst, i.Src)
	case tac.GetAddress:
		f.emit(asmir.Lea{Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.Load:
		f.lowerLoad(i)
	case tac.Store:
		f.lowerStore(i)
	case tac.AddPtr:
		f.lowerAddPtr(i)
	case tac.CopyToOffset:
		f.lowerCopyToOffset(i)
	case tac.CopyFromOffset:
		f.lowerCopyFromOffset(i)
	case tac.ZeroOut:
		f.lowerZeroOut(i)
	case tac.Unary:
		f.lowerUnary(i)
	case tac.Binary:
		f.lowerBinary(i)
	case tac.Truncate:
		f.emit(asmir.Mov{Width: width(i.Dst.Type()), Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.SignExtend:
		f.emit(asmir.MovSX{SrcWidth: width(i.Src.Type()), DstWidth: width(i.Dst.Type()), Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.ZeroExtend:
		f.emit(asmir.MovZX{SrcWidth: width(i.Src.Type()), DstWidth: width(i.Dst.Type()), Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.DoubleToInt:
		f.emit(asmir.CvtTSD2SI{Width: width(i.Dst.Type()), Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.DoubleToUInt:
		f.lowerDoubleToUInt(i)
	case tac.IntToDouble:
		f.emit(asmir.CvtSI2SD{Width: width(i.Src.Type()), Src: f.operand(i.Src), Dst: f.operand(i.Dst)})
	case tac.UIntToDouble:
		f.lowerUIntToDouble(i)
	case tac.Call:
		f.lowerCall(i)
	case tac.Return:
		f.lowerReturn(i)
	default:
		f.emit(asmir.Comment{Text: "unsupported TAC instruction"})
	}
}

func (f *fb) lowerCopy(dst, src tac.Value) {
	if isAggregate(dst.Type()) {
		f.copyAggregate(f.operand(dst), f.operand(src), types.SizeOf(dst.Type()))
		return
	}
	if f.isDouble(dst) {
		f.emit(asmir.MovSD{Src: f.operand(src), Dst: f.operand(dst)})
		return
	}
	f.emit(asmir.Mov{Width: width(dst.Type()), Src: f.operand(src), Dst: f.operand(dst)})
}

// copyAggregate moves a whole-object value eightbyte-by-eightbyte
// through the GP scratch register; internal/fixup never needs to see
// a block-copy operation, only the scalar moves this expands into.
func (f *fb) copyAggregate(dst, src asmir.Operand, size int64) {
	var off int64
	for off < size {
		f.emit(asmir.Mov{Width: 8, Src: offsetOperand(src, off), Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: offsetOperand(dst, off)})
		off += 8
	}
}

func offsetOperand(o asmir.Operand, off int64) asmir.Operand {
	if m, ok := o.(asmir.Mem); ok {
		return asmir.Mem{Base: m.Base, Disp: m.Disp + off}
	}
	return o
}

func (f *fb) lowerLoad(i tac.Load) {
	ptr := f.operand(i.Src)
	if f.isDouble(i.Dst) {
		f.emit(asmir.Mov{Width: 8, Src: ptr, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.MovSD{Src: asmir.Mem{Base: asmir.ScratchGP, Disp: 0}, Dst: f.operand(i.Dst)})
		return
	}
	w := width(i.Dst.Type())
	f.emit(asmir.Mov{Width: 8, Src: ptr, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	f.emit(asmir.Mov{Width: w, Src: asmir.Mem{Base: asmir.ScratchGP, Disp: 0}, Dst: f.operand(i.Dst)})
}

func (f *fb) lowerStore(i tac.Store) {
	ptr := f.operand(i.Dst)
	f.emit(asmir.Mov{Width: 8, Src: ptr, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	if f.isDouble(i.Src) {
		f.emit(asmir.MovSD{Src: f.operand(i.Src), Dst: asmir.Mem{Base: asmir.ScratchGP, Disp: 0}})
		return
	}
	f.emit(asmir.Mov{Width: width(i.Src.Type()), Src: f.operand(i.Src), Dst: asmir.Mem{Base: asmir.ScratchGP, Disp: 0}})
}

func (f *fb) lowerAddPtr(i tac.AddPtr) {
	base := f.operand(i.Base)
	f.emit(asmir.Mov{Width: 8, Src: base, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	if c, ok := i.Index.(tac.Const); ok {
		f.emit(asmir.Add{Width: 8, Src: asmir.Imm{Value: int64(c.C.Int) * i.Scale}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	} else {
		f.emit(asmir.Mov{Width: 8, Src: f.operand(i.Index), Dst: asmir.Reg{Reg: asmir.ScratchGP2}})
		if i.Scale != 1 {
			f.emit(asmir.IMul{Width: 8, Src: asmir.Imm{Value: i.Scale}, Dst: asmir.Reg{Reg: asmir.ScratchGP2}})
		}
		f.emit(asmir.Add{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP2}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	}
	f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: f.operand(i.Dst)})
}

func (f *fb) lowerCopyToOffset(i tac.CopyToOffset) {
	dst := offsetOperand(f.operand(i.Dst), i.Offset)
	if f.isDouble(i.Src) {
		f.emit(asmir.MovSD{Src: f.operand(i.Src), Dst: dst})
		return
	}
	if isAggregate(i.Src.Type()) {
		f.copyAggregate(dst, f.operand(i.Src), types.SizeOf(i.Src.Type()))
		return
	}
	f.emit(asmir.Mov{Width: width(i.Src.Type()), Src: f.operand(i.Src), Dst: dst})
}

func (f *fb) lowerCopyFromOffset(i tac.CopyFromOffset) {
	src := offsetOperand(f.operand(i.Src), i.Offset)
	if f.isDouble(i.Dst) {
		f.emit(asmir.MovSD{Src: src, Dst: f.operand(i.Dst)})
		return
	}
	if isAggregate(i.Dst.Type()) {
		f.copyAggregate(f.operand(i.Dst), src, types.SizeOf(i.Dst.Type()))
		return
	}
	f.emit(asmir.Mov{Width: width(i.Dst.Type()), Src: src, Dst: f.operand(i.Dst)})
}

func (f *fb) lowerZeroOut(i tac.ZeroOut) {
	base := f.operand(i.Dst)
	var off int64
	for off+8 <= i.Length {
		f.emit(asmir.Mov{Width: 8, Src: asmir.Imm{Value: 0}, Dst: offsetOperand(base, i.Offset+off)})
		off += 8
	}
	for off < i.Length {
		f.emit(asmir.Mov{Width: 1, Src: asmir.Imm{Value: 0}, Dst: offsetOperand(base, i.Offset+off)})
		off++
	}
}

func (f *fb) lowerUnary(i tac.Unary) {
	dst := f.operand(i.Dst)
	if f.isDouble(i.Src) {
		f.emit(asmir.MovSD{Src: f.operand(i.Src), Dst: dst})
		switch i.Op {
		case tac.Neg:
			signBit := f.floatSignBit()
			f.emit(asmir.XorPD{Src: signBit, Dst: dst})
		default:
			f.emit(asmir.Comment{Text: "unsupported unary op on double"})
		}
		return
	}
	w := width(i.Dst.Type())
	f.emit(asmir.Mov{Width: w, Src: f.operand(i.Src), Dst: dst})
	switch i.Op {
	case tac.Neg:
		f.emit(asmir.Neg{Width: w, Dst: dst})
	case tac.BitNot:
		f.emit(asmir.Not{Width: w, Dst: dst})
	case tac.Not:
		f.emit(asmir.Cmp{Width: w, Src: asmir.Imm{Value: 0}, Dst: dst})
		f.emit(asmir.SetCC{Cond: asmir.E, Dst: dst})
		f.emit(asmir.MovZX{SrcWidth: 1, DstWidth: width(i.Dst.Type()), Src: dst, Dst: dst})
	}
}

// floatSignBit pools the single-bit-set constant 1<<63 as a double's
// bit pattern, xorpd's standard sign-flip operand.
func (f *fb) floatSignBit() asmir.Operand {
	const signBitPattern = uint64(1) << 63
	if lbl, ok := f.floatLabels[signBitPattern]; ok {
		return asmir.PCRel{Label: lbl}
	}
	lbl := ".Lsignbit"
	f.floatLabels[signBitPattern] = lbl
	f.floats = append(f.floats, asmir.FloatConst{Label: lbl, Bits: signBitPattern})
	return asmir.PCRel{Label: lbl}
}

func condFor(op tac.BinOp, uns bool) asmir.CondCode {
	switch op {
	case tac.Lt:
		if uns {
			return asmir.B
		}
		return asmir.L
	case tac.Le:
		if uns {
			return asmir.BE
		}
		return asmir.LE
	case tac.Gt:
		if uns {
			return asmir.A
		}
		return asmir.G
	case tac.Ge:
		if uns {
			return asmir.AE
		}
		return asmir.GE
	case tac.Eq:
		return asmir.E
	default:
		return asmir.NE
	}
}

func (f *fb) lowerBinary(i tac.Binary) {
	dst := f.operand(i.Dst)
	if f.isDouble(i.L) || f.isDouble(i.R) {
		f.lowerDoubleBinary(i)
		return
	}
	w := width(i.Dst.Type())
	isCompare := i.Op >= tac.Lt && i.Op <= tac.Ne
	uns := !signed(i.L.Type())

	switch i.Op {
	case tac.Add:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.Add{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.Sub:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.Sub{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.Mul:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.IMul{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.BitAnd:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.And{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.BitOr:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.Or{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.BitXor:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.Xor{Width: w, Src: f.operand(i.R), Dst: dst})
	case tac.Shl, tac.Shr:
		f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: dst})
		f.emit(asmir.Mov{Width: 1, Src: f.operand(i.R), Dst: asmir.Reg{Reg: asmir.CX}})
		if i.Op == tac.Shl {
			f.emit(asmir.Shl{Width: w, Dst: dst})
		} else if uns {
			f.emit(asmir.Shr{Width: w, Dst: dst})
		} else {
			f.emit(asmir.Sar{Width: w, Dst: dst})
		}
	case tac.Div, tac.Mod:
		f.lowerIntDivMod(i, w, uns, dst)
	default:
		if isCompare {
			f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: asmir.Reg{Reg: asmir.ScratchGP}})
			f.emit(asmir.Cmp{Width: w, Src: f.operand(i.R), Dst: asmir.Reg{Reg: asmir.ScratchGP}})
			f.emit(asmir.SetCC{Cond: condFor(i.Op, uns), Dst: dst})
			f.emit(asmir.MovZX{SrcWidth: 1, DstWidth: width(i.Dst.Type()), Src: dst, Dst: dst})
		}
	}
}

func (f *fb) lowerIntDivMod(i tac.Binary, w int, uns bool, dst asmir.Operand) {
	f.emit(asmir.Mov{Width: w, Src: f.operand(i.L), Dst: asmir.Reg{Reg: asmir.AX}})
	divisor := asmir.Operand(asmir.Reg{Reg: asmir.ScratchGP})
	f.emit(asmir.Mov{Width: w, Src: f.operand(i.R), Dst: divisor})
	if uns {
		f.emit(asmir.Xor{Width: w, Src: asmir.Reg{Reg: asmir.DX}, Dst: asmir.Reg{Reg: asmir.DX}})
		f.emit(asmir.Div{Width: w, Src: divisor})
	} else {
		f.emit(asmir.Cdq{Width: w})
		f.emit(asmir.IDiv{Width: w, Src: divisor})
	}
	if i.Op == tac.Div {
		f.emit(asmir.Mov{Width: w, Src: asmir.Reg{Reg: asmir.AX}, Dst: dst})
	} else {
		f.emit(asmir.Mov{Width: w, Src: asmir.Reg{Reg: asmir.DX}, Dst: dst})
	}
}

func (f *fb) lowerDoubleBinary(i tac.Binary) {
	dst := f.operand(i.Dst)
	l, r := f.operand(i.L), f.operand(i.R)
	switch i.Op {
	case tac.Add:
		f.emit(asmir.MovSD{Src: l, Dst: dst})
		f.emit(asmir.AddSD{Src: r, Dst: dst})
	case tac.Sub:
		f.emit(asmir.MovSD{Src: l, Dst: dst})
		f.emit(asmir.SubSD{Src: r, Dst: dst})
	case tac.Mul:
		f.emit(asmir.MovSD{Src: l, Dst: dst})
		f.emit(asmir.MulSD{Src: r, Dst: dst})
	case tac.Div:
		f.emit(asmir.MovSD{Src: l, Dst: dst})
		f.emit(asmir.DivSD{Src: r, Dst: dst})
	default:
		f.lowerDoubleCompare(i.Op, dst, l, r)
	}
}

// lowerDoubleCompare implements spec §4.4's NaN-correct comparison
// lowering: comisd sets PF when either operand is NaN, and a relation
// involving NaN must evaluate false for every ordered operator except
// `!=`, which is true.
func (f *fb) lowerDoubleCompare(op tac.BinOp, dst, l, r asmir.Operand) {
	scratch := asmir.Reg{Reg: asmir.ScratchXMM}
	f.emit(asmir.MovSD{Src: l, Dst: scratch})
	switch op {
	case tac.Eq:
		f.emit(asmir.ComISD{Src: r, Dst: scratch})
		f.emit(asmir.SetCC{Cond: asmir.E, Dst: dst})
		f.emit(asmir.SetCC{Cond: asmir.NP, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.And{Width: 1, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: dst})
	case tac.Ne:
		f.emit(asmir.ComISD{Src: r, Dst: scratch})
		f.emit(asmir.SetCC{Cond: asmir.NE, Dst: dst})
		f.emit(asmir.SetCC{Cond: asmir.P, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.Or{Width: 1, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: dst})
	case tac.Lt:
		f.lowerDoubleOrderedCompare(r, scratch, asmir.A, dst)
	case tac.Le:
		f.lowerDoubleOrderedCompare(r, scratch, asmir.AE, dst)
	case tac.Gt:
		f.emit(asmir.ComISD{Src: r, Dst: scratch})
		f.emit(asmir.SetCC{Cond: asmir.A, Dst: dst})
	case tac.Ge:
		f.emit(asmir.ComISD{Src: r, Dst: scratch})
		f.emit(asmir.SetCC{Cond: asmir.AE, Dst: dst})
	}
	f.emit(asmir.MovZX{SrcWidth: 1, DstWidth: 4, Src: dst, Dst: dst})
}

// lowerDoubleOrderedCompare emits `comisd l, r` (reversed operand
// order) so that `seta`/`setae` read l<r / l<=r directly off CF,
// which is 0 on an unordered (NaN) compare and so correctly yields
// false without a separate parity check.
func (f *fb) lowerDoubleOrderedCompare(r, scratch asmir.Operand, cond asmir.CondCode, dst asmir.Operand) {
	f.emit(asmir.ComISD{Src: scratch, Dst: r})
	f.emit(asmir.SetCC{Cond: cond, Dst: dst})
}

func (f *fb) lowerBranch(cond tac.Value, target string, ifZero bool) {
	if f.isDouble(cond) {
		v := f.operand(cond)
		f.emit(asmir.MovSD{Src: v, Dst: asmir.Reg{Reg: asmir.ScratchXMM}})
		zero := f.floatConst(0)
		f.emit(asmir.ComISD{Src: zero, Dst: asmir.Reg{Reg: asmir.ScratchXMM}})
		if ifZero {
			skip := f.label("skipz")
			f.emit(asmir.JmpCC{Cond: asmir.P, Target: skip})
			f.emit(asmir.JmpCC{Cond: asmir.E, Target: target})
			f.emit(asmir.Label{Name: skip})
		} else {
			f.emit(asmir.JmpCC{Cond: asmir.P, Target: target})
			f.emit(asmir.JmpCC{Cond: asmir.NE, Target: target})
		}
		return
	}
	w := width(cond.Type())
	f.emit(asmir.Cmp{Width: w, Src: asmir.Imm{Value: 0}, Dst: f.operand(cond)})
	if ifZero {
		f.emit(asmir.JmpCC{Cond: asmir.E, Target: target})
	} else {
		f.emit(asmir.JmpCC{Cond: asmir.NE, Target: target})
	}
}

func (f *fb) lowerReturn(i tac.Return) {
	if i.Value == nil {
		f.emit(asmir.Jmp{Target: f.epilogueLabel})
		return
	}
	if f.retByPointer {
		ptr := f.slot[f.retPointerSym]
		f.emit(asmir.Mov{Width: 8, Src: ptr, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.copyAggregate(asmir.Mem{Base: asmir.ScratchGP, Disp: 0}, f.operand(i.Value), types.SizeOf(i.Value.Type()))
		f.emit(asmir.Mov{Width: 8, Src: ptr, Dst: asmir.Reg{Reg: asmir.AX}})
		f.emit(asmir.Jmp{Target: f.epilogueLabel})
		return
	}
	if f.isDouble(i.Value) {
		f.emit(asmir.MovSD{Src: f.operand(i.Value), Dst: asmir.Reg{Reg: asmir.XMM0}})
	} else {
		f.emit(asmir.Mov{Width: width(i.Value.Type()), Src: f.operand(i.Value), Dst: asmir.Reg{Reg: asmir.AX}})
	}
	f.emit(asmir.Jmp{Target: f.epilogueLabel})
}

// lowerDoubleToUInt implements the classic subtract-2^63 adjustment:
// cvttsd2si only handles conversions that fit in a signed 64-bit
// range, so a value at or above 2^63 is brought into range by
// subtracting 2^63 first and then restoring the high bit afterward.
func (f *fb) lowerDoubleToUInt(i tac.DoubleToUInt) {
	src := f.operand(i.Src)
	dst := f.operand(i.Dst)
	threshold := f.floatConst(9223372036854775808.0) // 2^63
	below := f.label("ultod_below")
	done := f.label("ultod_done")

	f.emit(asmir.MovSD{Src: src, Dst: asmir.Reg{Reg: asmir.ScratchXMM}})
	f.emit(asmir.ComISD{Src: threshold, Dst: asmir.Reg{Reg: asmir.ScratchXMM}})
	f.emit(asmir.JmpCC{Cond: asmir.B, Target: below})

	// value >= 2^63: subtract the threshold, truncate (now in signed
	// range), then flip the sign bit back on to restore the magnitude.
	f.emit(asmir.SubSD{Src: threshold, Dst: asmir.Reg{Reg: asmir.ScratchXMM}})
	f.emit(asmir.CvtTSD2SI{Width: width(i.Dst.Type()), Src: asmir.Reg{Reg: asmir.ScratchXMM}, Dst: dst})
	f.emit(asmir.Mov{Width: 8, Src: asmir.Imm{Value: int64(-9223372036854775808)}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	f.emit(asmir.Xor{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: dst})
	f.emit(asmir.Jmp{Target: done})

	f.emit(asmir.Label{Name: below})
	f.emit(asmir.CvtTSD2SI{Width: width(i.Dst.Type()), Src: asmir.Reg{Reg: asmir.ScratchXMM}, Dst: dst})

	f.emit(asmir.Label{Name: done})
}

// lowerUIntToDouble widens the unsigned source to a wider signed
// register (so cvtsi2sd's always-signed semantics read it correctly)
// when the value might have its top bit set.
func (f *fb) lowerUIntToDouble(i tac.UIntToDouble) {
	src := f.operand(i.Src)
	dst := f.operand(i.Dst)
	srcW := width(i.Src.Type())
	if srcW < 8 {
		f.emit(asmir.MovZX{SrcWidth: srcW, DstWidth: 8, Src: src, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.CvtSI2SD{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: dst})
		return
	}
	// Full 64-bit unsigned: split into the signed range plus a
	// low-bit-preserving half so no precision is lost versus a direct
	// (signed-only) cvtsi2sd.
	even := f.label("uitod_even")
	done := f.label("uitod_done")
	f.emit(asmir.Mov{Width: 8, Src: src, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	f.emit(asmir.Test{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	f.emit(asmir.JmpCC{Cond: asmir.GE, Target: even})

	f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: asmir.Reg{Reg: asmir.ScratchGP2}})
	f.emit(asmir.Mov{Width: 1, Src: asmir.Imm{Value: 1}, Dst: asmir.Reg{Reg: asmir.CX}})
	f.emit(asmir.Shr{Width: 8, Dst: asmir.Reg{Reg: asmir.ScratchGP2}})
	f.emit(asmir.And{Width: 8, Src: asmir.Imm{Value: 1}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
	f.emit(asmir.Or{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: asmir.Reg{Reg: asmir.ScratchGP2}})
	f.emit(asmir.CvtSI2SD{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP2}, Dst: dst})
	f.emit(asmir.AddSD{Src: dst, Dst: dst})
	f.emit(asmir.Jmp{Target: done})

	f.emit(asmir.Label{Name: even})
	f.emit(asmir.CvtSI2SD{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: dst})

	f.emit(asmir.Label{Name: done})
}
