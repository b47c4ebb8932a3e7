package fixup

import "github.com/cc-core/cc/internal/asmir"

// isMem reports whether op addresses memory rather than naming a
// register or an immediate - the condition every legalization rule in
// legalize.go keys off.
func isMem(op asmir.Operand) bool {
	switch op.(type) {
	case asmir.Mem, asmir.Indexed, asmir.PCRel:
		return true
	default:
		return false
	}
}

// fitsInt32 reports whether v can be encoded as x86's sign-extended
// 32-bit immediate form, the only immediate width a 64-bit-operand-size
// instruction supports (outside of `movabs`, which only targets a
// register).
func fitsInt32(v int64) bool {
	return v >= -(1<<31) && v < 1<<31
}

// mapOperands rewrites every top-level Src/Dst-shaped operand of instr
// through f. Mirrors internal/regalloc's operand switch; kept as a
// separate copy here since fixup runs as its own pass over the same
// instruction family and has no dependency on internal/regalloc.
func mapOperands(instr asmir.Instr, f func(asmir.Operand) asmir.Operand) asmir.Instr {
	switch i := instr.(type) {
	case asmir.Mov:
		return asmir.Mov{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.MovZX:
		return asmir.MovZX{SrcWidth: i.SrcWidth, DstWidth: i.DstWidth, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.MovSX:
		return asmir.MovSX{SrcWidth: i.SrcWidth, DstWidth: i.DstWidth, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Lea:
		return asmir.Lea{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Add:
		return asmir.Add{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Sub:
		return asmir.Sub{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.And:
		return asmir.And{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Or:
		return asmir.Or{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Xor:
		return asmir.Xor{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Shl:
		return asmir.Shl{Width: i.Width, Dst: f(i.Dst)}
	case asmir.Sar:
		return asmir.Sar{Width: i.Width, Dst: f(i.Dst)}
	case asmir.Shr:
		return asmir.Shr{Width: i.Width, Dst: f(i.Dst)}
	case asmir.IMul:
		return asmir.IMul{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.IDiv:
		return asmir.IDiv{Width: i.Width, Src: f(i.Src)}
	case asmir.Div:
		return asmir.Div{Width: i.Width, Src: f(i.Src)}
	case asmir.Neg:
		return asmir.Neg{Width: i.Width, Dst: f(i.Dst)}
	case asmir.Not:
		return asmir.Not{Width: i.Width, Dst: f(i.Dst)}
	case asmir.Cmp:
		return asmir.Cmp{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.Test:
		return asmir.Test{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.SetCC:
		return asmir.SetCC{Cond: i.Cond, Dst: f(i.Dst)}
	case asmir.Push:
		return asmir.Push{Src: f(i.Src)}
	case asmir.Pop:
		return asmir.Pop{Dst: f(i.Dst)}
	case asmir.MovSD:
		return asmir.MovSD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.AddSD:
		return asmir.AddSD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.SubSD:
		return asmir.SubSD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.MulSD:
		return asmir.MulSD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.DivSD:
		return asmir.DivSD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.CvtTSD2SI:
		return asmir.CvtTSD2SI{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.CvtSI2SD:
		return asmir.CvtSI2SD{Width: i.Width, Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.XorPD:
		return asmir.XorPD{Src: f(i.Src), Dst: f(i.Dst)}
	case asmir.ComISD:
		return asmir.ComISD{Src: f(i.Src), Dst: f(i.Dst)}
	default:
		return instr
	}
}
