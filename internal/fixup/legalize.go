package fixup

import "github.com/cc-core/cc/internal/asmir"

// legalizeInstr expands instr into one or more instructions the
// system assembler accepts: no instruction leaving this function ever
// names two memory-class operands, a too-wide immediate, or an SSE
// arithmetic, comparison or conversion instruction with a memory
// destination (a movsd store to memory is left as it is). A Lea with a
// memory destination is staged through ScratchGP, since lea can only
// write a register.
//
// Shl/Sar/Shr/Neg/Not/SetCC/Jmp/JmpCC/Call/Ret/Label/Comment/
// Global/Cdq/AllocateStack/DeallocateStack need no legalization: x86
// already allows everything codegen and internal/regalloc can produce
// for them (a memory destination included). IDiv/Div likewise need
// none - codegen always stages the divisor through a register before
// emitting one.
func legalizeInstr(instr asmir.Instr) []asmir.Instr {
	switch i := instr.(type) {
	case asmir.Mov:
		return legalizeMov(i)
	case asmir.MovZX:
		if isMem(i.Src) && isMem(i.Dst) {
			load := asmir.Mov{Width: i.SrcWidth, Src: i.Src, Dst: scratchGP()}
			return []asmir.Instr{load, asmir.MovZX{SrcWidth: i.SrcWidth, DstWidth: i.DstWidth, Src: scratchGP(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	case asmir.MovSX:
		if isMem(i.Src) && isMem(i.Dst) {
			load := asmir.Mov{Width: i.SrcWidth, Src: i.Src, Dst: scratchGP()}
			return []asmir.Instr{load, asmir.MovSX{SrcWidth: i.SrcWidth, DstWidth: i.DstWidth, Src: scratchGP(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	case asmir.Add:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Add{Width: i.Width, Src: s, Dst: d} })
	case asmir.Sub:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Sub{Width: i.Width, Src: s, Dst: d} })
	case asmir.And:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.And{Width: i.Width, Src: s, Dst: d} })
	case asmir.Or:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Or{Width: i.Width, Src: s, Dst: d} })
	case asmir.Xor:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Xor{Width: i.Width, Src: s, Dst: d} })
	case asmir.Cmp:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Cmp{Width: i.Width, Src: s, Dst: d} })
	case asmir.Test:
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.Test{Width: i.Width, Src: s, Dst: d} })
	case asmir.Lea:
		if isMem(i.Dst) {
			return []asmir.Instr{asmir.Lea{Src: i.Src, Dst: scratchGP()}, asmir.Mov{Width: 8, Src: scratchGP(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	case asmir.IMul:
		return legalizeIMul(i)
	case asmir.Push:
		if r, ok := i.Src.(asmir.Reg); ok && r.Reg.Class() == asmir.XMM {
			return expandXMMPush(r.Reg)
		}
		return []asmir.Instr{i}
	case asmir.Pop:
		if r, ok := i.Dst.(asmir.Reg); ok && r.Reg.Class() == asmir.XMM {
			return expandXMMPop(r.Reg)
		}
		return []asmir.Instr{i}
	case asmir.MovSD:
		if isMem(i.Src) && isMem(i.Dst) {
			load := asmir.MovSD{Src: i.Src, Dst: scratchXMM()}
			return []asmir.Instr{load, asmir.MovSD{Src: scratchXMM(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	case asmir.AddSD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.AddSD{Src: s, Dst: d} })
	case asmir.SubSD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.SubSD{Src: s, Dst: d} })
	case asmir.MulSD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.MulSD{Src: s, Dst: d} })
	case asmir.DivSD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.DivSD{Src: s, Dst: d} })
	case asmir.XorPD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.XorPD{Src: s, Dst: d} })
	case asmir.ComISD:
		return legalizeSSEArith(i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.ComISD{Src: s, Dst: d} })
	case asmir.CvtSI2SD:
		if isMem(i.Dst) {
			conv := asmir.CvtSI2SD{Width: i.Width, Src: i.Src, Dst: scratchXMM()}
			return []asmir.Instr{conv, asmir.MovSD{Src: scratchXMM(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	case asmir.CvtTSD2SI:
		if isMem(i.Dst) {
			conv := asmir.CvtTSD2SI{Width: i.Width, Src: i.Src, Dst: scratchGP()}
			return []asmir.Instr{conv, asmir.Mov{Width: i.Width, Src: scratchGP(), Dst: i.Dst}}
		}
		return []asmir.Instr{i}
	default:
		return []asmir.Instr{instr}
	}
}

func scratchGP() asmir.Operand  { return asmir.Reg{Reg: asmir.ScratchGP} }
func scratchGP2() asmir.Operand { return asmir.Reg{Reg: asmir.ScratchGP2} }
func scratchXMM() asmir.Operand { return asmir.Reg{Reg: asmir.ScratchXMM} }

// legalizeMov handles Mov's extra case beyond legalizeArith: a 64-bit
// immediate that doesn't fit a sign-extended 32-bit encoding still has
// a direct `movabs $imm64, reg` form when the destination is already a
// register, so only a memory destination needs staging.
func legalizeMov(i asmir.Mov) []asmir.Instr {
	if imm, ok := i.Src.(asmir.Imm); ok && i.Width == 8 && !fitsInt32(imm.Value) && isMem(i.Dst) {
		load := asmir.Mov{Width: 8, Src: imm, Dst: scratchGP()}
		return []asmir.Instr{load, asmir.Mov{Width: 8, Src: scratchGP(), Dst: i.Dst}}
	}
	if isMem(i.Src) && isMem(i.Dst) {
		load := asmir.Mov{Width: i.Width, Src: i.Src, Dst: scratchGP()}
		return []asmir.Instr{load, asmir.Mov{Width: i.Width, Src: scratchGP(), Dst: i.Dst}}
	}
	return []asmir.Instr{i}
}

// legalizeArith is the shared rule for every two-operand GP
// instruction besides Mov: a too-wide 64-bit immediate is staged
// through ScratchGP first (these instructions have no movabs-style
// full-width immediate form regardless of destination kind), then a
// memory/memory operand pair is legalized by staging Src through
// ScratchGP.
func legalizeArith(width int, src, dst asmir.Operand, rebuild func(src, dst asmir.Operand) asmir.Instr) []asmir.Instr {
	var pre []asmir.Instr
	if imm, ok := src.(asmir.Imm); ok && width == 8 && !fitsInt32(imm.Value) {
		pre = append(pre, asmir.Mov{Width: 8, Src: imm, Dst: scratchGP()})
		src = scratchGP()
	}
	if isMem(src) && isMem(dst) {
		pre = append(pre, asmir.Mov{Width: width, Src: src, Dst: scratchGP()})
		src = scratchGP()
	}
	return append(pre, rebuild(src, dst))
}

// legalizeIMul handles the one GP instruction whose real encoding
// requires a register destination (`imul r, r/m`): a memory Dst is
// staged through ScratchGP and stored back; if Src is also memory it
// needs its own scratch register since ScratchGP is already holding
// Dst's value.
func legalizeIMul(i asmir.IMul) []asmir.Instr {
	if !isMem(i.Dst) {
		return legalizeArith(i.Width, i.Src, i.Dst, func(s, d asmir.Operand) asmir.Instr { return asmir.IMul{Width: i.Width, Src: s, Dst: d} })
	}
	var pre []asmir.Instr
	pre = append(pre, asmir.Mov{Width: i.Width, Src: i.Dst, Dst: scratchGP()})
	src := i.Src
	if imm, ok := src.(asmir.Imm); ok && i.Width == 8 && !fitsInt32(imm.Value) {
		pre = append(pre, asmir.Mov{Width: 8, Src: imm, Dst: scratchGP2()})
		src = scratchGP2()
	} else if isMem(src) {
		pre = append(pre, asmir.Mov{Width: i.Width, Src: src, Dst: scratchGP2()})
		src = scratchGP2()
	}
	pre = append(pre, asmir.IMul{Width: i.Width, Src: src, Dst: scratchGP()})
	pre = append(pre, asmir.Mov{Width: i.Width, Src: scratchGP(), Dst: i.Dst})
	return pre
}

// legalizeSSEArith handles every scalar-double instruction whose real
// encoding requires an XMM register destination (everything but
// MovSD): a memory Dst is staged through ScratchXMM and stored back.
func legalizeSSEArith(src, dst asmir.Operand, rebuild func(src, dst asmir.Operand) asmir.Instr) []asmir.Instr {
	if !isMem(dst) {
		return []asmir.Instr{rebuild(src, dst)}
	}
	load := asmir.MovSD{Src: dst, Dst: scratchXMM()}
	op := rebuild(src, scratchXMM())
	store := asmir.MovSD{Src: scratchXMM(), Dst: dst}
	return []asmir.Instr{load, op, store}
}

// expandXMMPush/expandXMMPop implement push/pop of an XMM register,
// which x86 has no direct encoding for, as an explicit stack
// adjustment plus a scalar-double move.
func expandXMMPush(r asmir.PhysReg) []asmir.Instr {
	return []asmir.Instr{
		asmir.Sub{Width: 8, Src: asmir.Imm{Value: 8}, Dst: asmir.Reg{Reg: asmir.SP}},
		asmir.MovSD{Src: asmir.Reg{Reg: r}, Dst: asmir.Mem{Base: asmir.SP, Disp: 0}},
	}
}

func expandXMMPop(r asmir.PhysReg) []asmir.Instr {
	return []asmir.Instr{
		asmir.MovSD{Src: asmir.Mem{Base: asmir.SP, Disp: 0}, Dst: asmir.Reg{Reg: r}},
		asmir.Add{Width: 8, Src: asmir.Imm{Value: 8}, Dst: asmir.Reg{Reg: asmir.SP}},
	}
}
