package regalloc

import (
	"github.com/samber/lo"

	"github.com/cc-core/cc/internal/asmir"
)

// callClobberedGP and callClobberedXMM list the caller-saved registers
// a `call` instruction is free to overwrite; any pseudoregister still
// live across a call must avoid being colored into one of these (spec
// §4.5's interference-graph treatment of precolored nodes).
var callClobberedGP = []asmir.PhysReg{asmir.AX, asmir.CX, asmir.DX, asmir.SI, asmir.DI, asmir.R8, asmir.R9, asmir.R10, asmir.R11}
var callClobberedXMM = []asmir.PhysReg{
	asmir.XMM0, asmir.XMM1, asmir.XMM2, asmir.XMM3, asmir.XMM4, asmir.XMM5, asmir.XMM6, asmir.XMM7,
	asmir.XMM8, asmir.XMM9, asmir.XMM10, asmir.XMM11, asmir.XMM12, asmir.XMM13,
}

func regOperand(r asmir.PhysReg) asmir.Operand { return asmir.Reg{Reg: r} }

func regOperands(rs []asmir.PhysReg) []asmir.Operand {
	return lo.Map(rs, func(r asmir.PhysReg, _ int) asmir.Operand { return regOperand(r) })
}

// defsUses reports which top-level operands an instruction reads and
// which it writes. Only Pseudo and Reg operands matter to liveness;
// Mem/Indexed always name an already-physical base (codegen never
// nests a pseudoregister inside a memory operand), so neither
// contributes an interference node on its own.
func defsUses(instr asmir.Instr) (defs, uses []asmir.Operand) {
	switch i := instr.(type) {
	case asmir.Mov:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.MovZX:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.MovSX:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.Lea:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.Add:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.Sub:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.And:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.Or:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.Xor:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.Shl:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, regOperand(asmir.CX)}
	case asmir.Sar:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, regOperand(asmir.CX)}
	case asmir.Shr:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, regOperand(asmir.CX)}
	case asmir.IMul:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.IDiv:
		return []asmir.Operand{regOperand(asmir.AX), regOperand(asmir.DX)},
			[]asmir.Operand{i.Src, regOperand(asmir.AX), regOperand(asmir.DX)}
	case asmir.Div:
		return []asmir.Operand{regOperand(asmir.AX), regOperand(asmir.DX)},
			[]asmir.Operand{i.Src, regOperand(asmir.AX), regOperand(asmir.DX)}
	case asmir.Cdq:
		return []asmir.Operand{regOperand(asmir.DX)}, []asmir.Operand{regOperand(asmir.AX)}
	case asmir.Neg:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst}
	case asmir.Not:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst}
	case asmir.Cmp:
		return nil, []asmir.Operand{i.Src, i.Dst}
	case asmir.Test:
		return nil, []asmir.Operand{i.Src, i.Dst}
	case asmir.SetCC:
		return []asmir.Operand{i.Dst}, nil
	case asmir.Call:
		defs := append(regOperands(callClobberedGP), regOperands(callClobberedXMM)...)
		return defs, nil
	case asmir.Ret:
		return nil, []asmir.Operand{regOperand(asmir.AX), regOperand(asmir.XMM0)}
	case asmir.Push:
		return nil, []asmir.Operand{i.Src}
	case asmir.Pop:
		return []asmir.Operand{i.Dst}, nil
	case asmir.MovSD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.AddSD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.SubSD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.MulSD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.DivSD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.CvtTSD2SI:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.CvtSI2SD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Src}
	case asmir.XorPD:
		return []asmir.Operand{i.Dst}, []asmir.Operand{i.Dst, i.Src}
	case asmir.ComISD:
		return nil, []asmir.Operand{i.Src, i.Dst}
	default:
		return nil, nil
	}
}

// mapOperands rewrites every top-level Src/Dst-shaped operand of
// instr through f, used both to substitute a colored Pseudo for a
// Reg/StackSlot and, during the spill rewrite, to redirect a spilled
// pseudo's uses and defs to a fresh temporary register.
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
