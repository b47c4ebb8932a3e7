package emit

import (
	"fmt"
	"strings"

	"github.com/cc-core/cc/internal/asmir"
)

// suffix is the AT&T mnemonic width suffix (movq/movl/movw/movb, ...).
func suffix(width int) string {
	switch width {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "l"
	default:
		return "q"
	}
}

// writeInstr renders one instruction as one or more assembly lines,
// AT&T operand order (`op src, dst`). Labels are written without the
// leading tab; every other line, comments and .globl included, gets one.
func writeInstr(b *strings.Builder, instr asmir.Instr) {
	switch i := instr.(type) {
	case asmir.Label:
		fmt.Fprintf(b, "%s:\n", symbolName(i.Name))
	case asmir.Comment:
		fmt.Fprintf(b, "\t# %s\n", i.Text)
	case asmir.Global:
		fmt.Fprintf(b, "\t.globl %s\n", symbolName(i.Name))
	case asmir.Mov:
		two(b, "mov"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.MovZX:
		if i.SrcWidth == 4 && i.DstWidth == 8 {
			// No movzlq mnemonic exists: a plain 32-bit mov already
			// zeroes the destination register's upper 32 bits.
			fmt.Fprintf(b, "\tmovl %s, %s\n", operand(i.Src, 4), operand(i.Dst, 4))
		} else {
			fmt.Fprintf(b, "\t%s %s, %s\n", zxMnemonic("movz", i.SrcWidth, i.DstWidth), operand(i.Src, i.SrcWidth), operand(i.Dst, i.DstWidth))
		}
	case asmir.MovSX:
		fmt.Fprintf(b, "\t%s %s, %s\n", zxMnemonic("movs", i.SrcWidth, i.DstWidth), operand(i.Src, i.SrcWidth), operand(i.Dst, i.DstWidth))
	case asmir.Lea:
		fmt.Fprintf(b, "\tleaq %s, %s\n", operand(i.Src, 8), operand(i.Dst, 8))
	case asmir.Add:
		two(b, "add"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.Sub:
		two(b, "sub"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.And:
		two(b, "and"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.Or:
		two(b, "or"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.Xor:
		two(b, "xor"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.Shl:
		fmt.Fprintf(b, "\tshl%s %%cl, %s\n", suffix(i.Width), operand(i.Dst, i.Width))
	case asmir.Sar:
		fmt.Fprintf(b, "\tsar%s %%cl, %s\n", suffix(i.Width), operand(i.Dst, i.Width))
	case asmir.Shr:
		fmt.Fprintf(b, "\tshr%s %%cl, %s\n", suffix(i.Width), operand(i.Dst, i.Width))
	case asmir.IMul:
		two(b, "imul"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.IDiv:
		fmt.Fprintf(b, "\tidiv%s %s\n", suffix(i.Width), operand(i.Src, i.Width))
	case asmir.Div:
		fmt.Fprintf(b, "\tdiv%s %s\n", suffix(i.Width), operand(i.Src, i.Width))
	case asmir.Cdq:
		if i.Width == 8 {
			b.WriteString("\tcqto\n")
		} else {
			b.WriteString("\tcltd\n")
		}
	case asmir.Neg:
		fmt.Fprintf(b, "\tneg%s %s\n", suffix(i.Width), operand(i.Dst, i.Width))
	case asmir.Not:
		fmt.Fprintf(b, "\tnot%s %s\n", suffix(i.Width), operand(i.Dst, i.Width))
	case asmir.Cmp:
		two(b, "cmp"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.Test:
		two(b, "test"+suffix(i.Width), i.Width, i.Src, i.Dst)
	case asmir.SetCC:
		fmt.Fprintf(b, "\tset%s %s\n", i.Cond, operand(i.Dst, 1))
	case asmir.Jmp:
		fmt.Fprintf(b, "\tjmp %s\n", symbolName(i.Target))
	case asmir.JmpCC:
		fmt.Fprintf(b, "\tj%s %s\n", i.Cond, symbolName(i.Target))
	case asmir.Call:
		fmt.Fprintf(b, "\tcall %s\n", callTarget(i.Target))
	case asmir.Ret:
		b.WriteString("\tret\n")
	case asmir.Push:
		fmt.Fprintf(b, "\tpushq %s\n", operand(i.Src, 8))
	case asmir.Pop:
		fmt.Fprintf(b, "\tpopq %s\n", operand(i.Dst, 8))
	case asmir.MovSD:
		fmt.Fprintf(b, "\tmovsd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.AddSD:
		fmt.Fprintf(b, "\taddsd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.SubSD:
		fmt.Fprintf(b, "\tsubsd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.MulSD:
		fmt.Fprintf(b, "\tmulsd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.DivSD:
		fmt.Fprintf(b, "\tdivsd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.CvtTSD2SI:
		fmt.Fprintf(b, "\tcvttsd2si %s, %s\n", sseOperand(i.Src), operand(i.Dst, i.Width))
	case asmir.CvtSI2SD:
		fmt.Fprintf(b, "\tcvtsi2sd%s %s, %s\n", suffix(i.Width), operand(i.Src, i.Width), sseOperand(i.Dst))
	case asmir.XorPD:
		fmt.Fprintf(b, "\txorpd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.ComISD:
		fmt.Fprintf(b, "\tcomisd %s, %s\n", sseOperand(i.Src), sseOperand(i.Dst))
	case asmir.AllocateStack:
		if i.Bytes != 0 {
			fmt.Fprintf(b, "\tsubq $%d, %%rsp\n", i.Bytes)
		}
	case asmir.DeallocateStack:
		if i.Bytes != 0 {
			fmt.Fprintf(b, "\taddq $%d, %%rsp\n", i.Bytes)
		}
	default:
		fmt.Fprintf(b, "\t# unrenderable instruction %T\n", instr)
	}
}

func two(b *strings.Builder, mnemonic string, width int, src, dst asmir.Operand) {
	fmt.Fprintf(b, "\t%s %s, %s\n", mnemonic, operand(src, width), operand(dst, width))
}

// zxMnemonic picks the AT&T movz/movs mnemonic for a (srcWidth,
// dstWidth) extension pair (e.g. movzbl, movswq). The one pair with
// no dedicated mnemonic, a 4->8 zero extension, is handled separately
// in the MovZX case above.
func zxMnemonic(prefix string, srcWidth, dstWidth int) string {
	letter := map[int]string{1: "b", 2: "w", 4: "l", 8: "q"}
	return prefix + letter[srcWidth] + letter[dstWidth]
}
