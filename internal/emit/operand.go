package emit

import (
	"fmt"

	"github.com/cc-core/cc/internal/asmir"
)

// gpNames is indexed [width class][PhysReg], width class 0..3 meaning
// 8/4/2/1 bytes; PhysReg's own ordering (AX..R15 before the XMM block)
// lets a single slice index double as the register table's column.
var gpNames = [4][16]string{
	{"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp", "r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"},
	{"eax", "ebx", "ecx", "edx", "esi", "edi", "ebp", "esp", "r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"},
	{"ax", "bx", "cx", "dx", "si", "di", "bp", "sp", "r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"},
	{"al", "bl", "cl", "dl", "sil", "dil", "bpl", "spl", "r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"},
}

func widthClass(width int) int {
	switch width {
	case 1:
		return 3
	case 2:
		return 2
	case 4:
		return 1
	default:
		return 0
	}
}

func regName(r asmir.PhysReg, width int) string {
	if r.Class() == asmir.XMM {
		return "%" + r.String()
	}
	return "%" + gpNames[widthClass(width)][r]
}

// operand renders a single operand for the generic GP instruction
// forms (the ones carrying an explicit Width); an SSE instruction
// always renders its Reg operands at XMM width regardless of width,
// so those call sseOperand instead.
func operand(op asmir.Operand, width int) string {
	switch o := op.(type) {
	case asmir.Imm:
		return fmt.Sprintf("$%d", o.Value)
	case asmir.Reg:
		return regName(o.Reg, width)
	case asmir.Mem:
		return memOperand(o)
	case asmir.Indexed:
		return indexedOperand(o)
	case asmir.PCRel:
		return fmt.Sprintf("%s(%%rip)", symbolName(o.Label))
	default:
		return fmt.Sprintf("<%T>", op)
	}
}

func sseOperand(op asmir.Operand) string {
	switch o := op.(type) {
	case asmir.Reg:
		return "%" + o.Reg.String()
	default:
		return operand(op, 8)
	}
}

func memOperand(m asmir.Mem) string {
	if m.Disp == 0 {
		return fmt.Sprintf("(%s)", regName(m.Base, 8))
	}
	return fmt.Sprintf("%d(%s)", m.Disp, regName(m.Base, 8))
}

func indexedOperand(m asmir.Indexed) string {
	return fmt.Sprintf("%d(%s,%s,%d)", m.Disp, regName(m.Base, 8), regName(m.Index, 8), m.Scale)
}
