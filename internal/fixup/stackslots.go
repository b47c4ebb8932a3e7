package fixup

import "github.com/cc-core/cc/internal/asmir"

// resolveStackSlots assigns every asmir.StackSlot a concrete BP-
// relative address. Codegen places each fixed-frame object at the next
// offset below BP that its size and alignment allow (a first 4-byte
// int lands at -4, a following 8-byte value at -16), so the most
// negative existing BP-relative Mem.Disp already in the body marks the
// bottom of the fixed frame; the spill area
// regalloc sized follows immediately below it in the same pattern,
// one eightbyte per slot index.
func resolveStackSlots(body []asmir.Instr) []asmir.Instr {
	fixedSize := int64(0)
	walkOperands(body, func(op asmir.Operand) {
		if m, ok := op.(asmir.Mem); ok && m.Base == asmir.BP && m.Disp < -fixedSize {
			fixedSize = -m.Disp
		}
	})

	out := make([]asmir.Instr, len(body))
	for i, instr := range body {
		out[i] = mapOperands(instr, func(op asmir.Operand) asmir.Operand {
			s, ok := op.(asmir.StackSlot)
			if !ok {
				return op
			}
			return asmir.Mem{Base: asmir.BP, Disp: -(fixedSize + 8*(s.Index+1))}
		})
	}
	return out
}

// walkOperands calls f with every Src/Dst-shaped operand in body,
// mirroring the instruction kinds mapOperands knows how to rewrite.
func walkOperands(body []asmir.Instr, f func(asmir.Operand)) {
	for _, instr := range body {
		mapOperands(instr, func(op asmir.Operand) asmir.Operand {
			f(op)
			return op
		})
	}
}
