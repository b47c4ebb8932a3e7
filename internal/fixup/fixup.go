// Package fixup implements spec §4.6's instruction-encoding
// legalization pass: the one walk over a colored internal/asmir
// function that turns an abstract, encoding-agnostic instruction
// stream into one the system assembler can actually accept - no
// memory-to-memory operand pairs, no 64-bit immediate where the
// encoding only has room for a 32-bit one, SSE instructions whose
// destination is always a register, and a concrete stack address for
// every internal/regalloc spill slot.
//
// Structurally this mirrors internal/optimize's pass shape (one
// function in, one function out, a fresh instruction slice built up
// instruction by instruction) even though fixup is not part of the
// optimizer's fixed point: spec §4.6 runs it exactly once, after
// register allocation has finished coloring and spilling.
package fixup

import "github.com/cc-core/cc/internal/asmir"

// Legalize rewrites every function in prog in place.
func Legalize(prog *asmir.Program) error {
	for _, fn := range prog.Functions {
		fn.Body = resolveStackSlots(fn.Body)
		fn.Body = legalizeBody(fn.Body)
	}
	return nil
}

func legalizeBody(body []asmir.Instr) []asmir.Instr {
	out := make([]asmir.Instr, 0, len(body))
	for _, instr := range body {
		out = append(out, legalizeInstr(instr)...)
	}
	return out
}
