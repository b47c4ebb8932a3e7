// Package regalloc implements spec §4.5's Chaitin-Briggs register
// allocator over the abstract IR internal/asmir defines and
// internal/codegen produces: liveness analysis, an interference graph
// whose nodes are both pseudoregisters and precolored physical
// registers (so idiv's AX/DX clobber and a call's caller-saved
// clobber fall out of ordinary coloring rather than a side constraint
// table - see machine.go's clobberedRegs field in the retrieval
// pack's wazevo amd64 backend for the same separation), Briggs
// conservative coalescing, and a spill-rewrite convergence loop that
// keeps re-coloring until every value fits in a register or a stack
// slot.
//
// The general-purpose and SSE classes are allocated independently
// (spec §4.5): K=12 for GP (RSP/RBP are never colored, and R10/R11
// are reserved for internal/fixup's two scratch registers) and K=14
// for SSE (XMM14 is internal/fixup's scratch register and XMM15 is
// left unused).
package regalloc

import (
	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/types"
)

// Allocate colors every function in prog in place, replacing each
// asmir.Pseudo with either an asmir.Reg or, for a value that could
// not be colored, an asmir.StackSlot plus inserted reload/spill code,
// and bumps each function's AllocateStack instruction to account for
// the spill area.
func Allocate(prog *asmir.Program, syms *symtab.Table) error {
	for _, fn := range prog.Functions {
		allocateFunction(fn, syms)
	}
	return nil
}

func allocateFunction(fn *asmir.Function, syms *symtab.Table) {
	body, gpSlots := allocateClass(fn.Body, asmir.GP, asmir.GPRegisters, syms)
	body, xmmSlots := allocateClass(body, asmir.XMM, asmir.XMMRegisters, syms)
	fn.Body = body

	spillBytes := int64(gpSlots+xmmSlots) * 8
	if spillBytes == 0 {
		return
	}
	for i, instr := range fn.Body {
		if a, ok := instr.(asmir.AllocateStack); ok {
			total := a.Bytes + spillBytes
			total = (total + 15) / 16 * 16
			fn.Body[i] = asmir.AllocateStack{Bytes: total}
			return
		}
	}
}

// allocateClass runs the build-color-spill loop to a fixed point for
// one register class, returning the fully colored instruction stream
// and the number of distinct stack slots its spills consumed.
func allocateClass(body []asmir.Instr, class asmir.RegClass, physRegs []asmir.PhysReg, syms *symtab.Table) ([]asmir.Instr, int) {
	slotOf := map[int]int64{}
	nextSlot := int64(0)

	for {
		_, liveOut := liveness(body, class)
		g := buildInterference(body, class, liveOut, physRegs)
		res := colorGraph(g, physRegs)
		if len(res.spilled) == 0 {
			return substituteColors(body, class, res.color), int(nextSlot)
		}
		body = rewriteSpills(body, class, res.spilled, slotOf, &nextSlot, syms)
	}
}

func substituteColors(body []asmir.Instr, class asmir.RegClass, color map[node]asmir.PhysReg) []asmir.Instr {
	out := make([]asmir.Instr, len(body))
	for i, instr := range body {
		out[i] = mapOperands(instr, func(op asmir.Operand) asmir.Operand {
			n, ok := toNode(op, class)
			if !ok {
				return op
			}
			if r, ok := color[n]; ok {
				return asmir.Reg{Reg: r}
			}
			return op
		})
	}
	return out
}

// rewriteSpills replaces every occurrence of a spilled pseudo with a
// fresh, instruction-local pseudo loaded from (and, for a definition,
// stored back to) its stack slot. A value that spills again in a
// later round gets a second, distinct slot rather than reusing its
// first one - simpler than live-range-aware slot reuse, at the cost
// of a few redundant stack words in the rare case a rewritten temp is
// itself too long-lived to color.
func rewriteSpills(body []asmir.Instr, class asmir.RegClass, spilled map[node]bool, slotOf map[int]int64, nextSlot *int64, syms *symtab.Table) []asmir.Instr {
	placeholder := types.Type(types.Int{Width: 8, Signed: true})
	if class == asmir.XMM {
		placeholder = types.Double{}
	}

	var out []asmir.Instr
	for _, instr := range body {
		defs, uses := defsUses(instr)
		defSet, useSet := map[node]bool{}, map[node]bool{}
		for _, d := range defs {
			if n, ok := toNode(d, class); ok {
				defSet[n] = true
			}
		}
		for _, u := range uses {
			if n, ok := toNode(u, class); ok {
				useSet[n] = true
			}
		}

		touched := false
		for n := range defSet {
			if spilled[n] {
				touched = true
			}
		}
		for n := range useSet {
			if spilled[n] {
				touched = true
			}
		}
		if !touched {
			out = append(out, instr)
			continue
		}

		var pre, post []asmir.Instr
		fresh := map[node]symtab.SymbolID{}
		get := func(n node) symtab.SymbolID {
			if id, ok := fresh[n]; ok {
				return id
			}
			e := syms.New(".spill", placeholder)
			fresh[n] = e.ID
			if _, ok := slotOf[n.sym]; !ok {
				slotOf[n.sym] = *nextSlot
				*nextSlot++
			}
			slot := asmir.StackSlot{Index: slotOf[n.sym]}
			if useSet[n] {
				pre = append(pre, reloadInstr(class, slot, e.ID))
			}
			if defSet[n] {
				post = append(post, storeInstr(class, e.ID, slot))
			}
			return e.ID
		}

		rewritten := mapOperands(instr, func(op asmir.Operand) asmir.Operand {
			n, ok := toNode(op, class)
			if !ok || !spilled[n] {
				return op
			}
			return asmir.Pseudo{Symbol: get(n), Class: class}
		})

		out = append(out, pre...)
		out = append(out, rewritten)
		out = append(out, post...)
	}
	return out
}

func reloadInstr(class asmir.RegClass, slot asmir.StackSlot, dst symtab.SymbolID) asmir.Instr {
	if class == asmir.XMM {
		return asmir.MovSD{Src: slot, Dst: asmir.Pseudo{Symbol: dst, Class: class}}
	}
	return asmir.Mov{Width: 8, Src: slot, Dst: asmir.Pseudo{Symbol: dst, Class: class}}
}

func storeInstr(class asmir.RegClass, src symtab.SymbolID, slot asmir.StackSlot) asmir.Instr {
	if class == asmir.XMM {
		return asmir.MovSD{Src: asmir.Pseudo{Symbol: src, Class: class}, Dst: slot}
	}
	return asmir.Mov{Width: 8, Src: asmir.Pseudo{Symbol: src, Class: class}, Dst: slot}
}
