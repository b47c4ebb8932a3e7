package regalloc

import "github.com/cc-core/cc/internal/asmir"

// node is one interference-graph vertex: either a not-yet-colored
// pseudoregister (identified by its symtab.SymbolID) or a precolored
// physical register. Both are ordinary comparable values, so the
// graph keys either kind the same way.
type node struct {
	phys bool
	reg  asmir.PhysReg
	sym  int
}

func pseudoNode(sym int) node     { return node{sym: sym} }
func physNode(r asmir.PhysReg) node { return node{phys: true, reg: r} }

func toNode(op asmir.Operand, class asmir.RegClass) (node, bool) {
	switch o := op.(type) {
	case asmir.Pseudo:
		if o.Class == class {
			return pseudoNode(int(o.Symbol)), true
		}
	case asmir.Reg:
		if o.Reg.Class() == class {
			return physNode(o.Reg), true
		}
	}
	return node{}, false
}

// successors returns the instruction indices control can fall through
// or jump to from instruction i, treating Label targets as resolved
// by a pre-built name->index map the way internal/optimize's CFG
// builder resolves TAC labels.
func successors(body []asmir.Instr, labelIndex map[string]int, i int) []int {
	switch t := body[i].(type) {
	case asmir.Jmp:
		if idx, ok := labelIndex[t.Target]; ok {
			return []int{idx}
		}
		return nil
	case asmir.JmpCC:
		var out []int
		if idx, ok := labelIndex[t.Target]; ok {
			out = append(out, idx)
		}
		if i+1 < len(body) {
			out = append(out, i+1)
		}
		return out
	case asmir.Ret:
		return nil
	default:
		if i+1 < len(body) {
			return []int{i + 1}
		}
		return nil
	}
}

// liveness runs the standard backward dataflow fixed point over an
// asmir.Function's instruction stream, at instruction granularity
// rather than over explicit basic blocks (every instruction already
// names its own successors, so a separate block structure buys
// nothing here).
func liveness(body []asmir.Instr, class asmir.RegClass) (liveIn, liveOut []map[node]bool) {
	n := len(body)
	liveIn = make([]map[node]bool, n)
	liveOut = make([]map[node]bool, n)
	for i := range body {
		liveIn[i] = map[node]bool{}
		liveOut[i] = map[node]bool{}
	}

	labelIndex := map[string]int{}
	for i, instr := range body {
		if l, ok := instr.(asmir.Label); ok {
			labelIndex[l.Name] = i
		}
	}

	changed := true
	for changed {
		changed = false
		for i := n - 1; i >= 0; i-- {
			out := map[node]bool{}
			for _, s := range successors(body, labelIndex, i) {
				for k := range liveIn[s] {
					out[k] = true
				}
			}
			defs, uses := defsUses(body[i])
			in := map[node]bool{}
			for k := range out {
				in[k] = true
			}
			for _, d := range defs {
				if nd, ok := toNode(d, class); ok {
					delete(in, nd)
				}
			}
			for _, u := range uses {
				if nu, ok := toNode(u, class); ok {
					in[nu] = true
				}
			}
			if !sameSet(in, liveIn[i]) || !sameSet(out, liveOut[i]) {
				changed = true
			}
			liveIn[i] = in
			liveOut[i] = out
		}
	}
	return liveIn, liveOut
}

func sameSet(a, b map[node]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
