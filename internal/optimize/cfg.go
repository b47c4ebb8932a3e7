package optimize

import "github.com/cc-core/cc/internal/tac"

// Block is one maximal straight-line run of TAC instructions: a
// leader (a label, or the instruction right after a jump) through the
// next control-transfer instruction inclusive.
type Block struct {
	Label   string // the tac.Label.Name this block starts with, "" for the entry block
	Instrs  []tac.Instr
	Succs   []int // indices into CFG.Blocks
	touched bool  // scratch bit for reachability walks
}

// CFG is a function's instruction stream partitioned into basic
// blocks with computed successor edges.
type CFG struct {
	Blocks []*Block
}

// BuildCFG computes leaders the standard way (Aho/Sethi/Ullman-style:
// the first instruction, every jump target, and every instruction
// immediately following a jump or conditional jump) and then resolves
// each block's successors from its terminating instruction.
func BuildCFG(fn *tac.Function) *CFG {
	if len(fn.Body) == 0 {
		return &CFG{}
	}

	isLeader := make([]bool, len(fn.Body))
	isLeader[0] = true
	labelAt := map[string]int{}
	for i, instr := range fn.Body {
		if l, ok := instr.(tac.Label); ok {
			labelAt[l.Name] = i
			isLeader[i] = true
		}
	}
	for i, instr := range fn.Body {
		switch t := instr.(type) {
		case tac.Jump:
			if target, ok := labelAt[t.Target]; ok {
				isLeader[target] = true
			}
			if i+1 < len(fn.Body) {
				isLeader[i+1] = true
			}
		case tac.JumpIfZero:
			if target, ok := labelAt[t.Target]; ok {
				isLeader[target] = true
			}
			if i+1 < len(fn.Body) {
				isLeader[i+1] = true
			}
		case tac.JumpIfNotZero:
			if target, ok := labelAt[t.Target]; ok {
				isLeader[target] = true
			}
			if i+1 < len(fn.Body) {
				isLeader[i+1] = true
			}
		case tac.Return:
			if i+1 < len(fn.Body) {
				isLeader[i+1] = true
			}
		}
	}

	cfg := &CFG{}
	blockStart := map[int]int{} // instruction index -> block index
	for i, leader := range isLeader {
		if !leader {
			continue
		}
		blockStart[i] = len(cfg.Blocks)
		label := ""
		if l, ok := fn.Body[i].(tac.Label); ok {
			label = l.Name
		}
		cfg.Blocks = append(cfg.Blocks, &Block{Label: label})
	}

	// Fill in each block's instructions.
	starts := make([]int, 0, len(cfg.Blocks))
	for i := range fn.Body {
		if isLeader[i] {
			starts = append(starts, i)
		}
	}
	for bi, start := range starts {
		end := len(fn.Body)
		if bi+1 < len(starts) {
			end = starts[bi+1]
		}
		cfg.Blocks[bi].Instrs = fn.Body[start:end]
	}

	// Resolve successor edges from each block's last instruction.
	for bi, block := range cfg.Blocks {
		if len(block.Instrs) == 0 {
			continue
		}
		last := block.Instrs[len(block.Instrs)-1]
		fallthroughIdx := bi + 1
		switch t := last.(type) {
		case tac.Jump:
			if target, ok := labelAt[t.Target]; ok {
				block.Succs = []int{blockStart[target]}
			}
		case tac.JumpIfZero:
			if target, ok := labelAt[t.Target]; ok {
				block.Succs = append(block.Succs, blockStart[target])
			}
			if fallthroughIdx < len(cfg.Blocks) {
				block.Succs = append(block.Succs, fallthroughIdx)
			}
		case tac.JumpIfNotZero:
			if target, ok := labelAt[t.Target]; ok {
				block.Succs = append(block.Succs, blockStart[target])
			}
			if fallthroughIdx < len(cfg.Blocks) {
				block.Succs = append(block.Succs, fallthroughIdx)
			}
		case tac.Return:
			// no successors
		default:
			if fallthroughIdx < len(cfg.Blocks) {
				block.Succs = []int{fallthroughIdx}
			}
		}
	}
	return cfg
}

// Reachable returns the set of block indices reachable from the
// entry block (index 0).
func (c *CFG) Reachable() map[int]bool {
	reach := map[int]bool{}
	if len(c.Blocks) == 0 {
		return reach
	}
	var walk func(i int)
	walk = func(i int) {
		if reach[i] {
			return
		}
		reach[i] = true
		for _, s := range c.Blocks[i].Succs {
			walk(s)
		}
	}
	walk(0)
	return reach
}

// Flatten reassembles the CFG's blocks back into a linear instruction
// stream, in block order (spec §4.3 never reorders blocks, only
// drops unreachable ones).
func (c *CFG) Flatten() []tac.Instr {
	var out []tac.Instr
	for _, b := range c.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}
