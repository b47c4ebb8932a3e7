package optimize

import "github.com/cc-core/cc/internal/tac"

// UnreachableElim rebuilds the CFG and drops every basic block not
// reachable from the entry block (spec §4.3 "Unreachable-code
// elimination"). It runs after ConstantFold so a branch that folding
// turned into an unconditional Jump (or removed outright) actually
// gets its now-dead arm removed, rather than merely simplified.
type UnreachableElim struct{}

func (UnreachableElim) Name() string { return "unreachable-elim" }

func (UnreachableElim) Run(fn *tac.Function) bool {
	cfg := BuildCFG(fn)
	if len(cfg.Blocks) == 0 {
		return false
	}
	reach := cfg.Reachable()
	if len(reach) == len(cfg.Blocks) {
		return false
	}
	kept := cfg.Blocks[:0]
	for i, b := range cfg.Blocks {
		if reach[i] {
			kept = append(kept, b)
		}
	}
	cfg.Blocks = kept
	fn.Body = cfg.Flatten()
	return true
}
