// Package optimize implements the TAC-level optimization passes of
// spec.md §4.3: constant folding, unreachable-code elimination, copy
// propagation, and dead-store elimination, run to a fixed point.
package optimize

import (
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
)

// Pass is one optimization transformation over a single function.
// Run reports whether it changed anything, the same changed-signal
// shape the retrieval pack's IR optimization pipeline uses to decide
// whether another round is worthwhile.
type Pass interface {
	Name() string
	Run(fn *tac.Function) bool
}

// Default returns the standard pass list: folding first (it creates
// both dead branches and dead values for the later passes to clean
// up), then unreachable-code elimination, then copy propagation, and
// dead-store elimination last to drop the copies propagation leaves
// unread. syms lets CopyPropagation and DeadStoreElim consult
// Entry.Aliased.
func Default(syms *symtab.Table) []Pass {
	return []Pass{
		ConstantFold{},
		UnreachableElim{},
		CopyPropagation{Symbols: syms},
		DeadStoreElim{Symbols: syms},
	}
}

// FixedPoint runs every pass in order, repeating the whole list until
// a complete round makes no change to any of the program's functions.
func FixedPoint(prog *tac.Program, passes []Pass) {
	for {
		changed := false
		for _, fn := range prog.Functions {
			for _, p := range passes {
				if p.Run(fn) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// Run is the package's top-level entry point: it runs the default
// pass list to a fixed point over every function in prog.
func Run(prog *tac.Program) {
	FixedPoint(prog, Default(prog.Symbols))
}
