package optimize

import (
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
)

// DeadStoreElim removes an assignment to a variable that is never
// read before being overwritten or the function returns (spec §4.3
// "Dead-store elimination"), via a backward liveness scan.
//
// An aliased variable's writes are never removed: some other pointer
// might read it between this write and what the scan sees as its next
// use, and a Call is always treated as reading (and thus keeping
// live) every aliased variable, since the callee could read through a
// pointer to it (spec §4.3's alias-aware "gen" rule at calls). A
// write to a static-storage variable is never removed either, since
// it stays visible after the function returns and to every callee.
type DeadStoreElim struct {
	Symbols *symtab.Table
}

func (DeadStoreElim) Name() string { return "dead-store-elim" }

func (ds DeadStoreElim) Run(fn *tac.Function) bool {
	changed := false
	live := map[symtab.SymbolID]bool{}

	aliased := func(id symtab.SymbolID) bool {
		return ds.Symbols != nil && ds.Symbols.Get(id).Aliased
	}
	mustKeep := func(id symtab.SymbolID) bool {
		return aliased(id) || (ds.Symbols != nil && ds.Symbols.Get(id).Storage == symtab.Static)
	}

	use := func(v tac.Value) {
		if vr, ok := v.(tac.Var); ok {
			live[vr.Symbol] = true
		}
	}

	out := make([]tac.Instr, len(fn.Body))
	for i := len(fn.Body) - 1; i >= 0; i-- {
		instr := fn.Body[i]
		keep := true

		switch ins := instr.(type) {
		case tac.Label:
			// A backward scan can't know every predecessor's live-out
			// set without a real fixed-point dataflow pass; conservatively
			// treat every local live across a label (a static variable's
			// writes are never removed at all) so this pass never
			// removes a store that a loop's next iteration still needs.
			live = map[symtab.SymbolID]bool{}
			for _, id := range fn.Locals {
				live[id] = true
			}

		case tac.Copy:
			if dst, ok := ins.Dst.(tac.Var); ok && !live[dst.Symbol] && !mustKeep(dst.Symbol) {
				keep = false
			} else {
				delete(live, dstSymbol(ins.Dst))
				use(ins.Src)
			}

		case tac.Unary:
			if dst, ok := ins.Dst.(tac.Var); ok && !live[dst.Symbol] && !mustKeep(dst.Symbol) {
				keep = false
			} else {
				delete(live, dstSymbol(ins.Dst))
				use(ins.Src)
			}

		case tac.Binary:
			if dst, ok := ins.Dst.(tac.Var); ok && !live[dst.Symbol] && !mustKeep(dst.Symbol) {
				keep = false
			} else {
				delete(live, dstSymbol(ins.Dst))
				use(ins.L)
				use(ins.R)
			}

		case tac.Call:
			// Side-effecting: always keep. Reads its args, and treats
			// every aliased local as used, since the callee may read it
			// through a pointer.
			for _, a := range ins.Args {
				use(a)
			}
			if dst, ok := ins.Dst.(tac.Var); ok {
				delete(live, dst.Symbol)
			}
			if ds.Symbols != nil {
				for _, id := range fn.Locals {
					if aliased(id) {
						live[id] = true
					}
				}
			}

		case tac.JumpIfZero:
			use(ins.Cond)
		case tac.JumpIfNotZero:
			use(ins.Cond)
		case tac.Return:
			if ins.Value != nil {
				use(ins.Value)
			}
		case tac.Store:
			use(ins.Dst)
			use(ins.Src)
		case tac.AddrOffset:
			use(ins.Base)
			if dst, ok := ins.Dst.(tac.Var); ok {
				live[dst.Symbol] = true
			}
		case tac.AddPtr:
			use(ins.Base)
			use(ins.Index)
			if dst, ok := ins.Dst.(tac.Var); ok {
				live[dst.Symbol] = true
			}
		case tac.GetAddress, tac.Load, tac.CopyToOffset, tac.CopyFromOffset, tac.ZeroOut,
			tac.Truncate, tac.SignExtend, tac.ZeroExtend,
			tac.DoubleToInt, tac.DoubleToUInt, tac.IntToDouble, tac.UIntToDouble:
			// These either name an aggregate object directly (no per-scalar
			// liveness to exploit) or are narrow scalar conversions cheap
			// enough that eliminating them isn't worth the analysis; mark
			// every Var operand live and move on.
			markOperandsLive(ins, live)
		default:
			markOperandsLive(instr, live)
		}

		if !keep {
			changed = true
			continue
		}
		out[i] = instr
	}

	if !changed {
		return false
	}
	compact := out[:0]
	for _, instr := range out {
		if instr != nil {
			compact = append(compact, instr)
		}
	}
	fn.Body = compact
	return true
}

// markOperandsLive is the conservative fallback for instruction kinds
// DeadStoreElim does not try to eliminate: every Var it reads is live,
// and any Var it writes becomes live too (so an aggregate's member
// writes, which alias analysis can't see through here, are never
// mistaken for dead).
func markOperandsLive(instr tac.Instr, live map[symtab.SymbolID]bool) {
	mark := func(v tac.Value) {
		if vr, ok := v.(tac.Var); ok {
			live[vr.Symbol] = true
		}
	}
	switch i := instr.(type) {
	case tac.GetAddress:
		mark(i.Src)
		mark(i.Dst)
	case tac.Load:
		mark(i.Src)
		mark(i.Dst)
	case tac.CopyToOffset:
		mark(i.Dst)
		mark(i.Src)
	case tac.CopyFromOffset:
		mark(i.Src)
		mark(i.Dst)
	case tac.ZeroOut:
		mark(i.Dst)
	case tac.Truncate:
		mark(i.Src)
		mark(i.Dst)
	case tac.SignExtend:
		mark(i.Src)
		mark(i.Dst)
	case tac.ZeroExtend:
		mark(i.Src)
		mark(i.Dst)
	case tac.DoubleToInt:
		mark(i.Src)
		mark(i.Dst)
	case tac.DoubleToUInt:
		mark(i.Src)
		mark(i.Dst)
	case tac.IntToDouble:
		mark(i.Src)
		mark(i.Dst)
	case tac.UIntToDouble:
		mark(i.Src)
		mark(i.Dst)
	}
}
