package optimize

import (
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
)

// CopyPropagation replaces a use of a variable with its most recently
// copied source, the forward half of spec §4.3's "Copy propagation".
// Like ConstantFold, it resets at labels: a join point may arrive
// from a predecessor whose copies this linear scan never saw.
//
// A Var whose symtab.Entry.Aliased bit is set is never recorded as a
// copy target, and a copy whose source is aliased is dropped at the
// next Store or Call: a write through some other pointer to the same
// object could change its value without any instruction this pass can
// see, so propagating past one would be unsound (spec §4.3's
// alias-aware kill rule).
type CopyPropagation struct {
	Symbols *symtab.Table
}

func (CopyPropagation) Name() string { return "copy-propagation" }

func (cp CopyPropagation) Run(fn *tac.Function) bool {
	changed := false
	copies := map[symtab.SymbolID]tac.Value{}

	aliased := func(id symtab.SymbolID) bool {
		return cp.Symbols != nil && cp.Symbols.Get(id).Aliased
	}

	replace := func(v tac.Value) tac.Value {
		vr, ok := v.(tac.Var)
		if !ok || aliased(vr.Symbol) {
			return v
		}
		if src, ok := copies[vr.Symbol]; ok {
			return src
		}
		return v
	}

	kill := func(dst tac.Value) {
		vr, ok := dst.(tac.Var)
		if !ok {
			return
		}
		delete(copies, vr.Symbol)
		for k, v := range copies {
			if sv, ok := v.(tac.Var); ok && sv.Symbol == vr.Symbol {
				delete(copies, k)
			}
		}
	}

	out := make([]tac.Instr, 0, len(fn.Body))
	for _, instr := range fn.Body {
		switch i := instr.(type) {
		case tac.Label:
			copies = map[symtab.SymbolID]tac.Value{}
			out = append(out, i)

		case tac.Copy:
			newSrc := replace(i.Src)
			if newSrc != i.Src {
				changed = true
			}
			kill(i.Dst)
			if dst, ok := i.Dst.(tac.Var); ok && !aliased(dst.Symbol) {
				copies[dst.Symbol] = newSrc
			}
			out = append(out, tac.Copy{Dst: i.Dst, Src: newSrc})

		case tac.Binary:
			l, r := replace(i.L), replace(i.R)
			if l != i.L || r != i.R {
				changed = true
			}
			kill(i.Dst)
			out = append(out, tac.Binary{Op: i.Op, Dst: i.Dst, L: l, R: r})

		case tac.Unary:
			s := replace(i.Src)
			if s != i.Src {
				changed = true
			}
			kill(i.Dst)
			out = append(out, tac.Unary{Op: i.Op, Dst: i.Dst, Src: s})

		case tac.JumpIfZero:
			c := replace(i.Cond)
			if c != i.Cond {
				changed = true
			}
			out = append(out, tac.JumpIfZero{Cond: c, Target: i.Target})

		case tac.JumpIfNotZero:
			c := replace(i.Cond)
			if c != i.Cond {
				changed = true
			}
			out = append(out, tac.JumpIfNotZero{Cond: c, Target: i.Target})

		case tac.Return:
			if i.Value == nil {
				out = append(out, i)
				continue
			}
			v := replace(i.Value)
			if v != i.Value {
				changed = true
			}
			out = append(out, tac.Return{Value: v})

		case tac.Call:
			args := make([]tac.Value, len(i.Args))
			for idx, a := range i.Args {
				args[idx] = replace(a)
				if args[idx] != a {
					changed = true
				}
			}
			// A call may write through an aliased pointer argument; any
			// copy naming an aliased variable is no longer trustworthy.
			for k, v := range copies {
				if sv, ok := v.(tac.Var); ok && aliased(sv.Symbol) {
					delete(copies, k)
				}
				if aliased(k) {
					delete(copies, k)
				}
			}
			kill(i.Dst)
			out = append(out, tac.Call{Dst: i.Dst, Func: i.Func, Name: i.Name, Args: args})

		case tac.Store:
			v := replace(i.Src)
			d := replace(i.Dst)
			if v != i.Src || d != i.Dst {
				changed = true
			}
			// A store through a pointer may alter any aliased object;
			// conservatively drop every aliased copy fact.
			for k, cv := range copies {
				if sv, ok := cv.(tac.Var); ok && aliased(sv.Symbol) {
					delete(copies, k)
				}
				if aliased(k) {
					delete(copies, k)
				}
			}
			out = append(out, tac.Store{Dst: d, Src: v})

		default:
			if dst := instrDst(instr); dst != nil {
				kill(dst)
			}
			out = append(out, instr)
		}
	}
	fn.Body = out
	return changed
}
