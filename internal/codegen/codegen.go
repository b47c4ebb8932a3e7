// Package codegen lowers TAC (internal/tac) into the abstract x86-64
// assembly IR of internal/asmir, implementing spec §4.4: the System V
// AMD64 calling convention (eightbyte classification, integer/SSE
// argument registers, the MEMORY-class hidden-pointer return), the
// idiv/cdq and div instruction sequences, comisd-based NaN-correct
// double comparison, xorpd-based double negation, and the
// double<->unsigned-long conversion sequences. Every TAC value still
// named by a symtab.SymbolID becomes either an asmir.Pseudo (for
// internal/regalloc to color) or, for an address-taken or aggregate
// object, a fixed asmir.Mem relative to the frame pointer computed
// once up front - the same split wazevo's amd64 backend draws
// between register-allocatable SSA values and its ABI's stack-passed
// slots (see machine.go's spillSlots/currentABI fields).
package codegen

import (
	"fmt"
	"math"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

// argGPRegs and argXMMRegs are the System V AMD64 integer and SSE
// argument-passing registers, in order.
var argGPRegs = []asmir.PhysReg{asmir.DI, asmir.SI, asmir.DX, asmir.CX, asmir.R8, asmir.R9}
var argXMMRegs = []asmir.PhysReg{asmir.XMM0, asmir.XMM1, asmir.XMM2, asmir.XMM3, asmir.XMM4, asmir.XMM5, asmir.XMM6, asmir.XMM7}

// Lower translates an entire TAC program into machine code.
func Lower(prog *tac.Program) (*asmir.Program, error) {
	b := &builder{syms: prog.Symbols, floatLabels: map[uint64]string{}}
	out := &asmir.Program{}
	for _, fn := range prog.Functions {
		mf, err := b.lowerFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, mf)
	}
	out.Floats = b.floats
	return out, nil
}

type builder struct {
	syms *symtab.Table

	floatLabels map[uint64]string
	floats      []asmir.FloatConst
	floatSeq    int
	labelSeq    int
}

func (b *builder) floatConst(v float64) asmir.PCRel {
	bits := math.Float64bits(v)
	if lbl, ok := b.floatLabels[bits]; ok {
		return asmir.PCRel{Label: lbl}
	}
	lbl := fmt.Sprintf(".Lfloat%d", b.floatSeq)
	b.floatSeq++
	b.floatLabels[bits] = lbl
	b.floats = append(b.floats, asmir.FloatConst{Label: lbl, Bits: bits})
	return asmir.PCRel{Label: lbl}
}

func (b *builder) label(prefix string) string {
	b.labelSeq++
	return fmt.Sprintf(".L%s%d", prefix, b.labelSeq)
}

// fb is the per-function lowering state.
type fb struct {
	*builder
	fn   *tac.Function
	out  *asmir.Function
	slot map[symtab.SymbolID]asmir.Operand // Pseudo for a register candidate, Mem for a fixed-frame object
	epilogueLabel string
	retType types.Type
	retByPointer bool
	retPointerSym symtab.SymbolID
}

func (b *builder) lowerFunction(fn *tac.Function) (*asmir.Function, error) {
	f := &fb{
		builder: b,
		fn:      fn,
		out:     &asmir.Function{Name: fn.Name, Global: true},
		slot:    map[symtab.SymbolID]asmir.Operand{},
	}
	f.epilogueLabel = ".Lepilogue." + fn.Name

	retTy := b.syms.Get(fn.Symbol).Type.(types.Func).Return
	f.retType = retTy
	f.retByPointer = isAggregate(retTy) && types.SizeOf(retTy) > 0

	// Fixed-frame objects: every aggregate local and every local whose
	// address is taken get a permanent stack slot, assigned before any
	// pseudoregister exists, since internal/regalloc never colors them.
	var frameSize int64
	for _, id := range fn.Locals {
		e := b.syms.Get(id)
		if isAggregate(e.Type) || e.Aliased {
			sz := types.SizeOf(e.Type)
			if sz == 0 {
				sz = 8
			}
			align := types.AlignOf(e.Type)
			if isAggregate(e.Type) && sz >= 16 && align < 16 {
				align = 16
			}
			frameSize = roundUp(frameSize+sz, maxInt(align, 1))
			f.slot[id] = asmir.Mem{Base: asmir.BP, Disp: -frameSize}
		} else {
			class := asmir.GP
			if e.Type.Kind() == types.KindDouble {
				class = asmir.XMM
			}
			f.slot[id] = asmir.Pseudo{Symbol: id, Class: class}
		}
	}
	frameSize = roundUp(frameSize, 16)

	f.emit(asmir.Global{Name: fn.Name})
	f.emit(asmir.Label{Name: fn.Name})
	f.emit(asmir.Push{Src: asmir.Reg{Reg: asmir.BP}})
	f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.SP}, Dst: asmir.Reg{Reg: asmir.BP}})
	f.emit(asmir.AllocateStack{Bytes: frameSize})

	f.lowerParams(fn)

	for _, instr := range fn.Body {
		f.lowerInstr(instr)
	}

	f.emit(asmir.Label{Name: f.epilogueLabel})
	f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.BP}, Dst: asmir.Reg{Reg: asmir.SP}})
	f.emit(asmir.Pop{Dst: asmir.Reg{Reg: asmir.BP}})
	f.emit(asmir.Ret{})

	return f.out, nil
}

// lowerParams materializes incoming argument registers/stack slots
// into each parameter's pseudoregister or fixed-frame slot.
func (f *fb) lowerParams(fn *tac.Function) {
	gpIdx, xmmIdx := 0, 0
	var stackDisp int64 = 16 // above the saved return address and RBP

	if f.retByPointer {
		// The hidden return-value pointer arrives in %rdi; codegen
		// stashes it in a dedicated pseudo so `return <aggregate>` can
		// copy through it later.
		hidden := f.syms.New(".ret_ptr", types.Pointer{Elem: f.retType})
		f.retPointerSym = hidden.ID
		f.slot[hidden.ID] = asmir.Pseudo{Symbol: hidden.ID, Class: asmir.GP}
		f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.DI}, Dst: f.slot[hidden.ID]})
		gpIdx = 1
	}

	for _, pid := range fn.Params {
		e := f.syms.Get(pid)
		dst := f.slot[pid]
		switch {
		case e.Type.Kind() == types.KindDouble:
			if xmmIdx < len(argXMMRegs) {
				f.emit(asmir.MovSD{Src: asmir.Reg{Reg: argXMMRegs[xmmIdx]}, Dst: dst})
				xmmIdx++
			} else {
				f.emit(asmir.MovSD{Src: asmir.Mem{Base: asmir.BP, Disp: stackDisp}, Dst: dst})
				stackDisp += 8
			}
		case isAggregate(e.Type):
			// Aggregates wider than 16 bytes, and anything this codegen
			// does not pack into register pairs (see DESIGN.md), arrive
			// by value on the stack; copy the whole object into its
			// fixed frame slot.
			f.copyAggregateFromStack(dst, e.Type, stackDisp)
			stackDisp += roundUp(types.SizeOf(e.Type), 8)
		default:
			w := width(e.Type)
			if gpIdx < len(argGPRegs) {
				f.emit(asmir.Mov{Width: w, Src: asmir.Reg{Reg: argGPRegs[gpIdx]}, Dst: dst})
				gpIdx++
			} else {
				f.emit(asmir.Mov{Width: w, Src: asmir.Mem{Base: asmir.BP, Disp: stackDisp}, Dst: dst})
				stackDisp += 8
			}
		}
	}
}

func (f *fb) copyAggregateFromStack(dst asmir.Operand, ty types.Type, srcDisp int64) {
	size := types.SizeOf(ty)
	dstMem, ok := dst.(asmir.Mem)
	if !ok {
		f.emit(asmir.Comment{Text: "unsupported: aggregate parameter without a fixed frame slot"})
		return
	}
	var off int64
	for off < size {
		f.emit(asmir.Mov{Width: 8, Src: asmir.Mem{Base: asmir.BP, Disp: srcDisp + off}, Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.ScratchGP}, Dst: asmir.Mem{Base: dstMem.Base, Disp: dstMem.Disp + off}})
		off += 8
	}
}

func (f *fb) emit(i asmir.Instr) { f.out.Body = append(f.out.Body, i) }

func isAggregate(t types.Type) bool {
	switch t.Kind() {
	case types.KindStruct, types.KindArray:
		return true
	default:
		return false
	}
}

func width(t types.Type) int {
	switch tt := t.(type) {
	case types.Int:
		return tt.Width
	default:
		return 8
	}
}

func signed(t types.Type) bool {
	if it, ok := t.(types.Int); ok {
		return it.Signed
	}
	return false
}

func roundUp(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
