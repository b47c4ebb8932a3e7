package codegen

import (
	"github.com/samber/lo"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

// lowerCall implements the calling half of spec §4.4's System V
// AMD64 convention: scalar integer/pointer arguments fill DI, SI, DX,
// CX, R8, R9 in order; scalar doubles fill XMM0-XMM7; anything past
// those six-and-eight, plus every aggregate argument (this codegen's
// documented simplification - see DESIGN.md - always classifies a
// struct/array argument MEMORY rather than attempting the paired-
// register packing a size-16-or-under aggregate is technically
// eligible for), is pushed right-to-left so it lands contiguously
// above the return address.
func (f *fb) lowerCall(i tac.Call) {
	var gpArgs, xmmArgs []tac.Value
	var stackArgs []tac.Value
	gpLeft, xmmLeft := len(argGPRegs), len(argXMMRegs)

	for _, a := range i.Args {
		switch {
		case a.Type().Kind() == types.KindDouble:
			if xmmLeft > 0 {
				xmmArgs = append(xmmArgs, a)
				xmmLeft--
			} else {
				stackArgs = append(stackArgs, a)
			}
		case isAggregate(a.Type()):
			stackArgs = append(stackArgs, a)
		default:
			if gpLeft > 0 {
				gpArgs = append(gpArgs, a)
				gpLeft--
			} else {
				stackArgs = append(stackArgs, a)
			}
		}
	}

	// Odd numbers of eightbyte stack arguments would misalign the
	// stack at the call; pad with a single eightbyte when needed so
	// %rsp stays 16-byte aligned at the call instruction.
	stackBytes := lo.Reduce(stackArgs, func(acc int64, a tac.Value, _ int) int64 {
		return acc + roundUp(maxInt(types.SizeOf(a.Type()), 8), 8)
	}, int64(0))
	pad := stackBytes%16 != 0
	if pad {
		f.emit(asmir.Sub{Width: 8, Src: asmir.Imm{Value: 8}, Dst: asmir.Reg{Reg: asmir.SP}})
	}
	for idx := len(stackArgs) - 1; idx >= 0; idx-- {
		a := stackArgs[idx]
		if isAggregate(a.Type()) {
			f.pushAggregate(a)
			continue
		}
		if a.Type().Kind() == types.KindDouble {
			f.emit(asmir.Sub{Width: 8, Src: asmir.Imm{Value: 8}, Dst: asmir.Reg{Reg: asmir.SP}})
			f.emit(asmir.MovSD{Src: f.operand(a), Dst: asmir.Mem{Base: asmir.SP, Disp: 0}})
			continue
		}
		f.emit(asmir.Mov{Width: width(a.Type()), Src: f.operand(a), Dst: asmir.Reg{Reg: asmir.ScratchGP}})
		f.emit(asmir.Push{Src: asmir.Reg{Reg: asmir.ScratchGP}})
	}

	gpIdx, xmmIdx := 0, 0
	if isAggregate(f.calleeReturnsAggregate(i)) {
		// The callee expects the hidden return pointer first; the
		// caller materializes a scratch slot on its own frame for it.
		// internal/sema guarantees Dst is a Var with a fixed frame slot
		// whenever the callee's return type is an aggregate.
		f.emit(asmir.Lea{Src: f.operand(i.Dst), Dst: asmir.Reg{Reg: argGPRegs[0]}})
		gpIdx = 1
	}
	for _, a := range gpArgs {
		f.emit(asmir.Mov{Width: width(a.Type()), Src: f.operand(a), Dst: asmir.Reg{Reg: argGPRegs[gpIdx]}})
		gpIdx++
	}
	for _, a := range xmmArgs {
		f.emit(asmir.MovSD{Src: f.operand(a), Dst: asmir.Reg{Reg: argXMMRegs[xmmIdx]}})
		xmmIdx++
	}
	// A variadic callee reads AL for the count of vector registers used;
	// harmless to set unconditionally for a non-variadic callee too.
	f.emit(asmir.Mov{Width: 1, Src: asmir.Imm{Value: int64(len(xmmArgs))}, Dst: asmir.Reg{Reg: asmir.AX}})
	f.emit(asmir.Call{Target: i.Name})

	cleanup := stackBytes
	if pad {
		cleanup += 8
	}
	if cleanup > 0 {
		f.emit(asmir.DeallocateStack{Bytes: cleanup})
	}

	if i.Dst != nil && !isAggregate(i.Dst.Type()) {
		if i.Dst.Type().Kind() == types.KindDouble {
			f.emit(asmir.MovSD{Src: asmir.Reg{Reg: asmir.XMM0}, Dst: f.operand(i.Dst)})
		} else {
			f.emit(asmir.Mov{Width: width(i.Dst.Type()), Src: asmir.Reg{Reg: asmir.AX}, Dst: f.operand(i.Dst)})
		}
	}
}

func (f *fb) calleeReturnsAggregate(i tac.Call) types.Type {
	if i.Dst == nil {
		return types.Void{}
	}
	if isAggregate(i.Dst.Type()) {
		return i.Dst.Type()
	}
	return types.Void{}
}

func (f *fb) pushAggregate(a tac.Value) {
	size := roundUp(types.SizeOf(a.Type()), 8)
	f.emit(asmir.Sub{Width: 8, Src: asmir.Imm{Value: size}, Dst: asmir.Reg{Reg: asmir.SP}})
	f.copyAggregate(asmir.Mem{Base: asmir.SP, Disp: 0}, f.operand(a), types.SizeOf(a.Type()))
}
