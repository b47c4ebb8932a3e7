package fixup

import (
	"testing"

	"github.com/cc-core/cc/internal/asmir"
)

func memMem(width int, rebuild func(s, d asmir.Operand) asmir.Instr) []asmir.Instr {
	src := asmir.Mem{Base: asmir.BP, Disp: -8}
	dst := asmir.Mem{Base: asmir.BP, Disp: -16}
	return legalizeInstr(rebuild(src, dst))
}

func TestLegalizeMovMemToMemStagesThroughScratch(t *testing.T) {
	out := memMem(8, func(s, d asmir.Operand) asmir.Instr { return asmir.Mov{Width: 8, Src: s, Dst: d} })
	if len(out) != 2 {
		t.Fatalf("want 2 instructions, got %d: %#v", len(out), out)
	}
	load, ok := out[0].(asmir.Mov)
	if !ok || load.Dst != (asmir.Reg{Reg: asmir.ScratchGP}) {
		t.Fatalf("first instruction should load into ScratchGP, got %#v", out[0])
	}
	store, ok := out[1].(asmir.Mov)
	if !ok || store.Src != (asmir.Reg{Reg: asmir.ScratchGP}) {
		t.Fatalf("second instruction should store from ScratchGP, got %#v", out[1])
	}
	if store.Dst != (asmir.Mem{Base: asmir.BP, Disp: -16}) {
		t.Fatalf("store destination should be the original Dst, got %#v", store.Dst)
	}
}

func TestLegalizeAddMemToMemStagesSrcOnly(t *testing.T) {
	out := memMem(4, func(s, d asmir.Operand) asmir.Instr { return asmir.Add{Width: 4, Src: s, Dst: d} })
	if len(out) != 2 {
		t.Fatalf("want 2 instructions, got %d", len(out))
	}
	add, ok := out[1].(asmir.Add)
	if !ok {
		t.Fatalf("second instruction should be the Add, got %#v", out[1])
	}
	if add.Src != (asmir.Reg{Reg: asmir.ScratchGP}) {
		t.Fatalf("Add's Src should be rewritten to ScratchGP, got %#v", add.Src)
	}
	if add.Dst != (asmir.Mem{Base: asmir.BP, Disp: -16}) {
		t.Fatalf("Add's Dst should stay the original memory operand, got %#v", add.Dst)
	}
}

func TestLegalizeMovWideImmIntoMemoryStagesThroughScratch(t *testing.T) {
	dst := asmir.Mem{Base: asmir.BP, Disp: -8}
	out := legalizeInstr(asmir.Mov{Width: 8, Src: asmir.Imm{Value: 1 << 40}, Dst: dst})
	if len(out) != 2 {
		t.Fatalf("want 2 instructions, got %d: %#v", len(out), out)
	}
	load, ok := out[0].(asmir.Mov)
	if !ok || load.Src != (asmir.Imm{Value: 1 << 40}) || load.Dst != (asmir.Reg{Reg: asmir.ScratchGP}) {
		t.Fatalf("first instruction should load the wide immediate into ScratchGP, got %#v", out[0])
	}
}

func TestLegalizeMovWideImmIntoRegisterStaysSingleInstruction(t *testing.T) {
	dst := asmir.Reg{Reg: asmir.AX}
	out := legalizeInstr(asmir.Mov{Width: 8, Src: asmir.Imm{Value: 1 << 40}, Dst: dst})
	if len(out) != 1 {
		t.Fatalf("movabs into a register needs no legalization, got %d instructions: %#v", len(out), out)
	}
}

func TestLegalizeIMulMemoryDestinationRoundTrips(t *testing.T) {
	dst := asmir.Mem{Base: asmir.BP, Disp: -8}
	out := legalizeInstr(asmir.IMul{Width: 8, Src: asmir.Imm{Value: 3}, Dst: dst})
	if len(out) != 3 {
		t.Fatalf("want load, imul, store, got %d: %#v", len(out), out)
	}
	if _, ok := out[1].(asmir.IMul); !ok {
		t.Fatalf("middle instruction should be the IMul, got %#v", out[1])
	}
	store, ok := out[2].(asmir.Mov)
	if !ok || store.Dst != dst {
		t.Fatalf("last instruction should store back to the original Dst, got %#v", out[2])
	}
}

func TestLegalizeIMulBothOperandsMemoryUsesBothScratchRegisters(t *testing.T) {
	src := asmir.Mem{Base: asmir.BP, Disp: -8}
	dst := asmir.Mem{Base: asmir.BP, Disp: -16}
	out := legalizeInstr(asmir.IMul{Width: 8, Src: src, Dst: dst})
	if len(out) != 4 {
		t.Fatalf("want load-dst, load-src, imul, store, got %d: %#v", len(out), out)
	}
	imul, ok := out[2].(asmir.IMul)
	if !ok {
		t.Fatalf("third instruction should be the IMul, got %#v", out[2])
	}
	if imul.Src != (asmir.Reg{Reg: asmir.ScratchGP2}) || imul.Dst != (asmir.Reg{Reg: asmir.ScratchGP}) {
		t.Fatalf("IMul should use ScratchGP for Dst and ScratchGP2 for Src, got %#v", imul)
	}
}

func TestLegalizeAddSDMemoryDestinationStagesThroughXMMScratch(t *testing.T) {
	dst := asmir.Mem{Base: asmir.BP, Disp: -8}
	out := legalizeInstr(asmir.AddSD{Src: asmir.Reg{Reg: asmir.XMM0}, Dst: dst})
	if len(out) != 3 {
		t.Fatalf("want load, addsd, store, got %d: %#v", len(out), out)
	}
	add, ok := out[1].(asmir.AddSD)
	if !ok || add.Dst != (asmir.Reg{Reg: asmir.ScratchXMM}) {
		t.Fatalf("AddSD's Dst should be rewritten to ScratchXMM, got %#v", out[1])
	}
	store, ok := out[2].(asmir.MovSD)
	if !ok || store.Dst != dst {
		t.Fatalf("last instruction should store back to the original memory Dst, got %#v", out[2])
	}
}

func TestLegalizeCvtSI2SDMemoryDestinationStoresBack(t *testing.T) {
	dst := asmir.Mem{Base: asmir.BP, Disp: -8}
	out := legalizeInstr(asmir.CvtSI2SD{Width: 8, Src: asmir.Reg{Reg: asmir.AX}, Dst: dst})
	if len(out) != 2 {
		t.Fatalf("want convert-then-store, got %d: %#v", len(out), out)
	}
	conv, ok := out[0].(asmir.CvtSI2SD)
	if !ok || conv.Dst != (asmir.Reg{Reg: asmir.ScratchXMM}) {
		t.Fatalf("conversion should target ScratchXMM, got %#v", out[0])
	}
}

func TestLegalizePushXMMExpandsToStackAdjustAndMove(t *testing.T) {
	out := legalizeInstr(asmir.Push{Src: asmir.Reg{Reg: asmir.XMM3}})
	if len(out) != 2 {
		t.Fatalf("want 2 instructions, got %d: %#v", len(out), out)
	}
	if _, ok := out[0].(asmir.Sub); !ok {
		t.Fatalf("first instruction should adjust %%rsp, got %#v", out[0])
	}
	mov, ok := out[1].(asmir.MovSD)
	if !ok || mov.Src != (asmir.Reg{Reg: asmir.XMM3}) {
		t.Fatalf("second instruction should store XMM3, got %#v", out[1])
	}
}

func TestLegalizePushGPRegisterIsUnchanged(t *testing.T) {
	out := legalizeInstr(asmir.Push{Src: asmir.Reg{Reg: asmir.AX}})
	if len(out) != 1 {
		t.Fatalf("pushing a GP register needs no legalization, got %d: %#v", len(out), out)
	}
}

func TestResolveStackSlotsPlacesSpillAreaBelowFixedFrame(t *testing.T) {
	body := []asmir.Instr{
		asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.DI}, Dst: asmir.Mem{Base: asmir.BP, Disp: -8}},
		asmir.Mov{Width: 8, Src: asmir.StackSlot{Index: 0}, Dst: asmir.Reg{Reg: asmir.AX}},
		asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.AX}, Dst: asmir.StackSlot{Index: 1}},
	}
	out := resolveStackSlots(body)

	reload, ok := out[1].(asmir.Mov)
	if !ok {
		t.Fatalf("expected Mov, got %#v", out[1])
	}
	mem, ok := reload.Src.(asmir.Mem)
	if !ok || mem.Base != asmir.BP || mem.Disp != -16 {
		t.Fatalf("slot 0 should resolve to -16(%%rbp), got %#v", reload.Src)
	}

	store, ok := out[2].(asmir.Mov)
	if !ok {
		t.Fatalf("expected Mov, got %#v", out[2])
	}
	mem, ok = store.Dst.(asmir.Mem)
	if !ok || mem.Base != asmir.BP || mem.Disp != -24 {
		t.Fatalf("slot 1 should resolve to -24(%%rbp), got %#v", store.Dst)
	}
}

func TestResolveStackSlotsWithNoFixedFrameStartsAtMinusEight(t *testing.T) {
	body := []asmir.Instr{
		asmir.Mov{Width: 8, Src: asmir.StackSlot{Index: 0}, Dst: asmir.Reg{Reg: asmir.AX}},
	}
	out := resolveStackSlots(body)
	reload := out[0].(asmir.Mov)
	mem := reload.Src.(asmir.Mem)
	if mem.Disp != -8 {
		t.Fatalf("with no fixed frame, slot 0 should resolve to -8(%%rbp), got %d", mem.Disp)
	}
}

func TestLegalizeBodyExpandsEveryIllegalInstruction(t *testing.T) {
	body := []asmir.Instr{
		asmir.Mov{Width: 8, Src: asmir.Mem{Base: asmir.BP, Disp: -8}, Dst: asmir.Mem{Base: asmir.BP, Disp: -16}},
		asmir.Ret{},
	}
	out := legalizeBody(body)
	if len(out) != 3 {
		t.Fatalf("want 2 expanded + Ret, got %d: %#v", len(out), out)
	}
	if _, ok := out[2].(asmir.Ret); !ok {
		t.Fatalf("Ret should pass through untouched, got %#v", out[2])
	}
}
