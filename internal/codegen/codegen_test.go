package codegen

import (
	"strings"
	"testing"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/frontend"
	"github.com/cc-core/cc/internal/sema"
	"github.com/cc-core/cc/internal/tac"
)

func lowerSource(t *testing.T, src string) *asmir.Program {
	t.Helper()
	prog, err := frontend.Parse("t.c", strings.NewReader(src), frontend.DefaultTarget)
	if err != nil {
		t.Fatalf("frontend.Parse: %v", err)
	}
	res, err := sema.Analyze(prog)
	if err != nil {
		t.Fatalf("sema.Analyze: %v", err)
	}
	tprog, err := tac.LowerProgram(res)
	if err != nil {
		t.Fatalf("tac.LowerProgram: %v", err)
	}
	asmProg, err := Lower(tprog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return asmProg
}

func TestLowerFunctionHasPrologueAndEpilogue(t *testing.T) {
	asmProg := lowerSource(t, `int add(int a, int b) { return a + b; }`)
	if len(asmProg.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(asmProg.Functions))
	}
	fn := asmProg.Functions[0]
	if fn.Name != "add" || !fn.Global {
		t.Errorf("fn = %+v, want global add", fn)
	}
	if len(fn.Body) < 4 {
		t.Fatalf("fn.Body too short: %#v", fn.Body)
	}
	if _, ok := fn.Body[0].(asmir.Global); !ok {
		t.Errorf("Body[0] = %T, want asmir.Global", fn.Body[0])
	}
	if _, ok := fn.Body[1].(asmir.Label); !ok {
		t.Errorf("Body[1] = %T, want asmir.Label", fn.Body[1])
	}
	push, ok := fn.Body[2].(asmir.Push)
	if !ok || push.Src != (asmir.Reg{Reg: asmir.BP}) {
		t.Errorf("Body[2] = %#v, want push %%rbp", fn.Body[2])
	}
	last := fn.Body[len(fn.Body)-1]
	if _, ok := last.(asmir.Ret); !ok {
		t.Errorf("last instruction = %T, want asmir.Ret", last)
	}
}

func TestLowerParamsMoveFromArgRegisters(t *testing.T) {
	asmProg := lowerSource(t, `int add(int a, int b) { return a + b; }`)
	fn := asmProg.Functions[0]
	var movsFromArgRegs int
	for _, instr := range fn.Body {
		if mov, ok := instr.(asmir.Mov); ok {
			if r, ok := mov.Src.(asmir.Reg); ok && (r.Reg == asmir.DI || r.Reg == asmir.SI) {
				movsFromArgRegs++
			}
		}
	}
	if movsFromArgRegs != 2 {
		t.Errorf("got %d moves from DI/SI, want 2 (one per parameter)", movsFromArgRegs)
	}
}

func TestLowerFloatLiteralPoolsOneConstant(t *testing.T) {
	asmProg := lowerSource(t, `double two(void) { return 1.5 + 1.5; }`)
	if len(asmProg.Floats) != 1 {
		t.Fatalf("got %d pooled float constants, want 1 (same bit pattern reused)", len(asmProg.Floats))
	}
}

func TestLowerDivisionEmitsCdqBeforeIDiv(t *testing.T) {
	asmProg := lowerSource(t, `int div(int a, int b) { return a / b; }`)
	fn := asmProg.Functions[0]
	var cdqIdx, idivIdx = -1, -1
	for i, instr := range fn.Body {
		switch instr.(type) {
		case asmir.Cdq:
			cdqIdx = i
		case asmir.IDiv:
			idivIdx = i
		}
	}
	if cdqIdx < 0 || idivIdx < 0 {
		t.Fatalf("Cdq/IDiv not both found: cdq=%d idiv=%d in %#v", cdqIdx, idivIdx, fn.Body)
	}
	if cdqIdx >= idivIdx {
		t.Errorf("Cdq must come before IDiv, got cdq=%d idiv=%d", cdqIdx, idivIdx)
	}
}
