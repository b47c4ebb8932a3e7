package regalloc

import (
	"testing"

	"github.com/cc-core/cc/internal/asmir"
)

func TestDefsUsesIDivNamesAXAndDX(t *testing.T) {
	divisor := asmir.Pseudo{Symbol: 7, Class: asmir.GP}
	defs, uses := defsUses(asmir.IDiv{Width: 8, Src: divisor})

	if !containsReg(defs, asmir.AX) || !containsReg(defs, asmir.DX) {
		t.Fatalf("idiv must define AX and DX, got %v", defs)
	}
	if !containsReg(uses, asmir.AX) || !containsReg(uses, asmir.DX) || !containsOperand(uses, divisor) {
		t.Fatalf("idiv must use AX, DX and its divisor operand, got %v", uses)
	}
}

func TestDefsUsesShlNamesImplicitCX(t *testing.T) {
	dst := asmir.Pseudo{Symbol: 3, Class: asmir.GP}
	_, uses := defsUses(asmir.Shl{Width: 4, Dst: dst})
	if !containsReg(uses, asmir.CX) {
		t.Fatalf("shl must read the implicit shift count from CX, got %v", uses)
	}
}

func TestDefsUsesCallClobbersCallerSaved(t *testing.T) {
	defs, _ := defsUses(asmir.Call{Target: "f"})
	if !containsReg(defs, asmir.AX) || !containsReg(defs, asmir.XMM0) {
		t.Fatalf("call must clobber both AX and XMM0, got %v", defs)
	}
	if containsReg(defs, asmir.BX) || containsReg(defs, asmir.R12) {
		t.Fatalf("call must not clobber a callee-saved register, got %v", defs)
	}
}

func TestMapOperandsRewritesBothSides(t *testing.T) {
	src := asmir.Pseudo{Symbol: 1, Class: asmir.GP}
	dst := asmir.Pseudo{Symbol: 2, Class: asmir.GP}
	instr := asmir.Mov{Width: 8, Src: src, Dst: dst}

	rewritten := mapOperands(instr, func(op asmir.Operand) asmir.Operand {
		if p, ok := op.(asmir.Pseudo); ok {
			return asmir.Reg{Reg: asmir.PhysReg(int(p.Symbol))}
		}
		return op
	})

	mov, ok := rewritten.(asmir.Mov)
	if !ok {
		t.Fatalf("expected asmir.Mov, got %T", rewritten)
	}
	if mov.Src != (asmir.Reg{Reg: asmir.PhysReg(1)}) || mov.Dst != (asmir.Reg{Reg: asmir.PhysReg(2)}) {
		t.Fatalf("mapOperands left an operand unrewritten: %+v", mov)
	}
}

func containsReg(ops []asmir.Operand, r asmir.PhysReg) bool {
	return containsOperand(ops, asmir.Reg{Reg: r})
}

func containsOperand(ops []asmir.Operand, want asmir.Operand) bool {
	for _, op := range ops {
		if op == want {
			return true
		}
	}
	return false
}
