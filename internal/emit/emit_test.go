package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

func TestRegNameSelectsWidthVariant(t *testing.T) {
	cases := []struct {
		width int
		want  string
	}{
		{8, "%rax"}, {4, "%eax"}, {2, "%ax"}, {1, "%al"},
	}
	for _, c := range cases {
		if got := regName(asmir.AX, c.width); got != c.want {
			t.Errorf("regName(AX, %d) = %q, want %q", c.width, got, c.want)
		}
	}
	if got := regName(asmir.R12, 4); got != "%r12d" {
		t.Errorf("regName(R12, 4) = %q, want %%r12d", got)
	}
}

func TestWriteInstrMovRendersATTOrder(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.Mov{Width: 8, Src: asmir.Reg{Reg: asmir.AX}, Dst: asmir.Reg{Reg: asmir.CX}})
	if got := b.String(); got != "\tmovq %rax, %rcx\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteInstrMemOperandRendersDisplacement(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.Mov{Width: 4, Src: asmir.Mem{Base: asmir.BP, Disp: -16}, Dst: asmir.Reg{Reg: asmir.AX}})
	if got := b.String(); got != "\tmovl -16(%rbp), %eax\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteInstrCallDecoratesTargetPerPlatform(t *testing.T) {
	defer func(d bool) { darwin = d }(darwin)

	darwin = false
	var linux strings.Builder
	writeInstr(&linux, asmir.Call{Target: "printf"})
	if got := linux.String(); got != "\tcall printf@PLT\n" {
		t.Errorf("linux: got %q", got)
	}

	darwin = true
	var mac strings.Builder
	writeInstr(&mac, asmir.Call{Target: "printf"})
	if got := mac.String(); got != "\tcall _printf\n" {
		t.Errorf("darwin: got %q", got)
	}
}

func TestWriteInstrSetCCUsesByteOperand(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.SetCC{Cond: asmir.L, Dst: asmir.Reg{Reg: asmir.AX}})
	if got := b.String(); got != "\tsetl %al\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteInstrMovZX32To64FoldsToPlainMovl(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.MovZX{SrcWidth: 4, DstWidth: 8, Src: asmir.Reg{Reg: asmir.AX}, Dst: asmir.Reg{Reg: asmir.AX}})
	if got := b.String(); got != "\tmovl %eax, %eax\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteInstrMovZX8To32UsesMovzbl(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.MovZX{SrcWidth: 1, DstWidth: 4, Src: asmir.Reg{Reg: asmir.AX}, Dst: asmir.Reg{Reg: asmir.CX}})
	if got := b.String(); got != "\tmovzbl %al, %ecx\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteInstrAllocateDeallocateStackAreEachASingleAdjustment(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.AllocateStack{Bytes: 32})
	writeInstr(&b, asmir.DeallocateStack{Bytes: 16})
	want := "\tsubq $32, %rsp\n\taddq $16, %rsp\n"
	if got := b.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteInstrSSEArithKeepsXMMOperandsAtFullWidth(t *testing.T) {
	var b strings.Builder
	writeInstr(&b, asmir.AddSD{Src: asmir.Reg{Reg: asmir.XMM1}, Dst: asmir.Reg{Reg: asmir.XMM0}})
	if got := b.String(); got != "\taddsd %xmm1, %xmm0\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteObjectFillsGapsBetweenInitEntriesWithZero(t *testing.T) {
	obj := &tac.StaticObject{
		Name:  "arr",
		Size:  16,
		Align: 8,
		Init: []symtab.StaticInit{
			{Offset: 0, Value: &symtab.ScalarConst{Type: types.Int{Width: 4, Signed: true}, Int: 7}},
		},
	}
	var b strings.Builder
	writeObject(&b, obj)
	got := b.String()
	if !strings.Contains(got, "\t.long 7\n") {
		t.Errorf("missing initializer line, got %q", got)
	}
	if !strings.Contains(got, "\t.zero 12\n") {
		t.Errorf("missing trailing zero fill, got %q", got)
	}
}

func TestWriteObjectBssEmitsZeroOnly(t *testing.T) {
	obj := &tac.StaticObject{Name: "g", Size: 8, Align: 8, Init: nil}
	var b strings.Builder
	writeObject(&b, obj)
	if got := b.String(); !strings.Contains(got, "\t.zero 8\n") {
		t.Errorf("got %q", got)
	}
}

func TestWriteScalarConstLabelEmitsQuad(t *testing.T) {
	var b strings.Builder
	writeScalarConst(&b, &symtab.ScalarConst{Type: types.Pointer{}, Label: "target"})
	if got := b.String(); got != "\t.quad target\n" {
		t.Errorf("got %q", got)
	}
}

func TestProgramRendersTextSectionAndFunctionLabel(t *testing.T) {
	prog := &asmir.Program{
		Functions: []*asmir.Function{{
			Name: "main",
			Body: []asmir.Instr{
				asmir.Global{Name: "main"},
				asmir.Label{Name: "main"},
				asmir.Mov{Width: 4, Src: asmir.Imm{Value: 0}, Dst: asmir.Reg{Reg: asmir.AX}},
				asmir.Ret{},
			},
		}},
	}
	var buf bytes.Buffer
	if err := Program(&buf, prog, nil); err != nil {
		t.Fatalf("Program: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\t.text\n") {
		t.Errorf("missing .text header, got %q", out)
	}
	if !strings.Contains(out, ".globl") || !strings.Contains(out, "main:") {
		t.Errorf("missing function label, got %q", out)
	}
}
