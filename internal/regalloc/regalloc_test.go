package regalloc

import (
	"fmt"
	"testing"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/types"
)

func intSym(t *testing.T, syms *symtab.Table, name string) symtab.SymbolID {
	t.Helper()
	return syms.New(name, types.Int{Width: 8, Signed: true}).ID
}

// collectOperands walks instr via mapOperands purely to observe every
// operand it carries, the same traversal internal/fixup and
// internal/emit will eventually need to inspect a colored function.
func collectOperands(instr asmir.Instr) []asmir.Operand {
	var ops []asmir.Operand
	mapOperands(instr, func(op asmir.Operand) asmir.Operand {
		ops = append(ops, op)
		return op
	})
	return ops
}

func assertNoPseudos(t *testing.T, body []asmir.Instr) {
	t.Helper()
	for i, instr := range body {
		for _, op := range collectOperands(instr) {
			if p, ok := op.(asmir.Pseudo); ok {
				t.Fatalf("instruction %d (%T) still carries uncolored pseudo %v", i, instr, p)
			}
		}
	}
}

func allocateStackBytes(body []asmir.Instr) int64 {
	for _, instr := range body {
		if a, ok := instr.(asmir.AllocateStack); ok {
			return a.Bytes
		}
	}
	return -1
}

// TestAllocateColorsLowPressurePseudosToRegisters checks the
// uncontended case: three scalars, far fewer than the GP class has
// colors for (a and b are live together, as are b and c), should all
// land in registers, with no spill area added to the frame.
func TestAllocateColorsLowPressurePseudosToRegisters(t *testing.T) {
	syms := symtab.NewTable()
	a := asmir.Pseudo{Symbol: intSym(t, syms, "a"), Class: asmir.GP}
	b := asmir.Pseudo{Symbol: intSym(t, syms, "b"), Class: asmir.GP}
	c := asmir.Pseudo{Symbol: intSym(t, syms, "c"), Class: asmir.GP}

	fn := &asmir.Function{
		Name:   "f",
		Global: true,
		Body: []asmir.Instr{
			asmir.Global{Name: "f"},
			asmir.Label{Name: "f"},
			asmir.AllocateStack{Bytes: 0},
			asmir.Mov{Width: 8, Src: asmir.Imm{Value: 1}, Dst: a},
			asmir.Mov{Width: 8, Src: asmir.Imm{Value: 2}, Dst: b},
			asmir.Mov{Width: 8, Src: a, Dst: c},
			asmir.Add{Width: 8, Src: b, Dst: c},
			asmir.Mov{Width: 8, Src: c, Dst: asmir.Reg{Reg: asmir.AX}},
			asmir.Label{Name: ".Lepilogue.f"},
			asmir.Ret{},
		},
	}
	prog := &asmir.Program{Functions: []*asmir.Function{fn}}

	if err := Allocate(prog, syms); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	assertNoPseudos(t, fn.Body)
	if got := allocateStackBytes(fn.Body); got != 0 {
		t.Fatalf("expected no spill area for three low-pressure scalars, got %d bytes", got)
	}
}

// TestAllocateSpillsUnderRegisterPressure forces fourteen GP values to
// be simultaneously live - two more than internal/asmir.GPRegisters
// has colors for - by defining them all before consuming any of
// them, and checks the allocator spills rather than failing, growing
// the frame and leaving every operand resolved to either a register
// or a (pre-fixup) stack slot.
func TestAllocateSpillsUnderRegisterPressure(t *testing.T) {
	syms := symtab.NewTable()
	const n = len(asmir.GPRegisters) + 2

	body := []asmir.Instr{
		asmir.Global{Name: "f"},
		asmir.Label{Name: "f"},
		asmir.AllocateStack{Bytes: 0},
	}
	var pseudos []asmir.Operand
	for i := 0; i < n; i++ {
		p := asmir.Pseudo{Symbol: intSym(t, syms, fmt.Sprintf("v%d", i)), Class: asmir.GP}
		pseudos = append(pseudos, p)
		body = append(body, asmir.Mov{Width: 8, Src: asmir.Imm{Value: int64(i)}, Dst: p})
	}
	body = append(body, asmir.Mov{Width: 8, Src: pseudos[0], Dst: asmir.Reg{Reg: asmir.AX}})
	for i := 1; i < n; i++ {
		body = append(body, asmir.Add{Width: 8, Src: pseudos[i], Dst: asmir.Reg{Reg: asmir.AX}})
	}
	body = append(body, asmir.Label{Name: ".Lepilogue.f"}, asmir.Ret{})

	fn := &asmir.Function{Name: "f", Global: true, Body: body}
	prog := &asmir.Program{Functions: []*asmir.Function{fn}}

	if err := Allocate(prog, syms); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	assertNoPseudos(t, fn.Body)
	if got := allocateStackBytes(fn.Body); got <= 0 {
		t.Fatalf("expected a non-empty spill area with %d simultaneously live values and %d registers, got %d bytes",
			n, len(asmir.GPRegisters), got)
	}

	var sawStackSlot bool
	for _, instr := range fn.Body {
		for _, op := range collectOperands(instr) {
			if _, ok := op.(asmir.StackSlot); ok {
				sawStackSlot = true
			}
		}
	}
	if !sawStackSlot {
		t.Fatalf("expected at least one asmir.StackSlot reload/spill once pressure exceeded the register file")
	}
}
