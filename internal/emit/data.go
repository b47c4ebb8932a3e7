package emit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
	"github.com/cc-core/cc/internal/types"
)

// writeFloats emits the pooled floating-point constant pool internal/
// codegen built up while lowering every double literal it encountered
// (spec §4.4's "no move-immediate-into-XMM form" rule): each constant
// addressed PC-relatively from its own 8-byte-aligned .rodata slot.
func writeFloats(b *strings.Builder, floats []asmir.FloatConst) {
	if len(floats) == 0 {
		return
	}
	b.WriteString("\t.section .rodata\n")
	for _, f := range floats {
		fmt.Fprintf(b, "\t.align 8\n%s:\n\t.quad 0x%016x\n", symbolName(f.Label), f.Bits)
	}
}

// writeStatics emits every file-scope or block-static object's data
// section: read-only string-literal pools to .rodata, a zero-
// initialized tentative definition to .bss, and everything else to
// .data.
func writeStatics(b *strings.Builder, statics []*tac.StaticObject) {
	rodata := lo.Filter(statics, func(s *tac.StaticObject, _ int) bool { return s.ReadOnly })
	bss := lo.Filter(statics, func(s *tac.StaticObject, _ int) bool { return !s.ReadOnly && s.Init == nil })
	data := lo.Filter(statics, func(s *tac.StaticObject, _ int) bool { return !s.ReadOnly && s.Init != nil })

	if len(rodata) > 0 {
		b.WriteString("\t.section .rodata\n")
		for _, s := range rodata {
			writeObject(b, s)
		}
	}
	if len(data) > 0 {
		b.WriteString("\t.data\n")
		for _, s := range data {
			writeObject(b, s)
		}
	}
	if len(bss) > 0 {
		b.WriteString("\t.bss\n")
		for _, s := range bss {
			writeObject(b, s)
		}
	}
}

func writeObject(b *strings.Builder, s *tac.StaticObject) {
	if s.Global {
		fmt.Fprintf(b, "\t.globl %s\n", symbolName(s.Name))
	}
	fmt.Fprintf(b, "\t.align %d\n%s:\n", s.Align, symbolName(s.Name))

	if s.Init == nil {
		fmt.Fprintf(b, "\t.zero %d\n", s.Size)
		return
	}

	init := append([]symtab.StaticInit(nil), s.Init...)
	sort.Slice(init, func(i, j int) bool { return init[i].Offset < init[j].Offset })

	pos := int64(0)
	for _, it := range init {
		if it.Offset > pos {
			fmt.Fprintf(b, "\t.zero %d\n", it.Offset-pos)
		}
		if it.Value == nil {
			fmt.Fprintf(b, "\t.zero %d\n", it.Zero)
			pos = it.Offset + it.Zero
			continue
		}
		writeScalarConst(b, it.Value)
		pos = it.Offset + types.SizeOf(it.Value.Type)
	}
	if pos < s.Size {
		fmt.Fprintf(b, "\t.zero %d\n", s.Size-pos)
	}
}

func writeScalarConst(b *strings.Builder, c *symtab.ScalarConst) {
	if c.Label != "" {
		fmt.Fprintf(b, "\t.quad %s\n", symbolName(c.Label))
		return
	}
	if c.Type.Kind() == types.KindDouble {
		fmt.Fprintf(b, "\t.quad 0x%016x\n", math.Float64bits(c.Double))
		return
	}
	switch types.SizeOf(c.Type) {
	case 1:
		fmt.Fprintf(b, "\t.byte %d\n", uint8(c.Int))
	case 2:
		fmt.Fprintf(b, "\t.word %d\n", uint16(c.Int))
	case 4:
		fmt.Fprintf(b, "\t.long %d\n", uint32(c.Int))
	default:
		fmt.Fprintf(b, "\t.quad %d\n", c.Int)
	}
}
