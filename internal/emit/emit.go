// Package emit renders a legalized internal/asmir program as AT&T-
// syntax x86-64 assembly text (spec §4.6 second half, §6): the code
// section for every function, the pooled floating-point constant pool,
// and the data/bss/rodata sections for every file-scope or static
// object internal/tac produced.
//
// The per-instruction rendering follows `ajroetker-goat/parser_amd64.go`'s
// Line.String(): a strings.Builder accumulating one formatted line at
// a time, with the directive mnemonic chosen by operand width the same
// way that file chooses QUAD/LONG/WORD/BYTE by remaining byte count -
// generalized here from Go assembler's uppercase directives to GAS's
// `.quad`/`.long`/`.word`/`.byte`, and from a Go-ABI register set to
// the full x86-64 one. Its buildTarget (`runtime.GOOS == "darwin"`)
// generalizes to platform.go's symbol-decoration switch.
package emit

import (
	"io"
	"strings"

	"github.com/cc-core/cc/internal/asmir"
	"github.com/cc-core/cc/internal/tac"
)

// Program renders prog's functions and float pool plus statics' data
// sections to w.
func Program(w io.Writer, prog *asmir.Program, statics []*tac.StaticObject) error {
	var b strings.Builder

	b.WriteString("\t.text\n")
	for _, fn := range prog.Functions {
		writeFunction(&b, fn)
	}

	writeFloats(&b, prog.Floats)
	writeStatics(&b, statics)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFunction(b *strings.Builder, fn *asmir.Function) {
	for _, instr := range fn.Body {
		writeInstr(b, instr)
	}
}
