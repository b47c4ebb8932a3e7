// Package pipeline composes the compiler's stages (spec.md §2, §5)
// into the single plan-of-record value ajroetker-goat/main.go's
// TranslateUnit models for its own assemble-and-link pipeline: one
// struct carrying the source name and target, and one method that
// drives every stage in order and aborts on the first error, the
// same shape TranslateUnit.Translate drives parseSource ->
// generateGoStubs -> compile -> TranslateAssembly in.
package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cc-core/cc/internal/codegen"
	"github.com/cc-core/cc/internal/emit"
	"github.com/cc-core/cc/internal/fixup"
	"github.com/cc-core/cc/internal/frontend"
	"github.com/cc-core/cc/internal/optimize"
	"github.com/cc-core/cc/internal/regalloc"
	"github.com/cc-core/cc/internal/sema"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tac"
)

// Unit is one translation unit's compilation plan: a source name (used
// for diagnostics and as the file the frontend keeps top-level
// declarations from) and a target triple.
type Unit struct {
	Name   string
	Target frontend.Target
}

// NewUnit builds a Unit for name, defaulting Target when the zero
// value is given.
func NewUnit(name string, target frontend.Target) Unit {
	if target == (frontend.Target{}) {
		target = frontend.DefaultTarget
	}
	return Unit{Name: name, Target: target}
}

// Result bundles a translation unit's emitted assembly with the
// symbol table later tooling (a driver linking multiple units, a test
// asserting on a particular symbol) may want to consult.
type Result struct {
	Assembly string
	Symbols  *symtab.Table
	Tags     *symtab.TagTable
}

// Translate runs every stage of the pipeline over src in order:
// parse, semantic analysis, TAC lowering, optimization, code
// generation, register allocation, instruction fixup, and assembly
// emission. It returns the first error encountered, exactly like
// ajroetker-goat/main.go's Translate returning as soon as parseSource,
// generateGoStubs, compile, or TranslateAssembly fails.
func (u Unit) Translate(src io.Reader) (*Result, error) {
	prog, err := frontend.Parse(u.Name, src, u.Target)
	if err != nil {
		return nil, err
	}

	res, err := sema.Analyze(prog)
	if err != nil {
		return nil, err
	}

	tprog, err := tac.LowerProgram(res)
	if err != nil {
		return nil, err
	}

	optimize.Run(tprog)

	asmProg, err := codegen.Lower(tprog)
	if err != nil {
		return nil, err
	}

	if err := regalloc.Allocate(asmProg, tprog.Symbols); err != nil {
		return nil, fmt.Errorf("pipeline: allocate registers for %s: %w", u.Name, err)
	}

	if err := fixup.Legalize(asmProg); err != nil {
		return nil, fmt.Errorf("pipeline: legalize %s: %w", u.Name, err)
	}

	var buf bytes.Buffer
	if err := emit.Program(&buf, asmProg, tprog.Statics); err != nil {
		return nil, fmt.Errorf("pipeline: emit %s: %w", u.Name, err)
	}

	return &Result{Assembly: buf.String(), Symbols: tprog.Symbols, Tags: tprog.Tags}, nil
}
