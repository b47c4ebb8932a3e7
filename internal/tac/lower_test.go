package tac_test

import (
	"testing"

	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/sema"
	"github.com/cc-core/cc/internal/tac"
)

var intType = ast.IntSpec{Width: 4, Signed: true}

func pos(line int) ast.Pos { return ast.Pos{File: "test.c", Line: line} }

// intMain builds `int main(void) { <body...> }`.
func intMain(body ...ast.Node) *ast.Program {
	return &ast.Program{Decls: []ast.Decl{
		&ast.FuncDecl{
			Pos:    pos(1),
			Name:   "main",
			Return: intType,
			Body:   &ast.CompoundStmt{Pos: pos(1), Items: body},
		},
	}}
}

func analyzeAndLower(t *testing.T, prog *ast.Program) *tac.Program {
	t.Helper()
	res, err := sema.Analyze(prog)
	if err != nil {
		t.Fatalf("sema.Analyze: %v", err)
	}
	out, err := tac.LowerProgram(res)
	if err != nil {
		t.Fatalf("tac.LowerProgram: %v", err)
	}
	return out
}

func mainFn(t *testing.T, prog *tac.Program) *tac.Function {
	t.Helper()
	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			return fn
		}
	}
	t.Fatalf("no main function lowered")
	return nil
}

func TestLowerReturnConstant(t *testing.T) {
	prog := intMain(&ast.ReturnStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 42, Type: intType}})
	out := analyzeAndLower(t, prog)
	fn := mainFn(t, out)

	if len(fn.Body) != 1 {
		t.Fatalf("expected exactly one instruction, got %d: %#v", len(fn.Body), fn.Body)
	}
	ret, ok := fn.Body[0].(tac.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body[0])
	}
	c, ok := ret.Value.(tac.Const)
	if !ok || c.C.Int != 42 {
		t.Fatalf("expected Const(42), got %#v", ret.Value)
	}
}

func TestLowerFallsOffEndImpliesZeroReturn(t *testing.T) {
	prog := intMain(&ast.ExprStmt{Pos: pos(1), X: &ast.IntLit{Pos: pos(1), Value: 0, Type: intType}})
	out := analyzeAndLower(t, prog)
	fn := mainFn(t, out)

	last, ok := fn.Body[len(fn.Body)-1].(tac.Return)
	if !ok {
		t.Fatalf("expected function to end in a Return, last was %T", fn.Body[len(fn.Body)-1])
	}
	if c, ok := last.Value.(tac.Const); !ok || c.C.Int != 0 {
		t.Fatalf("expected implicit return of 0, got %#v", last.Value)
	}
}

func TestLowerIfElse(t *testing.T) {
	prog := intMain(
		&ast.IfStmt{
			Pos:  pos(1),
			Cond: &ast.IntLit{Pos: pos(1), Value: 1, Type: intType},
			Then: &ast.ReturnStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 1, Type: intType}},
			Else: &ast.ReturnStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 2, Type: intType}},
		},
	)
	out := analyzeAndLower(t, prog)
	fn := mainFn(t, out)

	var jz, jmp, labels int
	for _, instr := range fn.Body {
		switch instr.(type) {
		case tac.JumpIfZero:
			jz++
		case tac.Jump:
			jmp++
		case tac.Label:
			labels++
		}
	}
	if jz != 1 {
		t.Errorf("expected exactly one JumpIfZero, got %d", jz)
	}
	if jmp != 1 {
		t.Errorf("expected exactly one Jump (end of then-branch), got %d", jmp)
	}
	if labels != 2 {
		t.Errorf("expected else and end labels, got %d", labels)
	}
}

func TestLowerWhileLoopBreakContinue(t *testing.T) {
	prog := intMain(
		&ast.WhileStmt{
			Pos:  pos(1),
			Cond: &ast.IntLit{Pos: pos(1), Value: 1, Type: intType},
			Body: &ast.CompoundStmt{Pos: pos(1), Items: []ast.Node{
				&ast.IfStmt{
					Pos:  pos(1),
					Cond: &ast.IntLit{Pos: pos(1), Value: 0, Type: intType},
					Then: &ast.BreakStmt{Pos: pos(1)},
				},
				&ast.ContinueStmt{Pos: pos(1)},
			}},
		},
		&ast.ReturnStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 0, Type: intType}},
	)
	out := analyzeAndLower(t, prog)
	fn := mainFn(t, out)

	var jumps []tac.Jump
	for _, instr := range fn.Body {
		if j, ok := instr.(tac.Jump); ok {
			jumps = append(jumps, j)
		}
	}
	if len(jumps) != 3 {
		t.Fatalf("expected break-jump, continue-jump and loop back-jump, got %d jumps: %#v", len(jumps), jumps)
	}
}

func TestLowerSwitchDispatchesEveryCase(t *testing.T) {
	body := &ast.CompoundStmt{Pos: pos(1), Items: []ast.Node{
		&ast.CaseStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 1, Type: intType}, Stmt: &ast.BreakStmt{Pos: pos(1)}},
		&ast.CaseStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 2, Type: intType}, Stmt: &ast.BreakStmt{Pos: pos(1)}},
		&ast.DefaultStmt{Pos: pos(1), Stmt: &ast.BreakStmt{Pos: pos(1)}},
	}}
	prog := intMain(
		&ast.SwitchStmt{Pos: pos(1), Tag: &ast.IntLit{Pos: pos(1), Value: 1, Type: intType}, Body: body},
		&ast.ReturnStmt{Pos: pos(1), Value: &ast.IntLit{Pos: pos(1), Value: 0, Type: intType}},
	)
	out := analyzeAndLower(t, prog)
	fn := mainFn(t, out)

	var eqTests int
	for _, instr := range fn.Body {
		if b, ok := instr.(tac.Binary); ok && b.Op == tac.Eq {
			eqTests++
		}
	}
	if eqTests != 2 {
		t.Fatalf("expected one equality test per case label (2 cases), got %d", eqTests)
	}
}

func TestLowerStaticObjectTentativeDefinition(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.VarDecl{Pos: pos(1), Name: "counter", Type: intType, Storage: ast.StorageNone},
		&ast.FuncDecl{
			Pos:    pos(2),
			Name:   "main",
			Return: intType,
			Body: &ast.CompoundStmt{Pos: pos(2), Items: []ast.Node{
				&ast.ReturnStmt{Pos: pos(2), Value: &ast.IntLit{Pos: pos(2), Value: 0, Type: intType}},
			}},
		},
	}}
	out := analyzeAndLower(t, prog)

	var found bool
	for _, s := range out.Statics {
		if s.Name == "counter" {
			found = true
			if s.Init != nil {
				t.Errorf("tentative definition should have a nil (zero-fill) Init, got %#v", s.Init)
			}
		}
	}
	if !found {
		t.Fatalf("expected tentative definition of %q to produce a static object", "counter")
	}
}
