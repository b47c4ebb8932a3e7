package frontend

import (
	"strings"
	"testing"

	"github.com/cc-core/cc/internal/ast"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `int add(int a, int b) {
		return a + b;
	}`
	prog, err := Parse("add.c", strings.NewReader(src), DefaultTarget)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FuncDecl", prog.Decls[0])
	}
	if fn.Name != "add" {
		t.Errorf("Name = %q, want add", fn.Name)
	}
	if len(fn.ParamNames) != 2 || fn.ParamNames[0] != "a" || fn.ParamNames[1] != "b" {
		t.Errorf("ParamNames = %v, want [a b]", fn.ParamNames)
	}
	for i, pt := range fn.ParamTypes {
		if _, ok := pt.(ast.IntSpec); !ok {
			t.Errorf("param %d type = %T, want ast.IntSpec", i, pt)
		}
	}
	if _, ok := fn.Return.(ast.IntSpec); !ok {
		t.Errorf("Return = %T, want ast.IntSpec", fn.Return)
	}
	if fn.Body == nil || len(fn.Body.Items) != 1 {
		t.Fatalf("Body = %+v, want one statement", fn.Body)
	}
	ret, ok := fn.Body.Items[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("body item is %T, want *ast.ReturnStmt", fn.Body.Items[0])
	}
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("return value = %#v, want a + binary", ret.Value)
	}
}

func TestParseGlobalVariableWithInitializer(t *testing.T) {
	src := `static int counter = 41;`
	prog, err := Parse("g.c", strings.NewReader(src), DefaultTarget)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(prog.Decls))
	}
	v, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.VarDecl", prog.Decls[0])
	}
	if v.Name != "counter" || v.Storage != ast.StorageStatic {
		t.Errorf("VarDecl = %+v, want counter/static", v)
	}
	lit, ok := v.Init.(*ast.IntLit)
	if !ok || lit.Value != 41 {
		t.Errorf("Init = %#v, want IntLit(41)", v.Init)
	}
}

func TestParseFunctionPrototypeIsDropped(t *testing.T) {
	src := `int helper(int x);
int caller(int x) { return helper(x); }`
	prog, err := Parse("p.c", strings.NewReader(src), DefaultTarget)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1 (prototype dropped), got %#v", len(prog.Decls), prog.Decls)
	}
	if _, ok := prog.Decls[0].(*ast.FuncDecl); !ok {
		t.Fatalf("decl is %T, want *ast.FuncDecl", prog.Decls[0])
	}
}

func TestParseIfWhileAndPointerArithmetic(t *testing.T) {
	src := `int sum(int *p, int n) {
		int total = 0;
		int i = 0;
		while (i < n) {
			if (*(p + i) > 0) {
				total = total + *(p + i);
			}
			i = i + 1;
		}
		return total;
	}`
	prog, err := Parse("sum.c", strings.NewReader(src), DefaultTarget)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn := prog.Decls[0].(*ast.FuncDecl)
	if _, ok := fn.ParamTypes[0].(ast.PointerSpec); !ok {
		t.Errorf("param 0 type = %T, want ast.PointerSpec", fn.ParamTypes[0])
	}
	var foundWhile bool
	for _, item := range fn.Body.Items {
		if _, ok := item.(*ast.WhileStmt); ok {
			foundWhile = true
		}
	}
	if !foundWhile {
		t.Errorf("body = %+v, want a WhileStmt", fn.Body.Items)
	}
}

func TestParseStructDefinitionAndMember(t *testing.T) {
	src := `struct point { int x; int y; };
int getX(struct point *p) { return p->x; }`
	prog, err := Parse("s.c", strings.NewReader(src), DefaultTarget)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("got %d decls, want 2", len(prog.Decls))
	}
	sd, ok := prog.Decls[0].(*ast.StructDeclStmt)
	if !ok {
		t.Fatalf("decl 0 is %T, want *ast.StructDeclStmt", prog.Decls[0])
	}
	if sd.Spec.Tag != "point" || len(sd.Spec.Members) != 2 {
		t.Errorf("StructSpec = %+v, want point with 2 members", sd.Spec)
	}
	fn := prog.Decls[1].(*ast.FuncDecl)
	ret := fn.Body.Items[0].(*ast.ReturnStmt)
	arrow, ok := ret.Value.(*ast.Arrow)
	if !ok || arrow.Name != "x" {
		t.Errorf("return value = %#v, want p->x", ret.Value)
	}
}

func TestParseIntLiteralSuffixesAndBases(t *testing.T) {
	cases := []struct {
		src        string
		wantValue  uint64
		wantWidth  int
		wantSigned bool
	}{
		{"42", 42, 4, true},
		{"42u", 42, 4, false},
		{"42L", 42, 8, true},
		{"42UL", 42, 8, false},
		{"0x2A", 42, 4, true},
		{"052", 42, 4, true},
	}
	for _, tc := range cases {
		v, ty, err := parseIntLiteral(tc.src)
		if err != nil {
			t.Errorf("parseIntLiteral(%q): %v", tc.src, err)
			continue
		}
		if v != tc.wantValue {
			t.Errorf("parseIntLiteral(%q).value = %d, want %d", tc.src, v, tc.wantValue)
		}
		is, ok := ty.(ast.IntSpec)
		if !ok {
			t.Fatalf("parseIntLiteral(%q).type = %T, want ast.IntSpec", tc.src, ty)
		}
		if is.Width != tc.wantWidth || is.Signed != tc.wantSigned {
			t.Errorf("parseIntLiteral(%q).type = %+v, want {%d %v}", tc.src, is, tc.wantWidth, tc.wantSigned)
		}
	}
}

func TestUnquoteCStringHandlesEscapes(t *testing.T) {
	s, err := unquoteCString(`"hello\nworld"`)
	if err != nil {
		t.Fatalf("unquoteCString: %v", err)
	}
	if s != "hello\nworld" {
		t.Errorf("got %q", s)
	}
}

func TestApplyPointersWrapsNTimes(t *testing.T) {
	ty := applyPointers(nil, ast.IntSpec{Width: 4, Signed: true})
	if _, ok := ty.(ast.IntSpec); !ok {
		t.Errorf("applyPointers(nil, int) = %T, want ast.IntSpec unchanged", ty)
	}
}
