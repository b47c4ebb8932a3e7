package pipeline

import (
	"strings"
	"testing"

	"github.com/cc-core/cc/internal/frontend"
)

func TestTranslateSimpleFunctionProducesLabel(t *testing.T) {
	src := `int add(int a, int b) {
		return a + b;
	}`
	u := NewUnit("add.c", frontend.DefaultTarget)
	res, err := u.Translate(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(res.Assembly, "add") {
		t.Errorf("assembly = %q, want it to mention the function name", res.Assembly)
	}
	if res.Symbols == nil {
		t.Errorf("Symbols is nil, want the populated symbol table")
	}
}

func TestTranslateGlobalAndLoopRoundTrips(t *testing.T) {
	src := `int total;

	int sum(int *p, int n) {
		int i = 0;
		total = 0;
		while (i < n) {
			total = total + *(p + i);
			i = i + 1;
		}
		return total;
	}`
	u := NewUnit("sum.c", frontend.DefaultTarget)
	res, err := u.Translate(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Assembly == "" {
		t.Errorf("Assembly is empty")
	}
}

func TestTranslateStopsAtFirstSemanticError(t *testing.T) {
	src := `int broken(void) { return undeclared_name; }`
	u := NewUnit("broken.c", frontend.DefaultTarget)
	if _, err := u.Translate(strings.NewReader(src)); err == nil {
		t.Fatalf("Translate succeeded, want an undeclared-identifier error")
	}
}

func TestTranslateStopsAtFirstParseError(t *testing.T) {
	src := `int bad( { return 1; }`
	u := NewUnit("bad.c", frontend.DefaultTarget)
	if _, err := u.Translate(strings.NewReader(src)); err == nil {
		t.Fatalf("Translate succeeded, want a parse error")
	}
}

func TestNewUnitDefaultsTarget(t *testing.T) {
	u := NewUnit("x.c", frontend.Target{})
	if u.Target != frontend.DefaultTarget {
		t.Errorf("Target = %+v, want the default target", u.Target)
	}
}
