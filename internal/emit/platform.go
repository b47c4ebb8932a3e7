package emit

import (
	"runtime"
	"strings"
)

// darwin mirrors parser_amd64.go's buildTarget check: macOS's
// assembler and linker require every external symbol to carry a
// leading underscore and never uses the ELF @PLT call-target suffix,
// while Linux wants the bare name plus @PLT for a call to a symbol
// that might resolve outside this object.
var darwin = runtime.GOOS == "darwin"

// symbolName decorates a global function/object name for the target
// platform. An internal compiler-generated label (already prefixed
// with ".") is never decorated - it never leaves this translation
// unit, so the platform's external-symbol convention doesn't apply.
func symbolName(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	if darwin {
		return "_" + name
	}
	return name
}

// callTarget decorates a `call` instruction's target the same way as
// symbolName, plus Linux's @PLT suffix.
func callTarget(name string) string {
	sym := symbolName(name)
	if !darwin && !strings.HasPrefix(name, ".") {
		sym += "@PLT"
	}
	return sym
}
