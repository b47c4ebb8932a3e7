package symtab

// binding is what a name resolves to within one scope: either a
// symbol (variable/function) or a struct tag.
type binding struct {
	symbol SymbolID
	hasSym bool
	tag    TagID
	hasTag bool
}

// Scope is one lexical frame of the identifier and tag environments
// (spec §4.1). A block introduces a new Scope; file scope is the
// root with no parent. Release is the caller's responsibility (via
// Exit, always under defer) so scope frames are released on every
// exit path, including error returns (spec §5).
type Scope struct {
	parent *Scope
	isFile bool
	names  map[string]binding
}

// NewFileScope creates the root scope for a translation unit.
func NewFileScope() *Scope {
	return &Scope{isFile: true, names: map[string]binding{}}
}

// Enter opens a nested block scope.
func (s *Scope) Enter() *Scope {
	return &Scope{parent: s, names: map[string]binding{}}
}

// Exit returns the enclosing scope. Scope values are owned by the
// caller (internal/sema); Exit is documented, not enforced, since Go
// has no linear types — callers must pair every Enter with an Exit
// via defer.
func (s *Scope) Exit() *Scope { return s.parent }

func (s *Scope) IsFileScope() bool { return s.isFile }

// DeclareSymbol binds name to sym in the innermost scope, shadowing
// any outer binding. Returns false if name is already bound in this
// exact scope (the caller must then apply the redeclaration rules of
// spec §4.1 rather than silently overwrite).
func (s *Scope) DeclareSymbol(name string, sym SymbolID) bool {
	if b, ok := s.names[name]; ok && b.hasSym {
		return false
	}
	b := s.names[name]
	b.symbol, b.hasSym = sym, true
	s.names[name] = b
	return true
}

// LookupSymbol searches this scope and every enclosing scope,
// innermost first.
func (s *Scope) LookupSymbol(name string) (SymbolID, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.names[name]; ok && b.hasSym {
			return b.symbol, true
		}
	}
	return 0, false
}

// LookupSymbolCurrent searches only this exact scope (used to detect
// same-scope redeclarations).
func (s *Scope) LookupSymbolCurrent(name string) (SymbolID, bool) {
	if b, ok := s.names[name]; ok && b.hasSym {
		return b.symbol, true
	}
	return 0, false
}

// TagScope is a second, independent scope chain for struct tags
// (spec §4.1 "Resolution of structure tags"), kept separate from the
// identifier chain because tags and ordinary identifiers never
// collide (`struct S` and a variable named `S` coexist).
type TagScope struct {
	parent *TagScope
	tags   map[string]TagID
}

func NewFileTagScope() *TagScope { return &TagScope{tags: map[string]TagID{}} }

func (s *TagScope) Enter() *TagScope { return &TagScope{parent: s, tags: map[string]TagID{}} }

func (s *TagScope) Exit() *TagScope { return s.parent }

// Declare binds tag to id in this scope. A later completion of the
// same tag in an inner scope creates a *new* binding here rather than
// mutating the outer one, which is how "completion in an inner scope
// shadows the outer one" (spec §4.1) falls out naturally.
func (s *TagScope) Declare(tag string, id TagID) { s.tags[tag] = id }

func (s *TagScope) Lookup(tag string) (TagID, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if id, ok := sc.tags[tag]; ok {
			return id, true
		}
	}
	return 0, false
}

func (s *TagScope) LookupCurrent(tag string) (TagID, bool) {
	id, ok := s.tags[tag]
	return id, ok
}
