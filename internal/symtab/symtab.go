// Package symtab implements the process-wide symbol table and the
// struct tag/type table of spec §3, plus the lexically scoped
// name/tag environments spec §4.1 resolves identifiers and tags
// through.
package symtab

import "github.com/cc-core/cc/internal/types"

// StorageClass mirrors ast.StorageClass but is resolved: by the time
// an Entry exists, block-scope `none` has become Automatic.
type StorageClass int

const (
	Automatic StorageClass = iota
	Static
	Extern
)

type Linkage int

const (
	NoLinkage Linkage = iota
	InternalLinkage
	ExternalLinkage
)

// StaticInit is one (offset, value) pair of a static object's
// compile-time initializer, or a run of zero bytes.
type StaticInit struct {
	Offset int64
	Value  *ScalarConst // nil for a zero run
	Zero   int64        // valid when Value == nil
}

// ScalarConst is a typed compile-time scalar constant.
type ScalarConst struct {
	Type   types.Type
	Int    uint64
	Double float64
	// Label, when non-empty, makes this an address-of-static-object
	// constant (used by pointer initializers to another static object).
	Label string
}

// Entry is one symbol table entry (spec §3 "Symbol table").
type Entry struct {
	ID       SymbolID
	Name     string
	Type     types.Type
	Storage  StorageClass
	Linkage  Linkage
	Defined  bool
	IsFunc   bool
	StaticIn []StaticInit // nil unless Storage == Static (or file-scope/extern-initialized)
	// Aliased is set by internal/sema the first time `&name` is taken
	// anywhere in the translation unit; internal/optimize's alias
	// analysis (spec §4.3) is flow-insensitive and reads only this bit.
	Aliased bool
	// TentativeDef marks a file-scope declaration with no `extern`
	// keyword, which reserves zero-initialized storage even if no
	// initializer ever appears anywhere in the translation unit (the C
	// "tentative definition" rule). Distinguishes that case from a
	// block-scope `extern` reference to an object defined elsewhere,
	// which must not receive storage here.
	TentativeDef bool
}

type SymbolID int

// Table is the translation unit's symbol table.
type Table struct {
	entries []*Entry
}

func NewTable() *Table { return &Table{} }

func (t *Table) New(name string, ty types.Type) *Entry {
	e := &Entry{ID: SymbolID(len(t.entries)), Name: name, Type: ty}
	t.entries = append(t.entries, e)
	return e
}

func (t *Table) Get(id SymbolID) *Entry { return t.entries[id] }

func (t *Table) All() []*Entry { return t.entries }

// TagID identifies a struct tag's type-table entry.
type TagID int

// TagTable maps resolved struct tags to their layout.
type TagTable struct {
	infos []*types.StructInfo
}

func NewTagTable() *TagTable { return &TagTable{} }

func (t *TagTable) New(tag string) TagID {
	id := TagID(len(t.infos))
	t.infos = append(t.infos, nil) // incomplete until Complete is called
	return id
}

func (t *TagTable) Complete(id TagID, info *types.StructInfo) { t.infos[id] = info }

func (t *TagTable) Info(id TagID) *types.StructInfo { return t.infos[id] }
