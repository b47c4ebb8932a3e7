package frontend

import (
	"modernc.org/cc/v4"
	"modernc.org/token"

	"github.com/cc-core/cc/internal/ast"
)

// baseType collects the set of type-specifier keywords and the
// storage-class keyword threaded through a DeclarationSpecifiers (or
// SpecifierQualifierList, for struct members) chain - each node in the
// chain contributes exactly one specifier and links to the next via
// its own recursive field, the same shape convertFunctionParameters
// already walks one level of by hand for a parameter's single
// TypeQual/TypeSpec pair.
type baseType struct {
	words   []string // "int", "long", "unsigned", ...
	storage ast.StorageClass
	su      *cc.StructOrUnionSpecifier
	pos     token.Position
}

// convertDeclarationSpecifiers walks a DeclarationSpecifiers chain,
// collecting every type-specifier keyword and the storage class, then
// resolves the keyword set to an ast.TypeSpec.
func (c *converter) convertDeclarationSpecifiers(ds *cc.DeclarationSpecifiers) (ast.TypeSpec, ast.StorageClass, error) {
	var bt baseType
	if ds != nil {
		bt.pos = ds.Position()
	}
	for d := ds; d != nil; d = d.DeclarationSpecifiers {
		switch d.Case {
		case cc.DeclarationSpecifiersStorage:
			if d.StorageClassSpecifier != nil {
				switch d.StorageClassSpecifier.Token.SrcStr() {
				case "static":
					bt.storage = ast.StorageStatic
				case "extern":
					bt.storage = ast.StorageExtern
				}
			}
		case cc.DeclarationSpecifiersTypeSpec:
			if err := bt.addTypeSpecifier(d.TypeSpecifier); err != nil {
				return nil, 0, err
			}
		case cc.DeclarationSpecifiersTypeQual, cc.DeclarationSpecifiersFunc, cc.DeclarationSpecifiersAlignSpec:
			// qualifiers (const/volatile), inline/_Noreturn and
			// alignment specifiers don't affect the shape of the
			// type internal/ast models.
		default:
			return nil, 0, errorf(d.Position(), "unsupported declaration specifier")
		}
	}
	ts, err := bt.resolve(c)
	return ts, bt.storage, err
}

// convertSpecifierQualifierList is convertDeclarationSpecifiers' twin
// for a struct member's specifier list, which the grammar threads
// through a separate (storage-class-less) chain type.
func (c *converter) convertSpecifierQualifierList(sq *cc.SpecifierQualifierList) (ast.TypeSpec, error) {
	var bt baseType
	if sq != nil {
		bt.pos = sq.Position()
	}
	for s := sq; s != nil; s = s.SpecifierQualifierList {
		switch s.Case {
		case cc.SpecifierQualifierListTypeSpec:
			if err := bt.addTypeSpecifier(s.TypeSpecifier); err != nil {
				return nil, err
			}
		case cc.SpecifierQualifierListTypeQual, cc.SpecifierQualifierListAlignSpec:
		default:
			return nil, errorf(s.Position(), "unsupported struct member specifier")
		}
	}
	return bt.resolve(c)
}

func (bt *baseType) addTypeSpecifier(ts *cc.TypeSpecifier) error {
	switch ts.Case {
	case cc.TypeSpecifierStructOrUnion:
		bt.su = ts.StructOrUnionSpecifier
	default:
		bt.words = append(bt.words, ts.Token.SrcStr())
	}
	return nil
}

func (bt *baseType) has(word string) bool {
	for _, w := range bt.words {
		if w == word {
			return true
		}
	}
	return false
}

// resolve maps the collected keyword set to an ast.TypeSpec. Only the
// scalar types spec §4.1 recognizes (void, _Bool/char/short/int/long
// in either signedness, float/double) and struct types are supported;
// typedef names, enums, _Complex and atomic specifiers are rejected.
func (bt *baseType) resolve(c *converter) (ast.TypeSpec, error) {
	if bt.su != nil {
		return c.convertStructOrUnion(bt.su)
	}
	switch {
	case bt.has("void"):
		return ast.VoidSpec{}, nil
	case bt.has("double"), bt.has("float"):
		return ast.DoubleSpec{}, nil
	case bt.has("_Bool"):
		return ast.IntSpec{Width: 1, Signed: false}, nil
	case bt.has("char"):
		return ast.IntSpec{Width: 1, Signed: !bt.has("unsigned")}, nil
	case bt.has("short"):
		return ast.IntSpec{Width: 2, Signed: !bt.has("unsigned")}, nil
	case bt.has("long"):
		return ast.IntSpec{Width: 8, Signed: !bt.has("unsigned")}, nil
	case bt.has("int"), bt.has("signed"), bt.has("unsigned"):
		return ast.IntSpec{Width: 4, Signed: !bt.has("unsigned")}, nil
	default:
		return nil, errorf(bt.pos, "unsupported or missing type specifier %v", bt.words)
	}
}

// convertStructOrUnion resolves a `struct Tag { ... }` or bare `struct
// Tag` occurrence to an ast.StructSpec; Members stays nil for the bare
// tag-reference form, matching internal/ast's doc comment on
// StructSpec.
func (c *converter) convertStructOrUnion(su *cc.StructOrUnionSpecifier) (ast.TypeSpec, error) {
	tag := su.Token.SrcStr()
	if su.Case != cc.StructOrUnionSpecifierDef {
		return ast.StructSpec{Tag: tag}, nil
	}
	var members []ast.StructMember
	for sl := su.StructDeclarationList; sl != nil; sl = sl.StructDeclarationList {
		sd := sl.StructDeclaration
		if sd.Case != cc.StructDeclarationDecl {
			continue
		}
		memberType, err := c.convertSpecifierQualifierList(sd.SpecifierQualifierList)
		if err != nil {
			return nil, err
		}
		for dl := sd.StructDeclaratorList; dl != nil; dl = dl.StructDeclaratorList {
			decl := dl.StructDeclarator
			if decl.Case != cc.StructDeclaratorDecl {
				return nil, errorf(decl.Position(), "bit-field struct members are not supported")
			}
			name, full, _, _, err := c.convertDeclarator(decl.Declarator, memberType)
			if err != nil {
				return nil, err
			}
			members = append(members, ast.StructMember{Name: name, Type: full})
		}
	}
	return ast.StructSpec{Tag: tag, Members: members}, nil
}

// convertDeclarator applies d's pointer/array/function suffix chain to
// base, returning the declared name and its full type. Only the
// common, non-parenthesized declarator forms are handled - plain
// identifiers, N levels of leading pointer, and array dimensions - a
// parenthesized inner declarator (needed for e.g. `int (*p)[4]` or
// function-pointer types) is rejected rather than silently
// misparsed, since getting its precedence right needs threading the
// base type through in the opposite order from every other case.
// declResult is convertDeclarator/convertDirectDeclarator's shared
// return shape; isFunc distinguishes a zero-argument function
// declarator (`int foo()`, whose Params is nil) from a plain
// non-function declarator so callers don't mistake one for the other.
type declResult struct {
	name     string
	typ      ast.TypeSpec
	isFunc   bool
	params   *cc.ParameterList
	variadic bool
}

func (c *converter) convertDeclarator(d *cc.Declarator, base ast.TypeSpec) (name string, full ast.TypeSpec, params *cc.ParameterList, variadic bool, err error) {
	r, err := c.declarator(d, base)
	if err != nil {
		return "", nil, nil, false, err
	}
	return r.name, r.typ, r.params, r.variadic, nil
}

func (c *converter) declarator(d *cc.Declarator, base ast.TypeSpec) (declResult, error) {
	ty := applyPointers(d.Pointer, base)
	return c.directDeclarator(d.DirectDeclarator, ty)
}

func applyPointers(p *cc.Pointer, base ast.TypeSpec) ast.TypeSpec {
	for ; p != nil; p = p.Pointer {
		base = ast.PointerSpec{Elem: base}
	}
	return base
}

func (c *converter) directDeclarator(dd *cc.DirectDeclarator, ty ast.TypeSpec) (declResult, error) {
	switch dd.Case {
	case cc.DirectDeclaratorIdent:
		return declResult{name: dd.Token.SrcStr(), typ: ty}, nil

	case cc.DirectDeclaratorArr, cc.DirectDeclaratorStaticArr, cc.DirectDeclaratorArrPtr:
		n := int64(-1)
		if dd.AssignmentExpression != nil {
			v, err := c.constInt(dd.AssignmentExpression)
			if err != nil {
				return declResult{}, err
			}
			n = v
		}
		inner, err := c.directDeclarator(dd.DirectDeclarator, ty)
		if err != nil {
			return declResult{}, err
		}
		return declResult{name: inner.name, typ: ast.ArraySpec{Elem: inner.typ, N: n}}, nil

	case cc.DirectDeclaratorFuncParam:
		inner, err := c.directDeclarator(dd.DirectDeclarator, ty)
		if err != nil {
			return declResult{}, err
		}
		r := declResult{name: inner.name, typ: ty, isFunc: true}
		if dd.ParameterTypeList != nil {
			r.variadic = dd.ParameterTypeList.Case == cc.ParameterTypeListVar
			r.params = dd.ParameterTypeList.ParameterList
		}
		return r, nil

	case cc.DirectDeclaratorFuncIdent, cc.DirectDeclaratorFuncAny:
		inner, err := c.directDeclarator(dd.DirectDeclarator, ty)
		if err != nil {
			return declResult{}, err
		}
		return declResult{name: inner.name, typ: ty, isFunc: true}, nil

	case cc.DirectDeclaratorDecl:
		return declResult{}, errorf(dd.Position(), "parenthesized declarators are not supported")

	default:
		return declResult{}, errorf(dd.Position(), "unsupported declarator form")
	}
}

// convertParameterList walks a ParameterList - itself a linked list,
// exactly as convertFunctionParameters walks it - collecting each
// parameter's name and type.
func (c *converter) convertParameterList(pl *cc.ParameterList) (names []string, types []ast.TypeSpec, err error) {
	for p := pl; p != nil; p = p.ParameterList {
		decl := p.ParameterDeclaration
		base, _, err := c.convertDeclarationSpecifiers(decl.DeclarationSpecifiers)
		if err != nil {
			return nil, nil, err
		}
		if decl.Declarator == nil {
			names = append(names, "")
			types = append(types, base)
			continue
		}
		name, full, _, _, err := c.convertDeclarator(decl.Declarator, base)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		types = append(types, full)
	}
	return names, types, nil
}

// convertTypeName resolves a cast's or sizeof's parenthesized type
// name (SpecifierQualifierList plus an optional AbstractDeclarator) to
// an ast.TypeSpec; only bare base types and leading-pointer abstract
// declarators are handled, matching convertDeclarator's own scope
// limitation.
func (c *converter) convertTypeName(tn *cc.TypeName) (ast.TypeSpec, error) {
	base, err := c.convertSpecifierQualifierList(tn.SpecifierQualifierList)
	if err != nil {
		return nil, err
	}
	if tn.AbstractDeclarator == nil {
		return base, nil
	}
	ad := tn.AbstractDeclarator
	if ad.DirectAbstractDeclarator != nil {
		return nil, errorf(tn.Position(), "abstract array/function declarators are not supported")
	}
	return applyPointers(ad.Pointer, base), nil
}
