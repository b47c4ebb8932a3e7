package tac

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/cc-core/cc/internal/ast"
	"github.com/cc-core/cc/internal/sema"
	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

// AddrOffset computes Base (a pointer) plus a compile-time-known byte
// Offset, the address-of-member/address-of-array-element case where
// the base is already a pointer rather than a named object.
type AddrOffset struct {
	Dst, Base Value
	Offset    int64
}

func (AddrOffset) instrNode() {}

// LowerProgram translates a fully type-checked translation unit into
// TAC, per spec §4.2.
func LowerProgram(res *sema.Result) (*Program, error) {
	b := &builder{syms: res.Symbols, tags: res.Tags, stringPool: map[string]symtab.SymbolID{}}
	prog := &Program{Symbols: res.Symbols, Tags: res.Tags}

	for _, d := range res.Program.Decls {
		fd, ok := d.(*tast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		entry := res.Symbols.Get(fd.Symbol)
		fn := &Function{Name: entry.Name, Symbol: fd.Symbol, Params: fd.Params}
		fn.Locals = append(fn.Locals, fd.Params...)

		b.fn = fn
		b.labelN = 0
		b.breakStack = nil
		b.continueStack = nil
		b.caseLabels = nil
		b.defaultLabel = ""

		if err := b.lowerBlockItems(fd.Body.Items); err != nil {
			return nil, err
		}

		retTy := entry.Type.(types.Func).Return
		if !endsInReturn(fn.Body) {
			if retTy.Kind() == types.KindVoid {
				fn.Body = append(fn.Body, Return{})
			} else {
				// A control path falls off the end without a return.
				// main implicitly returns 0 (spec §4.2); any other
				// non-void function falling through is undefined
				// behavior in the source, but codegen still needs a
				// well-formed exit, so we supply the same zero-return.
				fn.Body = append(fn.Body, Return{Value: Const{Ty: retTy, C: symtab.ScalarConst{Type: retTy}}})
			}
		}
		prog.Functions = append(prog.Functions, fn)
	}

	storable := lo.Filter(res.Symbols.All(), func(e *symtab.Entry, _ int) bool {
		if e.IsFunc || e.Storage != symtab.Static {
			return false
		}
		return e.Defined || e.TentativeDef
	})
	prog.Statics = lo.Map(storable, func(e *symtab.Entry, _ int) *StaticObject {
		return &StaticObject{
			Symbol:   e.ID,
			Name:     e.Name,
			Global:   e.Linkage == symtab.ExternalLinkage,
			ReadOnly: strings.HasPrefix(e.Name, ".Lstr"),
			Size:     types.SizeOf(e.Type),
			Align:    types.AlignOf(e.Type),
			Init:     e.StaticIn,
		}
	})
	return prog, nil
}

// endsInReturn is a purely syntactic check (no CFG needed yet): does
// the instruction stream's last instruction returns control. Dead
// code after an explicit return is left for internal/optimize's
// unreachable-code elimination pass to remove.
func endsInReturn(body []Instr) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(Return)
	return ok
}

type builder struct {
	syms *symtab.Table
	tags *symtab.TagTable
	fn   *Function

	labelN int

	breakStack    []string
	continueStack []string

	caseLabels   map[caseKey]string
	defaultLabel string

	stringPool map[string]symtab.SymbolID
}

func (b *builder) emit(i Instr) { b.fn.Body = append(b.fn.Body, i) }

func (b *builder) newLabel(prefix string) string {
	b.labelN++
	return fmt.Sprintf(".L%s%d.%s", prefix, b.labelN, b.fn.Name)
}

func (b *builder) newTemp(ty types.Type) Var {
	name := fmt.Sprintf("tmp.%d", len(b.syms.All()))
	e := b.syms.New(name, ty)
	e.Storage = symtab.Automatic
	b.fn.Locals = append(b.fn.Locals, e.ID)
	return Var{Ty: ty, Symbol: e.ID, Name: name}
}

// place is an lvalue location reached during lowering, in one of
// three shapes depending on how its address was computed.
type place struct {
	kind   placeKind
	v      Value // placeVar/placeOffset: the named aggregate/object; placePointer: the address
	offset int64
	ty     types.Type
}

type placeKind int

const (
	placeVar placeKind = iota
	placeOffset
	placePointer
)

func (b *builder) loadPlace(p place) Value {
	switch p.kind {
	case placeVar:
		return p.v
	case placeOffset:
		dst := b.newTemp(p.ty)
		b.emit(CopyFromOffset{Dst: dst, Src: p.v, Offset: p.offset})
		return dst
	default:
		dst := b.newTemp(p.ty)
		b.emit(Load{Dst: dst, Src: p.v})
		return dst
	}
}

func (b *builder) storePlace(p place, val Value) {
	switch p.kind {
	case placeVar:
		b.emit(Copy{Dst: p.v, Src: val})
	case placeOffset:
		b.emit(CopyToOffset{Dst: p.v, Offset: p.offset, Src: val})
	default:
		b.emit(Store{Dst: p.v, Src: val})
	}
}

func (b *builder) addrOfPlace(p place) Value {
	switch p.kind {
	case placeVar:
		dst := b.newTemp(types.Pointer{Elem: p.ty})
		b.emit(GetAddress{Dst: dst, Src: p.v})
		return dst
	case placeOffset:
		base := b.newTemp(types.Pointer{Elem: b.syms.Get(p.v.(Var).Symbol).Type})
		b.emit(GetAddress{Dst: base, Src: p.v})
		if p.offset == 0 {
			return base
		}
		dst := b.newTemp(types.Pointer{Elem: p.ty})
		b.emit(AddrOffset{Dst: dst, Base: base, Offset: p.offset})
		return dst
	default:
		return p.v
	}
}

// memberPlace folds a struct-member or array-element access with a
// compile-time offset into whichever place shape the base already is.
func (b *builder) memberPlace(inner place, off int64, ty types.Type) place {
	switch inner.kind {
	case placeVar:
		return place{kind: placeOffset, v: inner.v, offset: off, ty: ty}
	case placeOffset:
		return place{kind: placeOffset, v: inner.v, offset: inner.offset + off, ty: ty}
	default:
		dst := b.newTemp(types.Pointer{Elem: ty})
		b.emit(AddrOffset{Dst: dst, Base: inner.v, Offset: off})
		return place{kind: placePointer, v: dst, ty: ty}
	}
}

func (b *builder) lowerLvalue(e tast.Expr) (place, error) {
	switch e := e.(type) {
	case *tast.VarRef:
		return place{kind: placeVar, v: Var{Ty: e.Ty, Symbol: e.Symbol, Name: e.Name}, ty: e.Ty}, nil

	case *tast.StringLit:
		sym := b.internString(e)
		return place{kind: placeVar, v: Var{Ty: e.Ty, Symbol: sym, Name: b.syms.Get(sym).Name}, ty: e.Ty}, nil

	case *tast.Deref:
		addr, err := b.lowerExpr(e.X)
		if err != nil {
			return place{}, err
		}
		return place{kind: placePointer, v: addr, ty: e.Ty}, nil

	case *tast.Subscript:
		base, err := b.lowerExpr(e.X)
		if err != nil {
			return place{}, err
		}
		idx, err := b.lowerExpr(e.Index)
		if err != nil {
			return place{}, err
		}
		dst := b.newTemp(types.Pointer{Elem: e.Ty})
		b.emit(AddPtr{Dst: dst, Base: base, Index: idx, Scale: types.SizeOf(e.Ty)})
		return place{kind: placePointer, v: dst, ty: e.Ty}, nil

	case *tast.Member:
		inner, err := b.lowerLvalue(e.X)
		if err != nil {
			return place{}, err
		}
		return b.memberPlace(inner, e.Offset, e.Ty), nil

	default:
		return place{}, fmt.Errorf("tac: %T is not an lvalue expression", e)
	}
}

func (b *builder) internString(e *tast.StringLit) symtab.SymbolID {
	if id, ok := b.stringPool[e.Value]; ok {
		return id
	}
	entry := b.syms.New(fmt.Sprintf(".Lstr%d", len(b.stringPool)), e.Ty)
	entry.Storage = symtab.Static
	entry.Linkage = symtab.NoLinkage
	entry.Defined = true
	entry.StaticIn = stringInitBytes(e.Ty.(types.Array), e.Value)
	b.stringPool[e.Value] = entry.ID
	return entry.ID
}

func stringInitBytes(arr types.Array, s string) []symtab.StaticInit {
	bytes := append([]byte(s), 0)
	n := arr.N
	if n < 0 {
		n = int64(len(bytes))
	}
	var out []symtab.StaticInit
	for i := int64(0); i < n && i < int64(len(bytes)); i++ {
		out = append(out, symtab.StaticInit{
			Offset: i,
			Value:  &symtab.ScalarConst{Type: types.Int{Width: 1, Signed: true}, Int: uint64(bytes[i])},
		})
	}
	if n > int64(len(bytes)) {
		out = append(out, symtab.StaticInit{Offset: int64(len(bytes)), Zero: n - int64(len(bytes))})
	}
	return out
}

func (b *builder) lowerExpr(e tast.Expr) (Value, error) {
	if e.Type().Kind() == types.KindArray {
		p, err := b.lowerLvalue(e)
		if err != nil {
			return nil, err
		}
		return b.addrOfPlace(p), nil
	}

	switch e := e.(type) {
	case *tast.IntLit:
		return Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: e.Value}}, nil

	case *tast.FloatLit:
		return Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Double: e.Value}}, nil

	case *tast.VarRef:
		if e.Ty.Kind() == types.KindFunc {
			return Const{Ty: types.Pointer{Elem: e.Ty}, C: symtab.ScalarConst{Type: e.Ty, Label: e.Name}}, nil
		}
		return Var{Ty: e.Ty, Symbol: e.Symbol, Name: e.Name}, nil

	case *tast.Unary:
		src, err := b.lowerExpr(e.X)
		if err != nil {
			return nil, err
		}
		dst := b.newTemp(e.Ty)
		b.emit(Unary{Op: mapUnOp(e.Op), Dst: dst, Src: src})
		return dst, nil

	case *tast.Binary:
		return b.lowerBinary(e)

	case *tast.Assign:
		p, err := b.lowerLvalue(e.LHS)
		if err != nil {
			return nil, err
		}
		val, err := b.lowerExpr(e.RHS)
		if err != nil {
			return nil, err
		}
		b.storePlace(p, val)
		return val, nil

	case *tast.CompoundAssign:
		return b.lowerCompoundAssign(e)

	case *tast.IncDec:
		return b.lowerIncDec(e)

	case *tast.Ternary:
		cond, err := b.lowerExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		falseLabel := b.newLabel("tern_false")
		endLabel := b.newLabel("tern_end")
		result := b.newTemp(e.Ty)
		b.emit(JumpIfZero{Cond: cond, Target: falseLabel})
		thenVal, err := b.lowerExpr(e.Then)
		if err != nil {
			return nil, err
		}
		b.emit(Copy{Dst: result, Src: thenVal})
		b.emit(Jump{Target: endLabel})
		b.emit(Label{Name: falseLabel})
		elseVal, err := b.lowerExpr(e.Else)
		if err != nil {
			return nil, err
		}
		b.emit(Copy{Dst: result, Src: elseVal})
		b.emit(Label{Name: endLabel})
		return result, nil

	case *tast.Call:
		return b.lowerCall(e)

	case *tast.Cast:
		src, err := b.lowerExpr(e.X)
		if err != nil {
			return nil, err
		}
		return b.castValue(src, e.Ty), nil

	case *tast.Subscript, *tast.Member, *tast.Deref:
		p, err := b.lowerLvalue(e)
		if err != nil {
			return nil, err
		}
		return b.loadPlace(p), nil

	case *tast.AddrOf:
		if vr, ok := e.X.(*tast.VarRef); ok && vr.Ty.Kind() == types.KindFunc {
			return Const{Ty: e.Ty, C: symtab.ScalarConst{Type: vr.Ty, Label: vr.Name}}, nil
		}
		p, err := b.lowerLvalue(e.X)
		if err != nil {
			return nil, err
		}
		return b.addrOfPlace(p), nil

	case *tast.Comma:
		if _, err := b.lowerExpr(e.X); err != nil {
			return nil, err
		}
		return b.lowerExpr(e.Y)

	case *tast.StringLit:
		p, err := b.lowerLvalue(e)
		if err != nil {
			return nil, err
		}
		return b.addrOfPlace(p), nil

	default:
		return nil, fmt.Errorf("tac: unhandled expression %T", e)
	}
}

func (b *builder) lowerBinary(e *tast.Binary) (Value, error) {
	switch e.Op {
	case ast.BinLogAnd:
		falseLabel := b.newLabel("and_false")
		endLabel := b.newLabel("and_end")
		result := b.newTemp(e.Ty)
		lx, err := b.lowerExpr(e.X)
		if err != nil {
			return nil, err
		}
		b.emit(JumpIfZero{Cond: lx, Target: falseLabel})
		ly, err := b.lowerExpr(e.Y)
		if err != nil {
			return nil, err
		}
		b.emit(JumpIfZero{Cond: ly, Target: falseLabel})
		b.emit(Copy{Dst: result, Src: Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: 1}}})
		b.emit(Jump{Target: endLabel})
		b.emit(Label{Name: falseLabel})
		b.emit(Copy{Dst: result, Src: Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: 0}}})
		b.emit(Label{Name: endLabel})
		return result, nil

	case ast.BinLogOr:
		trueLabel := b.newLabel("or_true")
		endLabel := b.newLabel("or_end")
		result := b.newTemp(e.Ty)
		lx, err := b.lowerExpr(e.X)
		if err != nil {
			return nil, err
		}
		b.emit(JumpIfNotZero{Cond: lx, Target: trueLabel})
		ly, err := b.lowerExpr(e.Y)
		if err != nil {
			return nil, err
		}
		b.emit(JumpIfNotZero{Cond: ly, Target: trueLabel})
		b.emit(Copy{Dst: result, Src: Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: 0}}})
		b.emit(Jump{Target: endLabel})
		b.emit(Label{Name: trueLabel})
		b.emit(Copy{Dst: result, Src: Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: 1}}})
		b.emit(Label{Name: endLabel})
		return result, nil
	}

	lx, err := b.lowerExpr(e.X)
	if err != nil {
		return nil, err
	}
	ly, err := b.lowerExpr(e.Y)
	if err != nil {
		return nil, err
	}

	if e.X.Type().Kind() == types.KindPointer && (e.Op == ast.BinAdd || e.Op == ast.BinSub) {
		if e.Y.Type().Kind() == types.KindPointer {
			// Pointer difference: (lx - ly) / sizeof(elem).
			diff := b.newTemp(types.Int{Width: 8, Signed: true})
			b.emit(Binary{Op: Sub, Dst: diff, L: lx, R: ly})
			elemSize := types.SizeOf(e.X.Type().(types.Pointer).Elem)
			result := b.newTemp(e.Ty)
			b.emit(Binary{Op: Div, Dst: result, L: diff, R: Const{Ty: types.Int{Width: 8, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 8, Signed: true}, Int: uint64(elemSize)}}})
			return result, nil
		}
		idx := ly
		if e.Op == ast.BinSub {
			negIdx := b.newTemp(ly.Type())
			b.emit(Unary{Op: Neg, Dst: negIdx, Src: ly})
			idx = negIdx
		}
		dst := b.newTemp(e.Ty)
		b.emit(AddPtr{Dst: dst, Base: lx, Index: idx, Scale: types.SizeOf(e.Ty.(types.Pointer).Elem)})
		return dst, nil
	}

	dst := b.newTemp(e.Ty)
	b.emit(Binary{Op: mapBinOp(e.Op), Dst: dst, L: lx, R: ly})
	return dst, nil
}

func (b *builder) lowerCompoundAssign(e *tast.CompoundAssign) (Value, error) {
	p, err := b.lowerLvalue(e.LHS)
	if err != nil {
		return nil, err
	}
	cur := b.loadPlace(p)
	rhs, err := b.lowerExpr(e.RHS)
	if err != nil {
		return nil, err
	}

	if e.LHS.Type().Kind() == types.KindPointer {
		idx := rhs
		if e.Op == ast.BinSub {
			negIdx := b.newTemp(rhs.Type())
			b.emit(Unary{Op: Neg, Dst: negIdx, Src: rhs})
			idx = negIdx
		}
		dst := b.newTemp(e.LHS.Type())
		elemSize := types.SizeOf(e.LHS.Type().(types.Pointer).Elem)
		b.emit(AddPtr{Dst: dst, Base: cur, Index: idx, Scale: elemSize})
		b.storePlace(p, dst)
		return dst, nil
	}

	ct := e.CommonType.Ty
	curC := b.castValue(cur, ct)
	dst := b.newTemp(ct)
	b.emit(Binary{Op: mapBinOp(e.Op), Dst: dst, L: curC, R: rhs})
	result := b.castValue(dst, e.LHS.Type())
	b.storePlace(p, result)
	return result, nil
}

func (b *builder) lowerIncDec(e *tast.IncDec) (Value, error) {
	p, err := b.lowerLvalue(e.X)
	if err != nil {
		return nil, err
	}
	cur := b.loadPlace(p)
	newVal := b.newTemp(e.Ty)

	switch {
	case e.Ty.Kind() == types.KindPointer:
		elemSize := types.SizeOf(e.Ty.(types.Pointer).Elem)
		idxVal := int64(1)
		if e.Op == ast.DecOp {
			idxVal = -1
		}
		b.emit(AddPtr{Dst: newVal, Base: cur, Index: Const{Ty: types.Int{Width: 8, Signed: true}, C: symtab.ScalarConst{Type: types.Int{Width: 8, Signed: true}, Int: uint64(idxVal)}}, Scale: elemSize})
	case e.Ty.Kind() == types.KindDouble:
		one := Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Double: 1}}
		op := Add
		if e.Op == ast.DecOp {
			op = Sub
		}
		b.emit(Binary{Op: op, Dst: newVal, L: cur, R: one})
	default:
		one := Const{Ty: e.Ty, C: symtab.ScalarConst{Type: e.Ty, Int: 1}}
		op := Add
		if e.Op == ast.DecOp {
			op = Sub
		}
		b.emit(Binary{Op: op, Dst: newVal, L: cur, R: one})
	}
	b.storePlace(p, newVal)
	if e.Prefix {
		return newVal, nil
	}
	return cur, nil
}

func (b *builder) lowerCall(e *tast.Call) (Value, error) {
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := b.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	vr := e.Callee.(*tast.VarRef)
	var dst Value
	if e.Ty.Kind() != types.KindVoid {
		dst = b.newTemp(e.Ty)
	}
	b.emit(Call{Dst: dst, Func: vr.Symbol, Name: vr.Name, Args: args})
	return dst, nil
}

// castValue implements the TAC-level half of every conversion spec
// §4.1/§4.4 describes, after internal/sema has already decided one is
// needed (every implicit and explicit conversion reaches here through
// a tast.Cast node).
func (b *builder) castValue(v Value, target types.Type) Value {
	if types.Equal(v.Type(), target) {
		return v
	}
	if target.Kind() == types.KindVoid {
		return v
	}
	dst := b.newTemp(target)
	switch {
	case types.IsInteger(v.Type()) && types.IsInteger(target):
		vi, ti := v.Type().(types.Int), target.(types.Int)
		switch types.ClassifyIntConversion(vi, ti) {
		case types.ConvTruncate:
			b.emit(Truncate{Dst: dst, Src: v})
		case types.ConvSignExtend:
			b.emit(SignExtend{Dst: dst, Src: v})
		case types.ConvZeroExtend:
			b.emit(ZeroExtend{Dst: dst, Src: v})
		default:
			b.emit(Copy{Dst: dst, Src: v})
		}
	case types.IsInteger(v.Type()) && target.Kind() == types.KindDouble:
		if v.Type().(types.Int).Signed {
			b.emit(IntToDouble{Dst: dst, Src: v})
		} else {
			b.emit(UIntToDouble{Dst: dst, Src: v})
		}
	case v.Type().Kind() == types.KindDouble && types.IsInteger(target):
		if target.(types.Int).Signed {
			b.emit(DoubleToInt{Dst: dst, Src: v})
		} else {
			b.emit(DoubleToUInt{Dst: dst, Src: v})
		}
	default:
		// pointer<->pointer, pointer<->integer (null-pointer-constant
		// or explicit cast), double<->double: same bit pattern or
		// already-matching width, a plain copy.
		b.emit(Copy{Dst: dst, Src: v})
	}
	return dst
}

func mapUnOp(op ast.UnaryOp) UnOp {
	switch op {
	case ast.UnaryBitNot:
		return BitNot
	case ast.UnaryNot:
		return Not
	default:
		return Neg
	}
}

func mapBinOp(op ast.BinaryOp) BinOp {
	switch op {
	case ast.BinAdd:
		return Add
	case ast.BinSub:
		return Sub
	case ast.BinMul:
		return Mul
	case ast.BinDiv:
		return Div
	case ast.BinMod:
		return Mod
	case ast.BinBitAnd:
		return BitAnd
	case ast.BinBitOr:
		return BitOr
	case ast.BinBitXor:
		return BitXor
	case ast.BinShl:
		return Shl
	case ast.BinShr:
		return Shr
	case ast.BinLt:
		return Lt
	case ast.BinLe:
		return Le
	case ast.BinGt:
		return Gt
	case ast.BinGe:
		return Ge
	case ast.BinEq:
		return Eq
	default:
		return Ne
	}
}
