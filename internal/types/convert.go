package types

// PromoteInt applies integer promotion: any integer type narrower
// than int is converted to (signed) int (spec §4.1).
func PromoteInt(t Type) Type {
	it, ok := t.(Int)
	if !ok {
		return t
	}
	if it.Width < 4 {
		return Int{Width: 4, Signed: true}
	}
	return it
}

// CommonType implements the usual arithmetic conversions (spec §4.1):
// if either operand is double, the result is double; otherwise both
// operands are promoted and the common integer type is chosen by
// rank-then-signedness.
func CommonType(a, b Type) Type {
	if a.Kind() == KindDouble || b.Kind() == KindDouble {
		return Double{}
	}
	pa, pb := PromoteInt(a).(Int), PromoteInt(b).(Int)
	if pa.Width == pb.Width && pa.Signed == pb.Signed {
		return pa
	}
	if pa.Width == pb.Width {
		// Same rank, differing signedness: unsigned wins.
		return Int{Width: pa.Width, Signed: false}
	}
	wider := pb
	if pa.Width > pb.Width {
		wider = pa
	}
	if wider.Signed {
		// A higher-ranked signed type can represent every value of a
		// lower-ranked unsigned type as long as it is strictly wider;
		// that always holds here since the two widths differ.
		return wider
	}
	// Wider type is unsigned: result is unsigned regardless of the
	// narrower operand's signedness.
	return wider
}

// IntConversion is what ClassifyIntConversion reports for an
// assignment-as conversion from src to dst: it truncates,
// sign-extends, zero-extends, or is a bit no-op, for
// integer-to-integer conversions. Non-integer conversions are handled
// by the caller (internal/sema, internal/tac).
type IntConversion int

const (
	ConvNone IntConversion = iota
	ConvTruncate
	ConvSignExtend
	ConvZeroExtend
)

func ClassifyIntConversion(src, dst Int) IntConversion {
	switch {
	case dst.Width < src.Width:
		return ConvTruncate
	case dst.Width > src.Width:
		if src.Signed {
			return ConvSignExtend
		}
		return ConvZeroExtend
	default:
		return ConvNone
	}
}

// Eightbyte classes for the System V AMD64 calling convention (spec §4.4).
type EightbyteClass int

const (
	ClassInteger EightbyteClass = iota
	ClassSSE
	ClassMemory
)

// ClassifyEightbytes classifies a (scalar or aggregate) type's
// eightbytes per spec §4.4. A scalar occupies exactly one eightbyte.
// An aggregate larger than 16 bytes is classified MEMORY as a whole
// (the corpus's exercised condition); otherwise each 8-byte window is
// INTEGER if any byte in it comes from an integer/pointer member, SSE
// if every byte in it comes from a floating member.
func ClassifyEightbytes(t Type) []EightbyteClass {
	size := SizeOf(t)
	switch t.Kind() {
	case KindDouble:
		return []EightbyteClass{ClassSSE}
	case KindInt, KindPointer:
		return []EightbyteClass{ClassInteger}
	case KindStruct, KindArray:
		if size > 16 {
			return []EightbyteClass{ClassMemory}
		}
		n := int((size + 7) / 8)
		if n == 0 {
			n = 1
		}
		classes := make([]EightbyteClass, n)
		for i := range classes {
			classes[i] = ClassSSE // merged with INTEGER below if any integer byte falls in range
		}
		walkFields(t, 0, classes)
		return classes
	default:
		return []EightbyteClass{ClassInteger}
	}
}

// walkFields recurses over an aggregate's scalar leaves, marking each
// eightbyte INTEGER if any leaf landing in it is integer/pointer.
// SSE is the default so an eightbyte with no integer leaf (i.e. all
// floating, or padding) stays SSE.
func walkFields(t Type, base int64, classes []EightbyteClass) {
	switch tt := t.(type) {
	case Struct:
		if tt.Info == nil {
			return
		}
		for _, m := range tt.Info.Members {
			walkFields(m.Type, base+m.Offset, classes)
		}
	case Array:
		if tt.N < 0 {
			return
		}
		elemSize := SizeOf(tt.Elem)
		for i := int64(0); i < tt.N; i++ {
			walkFields(tt.Elem, base+i*elemSize, classes)
		}
	case Double:
		// SSE leaf: leaves the default classification alone.
	default:
		idx := int(base / 8)
		if idx >= 0 && idx < len(classes) {
			classes[idx] = ClassInteger
		}
	}
}
