package types

// Interner is the process-wide-in-spirit, but explicitly owned, table that
// canonicalizes Integer and Pointer types for a single compilation. It is
// append-only and is never consulted concurrently (see the single-threaded
// execution model of the compiler as a whole); callers thread one Interner
// through lowering rather than relying on package-level mutable state.
type Interner struct {
	integers map[int]*Integer
	pointers []*Pointer
}

// NewInterner creates an empty, ready-to-use Interner.
func NewInterner() *Interner {
	return &Interner{
		integers: make(map[int]*Integer),
	}
}

// Integer returns the canonical Integer type of the given width.
func (in *Interner) Integer(width int) *Integer {
	if t, ok := in.integers[width]; ok {
		return t
	}
	t := &Integer{Width: width}
	in.integers[width] = t
	return t
}

// Bool is shorthand for Integer(1).
func (in *Interner) Bool() *Integer { return in.Integer(1) }

// Pointer returns the canonical Pointer type over inner: a linear scan
// against structural equality, since pointer-to-aggregate inner types are
// not themselves interned.
func (in *Interner) Pointer(inner Type) *Pointer {
	for _, p := range in.pointers {
		if p.Inner.Equals(inner) {
			return p
		}
	}
	p := &Pointer{Inner: inner}
	in.pointers = append(in.pointers, p)
	return p
}

// Function builds a function type. Function types are not interned: two
// distinct instances with equal fields are compared via Equals rather than
// pointer identity.
func (in *Interner) Function(params []Type, ret Type) *Function {
	return &Function{Params: params, Ret: ret}
}

// StructType builds a struct type from its field types in declaration order.
func (in *Interner) StructType(name string, props []Type) *Struct {
	return &Struct{Name: name, Properties: props}
}

// Array builds a fixed-size array type.
func (in *Interner) Array(inner Type, size int) *Array {
	return &Array{Inner: inner, Size: size}
}
