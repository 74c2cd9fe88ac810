package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerStringSpecialCasesWidthOne(t *testing.T) {
	assert.Equal(t, "bool", (&Integer{Width: 1}).String())
	assert.Equal(t, "i32", (&Integer{Width: 32}).String())
	assert.Equal(t, "i256", (&Integer{Width: 256}).String())
}

func TestIntegerEqualsComparesWidthOnly(t *testing.T) {
	a := &Integer{Width: 32}
	b := &Integer{Width: 32}
	c := &Integer{Width: 64}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(Void))
}

func TestPointerEqualsIsStructural(t *testing.T) {
	in := NewInterner()
	p1 := &Pointer{Inner: in.Integer(32)}
	p2 := &Pointer{Inner: in.Integer(32)}
	p3 := &Pointer{Inner: in.Integer(64)}
	assert.True(t, p1.Equals(p2))
	assert.False(t, p1.Equals(p3))
}

func TestStructEqualsComparesNameAndFieldsInOrder(t *testing.T) {
	in := NewInterner()
	w := in.Integer(32)
	a := &Struct{Name: "Point", Properties: []Type{w, w}}
	b := &Struct{Name: "Point", Properties: []Type{w, w}}
	renamed := &Struct{Name: "Other", Properties: []Type{w, w}}
	reordered := &Struct{Name: "Point", Properties: []Type{in.Bool(), w}}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(renamed))
	assert.False(t, a.Equals(reordered))
}

func TestArrayEqualsComparesInnerAndSize(t *testing.T) {
	in := NewInterner()
	a := &Array{Inner: in.Integer(32), Size: 3}
	b := &Array{Inner: in.Integer(32), Size: 3}
	diffSize := &Array{Inner: in.Integer(32), Size: 4}
	diffInner := &Array{Inner: in.Bool(), Size: 3}
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(diffSize))
	assert.False(t, a.Equals(diffInner))
	assert.Equal(t, "[i32; 3]", a.String())
}

func TestFunctionEqualsComparesParamsAndReturn(t *testing.T) {
	in := NewInterner()
	w := in.Integer(32)
	f1 := in.Function([]Type{w, w}, w)
	f2 := in.Function([]Type{w, w}, w)
	f3 := in.Function([]Type{w}, w)
	f4 := in.Function([]Type{w, w}, Void)
	assert.True(t, f1.Equals(f2))
	assert.False(t, f1.Equals(f3))
	assert.False(t, f1.Equals(f4))
	assert.Equal(t, "fn(i32, i32): i32", f1.String())
}

func TestUnpointIsInegerIsBool(t *testing.T) {
	in := NewInterner()
	ptr := in.Pointer(in.Integer(32))
	inner, ok := Unpoint(ptr)
	assert.True(t, ok)
	assert.True(t, inner.Equals(in.Integer(32)))

	_, ok = Unpoint(in.Integer(32))
	assert.False(t, ok)

	assert.True(t, IsInteger(in.Integer(32)))
	assert.False(t, IsInteger(Void))
	assert.True(t, IsBool(in.Bool()))
	assert.False(t, IsBool(in.Integer(32)))
}

func TestInternerIntegerCanonicalizesByWidth(t *testing.T) {
	in := NewInterner()
	a := in.Integer(32)
	b := in.Integer(32)
	c := in.Integer(64)
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Same(t, in.Bool(), in.Integer(1))
}

func TestInternerPointerCanonicalizesStructurally(t *testing.T) {
	in := NewInterner()
	p1 := in.Pointer(in.Integer(32))
	p2 := in.Pointer(in.Integer(32))
	p3 := in.Pointer(in.Integer(64))
	assert.Same(t, p1, p2)
	assert.NotSame(t, p1, p3)
}

func TestInternerStructTypeAndArrayAreNotCanonicalized(t *testing.T) {
	in := NewInterner()
	w := in.Integer(32)
	s1 := in.StructType("Point", []Type{w, w})
	s2 := in.StructType("Point", []Type{w, w})
	assert.NotSame(t, s1, s2)
	assert.True(t, s1.Equals(s2))

	a1 := in.Array(w, 4)
	a2 := in.Array(w, 4)
	assert.NotSame(t, a1, a2)
	assert.True(t, a1.Equals(a2))
}

func TestVoidAndBlockSingletons(t *testing.T) {
	assert.Equal(t, "void", Void.String())
	assert.Equal(t, "block", Block.String())
	assert.True(t, Void.Equals(Void))
	assert.False(t, Void.Equals(Block))
}
