// Package interp gives the IR reference semantics (C10): a small
// tree-walking evaluator over verified programs, used to check that
// optimization preserves observable behavior and to back a future
// debugger's step/run-to-end controls.
package interp

import (
	"fmt"

	"lll/internal/types"
)

// Value is a runtime value the interpreter manipulates, one of the four
// kinds spec.md's reference semantics describe: integers, pointers, and
// the struct/array aggregates built from them.
type Value interface {
	isValue()
	String() string
}

// IntValue is a fixed-width two's-complement integer; width 1 doubles as
// the boolean representation, matching the IR's own convention.
type IntValue struct {
	Width int
	V     int64
}

func (IntValue) isValue()         {}
func (v IntValue) String() string { return fmt.Sprintf("%d", v.V) }

// PointerValue addresses a location inside a Cell: either the cell's
// whole value (Path empty) or a field/element reached by descending
// through nested StructValue.Fields / ArrayValue.Elems slices. A nil
// Cell is the null pointer.
type PointerValue struct {
	Cell *Cell
	Path []int
}

func (PointerValue) isValue() {}
func (v PointerValue) String() string {
	if v.Cell == nil {
		return "null"
	}
	return "ptr"
}

// StructValue is an ordered, named set of field values.
type StructValue struct {
	Type   *types.Struct
	Fields []Value
}

func (StructValue) isValue()         {}
func (v StructValue) String() string { return v.Type.String() }

// ArrayValue is a fixed-size, homogeneous sequence of element values.
type ArrayValue struct {
	Type  *types.Array
	Elems []Value
}

func (ArrayValue) isValue()         {}
func (v ArrayValue) String() string { return v.Type.String() }

// VoidValue is the result of an instruction with no meaningful value
// (Store, Eat) and of Return in a void function.
type VoidValue struct{}

func (VoidValue) isValue()       {}
func (VoidValue) String() string { return "void" }

// zeroValue builds the default value of t, used to initialize a freshly
// Alloc'd cell.
func zeroValue(t types.Type) Value {
	switch tt := t.(type) {
	case *types.Integer:
		return IntValue{Width: tt.Width}
	case *types.Pointer:
		return PointerValue{}
	case *types.Struct:
		fields := make([]Value, len(tt.Properties))
		for i, ft := range tt.Properties {
			fields[i] = zeroValue(ft)
		}
		return StructValue{Type: tt, Fields: fields}
	case *types.Array:
		elems := make([]Value, tt.Size)
		for i := range elems {
			elems[i] = zeroValue(tt.Inner)
		}
		return ArrayValue{Type: tt, Elems: elems}
	default:
		return VoidValue{}
	}
}

// wrapInt truncates v to width bits of two's-complement, the wraparound
// arithmetic spec.md's boundary behaviors require
// (i32(2147483647) + i32(1) = i32(-2147483648)).
func wrapInt(v int64, width int) int64 {
	if width <= 0 || width >= 64 {
		return v
	}
	mask := int64(1)<<uint(width) - 1
	v &= mask
	if v&(int64(1)<<uint(width-1)) != 0 {
		v -= int64(1) << uint(width)
	}
	return v
}

func minInt(width int) int64 {
	if width >= 64 {
		return -1 << 63
	}
	return -(int64(1) << uint(width-1))
}
