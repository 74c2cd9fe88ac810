package ir

import (
	"fmt"

	"lll/internal/types"
)

// IDGen hands out unique, increasing node IDs for one compilation. It is
// owned by the Program (Program.IDs) and threaded explicitly rather than kept as
// package-level state.
type IDGen struct{ next int }

// Next returns the next unused ID.
func (g *IDGen) Next() int {
	g.next++
	return g.next
}

// Constant is a compile-time literal value. Constants are not replaceable:
// replaceWith on a Constant is a programmer error, since a literal has no
// definition site to redirect.
type Constant struct {
	valueBase
	// Value holds an int64 for every constant; bool constants (type is the
	// width-1 Integer) carry 1 for true and 0 for false.
	Value interface{}
}

// NewConstant builds an integer or boolean literal constant of type typ.
func NewConstant(id int, typ types.Type, value interface{}) *Constant {
	return &Constant{valueBase: newValueBase(id, typ), Value: value}
}

// String renders a constant with an explicit type tag ("i32(10)",
// "bool(1)") so the text form carries enough information for
// internal/textir to parse a bare literal back without having to infer
// its width from surrounding context.
func (c *Constant) String() string { return fmt.Sprintf("%s(%v)", c.Type(), c.Value) }

// UndefinedValue is the result SCCP and mem2reg substitute for a value
// whose lattice state never rises above Unknown, or for a load with no
// reaching store. It is not replaceable.
type UndefinedValue struct {
	valueBase
}

// NewUndefinedValue builds an undefined value of type typ.
func NewUndefinedValue(id int, typ types.Type) *UndefinedValue {
	return &UndefinedValue{valueBase: newValueBase(id, typ)}
}

func (u *UndefinedValue) String() string { return fmt.Sprintf("undef(%s)", u.Type()) }

// VoidValue is the unique value of type Void, used as the operand of
// Return in void functions and in place of a dropped return value during
// dead-signature elimination. It is not replaceable.
type VoidValue struct {
	valueBase
}

// NewVoidValue builds the void value.
func NewVoidValue(id int) *VoidValue {
	return &VoidValue{valueBase: newValueBase(id, types.Void)}
}

func (v *VoidValue) String() string { return "void" }

// ParameterValue is a function parameter, a value-only node owned by the
// Function it belongs to.
type ParameterValue struct {
	valueBase
	Name string
	Fn   *Function
}

// NewParameterValue builds a named, typed parameter.
func NewParameterValue(id int, name string, typ types.Type, fn *Function) *ParameterValue {
	return &ParameterValue{valueBase: newValueBase(id, typ), Name: name, Fn: fn}
}

func (p *ParameterValue) String() string { return "%" + p.Name }

// IsUsed reports whether this parameter has any users, consulted by
// dead-signature elimination.
func (p *ParameterValue) IsUsed() bool { return p.UserCount() > 0 }

// replaceable reports whether a node may be the target of replaceWith.
// Constants, undefined values, void, and basic blocks are not: they carry
// no single definition site that could stand in for something else.
func replaceable(n Node) bool {
	switch n.(type) {
	case *Constant, *UndefinedValue, *VoidValue, *BasicBlock:
		return false
	default:
		return true
	}
}
