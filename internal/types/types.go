// Package types implements the compiler's type system (C1): primitive,
// pointer, aggregate, and function types with structural identity.
//
// Every Type is one of Void, Integer(width), Pointer(inner), Function(params,
// ret), Struct(name, props), Array(inner, size), or Block (the internal type
// of basic-block values). Two types are equal iff their constructors and
// fields are equal; Integer and Pointer are additionally canonicalized
// through an Interner so that equal types share a single instance.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every member of the type system.
type Type interface {
	fmt.Stringer
	// Equals reports structural equality: the same constructor applied to
	// equal fields.
	Equals(other Type) bool
}

// Void is the singleton type of instructions with no result (Store, Eat,
// terminators).
var Void Type = voidType{}

// Block is the internal type of basic-block values, used only as the type
// of BasicBlock operands.
var Block Type = blockType{}

type voidType struct{}

func (voidType) String() string        { return "void" }
func (voidType) Equals(o Type) bool    { _, ok := o.(voidType); return ok }

type blockType struct{}

func (blockType) String() string     { return "block" }
func (blockType) Equals(o Type) bool { _, ok := o.(blockType); return ok }

// Integer is a fixed-width two's-complement integer type; width 1 is used
// for "bool", width 32 for "i32", and so on. Integer types are interned:
// two Integer values of the same width returned by the same Interner are
// the identical pointer.
type Integer struct {
	Width int
}

func (i *Integer) String() string {
	if i.Width == 1 {
		return "bool"
	}
	return fmt.Sprintf("i%d", i.Width)
}

func (i *Integer) Equals(o Type) bool {
	oi, ok := o.(*Integer)
	return ok && oi.Width == i.Width
}

// Pointer is a pointer to a value of type Inner. Pointer types are
// interned keyed by (interner, inner-type-identity).
type Pointer struct {
	Inner Type
}

func (p *Pointer) String() string { return "*" + p.Inner.String() }

func (p *Pointer) Equals(o Type) bool {
	op, ok := o.(*Pointer)
	return ok && op.Inner.Equals(p.Inner)
}

// Function is the type of a callable value: its parameter types in order
// and its return type (Void for a function returning nothing).
type Function struct {
	Params []Type
	Ret    Type
}

func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s): %s", strings.Join(parts, ", "), f.Ret.String())
}

func (f *Function) Equals(o Type) bool {
	of, ok := o.(*Function)
	if !ok || len(of.Params) != len(f.Params) || !of.Ret.Equals(f.Ret) {
		return false
	}
	for i, p := range f.Params {
		if !p.Equals(of.Params[i]) {
			return false
		}
	}
	return true
}

// Struct is a named aggregate of fields in declaration order. Struct
// identity is structural: the same name and the same field types in the
// same order, not reference identity of the declaration.
type Struct struct {
	Name       string
	Properties []Type
}

func (s *Struct) String() string { return s.Name }

func (s *Struct) Equals(o Type) bool {
	os, ok := o.(*Struct)
	if !ok || os.Name != s.Name || len(os.Properties) != len(s.Properties) {
		return false
	}
	for i, p := range s.Properties {
		if !p.Equals(os.Properties[i]) {
			return false
		}
	}
	return true
}

// Array is a fixed-size homogeneous aggregate.
type Array struct {
	Inner Type
	Size  int
}

func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.Inner.String(), a.Size) }

func (a *Array) Equals(o Type) bool {
	oa, ok := o.(*Array)
	return ok && oa.Size == a.Size && oa.Inner.Equals(a.Inner)
}

// Unpoint returns (inner, true) iff t is a Pointer; otherwise (nil, false).
func Unpoint(t Type) (Type, bool) {
	if p, ok := t.(*Pointer); ok {
		return p.Inner, true
	}
	return nil, false
}

// IsInteger reports whether t is an Integer type.
func IsInteger(t Type) bool {
	_, ok := t.(*Integer)
	return ok
}

// IsBool reports whether t is the width-1 Integer type.
func IsBool(t Type) bool {
	i, ok := t.(*Integer)
	return ok && i.Width == 1
}
