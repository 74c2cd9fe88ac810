package ir

import (
	"fmt"

	"lll/internal/types"
)

// Function is a name, its typed parameters, a return type, an ordered list
// of basic blocks, and a designated entry block. Function is itself a Node
// of a Function type so that it can be passed as a Call target.
type Function struct {
	valueBase
	Name       string
	Params     []*ParameterValue
	ReturnType types.Type
	Blocks     []*BasicBlock
	Entry      *BasicBlock
	Program    *Program
}

// NewFunction creates a function with no blocks yet. Callers append
// parameters and blocks, then set Entry before the function is used.
func NewFunction(id int, name string, paramTypes []types.Type, ret types.Type, program *Program) *Function {
	fnType := &types.Function{Params: paramTypes, Ret: ret}
	return &Function{
		valueBase:  newValueBase(id, fnType),
		Name:       name,
		ReturnType: ret,
		Program:    program,
	}
}

func (f *Function) String() string { return "@" + f.Name }

// AddParam appends a new parameter and returns its value.
func (f *Function) AddParam(id int, name string, typ types.Type) *ParameterValue {
	p := NewParameterValue(id, name, typ, f)
	f.Params = append(f.Params, p)
	return p
}

// AddBlock appends a block owned by this function.
func (f *Function) AddBlock(b *BasicBlock) {
	b.Fn = f
	f.Blocks = append(f.Blocks, b)
}

// RemoveBlock deletes b from the function's block list (shallow: it does
// not touch b's contents).
func (f *Function) RemoveBlock(b *BasicBlock) {
	for i, blk := range f.Blocks {
		if blk == b {
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			return
		}
	}
}

// BlockIndex returns b's position in the function's block list, used as
// the deterministic tiebreak for dominance computation and phi source
// ordering. It returns -1 if b does not belong to this function.
func (f *Function) BlockIndex(b *BasicBlock) int {
	for i, blk := range f.Blocks {
		if blk == b {
			return i
		}
	}
	return -1
}

// RemoveParam deletes the parameter at index i and rebuilds the function's
// signature type to match. The caller is responsible for removing the
// corresponding argument from every Call site first.
func (f *Function) RemoveParam(i int) *ParameterValue {
	p := f.Params[i]
	f.Params = append(f.Params[:i], f.Params[i+1:]...)
	paramTypes := make([]types.Type, len(f.Params))
	for j, pp := range f.Params {
		paramTypes[j] = pp.Type()
	}
	f.typ = &types.Function{Params: paramTypes, Ret: f.ReturnType}
	return p
}

// Signature returns the function's Function type.
func (f *Function) Signature() *types.Function {
	return f.typ.(*types.Function)
}

// IsParameterless reports whether the function takes no arguments, a
// requirement on the program's entry point.
func (f *Function) IsParameterless() bool { return len(f.Params) == 0 }

// IsVoid reports whether the function's declared return type is Void.
func (f *Function) IsVoid() bool { return f.ReturnType.Equals(types.Void) }

func fnDebugName(f *Function) string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("@%s", f.Name)
}
