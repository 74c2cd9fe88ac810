package interp

import (
	"fmt"

	"lll/internal/ir"
	"lll/internal/types"
)

// frame is one activation record: the function being executed, the
// block currently running, the position within it, the block most
// recently left (for Phi lookup), and the values computed so far.
type frame struct {
	fn          *ir.Function
	block       *ir.BasicBlock
	idx         int
	pred        *ir.BasicBlock
	env         map[ir.Node]Value
	pendingCall ir.Instruction
}

// Interpreter executes a verified program's entry function. It exposes
// both a Step API, for a debugger to drive one instruction at a time,
// and RunToEnd for batch execution, and records every Eat's observed
// operand values so two programs (e.g. a source program and its
// optimized form) can be checked for identical observable behavior.
type Interpreter struct {
	Program      *ir.Program
	Observations [][]Value
	Result       Value

	frames []*frame
	done   bool
}

// New creates an interpreter positioned at the start of program's entry
// function, which must take no parameters.
func New(program *ir.Program) *Interpreter {
	in := &Interpreter{Program: program}
	if program.Entry != nil {
		in.frames = append(in.frames, &frame{
			fn:    program.Entry,
			block: program.Entry.Entry,
			env:   map[ir.Node]Value{},
		})
	} else {
		in.done = true
	}
	return in
}

// Done reports whether execution has finished, by normal return or by a
// trap.
func (in *Interpreter) Done() bool { return in.done }

// RunToEnd drives the interpreter to completion or to the first trap.
func (in *Interpreter) RunToEnd() error {
	for !in.done {
		if _, err := in.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes exactly one instruction, or one terminator action if
// the current block is exhausted, returning true once the program has
// finished.
func (in *Interpreter) Step() (bool, error) {
	if in.done {
		return true, nil
	}
	if len(in.frames) == 0 {
		in.done = true
		return true, nil
	}
	f := in.frames[len(in.frames)-1]

	if f.idx < len(f.block.Instructions) {
		inst := f.block.Instructions[f.idx]
		if call, ok := inst.(*ir.Call); ok {
			if err := in.enterCall(f, call); err != nil {
				return false, err
			}
			return false, nil
		}
		v, err := in.execInstruction(f, inst)
		if err != nil {
			return false, err
		}
		f.env[ir.Node(inst)] = v
		f.idx++
		return false, nil
	}

	return in.stepTerminator(f)
}

// enterCall pushes a new frame for the callee, binding its parameters to
// the evaluated argument values, and suspends f at the Call until the
// callee returns.
func (in *Interpreter) enterCall(f *frame, call *ir.Call) error {
	callee, ok := call.Target().(*ir.Function)
	if !ok {
		return fmt.Errorf("call target is not a function")
	}
	args := call.Args()
	env := make(map[ir.Node]Value, len(callee.Params))
	for i, p := range callee.Params {
		env[ir.Node(p)] = in.eval(f, args[i])
	}
	f.pendingCall = call
	in.frames = append(in.frames, &frame{fn: callee, block: callee.Entry, env: env})
	return nil
}

func (in *Interpreter) stepTerminator(f *frame) (bool, error) {
	switch t := f.block.Terminator.(type) {
	case *ir.Jump:
		f.pred = f.block
		f.block = t.Target()
		f.idx = 0
		return false, nil

	case *ir.Branch:
		cv, ok := in.eval(f, t.Cond()).(IntValue)
		if !ok || (cv.V != 0 && cv.V != 1) {
			return false, &RuntimeError{Kind: "bad-branch", Message: "branch condition outside {0,1}"}
		}
		f.pred = f.block
		if cv.V != 0 {
			f.block = t.TTrue()
		} else {
			f.block = t.TFalse()
		}
		f.idx = 0
		return false, nil

	case *ir.Return:
		rv := in.eval(f, t.Value())
		in.frames = in.frames[:len(in.frames)-1]
		if len(in.frames) == 0 {
			in.done = true
			in.Result = rv
			return true, nil
		}
		caller := in.frames[len(in.frames)-1]
		caller.env[ir.Node(caller.pendingCall)] = rv
		caller.pendingCall = nil
		caller.idx++
		return false, nil

	case *ir.Exit:
		in.frames = in.frames[:len(in.frames)-1]
		in.done = true
		return true, nil

	default:
		return false, fmt.Errorf("block %s has no terminator", f.block)
	}
}

// eval resolves node to its runtime value: an already-computed
// instruction result or function parameter held in f.env, or a leaf
// Constant/UndefinedValue/VoidValue with no entry of its own.
func (in *Interpreter) eval(f *frame, node ir.Node) Value {
	if v, ok := f.env[node]; ok {
		return v
	}
	switch n := node.(type) {
	case *ir.Constant:
		return IntValue{Width: intWidth(n.Type()), V: n.Value.(int64)}
	case *ir.UndefinedValue:
		return zeroValue(n.Type())
	default:
		return VoidValue{}
	}
}

func intWidth(t types.Type) int {
	if it, ok := t.(*types.Integer); ok {
		return it.Width
	}
	return 32
}

func (in *Interpreter) execInstruction(f *frame, inst ir.BasicInstruction) (Value, error) {
	switch v := inst.(type) {
	case *ir.Alloc:
		return PointerValue{Cell: &Cell{Value: zeroValue(v.Inner)}}, nil

	case *ir.Store:
		ptr, ok := in.eval(f, v.Pointer()).(PointerValue)
		if !ok {
			return nil, fmt.Errorf("store target is not a pointer")
		}
		if err := storePointer(ptr, in.eval(f, v.Value())); err != nil {
			return nil, err
		}
		return VoidValue{}, nil

	case *ir.Load:
		ptr, ok := in.eval(f, v.Pointer()).(PointerValue)
		if !ok {
			return nil, fmt.Errorf("load target is not a pointer")
		}
		return loadPointer(ptr)

	case *ir.GetSubPointerStruct:
		ptr, ok := in.eval(f, v.Target()).(PointerValue)
		if !ok {
			return nil, fmt.Errorf("sub-pointer target is not a pointer")
		}
		if ptr.Cell == nil {
			return nil, &RuntimeError{Kind: "null-pointer", Message: "field access through null pointer"}
		}
		return PointerValue{Cell: ptr.Cell, Path: appendPath(ptr.Path, v.Index)}, nil

	case *ir.GetSubPointerArray:
		ptr, ok := in.eval(f, v.Target()).(PointerValue)
		if !ok {
			return nil, fmt.Errorf("sub-pointer target is not a pointer")
		}
		if ptr.Cell == nil {
			return nil, &RuntimeError{Kind: "null-pointer", Message: "element access through null pointer"}
		}
		idx, ok := in.eval(f, v.Index()).(IntValue)
		if !ok {
			return nil, fmt.Errorf("array index is not an integer")
		}
		return PointerValue{Cell: ptr.Cell, Path: appendPath(ptr.Path, int(idx.V))}, nil

	case *ir.GetSubValueStruct:
		target, ok := in.eval(f, v.Target()).(StructValue)
		if !ok {
			return nil, fmt.Errorf("get-sub-value target is not a struct")
		}
		if v.Index < 0 || v.Index >= len(target.Fields) {
			return nil, &RuntimeError{Kind: "bounds", Message: "struct field index out of range"}
		}
		return target.Fields[v.Index], nil

	case *ir.GetSubValueArray:
		target, ok := in.eval(f, v.Target()).(ArrayValue)
		if !ok {
			return nil, fmt.Errorf("get-sub-value target is not an array")
		}
		idx, ok := in.eval(f, v.Index()).(IntValue)
		if !ok {
			return nil, fmt.Errorf("array index is not an integer")
		}
		if idx.V < 0 || int(idx.V) >= len(target.Elems) {
			return nil, &RuntimeError{Kind: "bounds", Message: "array index out of range"}
		}
		return target.Elems[idx.V], nil

	case *ir.AggregateValue:
		elems := v.Values()
		values := make([]Value, len(elems))
		for i, e := range elems {
			values[i] = in.eval(f, e)
		}
		switch t := v.Type().(type) {
		case *types.Struct:
			return StructValue{Type: t, Fields: values}, nil
		case *types.Array:
			return ArrayValue{Type: t, Elems: values}, nil
		default:
			return nil, fmt.Errorf("aggregate value has non-aggregate type %s", t)
		}

	case *ir.BinaryInstruction:
		return in.evalBinary(f, v)

	case *ir.UnaryInstruction:
		return in.evalUnary(f, v)

	case *ir.Eat:
		args := v.Args()
		values := make([]Value, len(args))
		for i, a := range args {
			values[i] = in.eval(f, a)
		}
		in.Observations = append(in.Observations, values)
		return VoidValue{}, nil

	case *ir.Blur:
		return in.eval(f, v.V()), nil

	case *ir.Phi:
		src, ok := v.Source(f.pred)
		if !ok {
			return nil, fmt.Errorf("phi has no source for predecessor %s", f.pred)
		}
		return in.eval(f, src), nil

	default:
		return nil, fmt.Errorf("unhandled instruction %s", inst)
	}
}

func appendPath(path []int, step int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = step
	return out
}

func (in *Interpreter) evalBinary(f *frame, v *ir.BinaryInstruction) (Value, error) {
	l, ok1 := in.eval(f, v.Left()).(IntValue)
	r, ok2 := in.eval(f, v.Right()).(IntValue)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("binary operand is not an integer")
	}
	w := l.Width

	switch v.Op {
	case ir.OpAdd:
		return IntValue{Width: w, V: wrapInt(l.V+r.V, w)}, nil
	case ir.OpSub:
		return IntValue{Width: w, V: wrapInt(l.V-r.V, w)}, nil
	case ir.OpMul:
		return IntValue{Width: w, V: wrapInt(l.V*r.V, w)}, nil
	case ir.OpDiv:
		if r.V == 0 {
			return nil, &RuntimeError{Kind: "division-by-zero", Message: "division by zero"}
		}
		if l.V == minInt(w) && r.V == -1 {
			return nil, &RuntimeError{Kind: "overflow", Message: "signed division overflow"}
		}
		return IntValue{Width: w, V: wrapInt(l.V/r.V, w)}, nil
	case ir.OpMod:
		if r.V == 0 {
			return nil, &RuntimeError{Kind: "division-by-zero", Message: "modulo by zero"}
		}
		return IntValue{Width: w, V: wrapInt(l.V%r.V, w)}, nil
	case ir.OpEq:
		return boolInt(l.V == r.V), nil
	case ir.OpNeq:
		return boolInt(l.V != r.V), nil
	case ir.OpLt:
		return boolInt(l.V < r.V), nil
	case ir.OpLte:
		return boolInt(l.V <= r.V), nil
	case ir.OpGt:
		return boolInt(l.V > r.V), nil
	case ir.OpGte:
		return boolInt(l.V >= r.V), nil
	default:
		return nil, fmt.Errorf("unknown binary operator %v", v.Op)
	}
}

func (in *Interpreter) evalUnary(f *frame, v *ir.UnaryInstruction) (Value, error) {
	x, ok := in.eval(f, v.V()).(IntValue)
	if !ok {
		return nil, fmt.Errorf("unary operand is not an integer")
	}
	switch v.Op {
	case ir.OpNeg:
		if x.V == minInt(x.Width) {
			return nil, &RuntimeError{Kind: "overflow", Message: "signed negation overflow"}
		}
		return IntValue{Width: x.Width, V: wrapInt(-x.V, x.Width)}, nil
	case ir.OpNot:
		return boolInt(x.V == 0), nil
	default:
		return nil, fmt.Errorf("unknown unary operator %v", v.Op)
	}
}

func boolInt(b bool) IntValue {
	if b {
		return IntValue{Width: 1, V: 1}
	}
	return IntValue{Width: 1, V: 0}
}
