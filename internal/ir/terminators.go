package ir

import (
	"fmt"

	"lll/internal/types"
)

// Jump transfers control unconditionally to Target.
type Jump struct {
	instBase
	target singleSlot
}

func NewJump(id int, target *BasicBlock) *Jump {
	j := &Jump{}
	j.valueBase = newValueBase(id, types.Void)
	j.target.owner = j
	j.target.Set(target)
	return j
}

func (j *Jump) Target() *BasicBlock { return j.target.Get().(*BasicBlock) }

func (j *Jump) isTerminator() {}
func (j *Jump) Pure() bool    { return false }
func (j *Jump) Operands() []Node { return []Node{j.target.Get()} }
func (j *Jump) ReplaceOperand(from, to Node) int { return j.target.replace(from, to) }
func (j *Jump) Targets() []*BasicBlock           { return []*BasicBlock{j.Target()} }
func (j *Jump) String() string                   { return fmt.Sprintf("Jump %s", j.Target()) }
func (j *Jump) TypeCheck() error {
	if j.Target() == nil {
		return fmt.Errorf("Jump: missing target")
	}
	return nil
}
func (j *Jump) Clone(id int) Instruction { return NewJump(id, j.Target()) }
func (j *Jump) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Jump)
	if !ok {
		return false
	}
	mapped, ok := mapping[Node(j.Target())]
	return ok && mapped == Node(o.Target())
}

// Branch transfers control to TTrue if Cond is true (non-zero), otherwise
// to TFalse.
type Branch struct {
	instBase
	cond           singleSlot
	tTrue, tFalse  singleSlot
}

func NewBranch(id int, cond Node, tTrue, tFalse *BasicBlock) *Branch {
	b := &Branch{}
	b.valueBase = newValueBase(id, types.Void)
	b.cond.owner, b.tTrue.owner, b.tFalse.owner = b, b, b
	b.cond.Set(cond)
	b.tTrue.Set(tTrue)
	b.tFalse.Set(tFalse)
	return b
}

func (b *Branch) Cond() Node          { return b.cond.Get() }
func (b *Branch) TTrue() *BasicBlock  { return b.tTrue.Get().(*BasicBlock) }
func (b *Branch) TFalse() *BasicBlock { return b.tFalse.Get().(*BasicBlock) }

func (b *Branch) isTerminator() {}
func (b *Branch) Pure() bool    { return false }
func (b *Branch) Operands() []Node {
	return []Node{b.Cond(), b.tTrue.Get(), b.tFalse.Get()}
}
func (b *Branch) ReplaceOperand(from, to Node) int {
	return b.cond.replace(from, to) + b.tTrue.replace(from, to) + b.tFalse.replace(from, to)
}
func (b *Branch) Targets() []*BasicBlock { return []*BasicBlock{b.TTrue(), b.TFalse()} }
func (b *Branch) String() string {
	return fmt.Sprintf("Branch %s, %s, %s", refStr(b.Cond()), b.TTrue(), b.TFalse())
}
func (b *Branch) TypeCheck() error {
	if !types.IsBool(b.Cond().Type()) {
		return fmt.Errorf("Branch: condition must be bool")
	}
	return nil
}
func (b *Branch) Clone(id int) Instruction {
	return NewBranch(id, b.Cond(), b.TTrue(), b.TFalse())
}
func (b *Branch) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Branch)
	if !ok || !operandMatches(b.Cond(), o.Cond(), mapping) {
		return false
	}
	mt, ok1 := mapping[Node(b.TTrue())]
	mf, ok2 := mapping[Node(b.TFalse())]
	return ok1 && ok2 && mt == Node(o.TTrue()) && mf == Node(o.TFalse())
}

// Return exits the current function with Value (VoidValue for a void
// function).
type Return struct {
	instBase
	value singleSlot
}

func NewReturn(id int, value Node) *Return {
	r := &Return{}
	r.valueBase = newValueBase(id, types.Void)
	r.value.owner = r
	r.value.Set(value)
	return r
}

func (r *Return) Value() Node { return r.value.Get() }

func (r *Return) isTerminator() {}
func (r *Return) Pure() bool    { return false }
func (r *Return) Operands() []Node { return []Node{r.Value()} }
func (r *Return) ReplaceOperand(from, to Node) int {
	return r.value.replace(from, to)
}
func (r *Return) Targets() []*BasicBlock { return nil }
func (r *Return) String() string         { return fmt.Sprintf("Return %s", refStr(r.Value())) }
func (r *Return) TypeCheck() error       { return nil }
func (r *Return) Clone(id int) Instruction { return NewReturn(id, r.Value()) }
func (r *Return) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Return)
	return ok && operandMatches(r.Value(), o.Value(), mapping)
}

// Exit terminates the program (the only terminator that never transfers
// control back into the caller's control-flow graph). The lowerer ends a
// non-void function's unreturned last block with it; interpreter traps
// are reported as errors, not through Exit.
type Exit struct {
	instBase
}

func NewExit(id int) *Exit {
	e := &Exit{}
	e.valueBase = newValueBase(id, types.Void)
	return e
}

func (e *Exit) isTerminator()                        {}
func (e *Exit) Pure() bool                            { return false }
func (e *Exit) Operands() []Node                      { return nil }
func (e *Exit) ReplaceOperand(from, to Node) int      { return 0 }
func (e *Exit) Targets() []*BasicBlock                { return nil }
func (e *Exit) String() string                        { return "Exit" }
func (e *Exit) TypeCheck() error                      { return nil }
func (e *Exit) Clone(id int) Instruction              { return NewExit(id) }
func (e *Exit) Matches(other Instruction, mapping map[Node]Node) bool {
	_, ok := other.(*Exit)
	return ok
}
