package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ir"
	"lll/internal/types"
)

func TestBinaryInstructionTracksUsersOfBothOperands(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	a := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	b := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	add := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, a, b, prog.Interner)

	assert.Equal(t, []ir.Node{add}, a.Users())
	assert.Equal(t, []ir.Node{add}, b.Users())
	assert.Equal(t, 1, a.UserCount())
	assert.ElementsMatch(t, []ir.Node{a, b}, add.Operands())
}

func TestReplaceOperandUpdatesUsersOnBothSides(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	a := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	b := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	c := ir.NewConstant(prog.IDs.Next(), w, int64(3))
	add := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, a, b, prog.Interner)

	n := add.ReplaceOperand(a, c)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, a.UserCount())
	assert.Equal(t, 1, c.UserCount())
	assert.Same(t, c, add.Left())
}

func TestReplaceAllUsesRewritesEveryUser(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	five := ir.NewConstant(prog.IDs.Next(), w, int64(5))
	ten := ir.NewConstant(prog.IDs.Next(), w, int64(10))
	addA := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, five, five, prog.Interner)
	addB := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpMul, five, five, prog.Interner)

	ir.ReplaceAllUses(five, ten)
	assert.Same(t, ten, addA.Left())
	assert.Same(t, ten, addA.Right())
	assert.Same(t, ten, addB.Left())
	assert.Equal(t, 0, five.UserCount())
	// UserCount is the number of distinct users, not the number of slots
	// they occupy: addA and addB each reference ten from two slots.
	assert.Equal(t, 2, ten.UserCount())
}

func TestDeleteInstructionDisconnectsOperandsAndRemovesFromBlock(t *testing.T) {
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)
	fn.Entry = block
	w := prog.Interner.Integer(32)

	a := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	add := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, a, a, prog.Interner)
	block.Append(add)
	require.Len(t, block.Instructions, 1)

	ir.DeleteInstruction(add)
	assert.Empty(t, block.Instructions)
	assert.Equal(t, 0, a.UserCount())
}

func TestPhiKeysReflectInsertionOrderAndSourceLookup(t *testing.T) {
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	a := ir.NewBasicBlock(prog.IDs.Next(), "a", fn)
	b := ir.NewBasicBlock(prog.IDs.Next(), "b", fn)
	fn.AddBlock(a)
	fn.AddBlock(b)
	w := prog.Interner.Integer(32)

	phi := ir.NewPhi(prog.IDs.Next(), w)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	phi.AddSource(a, one)
	phi.AddSource(b, two)

	assert.Equal(t, []*ir.BasicBlock{a, b}, phi.Keys())
	v, ok := phi.Source(a)
	assert.True(t, ok)
	assert.Same(t, one, v)

	phi.RemoveSource(a)
	_, ok = phi.Source(a)
	assert.False(t, ok)
	assert.Equal(t, []*ir.BasicBlock{b}, phi.Keys())
	assert.Equal(t, 0, one.UserCount())
}

func TestPhiAddSourceOverwritesExistingKeyInPlace(t *testing.T) {
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	a := ir.NewBasicBlock(prog.IDs.Next(), "a", fn)
	fn.AddBlock(a)
	w := prog.Interner.Integer(32)

	phi := ir.NewPhi(prog.IDs.Next(), w)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	phi.AddSource(a, one)
	phi.AddSource(a, two)

	assert.Equal(t, []*ir.BasicBlock{a}, phi.Keys())
	v, _ := phi.Source(a)
	assert.Same(t, two, v)
	assert.Equal(t, 0, one.UserCount())
}

func TestPrependPhiInsertsAfterExistingPhisBeforeNonPhis(t *testing.T) {
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)
	w := prog.Interner.Integer(32)

	firstPhi := ir.NewPhi(prog.IDs.Next(), w)
	block.PrependPhi(firstPhi)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	nonPhi := ir.NewEat(prog.IDs.Next(), []ir.Node{one})
	block.Append(nonPhi)
	secondPhi := ir.NewPhi(prog.IDs.Next(), w)
	block.PrependPhi(secondPhi)

	require.Len(t, block.Instructions, 3)
	assert.Same(t, ir.BasicInstruction(firstPhi), block.Instructions[0])
	assert.Same(t, ir.BasicInstruction(secondPhi), block.Instructions[1])
	assert.Same(t, ir.BasicInstruction(nonPhi), block.Instructions[2])
	assert.Equal(t, []*ir.Phi{firstPhi, secondPhi}, block.Phis())
}

func TestBlockPredecessorsAndSuccessorsAreStructural(t *testing.T) {
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	entry := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	target := ir.NewBasicBlock(prog.IDs.Next(), "target", fn)
	unreachableSrc := ir.NewBasicBlock(prog.IDs.Next(), "dead", fn)
	fn.AddBlock(entry)
	fn.AddBlock(target)
	fn.AddBlock(unreachableSrc)
	fn.Entry = entry

	entry.SetTerminator(ir.NewJump(prog.IDs.Next(), target))
	// unreachableSrc also targets target even though nothing reaches
	// unreachableSrc itself; Predecessors is unfiltered by reachability.
	unreachableSrc.SetTerminator(ir.NewJump(prog.IDs.Next(), target))
	target.SetTerminator(ir.NewExit(prog.IDs.Next()))

	assert.ElementsMatch(t, []*ir.BasicBlock{entry, unreachableSrc}, target.Predecessors())
	assert.Equal(t, []*ir.BasicBlock{target}, entry.Successors())
}

func TestFunctionBlockIndexAndRemoveParamRebuildsSignature(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	fn := ir.NewFunction(prog.IDs.Next(), "f", []types.Type{w, w}, w, prog)
	p0 := fn.AddParam(prog.IDs.Next(), "a", w)
	_ = fn.AddParam(prog.IDs.Next(), "b", w)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)

	assert.Equal(t, 0, fn.BlockIndex(block))
	assert.Equal(t, -1, fn.BlockIndex(ir.NewBasicBlock(prog.IDs.Next(), "other", fn)))

	removed := fn.RemoveParam(0)
	assert.Same(t, p0, removed)
	assert.Len(t, fn.Signature().Params, 1)
	assert.Same(t, fn.Params[0].Type(), fn.Signature().Params[0])
}

func TestDeleteFunctionDisconnectsCallOperandsAndRemovesFromProgram(t *testing.T) {
	prog := ir.NewProgram()
	callee := ir.NewFunction(prog.IDs.Next(), "callee", nil, types.Void, prog)
	calleeBlock := ir.NewBasicBlock(prog.IDs.Next(), "entry", callee)
	callee.AddBlock(calleeBlock)
	callee.Entry = calleeBlock
	calleeBlock.SetTerminator(ir.NewExit(prog.IDs.Next()))
	prog.AddFunction(callee)

	caller := ir.NewFunction(prog.IDs.Next(), "caller", nil, types.Void, prog)
	callerBlock := ir.NewBasicBlock(prog.IDs.Next(), "entry", caller)
	caller.AddBlock(callerBlock)
	caller.Entry = callerBlock
	call := ir.NewCall(prog.IDs.Next(), callee, nil)
	callerBlock.Append(call)
	callerBlock.SetTerminator(ir.NewExit(prog.IDs.Next()))
	prog.AddFunction(caller)

	assert.Equal(t, 1, callee.UserCount())
	ir.DeleteInstruction(call)
	assert.Equal(t, 0, callee.UserCount())

	ir.DeleteFunction(callee, prog)
	assert.Nil(t, prog.FindFunction("callee"))
	assert.Same(t, caller, prog.FindFunction("caller"))
}
