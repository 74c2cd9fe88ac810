package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ir"
	"lll/internal/types"
)

func TestConstantFoldingReducesBinaryAndUnaryOps(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)

	three := ir.NewConstant(prog.IDs.Next(), w, int64(3))
	four := ir.NewConstant(prog.IDs.Next(), w, int64(4))
	sum := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, three, four, prog.Interner)
	block.Append(sum)
	neg := ir.NewUnaryInstruction(prog.IDs.Next(), ir.OpNeg, sum)
	block.Append(neg)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{neg})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	folding := ConstantFolding{}
	for folding.Run(ctx) {
	}

	require.Len(t, eat.Args(), 1)
	folded, ok := eat.Args()[0].(*ir.Constant)
	require.True(t, ok)
	assert.Equal(t, int64(-7), folded.Value)
}

func TestConstantFoldingLeavesDivisionByLiteralZeroAlone(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)

	ten := ir.NewConstant(prog.IDs.Next(), w, int64(10))
	zero := ir.NewConstant(prog.IDs.Next(), w, int64(0))
	div := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpDiv, ten, zero, prog.Interner)
	block.Append(div)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{div})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	changed := ConstantFolding{}.Run(ctx)
	assert.False(t, changed)
	assert.Same(t, ir.Node(div), eat.Args()[0])
}

func TestDeadInstructionEliminationCascadesThroughDeadOperands(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)

	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	add := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, one, one, prog.Interner)
	block.Append(add)
	mul := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpMul, add, add, prog.Interner)
	block.Append(mul)
	// mul has no users and is pure, so both it and its sole operand add
	// should be deleted in one pass invocation.
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	changed := DeadInstructionElimination{}.Run(ctx)
	assert.True(t, changed)
	assert.Empty(t, block.Instructions)
}

func TestDeadFunctionEliminationRemovesUnreachableFunctions(t *testing.T) {
	prog := ir.NewProgram()
	used, usedBlock := buildVoidFn(prog, "used")
	usedBlock.SetTerminator(ir.NewExit(prog.IDs.Next()))
	unused, unusedBlock := buildVoidFn(prog, "unused")
	unusedBlock.SetTerminator(ir.NewExit(prog.IDs.Next()))

	main, mainBlock := buildVoidFn(prog, "main")
	mainBlock.Append(ir.NewCall(prog.IDs.Next(), used, nil))
	mainBlock.SetTerminator(ir.NewExit(prog.IDs.Next()))
	prog.Entry = main

	ctx := NewContext(prog)
	changed := DeadFunctionElimination{}.Run(ctx)
	assert.True(t, changed)
	assert.Nil(t, prog.FindFunction("unused"))
	assert.Same(t, used, prog.FindFunction("used"))
	_ = unused
}

func TestDeadSignatureEliminationDropsUnusedParamsAndFixesCallSites(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	callee := ir.NewFunction(prog.IDs.Next(), "f", []types.Type{w, w}, w, prog)
	usedParam := callee.AddParam(prog.IDs.Next(), "used", w)
	_ = callee.AddParam(prog.IDs.Next(), "unused", w)
	calleeBlock := ir.NewBasicBlock(prog.IDs.Next(), "entry", callee)
	callee.AddBlock(calleeBlock)
	callee.Entry = calleeBlock
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), usedParam))
	prog.AddFunction(callee)

	caller, callerBlock := buildFnReturning(prog, "caller", w)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	call := ir.NewCall(prog.IDs.Next(), callee, []ir.Node{one, two})
	callerBlock.Append(call)
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), call))

	ctx := NewContext(prog)
	changed := DeadSignatureElimination{}.Run(ctx)
	assert.True(t, changed)
	assert.Len(t, callee.Params, 1)

	newCall, ok := callerBlock.Instructions[len(callerBlock.Instructions)-1].(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, []ir.Node{one}, newCall.Args())
}

func buildFnReturning(prog *ir.Program, name string, ret types.Type) (*ir.Function, *ir.BasicBlock) {
	fn := ir.NewFunction(prog.IDs.Next(), name, nil, ret, prog)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)
	fn.Entry = block
	prog.AddFunction(fn)
	return fn, block
}

func TestBlockSimplificationCollapsesSameTargetBranch(t *testing.T) {
	prog, fn, entry := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)
	target := ir.NewBasicBlock(prog.IDs.Next(), "target", fn)
	fn.AddBlock(target)
	target.SetTerminator(ir.NewExit(prog.IDs.Next()))

	cond := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	entry.SetTerminator(ir.NewBranch(prog.IDs.Next(), cond, target, target))
	// A second predecessor keeps the same Run from splicing target into
	// entry once the branch has become a Jump.
	other := ir.NewBasicBlock(prog.IDs.Next(), "other", fn)
	fn.AddBlock(other)
	other.SetTerminator(ir.NewJump(prog.IDs.Next(), target))

	ctx := NewContext(prog)
	changed := BlockSimplification{}.Run(ctx)
	assert.True(t, changed)
	jump, ok := entry.Terminator.(*ir.Jump)
	require.True(t, ok)
	assert.Same(t, target, jump.Target())
}

func TestBlockSimplificationSplicesSoleSuccessorIntoItsOnlyPredecessor(t *testing.T) {
	prog, fn, entry := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)
	next := ir.NewBasicBlock(prog.IDs.Next(), "next", fn)
	fn.AddBlock(next)

	entry.SetTerminator(ir.NewJump(prog.IDs.Next(), next))
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{one})
	next.Append(eat)
	next.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	changed := BlockSimplification{}.Run(ctx)
	assert.True(t, changed)
	assert.Contains(t, entry.Instructions, ir.BasicInstruction(eat))
	_, isExit := entry.Terminator.(*ir.Exit)
	assert.True(t, isExit)
	assert.NotContains(t, fn.Blocks, next)
}

func TestDeadBlockEliminationRemovesUnreachableBlocksAndPhiSources(t *testing.T) {
	prog, fn, entry := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)
	reachable := ir.NewBasicBlock(prog.IDs.Next(), "reachable", fn)
	dead := ir.NewBasicBlock(prog.IDs.Next(), "dead", fn)
	join := ir.NewBasicBlock(prog.IDs.Next(), "join", fn)
	fn.AddBlock(reachable)
	fn.AddBlock(dead)
	fn.AddBlock(join)

	entry.SetTerminator(ir.NewJump(prog.IDs.Next(), reachable))
	reachable.SetTerminator(ir.NewJump(prog.IDs.Next(), join))
	dead.SetTerminator(ir.NewJump(prog.IDs.Next(), join))

	phi := ir.NewPhi(prog.IDs.Next(), w)
	phi.AddSource(reachable, ir.NewConstant(prog.IDs.Next(), w, int64(1)))
	phi.AddSource(dead, ir.NewConstant(prog.IDs.Next(), w, int64(2)))
	join.PrependPhi(phi)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{phi})
	join.Append(eat)
	join.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	changed := DeadBlockElimination{}.Run(ctx)
	assert.True(t, changed)
	assert.NotContains(t, fn.Blocks, dead)
	_, ok := phi.Source(dead)
	assert.False(t, ok)
	_, ok = phi.Source(reachable)
	assert.True(t, ok)
}

func TestAggregateSplittingDecomposesFieldOnlyStruct(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)
	st := prog.Interner.StructType("Point", []types.Type{w, w})

	alloc := ir.NewAlloc(prog.IDs.Next(), st, prog.Interner)
	block.Append(alloc)
	fieldX := ir.NewGetSubPointerStruct(prog.IDs.Next(), alloc, 0, prog.Interner)
	block.Append(fieldX)
	fieldY := ir.NewGetSubPointerStruct(prog.IDs.Next(), alloc, 1, prog.Interner)
	block.Append(fieldY)
	block.Append(ir.NewStore(prog.IDs.Next(), fieldX, ir.NewConstant(prog.IDs.Next(), w, int64(1))))
	block.Append(ir.NewStore(prog.IDs.Next(), fieldY, ir.NewConstant(prog.IDs.Next(), w, int64(2))))
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	ctx := NewContext(prog)
	changed := AggregateSplitting{}.Run(ctx)
	assert.True(t, changed)

	var allocs []*ir.Alloc
	for _, inst := range block.Instructions {
		if a, ok := inst.(*ir.Alloc); ok {
			allocs = append(allocs, a)
		}
	}
	require.Len(t, allocs, 2)
	for _, a := range allocs {
		assert.True(t, a.Inner.Equals(w))
	}
}

func TestRunWithConfigReportsErrorWhenFixedPointIsNeverReached(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{one})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	cfg := Config{InlineThreshold: 40, MaxInlineDepth: 4, MaxIterations: 3}
	err := RunWithConfig(prog, []Pass{neverSettlingPass{}}, cfg, false)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "did not reach a fixed point"))
}

// neverSettlingPass always reports a change, used to exercise the driver's
// iteration cap without depending on a real pass's convergence behavior.
type neverSettlingPass struct{}

func (neverSettlingPass) Name() string         { return "never-settling" }
func (neverSettlingPass) Run(ctx *Context) bool { return true }

func TestRunDefaultConvergesOnConstantFoldThenDeadCodeChain(t *testing.T) {
	prog, _, block := buildMem2RegEntry(t)
	w := prog.Interner.Integer(32)

	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	three := ir.NewConstant(prog.IDs.Next(), w, int64(3))
	sum := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, two, three, prog.Interner)
	block.Append(sum)
	// sum is never used: constant folding replaces it with a fresh
	// Constant (which lives in no block) and deletes the BinaryInstruction
	// itself, so the block is empty once the pipeline settles.
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	err := RunDefault(prog, true)
	require.NoError(t, err)
	assert.Empty(t, block.Instructions)
}
