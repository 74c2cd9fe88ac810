package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ir"
	"lll/internal/types"
)

// buildEntry creates an empty parameterless void entry function with a
// single block and wires it into a fresh program, returning both so
// tests can append instructions to the block before running it.
func buildEntry(t *testing.T) (*ir.Program, *ir.Function, *ir.BasicBlock) {
	t.Helper()
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), "main", nil, types.Void, prog)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)
	fn.Entry = block
	prog.AddFunction(fn)
	prog.Entry = fn
	return prog, fn, block
}

func i32(interner *types.Interner) *types.Integer { return interner.Integer(32) }

func TestInterpreterEatObservesArithmetic(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	five := ir.NewConstant(prog.IDs.Next(), w, int64(5))
	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	sum := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, five, two, prog.Interner)
	block.Append(sum)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{sum})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	require.Len(t, in.Observations, 1)
	assert.Equal(t, []Value{IntValue{Width: 32, V: 7}}, in.Observations[0])
}

func TestInterpreterAllocStoreLoadRoundTrip(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	alloc := ir.NewAlloc(prog.IDs.Next(), w, prog.Interner)
	block.Append(alloc)
	nine := ir.NewConstant(prog.IDs.Next(), w, int64(9))
	store := ir.NewStore(prog.IDs.Next(), alloc, nine)
	block.Append(store)
	load := ir.NewLoad(prog.IDs.Next(), alloc)
	block.Append(load)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{load})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	require.Len(t, in.Observations, 1)
	assert.Equal(t, IntValue{Width: 32, V: 9}, in.Observations[0][0])
}

func TestInterpreterStructFieldMutationPersistsThroughWholeLoad(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)
	st := prog.Interner.StructType("Point", []types.Type{w, w})

	alloc := ir.NewAlloc(prog.IDs.Next(), st, prog.Interner)
	block.Append(alloc)
	fieldPtr := ir.NewGetSubPointerStruct(prog.IDs.Next(), alloc, 0, prog.Interner)
	block.Append(fieldPtr)
	seven := ir.NewConstant(prog.IDs.Next(), w, int64(7))
	store := ir.NewStore(prog.IDs.Next(), fieldPtr, seven)
	block.Append(store)

	// Load the whole struct, then re-read field 0 through a fresh
	// sub-pointer: both must see the mutation made through fieldPtr.
	wholeLoad := ir.NewLoad(prog.IDs.Next(), alloc)
	block.Append(wholeLoad)
	fieldPtr2 := ir.NewGetSubPointerStruct(prog.IDs.Next(), alloc, 0, prog.Interner)
	block.Append(fieldPtr2)
	fieldLoad := ir.NewLoad(prog.IDs.Next(), fieldPtr2)
	block.Append(fieldLoad)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{fieldLoad, wholeLoad})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	require.Len(t, in.Observations, 1)
	assert.Equal(t, IntValue{Width: 32, V: 7}, in.Observations[0][0])
	whole, ok := in.Observations[0][1].(StructValue)
	require.True(t, ok)
	assert.Equal(t, IntValue{Width: 32, V: 7}, whole.Fields[0])
}

func TestInterpreterDivisionByZeroTraps(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	ten := ir.NewConstant(prog.IDs.Next(), w, int64(10))
	zero := ir.NewConstant(prog.IDs.Next(), w, int64(0))
	div := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpDiv, ten, zero, prog.Interner)
	block.Append(div)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	err := in.RunToEnd()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "division-by-zero", rerr.Kind)
}

func TestInterpreterSignedDivisionOverflowTraps(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	minVal := ir.NewConstant(prog.IDs.Next(), w, int64(-2147483648))
	negOne := ir.NewConstant(prog.IDs.Next(), w, int64(-1))
	div := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpDiv, minVal, negOne, prog.Interner)
	block.Append(div)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	err := in.RunToEnd()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "overflow", rerr.Kind)
}

func TestInterpreterAdditionWrapsAroundOnOverflow(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	maxVal := ir.NewConstant(prog.IDs.Next(), w, int64(2147483647))
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	sum := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, maxVal, one, prog.Interner)
	block.Append(sum)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{sum})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	assert.Equal(t, IntValue{Width: 32, V: -2147483648}, in.Observations[0][0])
}

func TestInterpreterNullPointerLoadTraps(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)
	ptrType := &types.Pointer{Inner: w}

	outer := ir.NewAlloc(prog.IDs.Next(), ptrType, prog.Interner)
	block.Append(outer)
	innerPtr := ir.NewLoad(prog.IDs.Next(), outer)
	block.Append(innerPtr)
	badLoad := ir.NewLoad(prog.IDs.Next(), innerPtr)
	block.Append(badLoad)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	err := in.RunToEnd()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "null-pointer", rerr.Kind)
}

func TestInterpreterBranchOnNonBooleanTraps(t *testing.T) {
	prog, fn, block := buildEntry(t)
	w := i32(prog.Interner)

	left := ir.NewBasicBlock(prog.IDs.Next(), "left", fn)
	right := ir.NewBasicBlock(prog.IDs.Next(), "right", fn)
	fn.AddBlock(left)
	fn.AddBlock(right)
	left.SetTerminator(ir.NewExit(prog.IDs.Next()))
	right.SetTerminator(ir.NewExit(prog.IDs.Next()))

	five := ir.NewConstant(prog.IDs.Next(), w, int64(5))
	block.SetTerminator(ir.NewBranch(prog.IDs.Next(), five, left, right))

	in := New(prog)
	err := in.RunToEnd()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "bad-branch", rerr.Kind)
}

func TestInterpreterCallBindsArgumentsAndReturnsToCaller(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	double := ir.NewFunction(prog.IDs.Next(), "double", []types.Type{w}, w, prog)
	db := ir.NewBasicBlock(prog.IDs.Next(), "entry", double)
	double.AddBlock(db)
	double.Entry = db
	param := double.AddParam(prog.IDs.Next(), "x", w)
	two := ir.NewConstant(prog.IDs.Next(), w, int64(2))
	mul := ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpMul, param, two, prog.Interner)
	db.Append(mul)
	db.SetTerminator(ir.NewReturn(prog.IDs.Next(), mul))
	prog.AddFunction(double)

	arg := ir.NewConstant(prog.IDs.Next(), w, int64(21))
	call := ir.NewCall(prog.IDs.Next(), double, []ir.Node{arg})
	block.Append(call)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{call})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	require.Len(t, in.Observations, 1)
	assert.Equal(t, IntValue{Width: 32, V: 42}, in.Observations[0][0])
}

func TestInterpreterPhiSelectsSourceByPredecessor(t *testing.T) {
	prog, _, entry := buildEntry(t)
	fn := entry.Fn
	w := i32(prog.Interner)

	taken := ir.NewBasicBlock(prog.IDs.Next(), "taken", fn)
	notTaken := ir.NewBasicBlock(prog.IDs.Next(), "not_taken", fn)
	join := ir.NewBasicBlock(prog.IDs.Next(), "join", fn)
	fn.AddBlock(taken)
	fn.AddBlock(notTaken)
	fn.AddBlock(join)

	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	entry.SetTerminator(ir.NewBranch(prog.IDs.Next(), one, taken, notTaken))

	taken.SetTerminator(ir.NewJump(prog.IDs.Next(), join))
	notTaken.SetTerminator(ir.NewJump(prog.IDs.Next(), join))

	phi := ir.NewPhi(prog.IDs.Next(), w)
	phi.AddSource(taken, ir.NewConstant(prog.IDs.Next(), w, int64(100)))
	phi.AddSource(notTaken, ir.NewConstant(prog.IDs.Next(), w, int64(200)))
	join.PrependPhi(phi)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{phi})
	join.Append(eat)
	join.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	require.Len(t, in.Observations, 1)
	assert.Equal(t, IntValue{Width: 32, V: 100}, in.Observations[0][0])
}

func TestInterpreterBlurPassesValueThroughUnchanged(t *testing.T) {
	prog, _, block := buildEntry(t)
	w := i32(prog.Interner)

	val := ir.NewConstant(prog.IDs.Next(), w, int64(13))
	blur := ir.NewBlur(prog.IDs.Next(), val)
	block.Append(blur)
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{blur})
	block.Append(eat)
	block.SetTerminator(ir.NewExit(prog.IDs.Next()))

	in := New(prog)
	require.NoError(t, in.RunToEnd())
	assert.Equal(t, IntValue{Width: 32, V: 13}, in.Observations[0][0])
}
