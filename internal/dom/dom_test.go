package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ir"
	"lll/internal/types"
)

func newFn(t *testing.T, name string) (*ir.Program, *ir.Function) {
	t.Helper()
	prog := ir.NewProgram()
	fn := ir.NewFunction(prog.IDs.Next(), name, nil, types.Void, prog)
	prog.AddFunction(fn)
	return prog, fn
}

func TestBuildLinearChain(t *testing.T) {
	prog, fn := newFn(t, "linear")
	a := ir.NewBasicBlock(prog.IDs.Next(), "a", fn)
	b := ir.NewBasicBlock(prog.IDs.Next(), "b", fn)
	c := ir.NewBasicBlock(prog.IDs.Next(), "c", fn)
	fn.AddBlock(a)
	fn.AddBlock(b)
	fn.AddBlock(c)
	fn.Entry = a
	a.SetTerminator(ir.NewJump(prog.IDs.Next(), b))
	b.SetTerminator(ir.NewJump(prog.IDs.Next(), c))
	c.SetTerminator(ir.NewExit(prog.IDs.Next()))

	tree := Build(fn)
	assert.Nil(t, tree.IDom(a))
	assert.Equal(t, a, tree.IDom(b))
	assert.Equal(t, b, tree.IDom(c))
	assert.True(t, tree.Dominates(a, c))
	assert.False(t, tree.Dominates(c, a))
	assert.True(t, tree.Dominates(b, b))
	assert.Equal(t, []*ir.BasicBlock{a, b, c}, tree.ReversePostorder())
}

func TestBuildDiamondFrontierAndChildren(t *testing.T) {
	prog, fn := newFn(t, "diamond")
	w := prog.Interner.Integer(32)
	entry := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	left := ir.NewBasicBlock(prog.IDs.Next(), "left", fn)
	right := ir.NewBasicBlock(prog.IDs.Next(), "right", fn)
	join := ir.NewBasicBlock(prog.IDs.Next(), "join", fn)
	fn.AddBlock(entry)
	fn.AddBlock(left)
	fn.AddBlock(right)
	fn.AddBlock(join)
	fn.Entry = entry

	cond := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	entry.SetTerminator(ir.NewBranch(prog.IDs.Next(), cond, left, right))
	left.SetTerminator(ir.NewJump(prog.IDs.Next(), join))
	right.SetTerminator(ir.NewJump(prog.IDs.Next(), join))
	join.SetTerminator(ir.NewExit(prog.IDs.Next()))

	tree := Build(fn)
	assert.Nil(t, tree.IDom(entry))
	assert.Equal(t, entry, tree.IDom(left))
	assert.Equal(t, entry, tree.IDom(right))
	assert.Equal(t, entry, tree.IDom(join))
	assert.ElementsMatch(t, []*ir.BasicBlock{left, right, join}, tree.Children(entry))
	assert.Equal(t, []*ir.BasicBlock{join}, tree.Frontier(left))
	assert.Equal(t, []*ir.BasicBlock{join}, tree.Frontier(right))
	assert.Empty(t, tree.Frontier(join))
	assert.True(t, tree.Dominates(entry, join))
	assert.False(t, tree.Dominates(left, right))
}

func TestBuildLoopHeaderIsOwnFrontier(t *testing.T) {
	prog, fn := newFn(t, "loop")
	w := prog.Interner.Integer(32)
	entry := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	header := ir.NewBasicBlock(prog.IDs.Next(), "header", fn)
	body := ir.NewBasicBlock(prog.IDs.Next(), "body", fn)
	exit := ir.NewBasicBlock(prog.IDs.Next(), "exit", fn)
	fn.AddBlock(entry)
	fn.AddBlock(header)
	fn.AddBlock(body)
	fn.AddBlock(exit)
	fn.Entry = entry

	entry.SetTerminator(ir.NewJump(prog.IDs.Next(), header))
	cond := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	header.SetTerminator(ir.NewBranch(prog.IDs.Next(), cond, body, exit))
	body.SetTerminator(ir.NewJump(prog.IDs.Next(), header))
	exit.SetTerminator(ir.NewExit(prog.IDs.Next()))

	tree := Build(fn)
	assert.Equal(t, entry, tree.IDom(header))
	assert.Equal(t, header, tree.IDom(body))
	assert.Equal(t, header, tree.IDom(exit))
	// body's sole successor is the loop header, which it doesn't strictly
	// dominate, so header is in body's own frontier.
	assert.Equal(t, []*ir.BasicBlock{header}, tree.Frontier(body))
	// The backedge also puts header in its own frontier: header dominates
	// body (a predecessor of header) but does not strictly dominate itself.
	assert.Equal(t, []*ir.BasicBlock{header}, tree.Frontier(header))
	assert.True(t, tree.Dominates(header, body))
	assert.True(t, tree.Dominates(entry, exit))
}

func TestBuildExcludesBlocksUnreachableFromEntry(t *testing.T) {
	prog, fn := newFn(t, "withdead")
	entry := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	dead := ir.NewBasicBlock(prog.IDs.Next(), "dead", fn)
	fn.AddBlock(entry)
	fn.AddBlock(dead)
	fn.Entry = entry
	entry.SetTerminator(ir.NewExit(prog.IDs.Next()))
	dead.SetTerminator(ir.NewExit(prog.IDs.Next()))

	tree := Build(fn)
	require.NotContains(t, tree.ReversePostorder(), dead)
	assert.False(t, tree.Dominates(entry, dead))
	assert.False(t, tree.Dominates(dead, entry))
	assert.Nil(t, tree.IDom(dead))
}
