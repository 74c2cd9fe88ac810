package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ir"
	"lll/internal/types"
)

// buildVoidFn creates a parameterless, void, single-block function wired
// into prog, with its entry block terminated by Return(Void) unless the
// caller replaces the terminator.
func buildVoidFn(prog *ir.Program, name string) (*ir.Function, *ir.BasicBlock) {
	fn := ir.NewFunction(prog.IDs.Next(), name, nil, types.Void, prog)
	block := ir.NewBasicBlock(prog.IDs.Next(), "entry", fn)
	fn.AddBlock(block)
	fn.Entry = block
	prog.AddFunction(fn)
	return fn, block
}

// padWithFiller appends n side-effect-free, unused BinaryInstructions to
// block, inflating instructionCount without changing behavior.
func padWithFiller(prog *ir.Program, block *ir.BasicBlock, n int) {
	w := prog.Interner.Integer(32)
	one := ir.NewConstant(prog.IDs.Next(), w, int64(1))
	for i := 0; i < n; i++ {
		block.Append(ir.NewBinaryInstruction(prog.IDs.Next(), ir.OpAdd, one, one, prog.Interner))
	}
}

func TestEligibleForInliningAllowsSingleCallSiteRegardlessOfSize(t *testing.T) {
	prog := ir.NewProgram()
	ctx := NewContext(prog)
	callee, calleeBlock := buildVoidFn(prog, "callee")
	padWithFiller(prog, calleeBlock, ctx.Config.InlineThreshold+10)
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	caller, callerBlock := buildVoidFn(prog, "caller")
	call := ir.NewCall(prog.IDs.Next(), callee, nil)
	callerBlock.Append(call)
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	require.Equal(t, 1, callee.UserCount())
	assert.True(t, eligibleForInlining(ctx, callee, caller))
}

func TestEligibleForInliningAllowsSmallCalleeWithMultipleCallSites(t *testing.T) {
	prog := ir.NewProgram()
	ctx := NewContext(prog)
	callee, calleeBlock := buildVoidFn(prog, "callee")
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	caller, callerBlock := buildVoidFn(prog, "caller")
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	require.Equal(t, 3, callee.UserCount())
	// Every one of the three call sites shares a small callee, so the
	// threshold half of the OR makes every one of them eligible even
	// though UserCount is not 1.
	assert.True(t, eligibleForInlining(ctx, callee, caller))
}

func TestEligibleForInliningRejectsLargeCalleeWithMultipleCallSites(t *testing.T) {
	prog := ir.NewProgram()
	ctx := NewContext(prog)
	callee, calleeBlock := buildVoidFn(prog, "callee")
	padWithFiller(prog, calleeBlock, ctx.Config.InlineThreshold+10)
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	caller, callerBlock := buildVoidFn(prog, "caller")
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	require.Equal(t, 2, callee.UserCount())
	assert.False(t, eligibleForInlining(ctx, callee, caller))
}

func TestEligibleForInliningRejectsSelfRecursiveCallee(t *testing.T) {
	prog := ir.NewProgram()
	ctx := NewContext(prog)
	callee, calleeBlock := buildVoidFn(prog, "recur")
	selfCall := ir.NewCall(prog.IDs.Next(), callee, nil)
	calleeBlock.Append(selfCall)
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	caller, _ := buildVoidFn(prog, "caller")
	assert.False(t, eligibleForInlining(ctx, callee, caller))
}

func TestEligibleForInliningRejectsCallerAtMaxInlineDepth(t *testing.T) {
	prog := ir.NewProgram()
	ctx := NewContext(prog)
	callee, calleeBlock := buildVoidFn(prog, "callee")
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	caller, callerBlock := buildVoidFn(prog, "caller")
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	ctx.inlineDepth[caller] = ctx.Config.MaxInlineDepth
	assert.False(t, eligibleForInlining(ctx, callee, caller))
}

func TestInliningRunSplicesSmallCalleeAtEveryCallSite(t *testing.T) {
	prog := ir.NewProgram()
	w := prog.Interner.Integer(32)
	callee, calleeBlock := buildVoidFn(prog, "log")
	eat := ir.NewEat(prog.IDs.Next(), []ir.Node{ir.NewConstant(prog.IDs.Next(), w, int64(1))})
	calleeBlock.Append(eat)
	calleeBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	_, callerBlock := buildVoidFn(prog, "caller")
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.Append(ir.NewCall(prog.IDs.Next(), callee, nil))
	callerBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	ctx := NewContext(prog)
	inlining := Inlining{}
	for i := 0; i < 10 && inlining.Run(ctx); i++ {
	}

	assert.Equal(t, 0, callee.UserCount())
}

func TestRunWithConfigTerminatesOnMutualSingleSiteRecursion(t *testing.T) {
	prog := ir.NewProgram()
	a, aBlock := buildVoidFn(prog, "a")
	b, bBlock := buildVoidFn(prog, "b")
	main, mainBlock := buildVoidFn(prog, "main")
	prog.Entry = main

	aBlock.Append(ir.NewCall(prog.IDs.Next(), b, nil))
	aBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))
	bBlock.Append(ir.NewCall(prog.IDs.Next(), a, nil))
	bBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))
	mainBlock.Append(ir.NewCall(prog.IDs.Next(), a, nil))
	mainBlock.SetTerminator(ir.NewReturn(prog.IDs.Next(), ir.NewVoidValue(prog.IDs.Next())))

	cfg := Config{InlineThreshold: 40, MaxInlineDepth: 4, MaxIterations: 64}
	err := RunWithConfig(prog, []Pass{Inlining{}}, cfg, false)
	// a and b are small enough to always be eligible regardless of call
	// count, and neither calls itself directly, so without the depth
	// bound one keeps getting re-cloned into the other's growing body
	// forever. Each clone strictly deepens whichever function receives
	// it, so MaxInlineDepth cuts this off well before MaxIterations.
	assert.NoError(t, err)
}
