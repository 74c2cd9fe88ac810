package optimize

import "lll/internal/ir"

// Inlining splices a callee's body directly into a call site when the
// callee has a single call site (any size) or is small enough that
// duplicating it at every one of its call sites is still a net win.
type Inlining struct{}

func (Inlining) Name() string { return "inlining" }

func (Inlining) Run(ctx *Context) bool {
	prog := ctx.Program
	for _, caller := range prog.Functions {
		for _, block := range append([]*ir.BasicBlock{}, caller.Blocks...) {
			for idx, inst := range block.Instructions {
				call, ok := inst.(*ir.Call)
				if !ok {
					continue
				}
				callee, ok := call.Target().(*ir.Function)
				if !ok || !eligibleForInlining(ctx, callee, caller) {
					continue
				}
				inlineCall(ctx, caller, block, idx, call, callee)
				return true
			}
		}
	}
	return false
}

func eligibleForInlining(ctx *Context, callee, caller *ir.Function) bool {
	if callee == caller {
		return false
	}
	if callee.UserCount() != 1 && instructionCount(callee) > ctx.Config.InlineThreshold {
		return false
	}
	for _, direct := range calledFunctions(callee) {
		if direct == callee {
			return false
		}
	}
	if ctx.inlineDepth[caller] >= ctx.Config.MaxInlineDepth {
		return false
	}
	return true
}

func instructionCount(fn *ir.Function) int {
	n := 0
	for _, b := range fn.Blocks {
		n += len(b.Instructions)
		if b.Terminator != nil {
			n++
		}
	}
	return n
}

// inlineCall splices callee's body into caller at block's idx'th
// instruction, which must be the call itself. block is split into the
// call's original prefix (which falls through into the cloned callee
// entry) and a continuation block holding everything that followed the
// call, reached by every cloned return point.
func inlineCall(ctx *Context, caller *ir.Function, block *ir.BasicBlock, idx int, call *ir.Call, callee *ir.Function) {
	depth := ctx.inlineDepth[caller]
	if calleeDepth := ctx.inlineDepth[callee]; calleeDepth > depth {
		depth = calleeDepth
	}
	ctx.inlineDepth[caller] = depth + 1

	cont := ir.NewBasicBlock(ctx.Program.IDs.Next(), block.Name+".cont", caller)
	for _, after := range block.Instructions[idx+1:] {
		cont.Append(after)
	}
	if block.Terminator != nil {
		cont.SetTerminator(block.Terminator)
	}
	caller.AddBlock(cont)

	block.Instructions = block.Instructions[:idx]

	seed := make(map[ir.Node]ir.Node, len(callee.Params))
	args := call.Args()
	for i, p := range callee.Params {
		seed[ir.Node(p)] = args[i]
	}
	mapping := ir.CloneBlocks(callee, caller, ctx.Program.IDs, seed)

	entryClone := mapping[ir.Node(callee.Entry)].(*ir.BasicBlock)
	block.SetTerminator(ir.NewJump(ctx.Program.IDs.Next(), entryClone))

	var returnValue ir.Node
	phi := ir.NewPhi(ctx.Program.IDs.Next(), call.Type())
	returnCount := 0
	for _, oldBlock := range callee.Blocks {
		newBlock := mapping[ir.Node(oldBlock)].(*ir.BasicBlock)
		ret, ok := newBlock.Terminator.(*ir.Return)
		if !ok {
			continue
		}
		returnCount++
		returnValue = ret.Value()
		phi.AddSource(newBlock, ret.Value())
		newBlock.SetTerminator(ir.NewJump(ctx.Program.IDs.Next(), cont))
	}

	if call.UserCount() > 0 && !callee.IsVoid() {
		if returnCount == 1 {
			ir.ReplaceAllUses(call, returnValue)
		} else {
			cont.PrependPhi(phi)
			ir.ReplaceAllUses(call, phi)
		}
	}

	ir.DeleteInstruction(call)
	ctx.InvalidateAll()
}
