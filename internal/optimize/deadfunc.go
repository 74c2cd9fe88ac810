package optimize

import "lll/internal/ir"

// DeadFunctionElimination deletes every function unreachable from the
// program's entry point.
type DeadFunctionElimination struct{}

func (DeadFunctionElimination) Name() string { return "dead-function-elimination" }

func (DeadFunctionElimination) Run(ctx *Context) bool {
	prog := ctx.Program
	if prog.Entry == nil {
		return false
	}

	reachable := map[*ir.Function]bool{prog.Entry: true}
	worklist := []*ir.Function{prog.Entry}
	for len(worklist) > 0 {
		fn := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, callee := range calledFunctions(fn) {
			if !reachable[callee] {
				reachable[callee] = true
				worklist = append(worklist, callee)
			}
		}
	}

	changed := false
	for _, fn := range append([]*ir.Function{}, prog.Functions...) {
		if reachable[fn] || fn.UserCount() > 0 {
			continue
		}
		ir.DeleteFunction(fn, prog)
		ctx.InvalidateAll()
		changed = true
	}
	return changed
}

// calledFunctions collects the distinct *ir.Function values referenced as
// operands anywhere in fn (Call targets), the transitive edges dead-
// function elimination's reachability walk follows.
func calledFunctions(fn *ir.Function) []*ir.Function {
	var out []*ir.Function
	seen := make(map[*ir.Function]bool)
	visit := func(inst ir.Instruction) {
		for _, op := range inst.Operands() {
			if callee, ok := op.(*ir.Function); ok && !seen[callee] {
				seen[callee] = true
				out = append(out, callee)
			}
		}
	}
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			visit(inst)
		}
		if b.Terminator != nil {
			visit(b.Terminator)
		}
	}
	return out
}
