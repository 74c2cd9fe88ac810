package optimize

import "lll/internal/ir"

// DeadSignatureElimination drops parameters no instruction in a function's
// body ever reads, rewriting every call site to match.
type DeadSignatureElimination struct{}

func (DeadSignatureElimination) Name() string { return "dead-signature-elimination" }

func (DeadSignatureElimination) Run(ctx *Context) bool {
	changed := false
	for _, fn := range ctx.Program.Functions {
		var unused []int
		for i, p := range fn.Params {
			if !p.IsUsed() {
				unused = append(unused, i)
			}
		}
		if len(unused) == 0 {
			continue
		}

		for _, user := range fn.Users() {
			call, ok := user.(*ir.Call)
			if !ok || call.Target() != ir.Node(fn) {
				continue
			}
			args := call.Args()
			newArgs := make([]ir.Node, 0, len(args)-len(unused))
			skip := make(map[int]bool, len(unused))
			for _, i := range unused {
				skip[i] = true
			}
			for i, a := range args {
				if !skip[i] {
					newArgs = append(newArgs, a)
				}
			}
			newCall := ir.NewCall(ctx.Program.IDs.Next(), fn, newArgs)
			ir.ReplaceInstruction(call, newCall)
		}

		for i := len(unused) - 1; i >= 0; i-- {
			fn.RemoveParam(unused[i])
		}
		ctx.Invalidate(fn)
		changed = true
	}
	return changed
}
