package optimize

import "lll/internal/ir"

// DeadInstructionElimination deletes pure instructions with no users,
// repeating until no more such instructions remain so that deleting one
// dead consumer's dead operands cascades within a single pass invocation.
type DeadInstructionElimination struct{}

func (DeadInstructionElimination) Name() string { return "dead-instruction-elimination" }

func (DeadInstructionElimination) Run(ctx *Context) bool {
	changed := false
	for _, fn := range ctx.Program.Functions {
		for {
			progress := false
			for _, b := range fn.Blocks {
				for _, inst := range append([]ir.BasicInstruction{}, b.Instructions...) {
					if inst.Pure() && len(inst.Users()) == 0 {
						ir.DeleteInstruction(inst)
						progress = true
					}
				}
			}
			if !progress {
				break
			}
			changed = true
		}
	}
	return changed
}
