package ir

// deletableNode is the unexported half of a value's teardown: every
// concrete Node embeds valueBase, which implements it.
type deletableNode interface {
	markDeleted()
}

// DisconnectOperands clears every distinct operand inst references,
// decrementing each operand's user count, without removing inst from its
// block. Passes call this before dropping their own last reference to
// inst, so deleted instructions never linger in another value's users set.
func DisconnectOperands(inst Instruction) {
	seen := make(map[Node]bool)
	for _, op := range inst.Operands() {
		if op == nil || seen[op] {
			continue
		}
		seen[op] = true
		inst.ReplaceOperand(op, nil)
	}
}

// DeleteInstruction disconnects inst's operands, removes it from its block
// (or clears the block's terminator slot, if inst is one), and marks it
// deleted.
func DeleteInstruction(inst Instruction) {
	DisconnectOperands(inst)
	if b := inst.Block(); b != nil {
		if bi, ok := inst.(BasicInstruction); ok {
			b.RemoveInstruction(bi)
		} else if b.Terminator == inst {
			b.Terminator = nil
		}
	}
	if d, ok := inst.(deletableNode); ok {
		d.markDeleted()
	}
}

// DeleteBlock deep-deletes b: disconnects every instruction and terminator
// it holds, then removes b from its function's block list. The caller is
// responsible for first removing b from any phi sources that still
// mention it (dead-block elimination does this before calling DeleteBlock).
func DeleteBlock(b *BasicBlock) {
	for _, inst := range b.Instructions {
		DisconnectOperands(inst)
	}
	if b.Terminator != nil {
		DisconnectOperands(b.Terminator)
	}
	if b.Fn != nil {
		b.Fn.RemoveBlock(b)
	}
}

// ReplaceAllUses rewrites every instruction referencing old to reference
// new instead, so old loses every instruction user; callers that are done
// with old entirely still need to delete it. Used by constant folding,
// SCCP, mem2reg, and inlining to splice a computed or substituted value in
// for a definition being eliminated.
func ReplaceAllUses(old, new Node) {
	for _, user := range old.Users() {
		if inst, ok := user.(Instruction); ok {
			inst.ReplaceOperand(old, new)
		}
	}
}

// ReplaceInstruction swaps old for new at old's position within its block,
// disconnecting old's operands and marking it deleted. new must not yet be
// attached to any block. Passes use this to rewrite an instruction whose
// shape changed (Call with a trimmed argument list, a folded constant)
// rather than removing and re-appending, which would lose its position.
func ReplaceInstruction(old, new BasicInstruction) {
	b := old.Block()
	if b == nil {
		return
	}
	for i, inst := range b.Instructions {
		if inst == old {
			DisconnectOperands(old)
			new.setBlock(b)
			b.Instructions[i] = new
			if d, ok := old.(deletableNode); ok {
				d.markDeleted()
			}
			return
		}
	}
}

// DeleteFunction deep-deletes fn: disconnects every instruction and
// terminator across all of its blocks (releasing references to other
// functions it calls), then removes it from program's function list. The
// caller must first confirm fn has no users.
func DeleteFunction(fn *Function, program *Program) {
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			DisconnectOperands(inst)
		}
		if b.Terminator != nil {
			DisconnectOperands(b.Terminator)
		}
	}
	program.RemoveFunction(fn)
}
