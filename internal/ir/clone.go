package ir

import (
	"github.com/google/uuid"

	"lll/internal/types"
)

// CloneBlocks deep-clones fn's blocks into dest, which must already exist
// (typically the same function, for inlining, or a brand new function,
// for CloneFunction below). seed pre-populates the old->new node mapping,
// e.g. binding fn's ParameterValues to the argument values at a call
// site; it is mutated and also returned so the caller can look up
// corresponding blocks (entry in particular).
//
// Constants, UndefinedValue, and VoidValue are not duplicated: the clone
// shares the originals, which is safe since a value's users set tolerates
// any number of distinct user instructions.
func CloneBlocks(fn *Function, dest *Function, ids *IDGen, seed map[Node]Node) map[Node]Node {
	mapping := seed
	if mapping == nil {
		mapping = make(map[Node]Node)
	}

	newBlocks := make([]*BasicBlock, len(fn.Blocks))
	for i, b := range fn.Blocks {
		nb := NewBasicBlock(ids.Next(), freshBlockName(b, dest), dest)
		newBlocks[i] = nb
		mapping[Node(b)] = Node(nb)
	}

	for i, b := range fn.Blocks {
		nb := newBlocks[i]
		for _, inst := range b.Instructions {
			clone := inst.Clone(ids.Next()).(BasicInstruction)
			nb.Append(clone)
			mapping[Node(inst)] = Node(clone)
		}
		if b.Terminator != nil {
			clone := b.Terminator.Clone(ids.Next()).(Terminator)
			nb.SetTerminator(clone)
			mapping[Node(b.Terminator)] = Node(clone)
		}
	}

	for _, nb := range newBlocks {
		for _, inst := range nb.Instructions {
			remapOperands(inst, mapping)
		}
		if nb.Terminator != nil {
			remapOperands(nb.Terminator, mapping)
		}
		dest.AddBlock(nb)
	}

	return mapping
}

// remapOperands rewrites every operand of inst that has an entry in
// mapping to point at its image instead.
func remapOperands(inst Instruction, mapping map[Node]Node) {
	seen := make(map[Node]bool)
	for _, old := range inst.Operands() {
		if old == nil || seen[old] {
			continue
		}
		seen[old] = true
		if replacement, ok := mapping[old]; ok {
			inst.ReplaceOperand(old, replacement)
		}
	}
}

// freshBlockName derives a clone's block label from the original. A bare
// "<name>.<dest>" suffix collides if the same callee is ever inlined twice
// into the same caller (inline.go splices CloneBlocks output directly into
// dest's own block list, so two such clones would otherwise carry the
// exact same label); the uuid suffix keeps every clone's blocks unique
// regardless of how many times this function runs against the same dest.
func freshBlockName(b *BasicBlock, dest *Function) string {
	if b.Name == "" {
		return ""
	}
	return b.Name + "." + dest.Name + "." + uuid.New().String()[:8]
}

// CloneFunction produces an independent copy of fn under newName, owned by
// program, with its own fresh IDs drawn from program.IDs. Used by function
// inlining to materialize a private copy of the callee before splicing its
// blocks into the caller (so repeated inlining of the same callee at
// different call sites never aliases blocks or instructions).
func CloneFunction(fn *Function, newName string, program *Program) *Function {
	sig := fn.Signature()
	paramTypes := make([]types.Type, len(sig.Params))
	copy(paramTypes, sig.Params)

	nf := NewFunction(program.IDs.Next(), newName, paramTypes, fn.ReturnType, program)
	mapping := make(map[Node]Node, len(fn.Params))
	for _, p := range fn.Params {
		np := nf.AddParam(program.IDs.Next(), p.Name, p.Type())
		mapping[Node(p)] = Node(np)
	}

	CloneBlocks(fn, nf, program.IDs, mapping)
	if fn.Entry != nil {
		nf.Entry = mapping[Node(fn.Entry)].(*BasicBlock)
	}
	return nf
}
