package ir

import (
	"fmt"

	"lll/internal/types"
)

// BasicBlock is a straight-line sequence of BasicInstructions terminated by
// exactly one Terminator. A BasicBlock is itself a Node of type Block so it
// can be referenced as an operand (Jump target, Branch arms, Phi keys).
type BasicBlock struct {
	valueBase
	Name         string
	Instructions []BasicInstruction
	Terminator   Terminator
	Fn           *Function
}

// NewBasicBlock creates an empty, unterminated block.
func NewBasicBlock(id int, name string, fn *Function) *BasicBlock {
	return &BasicBlock{valueBase: newValueBase(id, types.Block), Name: name, Fn: fn}
}

func (b *BasicBlock) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("bb%d", b.id)
}

// Append adds inst to the end of the instruction list. Phis must already
// precede all non-phis in Instructions by the time the block is appended
// to (the lowerer only ever appends non-phis; mem2reg prepends phis via
// PrependPhi).
func (b *BasicBlock) Append(inst BasicInstruction) {
	inst.setBlock(b)
	b.Instructions = append(b.Instructions, inst)
}

// PrependPhi inserts a Phi at the head of the instruction list, after any
// phis already there and before the first non-phi.
func (b *BasicBlock) PrependPhi(phi *Phi) {
	phi.setBlock(b)
	insertAt := 0
	for insertAt < len(b.Instructions) {
		if _, ok := b.Instructions[insertAt].(*Phi); !ok {
			break
		}
		insertAt++
	}
	b.Instructions = append(b.Instructions, nil)
	copy(b.Instructions[insertAt+1:], b.Instructions[insertAt:])
	b.Instructions[insertAt] = phi
}

// InsertBefore inserts inst into b immediately ahead of before, which must
// already belong to b. Used by aggregate splitting to introduce per-field
// Allocs at the position of the Alloc they replace.
func (b *BasicBlock) InsertBefore(before, inst BasicInstruction) {
	inst.setBlock(b)
	for i, cur := range b.Instructions {
		if cur == before {
			b.Instructions = append(b.Instructions, nil)
			copy(b.Instructions[i+1:], b.Instructions[i:])
			b.Instructions[i] = inst
			return
		}
	}
}

// RemoveInstruction deletes inst from the instruction list (shallow: it
// does not touch inst's own operands). It is a no-op if inst is not found.
func (b *BasicBlock) RemoveInstruction(inst BasicInstruction) {
	for i, ins := range b.Instructions {
		if ins == inst {
			b.Instructions = append(b.Instructions[:i], b.Instructions[i+1:]...)
			return
		}
	}
}

// SetTerminator installs t as the block's terminator, replacing any
// previous one. The caller is responsible for deep-deleting a displaced
// terminator if it is no longer needed.
func (b *BasicBlock) SetTerminator(t Terminator) {
	t.setBlock(b)
	b.Terminator = t
}

// Phis returns the leading run of Phi instructions.
func (b *BasicBlock) Phis() []*Phi {
	var out []*Phi
	for _, inst := range b.Instructions {
		if p, ok := inst.(*Phi); ok {
			out = append(out, p)
		} else {
			break
		}
	}
	return out
}

// AllInstructions returns the block's non-terminators followed by its
// terminator, or nil for the terminator if none is set yet.
func (b *BasicBlock) AllInstructions() []Instruction {
	out := make([]Instruction, 0, len(b.Instructions)+1)
	for _, i := range b.Instructions {
		out = append(out, i)
	}
	if b.Terminator != nil {
		out = append(out, b.Terminator)
	}
	return out
}

// Predecessors returns every block in the function whose terminator
// targets b, computed on demand from the function's block list rather than
// maintained incrementally (simpler to keep correct across the many
// terminator rewrites optimization passes perform; see internal/dom for
// the analysis that does cache this across a pass).
func (b *BasicBlock) Predecessors() []*BasicBlock {
	var preds []*BasicBlock
	if b.Fn == nil {
		return preds
	}
	for _, other := range b.Fn.Blocks {
		if other.Terminator == nil {
			continue
		}
		for _, t := range other.Terminator.Targets() {
			if t == b {
				preds = append(preds, other)
				break
			}
		}
	}
	return preds
}

// Successors returns the block's terminator's targets, or nil if
// unterminated.
func (b *BasicBlock) Successors() []*BasicBlock {
	if b.Terminator == nil {
		return nil
	}
	return b.Terminator.Targets()
}
