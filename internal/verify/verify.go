// Package verify implements the structural, typing, and dominance
// invariants (C5) the optimizer and interpreter both rely on: every pass
// in internal/optimize is expected to leave a program that still passes
// verify.Program.
package verify

import (
	"fmt"

	"github.com/pkg/errors"

	"lll/internal/dom"
	"lll/internal/ir"
)

// Error describes one violated invariant, located as precisely as the
// check allows.
type Error struct {
	Message  string
	Function *ir.Function
	Block    *ir.BasicBlock
	Inst     ir.Instruction
}

func (e *Error) Error() string {
	switch {
	case e.Inst != nil:
		return fmt.Sprintf("%s: in %s/%s: %s", e.Function, e.Block, e.Inst, e.Message)
	case e.Block != nil:
		return fmt.Sprintf("%s: in %s: %s", e.Function, e.Block, e.Message)
	case e.Function != nil:
		return fmt.Sprintf("%s: %s", e.Function, e.Message)
	default:
		return e.Message
	}
}

// Program verifies p as a whole: its entry point and every function.
func Program(p *ir.Program) []error {
	var errs []error
	if p.Entry == nil {
		errs = append(errs, &Error{Message: "program has no entry function"})
	} else {
		found := false
		for _, f := range p.Functions {
			if f == p.Entry {
				found = true
			}
		}
		if !found {
			errs = append(errs, &Error{Message: "entry function is not in the program's function list", Function: p.Entry})
		}
		if !p.Entry.IsParameterless() {
			errs = append(errs, &Error{Message: "entry function must take no parameters", Function: p.Entry})
		}
		if !p.Entry.IsVoid() {
			errs = append(errs, &Error{Message: "entry function must return void", Function: p.Entry})
		}
	}
	for _, fn := range p.Functions {
		errs = append(errs, Function(fn)...)
	}
	return errs
}

// Function verifies one function's structure, per-instruction typing,
// and operand dominance.
func Function(fn *ir.Function) []error {
	var errs []error
	if fn.Entry == nil {
		return append(errs, &Error{Message: "function has no entry block", Function: fn})
	}
	entryFound := false
	for _, b := range fn.Blocks {
		if b == fn.Entry {
			entryFound = true
		}
		if b.Terminator == nil {
			errs = append(errs, &Error{Message: "block has no terminator", Function: fn, Block: b})
		}
		errs = append(errs, checkPhis(fn, b)...)
		for _, inst := range b.Instructions {
			if err := inst.TypeCheck(); err != nil {
				errs = append(errs, &Error{Message: errors.Wrap(err, "type error").Error(), Function: fn, Block: b, Inst: inst})
			}
		}
		if b.Terminator != nil {
			if err := b.Terminator.TypeCheck(); err != nil {
				errs = append(errs, &Error{Message: errors.Wrap(err, "type error").Error(), Function: fn, Block: b, Inst: b.Terminator})
			}
		}
	}
	if !entryFound {
		errs = append(errs, &Error{Message: "entry block is not in the function's block list", Function: fn})
	}

	tree := dom.Build(fn)
	errs = append(errs, checkDominance(fn, tree)...)
	return errs
}

// checkPhis requires a block's leading phis have exactly one source per
// actual predecessor, no more, no fewer.
func checkPhis(fn *ir.Function, b *ir.BasicBlock) []error {
	var errs []error
	preds := b.Predecessors()
	predSet := make(map[*ir.BasicBlock]bool, len(preds))
	for _, p := range preds {
		predSet[p] = true
	}
	for _, phi := range b.Phis() {
		keys := phi.Keys()
		keySet := make(map[*ir.BasicBlock]bool, len(keys))
		for _, k := range keys {
			keySet[k] = true
			if !predSet[k] {
				errs = append(errs, &Error{Message: fmt.Sprintf("phi has source from %s, which is not a predecessor", k), Function: fn, Block: b, Inst: phi})
			}
		}
		for p := range predSet {
			if !keySet[p] {
				errs = append(errs, &Error{Message: fmt.Sprintf("phi is missing a source from predecessor %s", p), Function: fn, Block: b, Inst: phi})
			}
		}
	}
	return errs
}

// checkDominance enforces that every operand's definition dominates its
// use: for a non-phi instruction, the def must dominate the using
// instruction's block (or precede it within the same block); for a phi
// source, the def must dominate the corresponding predecessor block.
func checkDominance(fn *ir.Function, tree *dom.Tree) []error {
	var errs []error
	position := make(map[ir.Instruction]int)
	for _, b := range fn.Blocks {
		idx := 0
		for _, inst := range b.Instructions {
			position[inst] = idx
			idx++
		}
		if b.Terminator != nil {
			position[b.Terminator] = idx
		}
	}

	checkUse := func(def ir.Node, useBlock *ir.BasicBlock, useInst ir.Instruction, atPos int) {
		inst, ok := def.(ir.Instruction)
		if !ok {
			return // params, constants, functions, blocks: available everywhere
		}
		defBlock := blockOf(inst)
		if defBlock == nil {
			return
		}
		if defBlock == useBlock {
			if position[inst] >= atPos {
				errs = append(errs, &Error{Message: fmt.Sprintf("use of %s does not follow its definition in the same block", def), Function: fn, Block: useBlock, Inst: useInst})
			}
			return
		}
		if !tree.Dominates(defBlock, useBlock) {
			errs = append(errs, &Error{Message: fmt.Sprintf("definition of %s does not dominate its use", def), Function: fn, Block: useBlock, Inst: useInst})
		}
	}

	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if phi, ok := inst.(*ir.Phi); ok {
				for _, k := range phi.Keys() {
					v, _ := phi.Source(k)
					if vi, ok := v.(ir.Instruction); ok {
						defBlock := blockOf(vi)
						if defBlock != nil && defBlock != k && !tree.Dominates(defBlock, k) {
							errs = append(errs, &Error{Message: fmt.Sprintf("phi source %s from %s is not dominated by its definition", v, k), Function: fn, Block: b, Inst: inst})
						}
					}
				}
				continue
			}
			for _, op := range inst.Operands() {
				checkUse(op, b, inst, position[inst])
			}
		}
		if b.Terminator != nil {
			for _, op := range b.Terminator.Operands() {
				if _, isBlock := op.(*ir.BasicBlock); isBlock {
					continue
				}
				checkUse(op, b, b.Terminator, position[b.Terminator])
			}
		}
	}
	return errs
}

func blockOf(inst ir.Instruction) *ir.BasicBlock {
	return inst.Block()
}
