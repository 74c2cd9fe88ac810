package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

// loopTargets records the blocks break/continue jump to inside one loop.
type loopTargets struct {
	breakTo    *ir.BasicBlock
	continueTo *ir.BasicBlock
}

// builder lowers one function body. It owns the current insertion block
// and the lexical scope/loop stacks; the entry block always receives
// every Alloc regardless of the lexical position of its declaration, so
// mem2reg later sees every stack slot's full set of defs/uses without
// having to hunt for them.
type builder struct {
	l       *Lowerer
	fn      *ir.Function
	entry   *ir.BasicBlock
	cur     *ir.BasicBlock
	scope   *scope
	loops   []loopTargets
	astFn   *ast.Function
	blockNo int
}

func (l *Lowerer) lowerFunctionBody(astFn *ast.Function, fn *ir.Function) {
	if fn == nil {
		return
	}
	b := &builder{l: l, fn: fn, astFn: astFn}
	b.entry = ir.NewBasicBlock(l.program.IDs.Next(), "entry", fn)
	fn.AddBlock(b.entry)
	fn.Entry = b.entry
	b.cur = b.entry
	b.scope = newScope(nil)

	for _, p := range fn.Params {
		if p.Name == "self" {
			b.scope.declare(p.Name, &binding{ptr: p, mutable: true, typ: p.Type()})
			continue
		}
		b.scope.declare(p.Name, &binding{value: p, mutable: false, typ: p.Type()})
	}

	b.lowerBlock(astFn.Body)

	if b.cur.Terminator == nil {
		if fn.IsVoid() {
			b.cur.SetTerminator(ir.NewReturn(l.program.IDs.Next(), ir.NewVoidValue(l.program.IDs.Next())))
		} else {
			// A trailing return/break/continue leaves b.cur on a block no
			// path from entry reaches; closing it is not a missing return.
			reached := map[*ir.BasicBlock]bool{}
			work := []*ir.BasicBlock{b.entry}
			for len(work) > 0 {
				blk := work[len(work)-1]
				work = work[:len(work)-1]
				if !reached[blk] {
					reached[blk] = true
					work = append(work, blk.Successors()...)
				}
			}
			if reached[b.cur] {
				l.fail(newErr(MissingReturn, astFn.Pos, fmt.Sprintf("function %q does not return on all paths", astFn.Name.Value)))
			}
			b.cur.SetTerminator(ir.NewExit(l.program.IDs.Next()))
		}
	}
}

func (b *builder) newBlock(hint string) *ir.BasicBlock {
	b.blockNo++
	blk := ir.NewBasicBlock(b.l.program.IDs.Next(), fmt.Sprintf("%s%d", hint, b.blockNo), b.fn)
	b.fn.AddBlock(blk)
	return blk
}

// markUnreachable switches the builder onto a fresh, currently
// predecessor-less block, used after a terminator (return/break/continue)
// is emitted mid-block so any following sibling statements still have
// somewhere to lower into; dead-block elimination removes it later if
// nothing ever jumps to it.
func (b *builder) markUnreachable() {
	b.cur = b.newBlock("unreachable")
}

func (b *builder) pushScope()                 { b.scope = newScope(b.scope) }
func (b *builder) popScope()                  { b.scope = b.scope.parent }
func (b *builder) pushLoop(t loopTargets)     { b.loops = append(b.loops, t) }
func (b *builder) popLoop()                   { b.loops = b.loops[:len(b.loops)-1] }
func (b *builder) currentLoop() (loopTargets, bool) {
	if len(b.loops) == 0 {
		return loopTargets{}, false
	}
	return b.loops[len(b.loops)-1], true
}

func (b *builder) nextID() int { return b.l.program.IDs.Next() }

func (b *builder) emit(inst ir.BasicInstruction) ir.BasicInstruction {
	b.cur.Append(inst)
	return inst
}

func (b *builder) emitAlloc(inner types.Type) *ir.Alloc {
	a := ir.NewAlloc(b.nextID(), inner, b.l.interner)
	b.entry.Append(a)
	return a
}
