package optimize

import "lll/internal/ir"

type latKind int

const (
	latUndef latKind = iota
	latConst
	latVarying
)

type latValue struct {
	kind  latKind
	value int64
}

func meet(a, b latValue) latValue {
	if a.kind == latVarying || b.kind == latVarying {
		return latValue{kind: latVarying}
	}
	if a.kind == latUndef {
		return b
	}
	if b.kind == latUndef {
		return a
	}
	if a.value != b.value {
		return latValue{kind: latVarying}
	}
	return a
}

// SCCP is a simplified sparse conditional constant propagator: it tracks
// which blocks are reachable from the entry and which integer-valued
// instructions hold a single constant value given that reachability,
// folding both once the two have reached a fixed point. Unlike a
// textbook implementation it tracks reachability per block rather than
// per control-flow edge, trading a little precision across Phis that
// merge an unreachable predecessor for a much simpler worklist.
type SCCP struct{}

func (SCCP) Name() string { return "sccp" }

func (SCCP) Run(ctx *Context) bool {
	changed := false
	for _, fn := range ctx.Program.Functions {
		if fn.Entry == nil {
			continue
		}
		if runSCCP(ctx, fn) {
			changed = true
		}
	}
	return changed
}

func runSCCP(ctx *Context, fn *ir.Function) bool {
	executable := map[*ir.BasicBlock]bool{fn.Entry: true}
	values := map[ir.Node]latValue{}

	for {
		progress := false
		for _, b := range fn.Blocks {
			if !executable[b] {
				continue
			}
			for _, inst := range b.Instructions {
				var node ir.Node = inst
				old := values[node]
				v := evalSCCP(inst, executable, values)
				if v != old {
					values[node] = v
					progress = true
				}
			}
			switch t := b.Terminator.(type) {
			case *ir.Jump:
				if !executable[t.Target()] {
					executable[t.Target()] = true
					progress = true
				}
			case *ir.Branch:
				cond := latticeOf(t.Cond(), values)
				if cond.kind != latConst {
					if !executable[t.TTrue()] || !executable[t.TFalse()] {
						executable[t.TTrue()] = true
						executable[t.TFalse()] = true
						progress = true
					}
					continue
				}
				target := t.TFalse()
				if cond.value != 0 {
					target = t.TTrue()
				}
				if !executable[target] {
					executable[target] = true
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}

	changed := false
	for _, b := range fn.Blocks {
		if !executable[b] {
			continue
		}
		for _, inst := range append([]ir.BasicInstruction{}, b.Instructions...) {
			switch inst.(type) {
			case *ir.BinaryInstruction, *ir.UnaryInstruction, *ir.Phi:
			default:
				continue
			}
			var node ir.Node = inst
			v := values[node]
			if v.kind != latConst {
				continue
			}
			c := ir.NewConstant(ctx.Program.IDs.Next(), node.Type(), v.value)
			ir.ReplaceAllUses(node, c)
			ir.DeleteInstruction(inst)
			changed = true
		}
		if branch, ok := b.Terminator.(*ir.Branch); ok {
			cond := latticeOf(branch.Cond(), values)
			if cond.kind == latConst {
				target := branch.TFalse()
				if cond.value != 0 {
					target = branch.TTrue()
				}
				b.SetTerminator(ir.NewJump(ctx.Program.IDs.Next(), target))
				ir.DisconnectOperands(branch)
				changed = true
			}
		}
	}
	if changed {
		ctx.Invalidate(fn)
	}
	return changed
}

func latticeOf(n ir.Node, values map[ir.Node]latValue) latValue {
	if c, ok := n.(*ir.Constant); ok {
		if v, ok := c.Value.(int64); ok {
			return latValue{kind: latConst, value: v}
		}
		return latValue{kind: latVarying}
	}
	if v, ok := values[n]; ok {
		return v
	}
	return latValue{kind: latVarying}
}

func evalSCCP(inst ir.BasicInstruction, executable map[*ir.BasicBlock]bool, values map[ir.Node]latValue) latValue {
	switch v := inst.(type) {
	case *ir.Phi:
		result := latValue{kind: latUndef}
		for _, pred := range v.Keys() {
			if !executable[pred] {
				continue
			}
			src, _ := v.Source(pred)
			result = meet(result, latticeOf(src, values))
		}
		return result
	case *ir.BinaryInstruction:
		l, r := latticeOf(v.Left(), values), latticeOf(v.Right(), values)
		if l.kind == latVarying || r.kind == latVarying {
			return latValue{kind: latVarying}
		}
		if l.kind == latUndef || r.kind == latUndef {
			return latValue{kind: latUndef}
		}
		width := operandWidth(v.Left())
		result, ok := foldBinary(v.Op, l.value, r.value, width)
		if !ok {
			return latValue{kind: latVarying}
		}
		return latValue{kind: latConst, value: result}
	case *ir.UnaryInstruction:
		x := latticeOf(v.V(), values)
		if x.kind != latConst {
			return x
		}
		return latValue{kind: latConst, value: foldUnary(v.Op, x.value, operandWidth(v.V()))}
	default:
		return latValue{kind: latVarying}
	}
}
