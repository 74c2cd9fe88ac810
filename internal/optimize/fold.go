package optimize

import (
	"lll/internal/ir"
	"lll/internal/types"
)

// ConstantFolding reduces BinaryInstruction and UnaryInstruction nodes
// whose operands are all Constants to a single Constant, leaving
// division and modulo by a literal zero alone since that is a runtime
// trap, not a compile-time value.
type ConstantFolding struct{}

func (ConstantFolding) Name() string { return "constant-folding" }

func (ConstantFolding) Run(ctx *Context) bool {
	changed := false
	for _, fn := range ctx.Program.Functions {
		for _, b := range fn.Blocks {
			for _, inst := range append([]ir.BasicInstruction{}, b.Instructions...) {
				if result, ok := foldInstruction(ctx, inst); ok {
					ir.ReplaceAllUses(inst, result)
					ir.DeleteInstruction(inst)
					changed = true
				}
			}
		}
	}
	return changed
}

func foldInstruction(ctx *Context, inst ir.Instruction) (*ir.Constant, bool) {
	switch v := inst.(type) {
	case *ir.BinaryInstruction:
		l, ok1 := v.Left().(*ir.Constant)
		r, ok2 := v.Right().(*ir.Constant)
		if !ok1 || !ok2 {
			return nil, false
		}
		lv, rv := l.Value.(int64), r.Value.(int64)
		width := operandWidth(v.Left())
		result, ok := foldBinary(v.Op, lv, rv, width)
		if !ok {
			return nil, false
		}
		return ir.NewConstant(ctx.Program.IDs.Next(), v.Type(), result), true
	case *ir.UnaryInstruction:
		c, ok := v.V().(*ir.Constant)
		if !ok {
			return nil, false
		}
		width := operandWidth(v.V())
		result := foldUnary(v.Op, c.Value.(int64), width)
		return ir.NewConstant(ctx.Program.IDs.Next(), v.Type(), result), true
	default:
		return nil, false
	}
}

func operandWidth(n ir.Node) int {
	if it, ok := n.Type().(*types.Integer); ok {
		return it.Width
	}
	return 32
}

func foldBinary(op ir.BinOp, l, r int64, width int) (int64, bool) {
	switch op {
	case ir.OpAdd:
		return wrap(l+r, width), true
	case ir.OpSub:
		return wrap(l-r, width), true
	case ir.OpMul:
		return wrap(l*r, width), true
	case ir.OpDiv:
		if r == 0 {
			return 0, false
		}
		return wrap(l/r, width), true
	case ir.OpMod:
		if r == 0 {
			return 0, false
		}
		return wrap(l%r, width), true
	case ir.OpEq:
		return boolValue(l == r), true
	case ir.OpNeq:
		return boolValue(l != r), true
	case ir.OpLt:
		return boolValue(l < r), true
	case ir.OpLte:
		return boolValue(l <= r), true
	case ir.OpGt:
		return boolValue(l > r), true
	case ir.OpGte:
		return boolValue(l >= r), true
	default:
		return 0, false
	}
}

func foldUnary(op ir.UnOp, v int64, width int) int64 {
	switch op {
	case ir.OpNeg:
		return wrap(-v, width)
	case ir.OpNot:
		if v == 0 {
			return 1
		}
		return 0
	default:
		return v
	}
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// wrap truncates v to width bits of two's-complement, matching the
// interpreter's wraparound arithmetic.
func wrap(v int64, width int) int64 {
	if width <= 0 || width >= 64 {
		return v
	}
	mask := int64(1)<<uint(width) - 1
	v &= mask
	if v&(int64(1)<<uint(width-1)) != 0 {
		v -= int64(1) << uint(width)
	}
	return v
}
