package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

var binOpMap = map[ast.BinOp]ir.BinOp{
	ast.ADD: ir.OpAdd,
	ast.SUB: ir.OpSub,
	ast.MUL: ir.OpMul,
	ast.DIV: ir.OpDiv,
	ast.MOD: ir.OpMod,
	ast.EQ:  ir.OpEq,
	ast.NEQ: ir.OpNeq,
	ast.LT:  ir.OpLt,
	ast.LTE: ir.OpLte,
	ast.GT:  ir.OpGt,
	ast.GTE: ir.OpGte,
}

var unOpMap = map[ast.UnOp]ir.UnOp{
	ast.NEG: ir.OpNeg,
	ast.NOT: ir.OpNot,
}

// lowerExprTyped lowers e to the IR value it evaluates to.
func (b *builder) lowerExprTyped(e ast.Expr) (ir.Node, error) {
	switch ex := e.(type) {
	case *ast.NumberLiteral:
		return ir.NewConstant(b.nextID(), b.l.interner.Integer(32), ex.Value), nil
	case *ast.BooleanLiteral:
		v := int64(0)
		if ex.Value {
			v = 1
		}
		return ir.NewConstant(b.nextID(), b.l.interner.Bool(), v), nil
	case *ast.IdentifierExpression:
		bind, ok := b.scope.lookup(ex.Name)
		if !ok {
			return nil, newErr(UnknownIdentifier, ex.Pos, fmt.Sprintf("unknown identifier %q", ex.Name))
		}
		if bind.ptr != nil {
			return b.emit(ir.NewLoad(b.nextID(), bind.ptr)), nil
		}
		return bind.value, nil
	case *ast.ThisExpression:
		bind, ok := b.scope.lookup("self")
		if !ok {
			return nil, newErr(UnknownIdentifier, ex.Pos, "this is only valid inside a method")
		}
		return b.emit(ir.NewLoad(b.nextID(), bind.ptr)), nil
	case *ast.BinaryOp:
		return b.lowerBinaryOp(ex)
	case *ast.UnaryOp:
		v, err := b.lowerExprTyped(ex.V)
		if err != nil {
			return nil, err
		}
		op, ok := unOpMap[ex.Op]
		if !ok {
			return nil, newErr(IllegalType, ex.Pos, "unsupported unary operator")
		}
		if !types.IsInteger(v.Type()) {
			return nil, newErr(TypeMismatch, ex.Pos, fmt.Sprintf("operator %s requires an integer operand, got %s", ex.Op, v.Type()))
		}
		return b.emit(ir.NewUnaryInstruction(b.nextID(), op, v)), nil
	case *ast.DotIndex:
		target, err := b.lowerExprTyped(ex.Target)
		if err != nil {
			return nil, err
		}
		st, ok := target.Type().(*types.Struct)
		if !ok {
			return nil, newErr(IllegalDotIndex, ex.Pos, fmt.Sprintf("%s is not a struct", target.Type()))
		}
		idx := b.l.fieldIndex(st, ex.Name.Value)
		if idx < 0 {
			return nil, newErr(IllegalDotIndex, ex.Pos, fmt.Sprintf("struct %s has no field %q", st.Name, ex.Name.Value))
		}
		return b.emit(ir.NewGetSubValueStruct(b.nextID(), target, idx)), nil
	case *ast.ArrayIndex:
		target, err := b.lowerExprTyped(ex.Target)
		if err != nil {
			return nil, err
		}
		index, err := b.lowerExprTyped(ex.Index)
		if err != nil {
			return nil, err
		}
		if _, ok := target.Type().(*types.Array); !ok {
			return nil, newErr(TypeMismatch, ex.Pos, fmt.Sprintf("%s is not an array", target.Type()))
		}
		return b.emit(ir.NewGetSubValueArray(b.nextID(), target, index)), nil
	case *ast.ArrayInitializer:
		return b.lowerArrayInitializer(ex)
	case *ast.Call:
		return b.lowerCall(ex)
	default:
		return nil, newErr(IllegalType, e.NodePos(), fmt.Sprintf("unsupported expression %T", e))
	}
}

// fieldIndex resolves a field name to its declaration-order position.
// types.Struct carries only property types (spec.md §3.1), so the
// lowerer keeps the originating ast.Struct around to resolve names.
func (l *Lowerer) fieldIndex(st *types.Struct, name string) int {
	astStruct, ok := l.astStructs[st.Name]
	if !ok {
		return -1
	}
	for i, prop := range astStruct.Properties {
		if prop.Name.Value == name {
			return i
		}
	}
	return -1
}

func (b *builder) lowerBinaryOp(ex *ast.BinaryOp) (ir.Node, error) {
	if ex.Op == ast.AND || ex.Op == ast.OR {
		return b.lowerShortCircuit(ex)
	}
	left, err := b.lowerExprTyped(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.lowerExprTyped(ex.Right)
	if err != nil {
		return nil, err
	}
	if !types.IsInteger(left.Type()) || !typesEqual(left.Type(), right.Type()) {
		return nil, newErr(TypeMismatch, ex.Pos, fmt.Sprintf("operator %s requires matching integer operands, got %s and %s", ex.Op, left.Type(), right.Type()))
	}
	op, ok := binOpMap[ex.Op]
	if !ok {
		return nil, newErr(IllegalType, ex.Pos, "unsupported binary operator")
	}
	return b.emit(ir.NewBinaryInstruction(b.nextID(), op, left, right, b.l.interner)), nil
}

// lowerShortCircuit desugars "&&" as "if lhs { rhs } else { false }" and
// "||" as "if lhs { true } else { rhs }", matching the language's
// short-circuit evaluation order.
func (b *builder) lowerShortCircuit(ex *ast.BinaryOp) (ir.Node, error) {
	left, err := b.lowerExprTyped(ex.Left)
	if err != nil {
		return nil, err
	}
	if !types.IsBool(left.Type()) {
		return nil, newErr(TypeMismatch, ex.Pos, "operand of && / || must be bool")
	}

	rhsBlock := b.newBlock("sc_rhs")
	mergeBlock := b.newBlock("sc_merge")
	shortCircuitBlock := b.newBlock("sc_short")

	if ex.Op == ast.AND {
		b.cur.SetTerminator(ir.NewBranch(b.nextID(), left, rhsBlock, shortCircuitBlock))
	} else {
		b.cur.SetTerminator(ir.NewBranch(b.nextID(), left, shortCircuitBlock, rhsBlock))
	}

	b.cur = shortCircuitBlock
	shortValue := int64(0)
	if ex.Op == ast.OR {
		shortValue = 1
	}
	short := ir.NewConstant(b.nextID(), b.l.interner.Bool(), shortValue)
	b.cur.SetTerminator(ir.NewJump(b.nextID(), mergeBlock))

	b.cur = rhsBlock
	right, err := b.lowerExprTyped(ex.Right)
	if err != nil {
		return nil, err
	}
	if !types.IsBool(right.Type()) {
		return nil, newErr(TypeMismatch, ex.Pos, "operand of && / || must be bool")
	}
	rhsExit := b.cur
	b.cur.SetTerminator(ir.NewJump(b.nextID(), mergeBlock))

	b.cur = mergeBlock
	phi := ir.NewPhi(b.nextID(), b.l.interner.Bool())
	phi.AddSource(shortCircuitBlock, short)
	phi.AddSource(rhsExit, right)
	b.cur.PrependPhi(phi)
	return phi, nil
}

func (b *builder) lowerArrayInitializer(ex *ast.ArrayInitializer) (ir.Node, error) {
	values := make([]ir.Node, len(ex.Values))
	for i, v := range ex.Values {
		val, err := b.lowerExprTyped(v)
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	if len(values) == 0 {
		return nil, newErr(TypeMismatch, ex.Pos, "array literal must have at least one element to infer its type")
	}
	elemType := values[0].Type()
	for i, v := range values {
		if !typesEqual(v.Type(), elemType) {
			return nil, newErr(TypeMismatch, ex.Pos, fmt.Sprintf("array element %d has type %s, expected %s", i, v.Type(), elemType))
		}
	}
	arrType := b.l.interner.Array(elemType, len(values))
	return b.emit(ir.NewAggregateValue(b.nextID(), arrType, values)), nil
}
