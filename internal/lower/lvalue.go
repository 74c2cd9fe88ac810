package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

// lowerLValue resolves e to the pointer an assignment should Store
// through, plus whether that pointer's binding is mutable. Only
// identifiers, struct field access, and array indexing are valid
// assignment targets.
func (b *builder) lowerLValue(e ast.Expr) (ir.Node, bool, error) {
	switch ex := e.(type) {
	case *ast.IdentifierExpression:
		bind, ok := b.scope.lookup(ex.Name)
		if !ok {
			return nil, false, newErr(UnknownIdentifier, ex.Pos, fmt.Sprintf("unknown identifier %q", ex.Name))
		}
		if bind.ptr == nil {
			return nil, false, newErr(NonLValueTarget, ex.Pos, fmt.Sprintf("%q is not assignable", ex.Name))
		}
		return bind.ptr, bind.mutable, nil
	case *ast.ThisExpression:
		bind, ok := b.scope.lookup("self")
		if !ok {
			return nil, false, newErr(NonLValueTarget, ex.Pos, "this is only valid inside a method")
		}
		return bind.ptr, true, nil
	case *ast.DotIndex:
		targetPtr, mutable, err := b.lowerLValue(ex.Target)
		if err != nil {
			return nil, false, err
		}
		inner, ok := types.Unpoint(targetPtr.Type())
		if !ok {
			return nil, false, newErr(IllegalDotIndex, ex.Pos, "field access target is not addressable")
		}
		st, ok := inner.(*types.Struct)
		if !ok {
			return nil, false, newErr(IllegalDotIndex, ex.Pos, fmt.Sprintf("%s is not a struct", inner))
		}
		idx := b.l.fieldIndex(st, ex.Name.Value)
		if idx < 0 {
			return nil, false, newErr(IllegalDotIndex, ex.Pos, fmt.Sprintf("struct %s has no field %q", st.Name, ex.Name.Value))
		}
		ptr := b.emit(ir.NewGetSubPointerStruct(b.nextID(), targetPtr, idx, b.l.interner))
		return ptr, mutable, nil
	case *ast.ArrayIndex:
		targetPtr, mutable, err := b.lowerLValue(ex.Target)
		if err != nil {
			return nil, false, err
		}
		inner, ok := types.Unpoint(targetPtr.Type())
		if !ok {
			return nil, false, newErr(NonLValueTarget, ex.Pos, "index target is not addressable")
		}
		if _, ok := inner.(*types.Array); !ok {
			return nil, false, newErr(TypeMismatch, ex.Pos, fmt.Sprintf("%s is not an array", inner))
		}
		index, err := b.lowerExprTyped(ex.Index)
		if err != nil {
			return nil, false, err
		}
		ptr := b.emit(ir.NewGetSubPointerArray(b.nextID(), targetPtr, index, b.l.interner))
		return ptr, mutable, nil
	default:
		return nil, false, newErr(NonLValueTarget, e.NodePos(), "expression is not assignable")
	}
}
