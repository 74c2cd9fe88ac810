package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

func (b *builder) lowerCall(ex *ast.Call) (ir.Node, error) {
	if ident, ok := ex.Target.(*ast.IdentifierExpression); ok {
		switch ident.Name {
		case "eat":
			args, err := b.lowerArgs(ex.Args)
			if err != nil {
				return nil, err
			}
			return b.emit(ir.NewEat(b.nextID(), args)), nil
		case "blur":
			if len(ex.Args) != 1 {
				return nil, newErr(ArgumentMismatch, ex.Pos, "blur takes exactly one argument")
			}
			arg, err := b.lowerExprTyped(ex.Args[0])
			if err != nil {
				return nil, err
			}
			return b.emit(ir.NewBlur(b.nextID(), arg)), nil
		}
		if st, ok := b.l.structs[ident.Name]; ok {
			return b.lowerStructConstructor(ex, st)
		}
		if fn, ok := b.l.functions[ident.Name]; ok {
			args, err := b.lowerArgs(ex.Args)
			if err != nil {
				return nil, err
			}
			if err := checkArgs(ex.Pos, fn.Signature().Params, args); err != nil {
				return nil, err
			}
			return b.emit(ir.NewCall(b.nextID(), fn, args)), nil
		}
		return nil, newErr(UnknownIdentifier, ident.Pos, fmt.Sprintf("unknown function %q", ident.Name))
	}

	if dot, ok := ex.Target.(*ast.DotIndex); ok {
		return b.lowerMethodCall(ex, dot)
	}

	return nil, newErr(IllegalCallTarget, ex.Pos, "call target must be a function name, struct name, or method reference")
}

func (b *builder) lowerArgs(exprs []ast.Expr) ([]ir.Node, error) {
	args := make([]ir.Node, len(exprs))
	for i, e := range exprs {
		v, err := b.lowerExprTyped(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func checkArgs(pos ast.Position, params []types.Type, args []ir.Node) error {
	if len(params) != len(args) {
		return newErr(ArgumentMismatch, pos, fmt.Sprintf("expected %d arguments, got %d", len(params), len(args)))
	}
	for i, p := range params {
		if !typesEqual(p, args[i].Type()) {
			return newErr(ArgumentMismatch, pos, fmt.Sprintf("argument %d has type %s, expected %s", i, args[i].Type(), p))
		}
	}
	return nil
}

func (b *builder) lowerStructConstructor(ex *ast.Call, st *types.Struct) (ir.Node, error) {
	astStruct := b.l.astStructs[st.Name]
	if len(ex.Args) != len(astStruct.Properties) {
		return nil, newErr(ArgumentMismatch, ex.Pos, fmt.Sprintf("struct %s has %d fields, got %d arguments", st.Name, len(astStruct.Properties), len(ex.Args)))
	}
	values := make([]ir.Node, len(ex.Args))
	for i, argExpr := range ex.Args {
		v, err := b.lowerExprTyped(argExpr)
		if err != nil {
			return nil, err
		}
		if !typesEqual(v.Type(), st.Properties[i]) {
			return nil, newErr(ArgumentMismatch, argExpr.NodePos(), fmt.Sprintf("field %q expects type %s, got %s", astStruct.Properties[i].Name.Value, st.Properties[i], v.Type()))
		}
		values[i] = v
	}
	return b.emit(ir.NewAggregateValue(b.nextID(), st, values)), nil
}

func (b *builder) lowerMethodCall(ex *ast.Call, dot *ast.DotIndex) (ir.Node, error) {
	receiverPtr, _, err := b.lowerLValue(dot.Target)
	if err != nil {
		// the receiver may itself be a non-addressable rvalue (e.g. a
		// struct-returning call); methods always take a pointer receiver,
		// so a non-addressable receiver cannot be called through directly.
		return nil, newErr(IllegalCallTarget, dot.Pos, "method receiver must be an addressable value")
	}
	inner, ok := types.Unpoint(receiverPtr.Type())
	if !ok {
		return nil, newErr(IllegalCallTarget, dot.Pos, "method receiver is not addressable")
	}
	st, ok := inner.(*types.Struct)
	if !ok {
		return nil, newErr(IllegalCallTarget, dot.Pos, fmt.Sprintf("%s is not a struct", inner))
	}
	fn, ok := b.l.functions[methodName(st.Name, dot.Name.Value)]
	if !ok {
		return nil, newErr(IllegalCallTarget, dot.Pos, fmt.Sprintf("struct %s has no method %q", st.Name, dot.Name.Value))
	}
	args, err := b.lowerArgs(ex.Args)
	if err != nil {
		return nil, err
	}
	allArgs := append([]ir.Node{receiverPtr}, args...)
	if err := checkArgs(ex.Pos, fn.Signature().Params, allArgs); err != nil {
		return nil, err
	}
	return b.emit(ir.NewCall(b.nextID(), fn, allArgs)), nil
}
