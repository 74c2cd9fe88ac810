package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/types"
)

// resolveType turns a surface type annotation into a types.Type,
// resolving struct names against the structs already registered on l.
func (l *Lowerer) resolveType(ann ast.TypeAnnotation) (types.Type, error) {
	switch t := ann.(type) {
	case *ast.SimpleTypeAnnotation:
		switch t.Name {
		case "void":
			return types.Void, nil
		case "bool":
			return l.interner.Bool(), nil
		case "i32":
			return l.interner.Integer(32), nil
		case "i64":
			return l.interner.Integer(64), nil
		}
		if st, ok := l.structs[t.Name]; ok {
			return st, nil
		}
		return nil, newErr(IllegalType, t.Pos, fmt.Sprintf("unknown type %q", t.Name))
	case *ast.FunctionTypeAnnotation:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := l.resolveType(p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := l.resolveType(t.Ret)
		if err != nil {
			return nil, err
		}
		return l.interner.Function(params, ret), nil
	case *ast.ArrayTypeAnnotation:
		elem, err := l.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		return l.interner.Array(elem, t.Size), nil
	default:
		return nil, newErr(IllegalType, ann.NodePos(), "unrecognized type annotation")
	}
}

func typesEqual(a, b types.Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equals(b)
}
