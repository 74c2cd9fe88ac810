package textir

import (
	"fmt"
	"strconv"
	"strings"

	"lll/internal/ir"
	"lll/internal/types"
)

// structRegistry resolves struct type names while a program's text is
// being parsed. Entries are built with empty Properties up front so that
// mutually referencing struct declarations (A has a field of type B, B of
// type A's pointer) resolve regardless of declaration order, then filled
// in once every name is known.
type structRegistry map[string]*types.Struct

// parseType consumes one type production from sc: void, bool, i<width>,
// *Inner, [Inner; Size], fn(P, ...): Ret, or a struct name looked up in
// reg. It is a small recursive-descent parser rather than a regular
// expression because fn(...) types nest arbitrarily and a return type can
// itself be a pointer, array, or function type.
func parseType(sc *scanner, reg structRegistry, interner *types.Interner) (types.Type, error) {
	switch sc.peek() {
	case '*':
		sc.pos++
		inner, err := parseType(sc, reg, interner)
		if err != nil {
			return nil, err
		}
		return interner.Pointer(inner), nil
	case '[':
		sc.pos++
		inner, err := parseType(sc, reg, interner)
		if err != nil {
			return nil, err
		}
		if err := sc.consumeLiteral(";"); err != nil {
			return nil, err
		}
		sc.skipSpace()
		sizeTok := sc.readToken()
		size, err := strconv.Atoi(sizeTok)
		if err != nil {
			return nil, fmt.Errorf("array size: %w", err)
		}
		if err := sc.consumeLiteral("]"); err != nil {
			return nil, err
		}
		return interner.Array(inner, size), nil
	case 0:
		return nil, fmt.Errorf("unexpected end of input while parsing a type")
	}

	ident := sc.readIdent()
	if ident == "" {
		return nil, fmt.Errorf("expected a type, got %q", sc.rest())
	}
	return resolveNamedType(ident, sc, reg, interner)
}

func resolveNamedType(ident string, sc *scanner, reg structRegistry, interner *types.Interner) (types.Type, error) {
	switch {
	case ident == "void":
		return types.Void, nil
	case ident == "bool":
		return interner.Bool(), nil
	case ident == "fn":
		return parseFunctionType(sc, reg, interner)
	case strings.HasPrefix(ident, "i") && isAllDigits(ident[1:]):
		width, err := strconv.Atoi(ident[1:])
		if err != nil {
			return nil, fmt.Errorf("integer width: %w", err)
		}
		return interner.Integer(width), nil
	default:
		st, ok := reg[ident]
		if !ok {
			return nil, fmt.Errorf("unknown type %q", ident)
		}
		return st, nil
	}
}

func parseFunctionType(sc *scanner, reg structRegistry, interner *types.Interner) (types.Type, error) {
	if err := sc.consumeLiteral("("); err != nil {
		return nil, err
	}
	var params []types.Type
	for sc.peek() != ')' {
		t, err := parseType(sc, reg, interner)
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		if sc.peek() == ',' {
			sc.pos++
			sc.skipSpace()
			continue
		}
		break
	}
	if err := sc.consumeLiteral(")"); err != nil {
		return nil, err
	}
	if err := sc.consumeLiteral(":"); err != nil {
		return nil, err
	}
	ret, err := parseType(sc, reg, interner)
	if err != nil {
		return nil, err
	}
	return interner.Function(params, ret), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// collectStructs walks every type reachable from p's function signatures
// and instructions and returns the distinct struct types among them, in
// first-seen order, so Print can emit a declaration preamble a later
// Parse can resolve struct names against.
func collectStructs(p *ir.Program) []*types.Struct {
	seen := map[string]bool{}
	var out []*types.Struct
	var walk func(t types.Type)
	walk = func(t types.Type) {
		switch v := t.(type) {
		case *types.Pointer:
			walk(v.Inner)
		case *types.Array:
			walk(v.Inner)
		case *types.Function:
			for _, p := range v.Params {
				walk(p)
			}
			walk(v.Ret)
		case *types.Struct:
			if seen[v.Name] {
				return
			}
			seen[v.Name] = true
			out = append(out, v)
			for _, prop := range v.Properties {
				walk(prop)
			}
		}
	}
	for _, fn := range p.Functions {
		for _, param := range fn.Params {
			walk(param.Type())
		}
		walk(fn.ReturnType)
		for _, b := range fn.Blocks {
			for _, inst := range b.AllInstructions() {
				walk(inst.Type())
				for _, operand := range inst.Operands() {
					if operand != nil {
						walk(operand.Type())
					}
				}
			}
		}
	}
	return out
}
