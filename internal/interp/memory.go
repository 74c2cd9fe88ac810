package interp

import "fmt"

// Cell is a heap location created by an Alloc. Two pointers are the same
// address when they share a Cell and Path; Go pointer identity on Cell
// stands in for the interpreter's notion of an address.
type Cell struct {
	Value Value
}

// loadPointer reads the value ptr addresses, descending through Path if
// set.
func loadPointer(ptr PointerValue) (Value, error) {
	if ptr.Cell == nil {
		return nil, &RuntimeError{Kind: "null-pointer", Message: "load through null pointer"}
	}
	v := ptr.Cell.Value
	for _, step := range ptr.Path {
		next, err := indexInto(v, step)
		if err != nil {
			return nil, err
		}
		v = next
	}
	return v, nil
}

// storePointer writes val at the location ptr addresses. Because
// StructValue.Fields and ArrayValue.Elems are Go slices, mutating an
// element reached by descending through Path mutates the same backing
// array the Cell's own copy of the value holds, so the write is visible
// through any later whole-value Load of an enclosing struct or array.
func storePointer(ptr PointerValue, val Value) error {
	if ptr.Cell == nil {
		return &RuntimeError{Kind: "null-pointer", Message: "store through null pointer"}
	}
	if len(ptr.Path) == 0 {
		ptr.Cell.Value = val
		return nil
	}
	return storeInto(ptr.Cell.Value, ptr.Path, val)
}

func indexInto(v Value, idx int) (Value, error) {
	switch t := v.(type) {
	case StructValue:
		if idx < 0 || idx >= len(t.Fields) {
			return nil, &RuntimeError{Kind: "bounds", Message: "struct field index out of range"}
		}
		return t.Fields[idx], nil
	case ArrayValue:
		if idx < 0 || idx >= len(t.Elems) {
			return nil, &RuntimeError{Kind: "bounds", Message: "array index out of range"}
		}
		return t.Elems[idx], nil
	default:
		return nil, fmt.Errorf("cannot index into %T", v)
	}
}

func storeInto(v Value, path []int, val Value) error {
	idx := path[0]
	switch t := v.(type) {
	case StructValue:
		if idx < 0 || idx >= len(t.Fields) {
			return &RuntimeError{Kind: "bounds", Message: "struct field index out of range"}
		}
		if len(path) == 1 {
			t.Fields[idx] = val
			return nil
		}
		return storeInto(t.Fields[idx], path[1:], val)
	case ArrayValue:
		if idx < 0 || idx >= len(t.Elems) {
			return &RuntimeError{Kind: "bounds", Message: "array index out of range"}
		}
		if len(path) == 1 {
			t.Elems[idx] = val
			return nil
		}
		return storeInto(t.Elems[idx], path[1:], val)
	default:
		return fmt.Errorf("cannot index into %T", v)
	}
}
