package lower

import (
	"lll/internal/ir"
	"lll/internal/types"
)

// binding is what a name resolves to within a function body: either an
// addressable slot (a var/val local's Alloc, or a method's self
// receiver, both pointer-typed) or a plain value (an ordinary
// parameter, which is never addressable since it isn't backed by an
// Alloc).
type binding struct {
	ptr     ir.Node // set when addressable
	value   ir.Node // set when not addressable
	mutable bool
	typ     types.Type
}

type scope struct {
	vars   map[string]*binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]*binding), parent: parent}
}

func (s *scope) declare(name string, b *binding) bool {
	if _, exists := s.vars[name]; exists {
		return false
	}
	s.vars[name] = b
	return true
}

func (s *scope) lookup(name string) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}
