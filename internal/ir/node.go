// Package ir implements the typed, SSA-style intermediate representation:
// the node graph with bidirectional use/def links (C2), the concrete
// instruction kinds (C3), and the deterministic name environment and text
// form used for printing and diffing (C4).
//
// Every IR element is a Node: simultaneously a value (it carries a Type and
// a set of users) and, for instructions, a user (it carries ordered operand
// slots). The three operand-slot shapes — single, list, and map — are
// implemented in operand.go; every node that can appear as an operand
// embeds valueBase, which maintains the users multiset.
package ir

import "lll/internal/types"

// Node is implemented by every IR element: functions, basic blocks,
// instructions, and the value-only leaves (Constant, ParameterValue,
// UndefinedValue, VoidValue).
type Node interface {
	ID() int
	Type() types.Type
	Users() []Node
	String() string
}

// userTracker is the unexported half of a value's bookkeeping: maintaining
// the users multiset as operand slots are set, replaced, and cleared. Every
// concrete Node type embeds valueBase, which implements this.
type userTracker interface {
	addUser(n Node)
	removeUser(n Node)
}

// valueBase gives a Node its identity, type, and users set. A node's
// users is conceptually a set, but a single user can reference the same
// value from more than one operand slot (e.g. Eat(x, x)); valueBase tracks
// that multiplicity with a refcount so that the set membership is only
// added on the 0->1 transition and removed on the 1->0 transition.
type valueBase struct {
	id    int
	typ   types.Type
	users map[Node]int
}

func newValueBase(id int, typ types.Type) valueBase {
	return valueBase{id: id, typ: typ}
}

func (v *valueBase) ID() int          { return v.id }
func (v *valueBase) Type() types.Type { return v.typ }

func (v *valueBase) Users() []Node {
	out := make([]Node, 0, len(v.users))
	for n := range v.users {
		out = append(out, n)
	}
	return out
}

// UserCount reports how many distinct nodes use this value (the set size,
// not the sum of per-user multiplicities).
func (v *valueBase) UserCount() int { return len(v.users) }

func (v *valueBase) addUser(n Node) {
	if v.users == nil {
		v.users = make(map[Node]int)
	}
	v.users[n]++
}

func (v *valueBase) removeUser(n Node) {
	c, ok := v.users[n]
	if !ok {
		return
	}
	if c <= 1 {
		delete(v.users, n)
	} else {
		v.users[n] = c - 1
	}
}

// deleted marks a value's operand bookkeeping as no longer live; further
// operand access against a deleted node should be treated as a caller bug,
// but we don't panic on it here since several passes delete nodes whose
// last reference is being dropped in the same step that observes them.
func (v *valueBase) deleted() bool { return v.users == nil && v.typ == nil }

func (v *valueBase) markDeleted() {
	v.users = nil
	v.typ = nil
}

func addUserOf(value Node, user Node) {
	if value == nil {
		return
	}
	if ut, ok := value.(userTracker); ok {
		ut.addUser(user)
	}
}

func removeUserOf(value Node, user Node) {
	if value == nil {
		return
	}
	if ut, ok := value.(userTracker); ok {
		ut.removeUser(user)
	}
}

func sameNode(a, b Node) bool { return a == b }
