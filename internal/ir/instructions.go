package ir

import (
	"fmt"

	"lll/internal/types"
)

// Instruction is a node with a block back-pointer, operand access, a
// purity flag, and the per-kind operations described in §4.3: type
// checking, cloning, and structural matching under a value renaming.
type Instruction interface {
	Node
	Block() *BasicBlock
	setBlock(*BasicBlock)
	Operands() []Node
	ReplaceOperand(from, to Node) int
	Pure() bool
	TypeCheck() error
	Clone(id int) Instruction
	Matches(other Instruction, mapping map[Node]Node) bool
}

// BasicInstruction is any non-terminating instruction.
type BasicInstruction interface {
	Instruction
	isBasicInstruction()
}

// Terminator is the tail instruction of a block.
type Terminator interface {
	Instruction
	Targets() []*BasicBlock
	isTerminator()
}

type instBase struct {
	valueBase
	block *BasicBlock
}

func (i *instBase) Block() *BasicBlock     { return i.block }
func (i *instBase) setBlock(b *BasicBlock) { i.block = b }

// BinOp identifies a BinaryInstruction's operator.
type BinOp string

const (
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpMul BinOp = "*"
	OpDiv BinOp = "/"
	OpMod BinOp = "%"
	OpEq  BinOp = "=="
	OpNeq BinOp = "!="
	OpLt  BinOp = "<"
	OpLte BinOp = "<="
	OpGt  BinOp = ">"
	OpGte BinOp = ">="
)

// IsComparison reports whether op always yields bool.
func (op BinOp) IsComparison() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// UnOp identifies a UnaryInstruction's operator.
type UnOp string

const (
	OpNeg UnOp = "-"
	OpNot UnOp = "!"
)

// nodeMatchesLeaf compares two leaf values (Constant, UndefinedValue,
// VoidValue) structurally rather than through the renaming map, since
// distinct instances of the same literal are expected to compare equal.
func nodeMatchesLeaf(a, b Node) (matched bool, isLeaf bool) {
	switch av := a.(type) {
	case *Constant:
		bv, ok := b.(*Constant)
		if !ok {
			return false, true
		}
		return av.Type().Equals(bv.Type()) && av.Value == bv.Value, true
	case *UndefinedValue:
		bv, ok := b.(*UndefinedValue)
		if !ok {
			return false, true
		}
		return av.Type().Equals(bv.Type()), true
	case *VoidValue:
		_, ok := b.(*VoidValue)
		return ok, true
	default:
		return false, false
	}
}

// operandMatches compares one operand pair using mapping for
// previously-established correspondences and structural comparison for
// leaves; an unmapped non-leaf operand is a mismatch (the caller is
// expected to have seeded mapping via a lockstep traversal).
func operandMatches(a, b Node, mapping map[Node]Node) bool {
	if matched, isLeaf := nodeMatchesLeaf(a, b); isLeaf {
		return matched
	}
	mapped, ok := mapping[a]
	if !ok {
		return false
	}
	return mapped == b
}

// ---- Alloc ----

// Alloc reserves storage for one value of type Inner and yields a pointer
// to it. Alloc is pure: an unused allocation may be deleted.
type Alloc struct {
	instBase
	Inner types.Type
}

func NewAlloc(id int, inner types.Type, interner *types.Interner) *Alloc {
	a := &Alloc{Inner: inner}
	a.valueBase = newValueBase(id, interner.Pointer(inner))
	return a
}

func (a *Alloc) isBasicInstruction() {}
func (a *Alloc) Pure() bool          { return true }
func (a *Alloc) Operands() []Node    { return nil }
func (a *Alloc) ReplaceOperand(from, to Node) int { return 0 }
func (a *Alloc) String() string      { return fmt.Sprintf("%%%d = Alloc %s", a.id, a.Inner) }

func (a *Alloc) TypeCheck() error {
	ptr, ok := a.typ.(*types.Pointer)
	if !ok || !ptr.Inner.Equals(a.Inner) {
		return fmt.Errorf("Alloc: result type must be Pointer(%s)", a.Inner)
	}
	return nil
}

func (a *Alloc) Clone(id int) Instruction {
	return &Alloc{instBase: instBase{valueBase: newValueBase(id, a.typ)}, Inner: a.Inner}
}

func (a *Alloc) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Alloc)
	return ok && o.Inner.Equals(a.Inner)
}

// ---- Store ----

// Store writes Value through Pointer. It is impure and has no result.
type Store struct {
	instBase
	pointer singleSlot
	value   singleSlot
}

func NewStore(id int, pointer, value Node) *Store {
	s := &Store{}
	s.valueBase = newValueBase(id, types.Void)
	s.pointer.owner, s.value.owner = s, s
	s.pointer.Set(pointer)
	s.value.Set(value)
	return s
}

func (s *Store) Pointer() Node { return s.pointer.Get() }
func (s *Store) Value() Node   { return s.value.Get() }

func (s *Store) isBasicInstruction() {}
func (s *Store) Pure() bool          { return false }
func (s *Store) Operands() []Node    { return []Node{s.pointer.Get(), s.value.Get()} }
func (s *Store) ReplaceOperand(from, to Node) int {
	return s.pointer.replace(from, to) + s.value.replace(from, to)
}
func (s *Store) String() string {
	return fmt.Sprintf("Store %s, %s", refStr(s.Pointer()), refStr(s.Value()))
}

func (s *Store) TypeCheck() error {
	ptr, ok := s.Pointer().Type().(*types.Pointer)
	if !ok || !ptr.Inner.Equals(s.Value().Type()) {
		return fmt.Errorf("Store: pointer type must be Pointer(%s)", s.Value().Type())
	}
	return nil
}

func (s *Store) Clone(id int) Instruction {
	return NewStore(id, s.Pointer(), s.Value())
}

func (s *Store) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Store)
	return ok && operandMatches(s.Pointer(), o.Pointer(), mapping) && operandMatches(s.Value(), o.Value(), mapping)
}

// ---- Load ----

// Load reads the value pointed to by Pointer. It is pure.
type Load struct {
	instBase
	pointer singleSlot
}

func NewLoad(id int, pointer Node) *Load {
	ptr, ok := pointer.Type().(*types.Pointer)
	if !ok {
		panic("Load: operand is not a pointer")
	}
	l := &Load{}
	l.valueBase = newValueBase(id, ptr.Inner)
	l.pointer.owner = l
	l.pointer.Set(pointer)
	return l
}

func (l *Load) Pointer() Node { return l.pointer.Get() }

func (l *Load) isBasicInstruction() {}
func (l *Load) Pure() bool          { return true }
func (l *Load) Operands() []Node    { return []Node{l.Pointer()} }
func (l *Load) ReplaceOperand(from, to Node) int {
	return l.pointer.replace(from, to)
}
func (l *Load) String() string {
	return fmt.Sprintf("%%%d = Load %s", l.id, refStr(l.Pointer()))
}

func (l *Load) TypeCheck() error {
	ptr, ok := l.Pointer().Type().(*types.Pointer)
	if !ok || !ptr.Inner.Equals(l.typ) {
		return fmt.Errorf("Load: result type must match pointer's inner type")
	}
	return nil
}

func (l *Load) Clone(id int) Instruction { return NewLoad(id, l.Pointer()) }

func (l *Load) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Load)
	return ok && operandMatches(l.Pointer(), o.Pointer(), mapping)
}

// ---- BinaryOp ----

// BinaryInstruction computes Op(Left, Right). Arithmetic operators require
// equal integer operand types and produce that type; comparisons produce
// bool. Pure.
type BinaryInstruction struct {
	instBase
	Op          BinOp
	left, right singleSlot
}

func NewBinaryInstruction(id int, op BinOp, left, right Node, interner *types.Interner) *BinaryInstruction {
	b := &BinaryInstruction{Op: op}
	resultType := left.Type()
	if op.IsComparison() {
		resultType = interner.Bool()
	}
	b.valueBase = newValueBase(id, resultType)
	b.left.owner, b.right.owner = b, b
	b.left.Set(left)
	b.right.Set(right)
	return b
}

func (b *BinaryInstruction) Left() Node  { return b.left.Get() }
func (b *BinaryInstruction) Right() Node { return b.right.Get() }

func (b *BinaryInstruction) isBasicInstruction() {}
func (b *BinaryInstruction) Pure() bool          { return true }
func (b *BinaryInstruction) Operands() []Node    { return []Node{b.Left(), b.Right()} }
func (b *BinaryInstruction) ReplaceOperand(from, to Node) int {
	return b.left.replace(from, to) + b.right.replace(from, to)
}
func (b *BinaryInstruction) String() string {
	return fmt.Sprintf("%%%d = BinaryOp %s %s, %s", b.id, b.Op, refStr(b.Left()), refStr(b.Right()))
}

func (b *BinaryInstruction) TypeCheck() error {
	l, r := b.Left().Type(), b.Right().Type()
	if !types.IsInteger(l) || !l.Equals(r) {
		return fmt.Errorf("BinaryOp %s: operands must be equal integer types, got %s and %s", b.Op, l, r)
	}
	if b.Op.IsComparison() {
		if !types.IsBool(b.typ) {
			return fmt.Errorf("BinaryOp %s: result must be bool", b.Op)
		}
	} else if !b.typ.Equals(l) {
		return fmt.Errorf("BinaryOp %s: result must match operand type", b.Op)
	}
	return nil
}

func (b *BinaryInstruction) Clone(id int) Instruction {
	c := &BinaryInstruction{Op: b.Op}
	c.valueBase = newValueBase(id, b.typ)
	c.left.owner, c.right.owner = c, c
	c.left.Set(b.Left())
	c.right.Set(b.Right())
	return c
}

func (b *BinaryInstruction) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*BinaryInstruction)
	return ok && o.Op == b.Op && operandMatches(b.Left(), o.Left(), mapping) && operandMatches(b.Right(), o.Right(), mapping)
}

// ---- UnaryOp ----

// UnaryInstruction computes Op(V). Pure.
type UnaryInstruction struct {
	instBase
	Op UnOp
	v  singleSlot
}

func NewUnaryInstruction(id int, op UnOp, v Node) *UnaryInstruction {
	u := &UnaryInstruction{Op: op}
	u.valueBase = newValueBase(id, v.Type())
	u.v.owner = u
	u.v.Set(v)
	return u
}

func (u *UnaryInstruction) V() Node { return u.v.Get() }

func (u *UnaryInstruction) isBasicInstruction() {}
func (u *UnaryInstruction) Pure() bool          { return true }
func (u *UnaryInstruction) Operands() []Node    { return []Node{u.V()} }
func (u *UnaryInstruction) ReplaceOperand(from, to Node) int {
	return u.v.replace(from, to)
}
func (u *UnaryInstruction) String() string {
	return fmt.Sprintf("%%%d = UnaryOp %s %s", u.id, u.Op, refStr(u.V()))
}

func (u *UnaryInstruction) TypeCheck() error {
	if !types.IsInteger(u.V().Type()) {
		return fmt.Errorf("UnaryOp %s: operand must be integer", u.Op)
	}
	if !u.typ.Equals(u.V().Type()) {
		return fmt.Errorf("UnaryOp %s: result must match operand type", u.Op)
	}
	return nil
}

func (u *UnaryInstruction) Clone(id int) Instruction { return NewUnaryInstruction(id, u.Op, u.V()) }

func (u *UnaryInstruction) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*UnaryInstruction)
	return ok && o.Op == u.Op && operandMatches(u.V(), o.V(), mapping)
}

// ---- Phi ----

// Phi merges values at a control-flow join: its source map is keyed by
// predecessor BasicBlock, which is itself an operand. Upon verification a
// phi's keys must equal its containing block's predecessor set. Pure.
type Phi struct {
	instBase
	sources *phiSlot
}

func NewPhi(id int, typ types.Type) *Phi {
	p := &Phi{}
	p.valueBase = newValueBase(id, typ)
	p.sources = newPhiSlot(p)
	return p
}

func (p *Phi) AddSource(b *BasicBlock, v Node) { p.sources.Set(b, v) }
func (p *Phi) RemoveSource(b *BasicBlock)      { p.sources.Delete(b) }
func (p *Phi) Source(b *BasicBlock) (Node, bool) { return p.sources.Get(b) }
func (p *Phi) Keys() []*BasicBlock             { return p.sources.Keys() }

func (p *Phi) isBasicInstruction() {}
func (p *Phi) Pure() bool          { return true }
func (p *Phi) Operands() []Node    { return p.sources.operands() }
func (p *Phi) ReplaceOperand(from, to Node) int {
	return p.sources.replace(from, to)
}
func (p *Phi) String() string {
	out := fmt.Sprintf("%%%d = Phi %s [", p.id, p.typ)
	for i, k := range p.sources.Keys() {
		if i > 0 {
			out += ", "
		}
		v, _ := p.sources.Get(k)
		out += fmt.Sprintf("%s: %s", k, refStr(v))
	}
	return out + "]"
}

func (p *Phi) TypeCheck() error {
	for _, k := range p.sources.Keys() {
		v, _ := p.sources.Get(k)
		if !v.Type().Equals(p.typ) {
			return fmt.Errorf("Phi: source from %s has type %s, want %s", k, v.Type(), p.typ)
		}
	}
	return nil
}

func (p *Phi) Clone(id int) Instruction {
	c := NewPhi(id, p.typ)
	for _, k := range p.sources.Keys() {
		v, _ := p.sources.Get(k)
		c.AddSource(k, v)
	}
	return c
}

func (p *Phi) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Phi)
	if !ok || len(o.Keys()) != len(p.Keys()) {
		return false
	}
	for _, k := range p.sources.Keys() {
		mk, ok := mapping[Node(k)]
		if !ok {
			return false
		}
		ob, ok := mk.(*BasicBlock)
		if !ok {
			return false
		}
		v, _ := p.sources.Get(k)
		ov, ok := o.sources.Get(ob)
		if !ok || !operandMatches(v, ov, mapping) {
			return false
		}
	}
	return true
}

// ---- Eat ----

// Eat is an impure sink over N arguments: it prevents DCE of its
// arguments and is observable by the interpreter.
type Eat struct {
	instBase
	args listSlot
}

func NewEat(id int, args []Node) *Eat {
	e := &Eat{}
	e.valueBase = newValueBase(id, types.Void)
	e.args.owner = e
	for _, a := range args {
		e.args.Append(a)
	}
	return e
}

func (e *Eat) Args() []Node { return e.args.Items() }

func (e *Eat) isBasicInstruction() {}
func (e *Eat) Pure() bool          { return false }
func (e *Eat) Operands() []Node    { return e.args.Items() }
func (e *Eat) ReplaceOperand(from, to Node) int {
	return e.args.replace(from, to)
}
func (e *Eat) String() string {
	return fmt.Sprintf("Eat %s", refList(e.Args()))
}

func (e *Eat) TypeCheck() error { return nil }

func (e *Eat) Clone(id int) Instruction { return NewEat(id, append([]Node{}, e.Args()...)) }

func (e *Eat) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Eat)
	if !ok || len(o.Args()) != len(e.Args()) {
		return false
	}
	for i, a := range e.Args() {
		if !operandMatches(a, o.Args()[i], mapping) {
			return false
		}
	}
	return true
}

// ---- Blur ----

// Blur is the identity function opaque to the optimizer: SCCP and
// constant folding always treat its result as Variable/unknown, even when
// its operand is constant. Impure, so DCE never removes it even when its
// result is unused.
type Blur struct {
	instBase
	v singleSlot
}

func NewBlur(id int, v Node) *Blur {
	b := &Blur{}
	b.valueBase = newValueBase(id, v.Type())
	b.v.owner = b
	b.v.Set(v)
	return b
}

func (b *Blur) V() Node { return b.v.Get() }

func (b *Blur) isBasicInstruction() {}
func (b *Blur) Pure() bool          { return false }
func (b *Blur) Operands() []Node    { return []Node{b.V()} }
func (b *Blur) ReplaceOperand(from, to Node) int { return b.v.replace(from, to) }
func (b *Blur) String() string      { return fmt.Sprintf("%%%d = Blur %s", b.id, refStr(b.V())) }
func (b *Blur) TypeCheck() error {
	if !b.typ.Equals(b.V().Type()) {
		return fmt.Errorf("Blur: result must match operand type")
	}
	return nil
}
func (b *Blur) Clone(id int) Instruction { return NewBlur(id, b.V()) }
func (b *Blur) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Blur)
	return ok && operandMatches(b.V(), o.V(), mapping)
}

// ---- Call ----

// Call invokes Target (a function-typed value) with Args. Impure.
type Call struct {
	instBase
	target singleSlot
	args   listSlot
}

func NewCall(id int, target Node, args []Node) *Call {
	sig, ok := target.Type().(*types.Function)
	if !ok {
		panic("Call: target is not function-typed")
	}
	c := &Call{}
	c.valueBase = newValueBase(id, sig.Ret)
	c.target.owner, c.args.owner = c, c
	c.target.Set(target)
	for _, a := range args {
		c.args.Append(a)
	}
	return c
}

func (c *Call) Target() Node  { return c.target.Get() }
func (c *Call) Args() []Node  { return c.args.Items() }

func (c *Call) isBasicInstruction() {}
func (c *Call) Pure() bool          { return false }
func (c *Call) Operands() []Node    { return append([]Node{c.Target()}, c.Args()...) }
func (c *Call) ReplaceOperand(from, to Node) int {
	return c.target.replace(from, to) + c.args.replace(from, to)
}
func (c *Call) String() string {
	return fmt.Sprintf("%%%d = Call %s(%s)", c.id, refStr(c.Target()), refList(c.Args()))
}

func (c *Call) TypeCheck() error {
	sig, ok := c.Target().Type().(*types.Function)
	if !ok {
		return fmt.Errorf("Call: target is not function-typed")
	}
	if len(sig.Params) != len(c.Args()) {
		return fmt.Errorf("Call: expected %d arguments, got %d", len(sig.Params), len(c.Args()))
	}
	for i, p := range sig.Params {
		if !p.Equals(c.Args()[i].Type()) {
			return fmt.Errorf("Call: argument %d has type %s, want %s", i, c.Args()[i].Type(), p)
		}
	}
	if !sig.Ret.Equals(c.typ) {
		return fmt.Errorf("Call: result type must be %s", sig.Ret)
	}
	return nil
}

func (c *Call) Clone(id int) Instruction { return NewCall(id, c.Target(), append([]Node{}, c.Args()...)) }

func (c *Call) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*Call)
	if !ok || len(o.Args()) != len(c.Args()) || !operandMatches(c.Target(), o.Target(), mapping) {
		return false
	}
	for i, a := range c.Args() {
		if !operandMatches(a, o.Args()[i], mapping) {
			return false
		}
	}
	return true
}

// ---- GetSubValue (struct field / array element, by value) ----

// GetSubValueStruct projects field Index out of a Struct-typed value. Pure.
type GetSubValueStruct struct {
	instBase
	Index  int
	target singleSlot
}

func NewGetSubValueStruct(id int, target Node, index int) *GetSubValueStruct {
	st, ok := target.Type().(*types.Struct)
	if !ok || index < 0 || index >= len(st.Properties) {
		panic("GetSubValueStruct: target is not a struct or index out of range")
	}
	g := &GetSubValueStruct{Index: index}
	g.valueBase = newValueBase(id, st.Properties[index])
	g.target.owner = g
	g.target.Set(target)
	return g
}

func (g *GetSubValueStruct) Target() Node { return g.target.Get() }

func (g *GetSubValueStruct) isBasicInstruction() {}
func (g *GetSubValueStruct) Pure() bool          { return true }
func (g *GetSubValueStruct) Operands() []Node    { return []Node{g.Target()} }
func (g *GetSubValueStruct) ReplaceOperand(from, to Node) int { return g.target.replace(from, to) }
func (g *GetSubValueStruct) String() string {
	return fmt.Sprintf("%%%d = GetSubValue.Struct %s, %d", g.id, refStr(g.Target()), g.Index)
}
func (g *GetSubValueStruct) TypeCheck() error {
	st, ok := g.Target().Type().(*types.Struct)
	if !ok || g.Index < 0 || g.Index >= len(st.Properties) || !st.Properties[g.Index].Equals(g.typ) {
		return fmt.Errorf("GetSubValue.Struct: bad target/index/result type")
	}
	return nil
}
func (g *GetSubValueStruct) Clone(id int) Instruction {
	return NewGetSubValueStruct(id, g.Target(), g.Index)
}
func (g *GetSubValueStruct) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*GetSubValueStruct)
	return ok && o.Index == g.Index && operandMatches(g.Target(), o.Target(), mapping)
}

// GetSubValueArray projects element Index out of an Array-typed value.
// Pure.
type GetSubValueArray struct {
	instBase
	target, index singleSlot
}

func NewGetSubValueArray(id int, target, index Node) *GetSubValueArray {
	at, ok := target.Type().(*types.Array)
	if !ok {
		panic("GetSubValueArray: target is not an array")
	}
	g := &GetSubValueArray{}
	g.valueBase = newValueBase(id, at.Inner)
	g.target.owner, g.index.owner = g, g
	g.target.Set(target)
	g.index.Set(index)
	return g
}

func (g *GetSubValueArray) Target() Node { return g.target.Get() }
func (g *GetSubValueArray) Index() Node  { return g.index.Get() }

func (g *GetSubValueArray) isBasicInstruction() {}
func (g *GetSubValueArray) Pure() bool          { return true }
func (g *GetSubValueArray) Operands() []Node    { return []Node{g.Target(), g.Index()} }
func (g *GetSubValueArray) ReplaceOperand(from, to Node) int {
	return g.target.replace(from, to) + g.index.replace(from, to)
}
func (g *GetSubValueArray) String() string {
	return fmt.Sprintf("%%%d = GetSubValue.Array %s, %s", g.id, refStr(g.Target()), refStr(g.Index()))
}
func (g *GetSubValueArray) TypeCheck() error {
	at, ok := g.Target().Type().(*types.Array)
	if !ok || !at.Inner.Equals(g.typ) {
		return fmt.Errorf("GetSubValue.Array: bad target/result type")
	}
	return nil
}
func (g *GetSubValueArray) Clone(id int) Instruction {
	return NewGetSubValueArray(id, g.Target(), g.Index())
}
func (g *GetSubValueArray) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*GetSubValueArray)
	return ok && operandMatches(g.Target(), o.Target(), mapping) && operandMatches(g.Index(), o.Index(), mapping)
}

// ---- GetSubPointer (struct field / array element, by address) ----

// GetSubPointerStruct computes the address of field Index of a
// Pointer(Struct)-typed target. Pure.
type GetSubPointerStruct struct {
	instBase
	Index  int
	target singleSlot
}

func NewGetSubPointerStruct(id int, target Node, index int, interner *types.Interner) *GetSubPointerStruct {
	ptr, ok := target.Type().(*types.Pointer)
	if !ok {
		panic("GetSubPointerStruct: target is not a pointer")
	}
	st, ok := ptr.Inner.(*types.Struct)
	if !ok || index < 0 || index >= len(st.Properties) {
		panic("GetSubPointerStruct: target is not Pointer(Struct) or index out of range")
	}
	g := &GetSubPointerStruct{Index: index}
	g.valueBase = newValueBase(id, interner.Pointer(st.Properties[index]))
	g.target.owner = g
	g.target.Set(target)
	return g
}

func (g *GetSubPointerStruct) Target() Node { return g.target.Get() }

func (g *GetSubPointerStruct) isBasicInstruction() {}
func (g *GetSubPointerStruct) Pure() bool          { return true }
func (g *GetSubPointerStruct) Operands() []Node    { return []Node{g.Target()} }
func (g *GetSubPointerStruct) ReplaceOperand(from, to Node) int { return g.target.replace(from, to) }
func (g *GetSubPointerStruct) String() string {
	return fmt.Sprintf("%%%d = GetSubPointer.Struct %s, %d", g.id, refStr(g.Target()), g.Index)
}
func (g *GetSubPointerStruct) TypeCheck() error {
	ptr, ok := g.Target().Type().(*types.Pointer)
	if !ok {
		return fmt.Errorf("GetSubPointer.Struct: target not a pointer")
	}
	st, ok := ptr.Inner.(*types.Struct)
	if !ok || g.Index < 0 || g.Index >= len(st.Properties) {
		return fmt.Errorf("GetSubPointer.Struct: target not Pointer(Struct) or bad index")
	}
	resultPtr, ok := g.typ.(*types.Pointer)
	if !ok || !resultPtr.Inner.Equals(st.Properties[g.Index]) {
		return fmt.Errorf("GetSubPointer.Struct: bad result type")
	}
	return nil
}
func (g *GetSubPointerStruct) Clone(id int) Instruction {
	c := &GetSubPointerStruct{Index: g.Index}
	c.valueBase = newValueBase(id, g.typ)
	c.target.owner = c
	c.target.Set(g.Target())
	return c
}
func (g *GetSubPointerStruct) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*GetSubPointerStruct)
	return ok && o.Index == g.Index && operandMatches(g.Target(), o.Target(), mapping)
}

// GetSubPointerArray computes the address of element Index of a
// Pointer(Array)-typed target. Pure.
type GetSubPointerArray struct {
	instBase
	target, index singleSlot
}

func NewGetSubPointerArray(id int, target, index Node, interner *types.Interner) *GetSubPointerArray {
	ptr, ok := target.Type().(*types.Pointer)
	if !ok {
		panic("GetSubPointerArray: target is not a pointer")
	}
	at, ok := ptr.Inner.(*types.Array)
	if !ok {
		panic("GetSubPointerArray: target is not Pointer(Array)")
	}
	g := &GetSubPointerArray{}
	g.valueBase = newValueBase(id, interner.Pointer(at.Inner))
	g.target.owner, g.index.owner = g, g
	g.target.Set(target)
	g.index.Set(index)
	return g
}

func (g *GetSubPointerArray) Target() Node { return g.target.Get() }
func (g *GetSubPointerArray) Index() Node  { return g.index.Get() }

func (g *GetSubPointerArray) isBasicInstruction() {}
func (g *GetSubPointerArray) Pure() bool          { return true }
func (g *GetSubPointerArray) Operands() []Node    { return []Node{g.Target(), g.Index()} }
func (g *GetSubPointerArray) ReplaceOperand(from, to Node) int {
	return g.target.replace(from, to) + g.index.replace(from, to)
}
func (g *GetSubPointerArray) String() string {
	return fmt.Sprintf("%%%d = GetSubPointer.Array %s, %s", g.id, refStr(g.Target()), refStr(g.Index()))
}
func (g *GetSubPointerArray) TypeCheck() error {
	ptr, ok := g.Target().Type().(*types.Pointer)
	if !ok {
		return fmt.Errorf("GetSubPointer.Array: target not a pointer")
	}
	at, ok := ptr.Inner.(*types.Array)
	if !ok {
		return fmt.Errorf("GetSubPointer.Array: target not Pointer(Array)")
	}
	resultPtr, ok := g.typ.(*types.Pointer)
	if !ok || !resultPtr.Inner.Equals(at.Inner) {
		return fmt.Errorf("GetSubPointer.Array: bad result type")
	}
	return nil
}
func (g *GetSubPointerArray) Clone(id int) Instruction {
	c := &GetSubPointerArray{}
	c.valueBase = newValueBase(id, g.typ)
	c.target.owner, c.index.owner = c, c
	c.target.Set(g.Target())
	c.index.Set(g.Index())
	return c
}
func (g *GetSubPointerArray) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*GetSubPointerArray)
	return ok && operandMatches(g.Target(), o.Target(), mapping) && operandMatches(g.Index(), o.Index(), mapping)
}

// ---- AggregateValue ----

// AggregateValue builds a Struct or Array value from its element values.
// Pure.
type AggregateValue struct {
	instBase
	values listSlot
}

func NewAggregateValue(id int, typ types.Type, values []Node) *AggregateValue {
	a := &AggregateValue{}
	a.valueBase = newValueBase(id, typ)
	a.values.owner = a
	for _, v := range values {
		a.values.Append(v)
	}
	return a
}

func (a *AggregateValue) Values() []Node { return a.values.Items() }

func (a *AggregateValue) isBasicInstruction() {}
func (a *AggregateValue) Pure() bool          { return true }
func (a *AggregateValue) Operands() []Node    { return a.values.Items() }
func (a *AggregateValue) ReplaceOperand(from, to Node) int { return a.values.replace(from, to) }
func (a *AggregateValue) String() string {
	return fmt.Sprintf("%%%d = AggregateValue %s %s", a.id, a.typ, refList(a.Values()))
}

func (a *AggregateValue) TypeCheck() error {
	var elemTypes []types.Type
	switch t := a.typ.(type) {
	case *types.Struct:
		elemTypes = t.Properties
	case *types.Array:
		if t.Size != len(a.Values()) {
			return fmt.Errorf("AggregateValue: expected %d elements, got %d", t.Size, len(a.Values()))
		}
		for range a.Values() {
			elemTypes = append(elemTypes, t.Inner)
		}
	default:
		return fmt.Errorf("AggregateValue: type must be Struct or Array")
	}
	if len(elemTypes) != len(a.Values()) {
		return fmt.Errorf("AggregateValue: expected %d elements, got %d", len(elemTypes), len(a.Values()))
	}
	for i, v := range a.Values() {
		if !elemTypes[i].Equals(v.Type()) {
			return fmt.Errorf("AggregateValue: element %d has type %s, want %s", i, v.Type(), elemTypes[i])
		}
	}
	return nil
}

func (a *AggregateValue) Clone(id int) Instruction {
	return NewAggregateValue(id, a.typ, append([]Node{}, a.Values()...))
}

func (a *AggregateValue) Matches(other Instruction, mapping map[Node]Node) bool {
	o, ok := other.(*AggregateValue)
	if !ok || !o.typ.Equals(a.typ) || len(o.Values()) != len(a.Values()) {
		return false
	}
	for i, v := range a.Values() {
		if !operandMatches(v, o.Values()[i], mapping) {
			return false
		}
	}
	return true
}

// refStr prints a reference to an operand the way the instruction's own
// printed line would (a %id for instructions/parameters, a literal for
// constants, a name for blocks/functions).
func refStr(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func refList(ns []Node) string {
	out := ""
	for i, n := range ns {
		if i > 0 {
			out += ", "
		}
		out += refStr(n)
	}
	return out
}
