package ir

// An operandHolder is one of the three operand-slot shapes an instruction
// is built from: a single node reference, an ordered list, or an ordered
// map keyed by basic block. Each exposes iteration and a replace operation
// that reports how many positions changed, so an instruction's
// ReplaceOperand can sum across all of its holders.
type operandHolder interface {
	operands() []Node
	replace(from, to Node) int
}

// singleSlot is one optional operand reference.
type singleSlot struct {
	owner Node
	value Node
}

func (s *singleSlot) Get() Node { return s.value }

func (s *singleSlot) Set(v Node) {
	if s.value == v {
		return
	}
	removeUserOf(s.value, s.owner)
	s.value = v
	addUserOf(v, s.owner)
}

func (s *singleSlot) Clear() { s.Set(nil) }

func (s *singleSlot) operands() []Node {
	if s.value == nil {
		return nil
	}
	return []Node{s.value}
}

func (s *singleSlot) replace(from, to Node) int {
	if s.value != nil && sameNode(s.value, from) {
		s.Set(to)
		return 1
	}
	return 0
}

// listSlot is an ordered list of operand references, e.g. Call arguments.
type listSlot struct {
	owner Node
	items []Node
}

func (l *listSlot) Items() []Node { return l.items }
func (l *listSlot) Len() int      { return len(l.items) }

func (l *listSlot) Append(v Node) {
	l.items = append(l.items, v)
	addUserOf(v, l.owner)
}

func (l *listSlot) Set(i int, v Node) {
	if l.items[i] == v {
		return
	}
	removeUserOf(l.items[i], l.owner)
	l.items[i] = v
	addUserOf(v, l.owner)
}

func (l *listSlot) RemoveAt(i int) {
	removeUserOf(l.items[i], l.owner)
	l.items = append(l.items[:i], l.items[i+1:]...)
}

func (l *listSlot) Clear() {
	for _, v := range l.items {
		removeUserOf(v, l.owner)
	}
	l.items = nil
}

func (l *listSlot) operands() []Node { return l.items }

func (l *listSlot) replace(from, to Node) int {
	count := 0
	for i, v := range l.items {
		if sameNode(v, from) {
			l.Set(i, to)
			count++
		}
	}
	return count
}

// phiSlot is the map-shaped operand holder used by Phi: keys are
// predecessor BasicBlocks (themselves operands), values are the Node
// flowing in from that predecessor. Iteration order follows insertion
// order; passes that need a specific deterministic order (e.g. the
// function's block list order) re-sort the result of Keys themselves.
type phiSlot struct {
	owner   Node
	order   []*BasicBlock
	sources map[*BasicBlock]Node
}

func newPhiSlot(owner Node) *phiSlot {
	return &phiSlot{owner: owner, sources: make(map[*BasicBlock]Node)}
}

func (p *phiSlot) Get(b *BasicBlock) (Node, bool) {
	v, ok := p.sources[b]
	return v, ok
}

func (p *phiSlot) Keys() []*BasicBlock {
	out := make([]*BasicBlock, len(p.order))
	copy(out, p.order)
	return out
}

func (p *phiSlot) Len() int { return len(p.order) }

// Set binds b -> v, adding b as a new key if it is not already present.
func (p *phiSlot) Set(b *BasicBlock, v Node) {
	if old, ok := p.sources[b]; ok {
		if sameNode(old, v) {
			return
		}
		removeUserOf(old, p.owner)
		p.sources[b] = v
		addUserOf(v, p.owner)
		return
	}
	p.order = append(p.order, b)
	p.sources[b] = v
	addUserOf(Node(b), p.owner)
	addUserOf(v, p.owner)
}

// Delete removes the b -> v entry entirely, releasing both operand
// references (the block key and the value).
func (p *phiSlot) Delete(b *BasicBlock) {
	v, ok := p.sources[b]
	if !ok {
		return
	}
	removeUserOf(v, p.owner)
	removeUserOf(Node(b), p.owner)
	delete(p.sources, b)
	for i, k := range p.order {
		if k == b {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *phiSlot) operands() []Node {
	out := make([]Node, 0, len(p.order)*2)
	for _, k := range p.order {
		out = append(out, Node(k), p.sources[k])
	}
	return out
}

// replace handles two distinct cases: from is a predecessor block (a map
// key merge) or from is a value flowing through one or more keys. A key
// merge that would collide with an existing key bound to a different value
// is rejected (returns 0) rather than silently discarding information.
func (p *phiSlot) replace(from, to Node) int {
	if fromBlock, ok := from.(*BasicBlock); ok {
		v, exists := p.sources[fromBlock]
		if !exists {
			return 0
		}
		toBlock, ok2 := to.(*BasicBlock)
		if !ok2 {
			return 0
		}
		if existing, already := p.sources[toBlock]; already && !sameNode(existing, v) {
			return 0
		}
		p.Delete(fromBlock)
		p.Set(toBlock, v)
		return 1
	}
	count := 0
	for _, k := range p.order {
		if sameNode(p.sources[k], from) {
			p.Set(k, to)
			count++
		}
	}
	return count
}
